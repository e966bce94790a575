package state

import (
	"fmt"
	"sync"
	"time"
)

// Phase is the lifecycle position of one resource's fetch pipeline.
type Phase int

const (
	Idle Phase = iota
	Loading
	Loaded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Settled reports whether no request is outstanding.
func (p Phase) Settled() bool {
	return p == Loaded || p == Failed
}

// Snapshot represents the latest data available to observers.
type Snapshot[T any] struct {
	Phase               Phase
	Records             []T // most recent successful payload, kept across failures
	Err                 error
	RequestID           string
	LastUpdated         time.Time
	ConsecutiveFailures int
}

// IsLoading is true strictly between a load and its completion.
func (s Snapshot[T]) IsLoading() bool {
	return s.Phase == Loading
}

// HasError is true only while the phase is Failed.
func (s Snapshot[T]) HasError() bool {
	return s.Phase == Failed && s.Err != nil
}

// ErrorMessage returns the human readable failure text, or "" when not failed.
func (s Snapshot[T]) ErrorMessage() string {
	if !s.HasError() {
		return ""
	}
	return s.Err.Error()
}

// Loaded returns the records when the phase is Loaded.
func (s Snapshot[T]) Loaded() ([]T, bool) {
	if s.Phase != Loaded {
		return nil, false
	}
	return s.Records, true
}

// Store coordinates concurrent updates to the snapshot and fans changes out
// to subscribers.
type Store[T any] struct {
	mu       sync.RWMutex
	snapshot Snapshot[T]
	subs     map[int]chan Snapshot[T]
	nextSub  int
	closed   bool
}

// Begin moves the store into Loading for requestID and clears any error.
// Records from the last success are kept.
func (s *Store[T]) Begin(requestID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.snapshot.Phase = Loading
	s.snapshot.Err = nil
	s.snapshot.RequestID = requestID
	s.notifyLocked()
}

// Resolve replaces the stored records and marks the store Loaded.
func (s *Store[T]) Resolve(records []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.snapshot.Phase = Loaded
	s.snapshot.Records = clone(records)
	s.snapshot.Err = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
	s.notifyLocked()
}

// Reject records err and marks the store Failed. The previous records are
// kept for visibility.
func (s *Store[T]) Reject(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.snapshot.Phase = Failed
	s.snapshot.Err = err
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures++
	s.notifyLocked()
}

// Snapshot returns a copy of the current snapshot.
func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

// Subscribe returns a channel that receives the current snapshot immediately
// and then every subsequent transition. The channel buffers only the latest
// snapshot, so a slow reader observes the newest state rather than blocking
// writers. The returned func releases the subscription; it is safe to call
// more than once. The channel is closed on release or when the store closes.
func (s *Store[T]) Subscribe() (<-chan Snapshot[T], func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Snapshot[T], 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	if s.subs == nil {
		s.subs = make(map[int]chan Snapshot[T])
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.copyLocked()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if sub, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(sub)
			}
		})
	}
}

// Close releases every subscription. Later updates are ignored.
func (s *Store[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *Store[T]) notifyLocked() {
	for _, ch := range s.subs {
		snap := s.copyLocked()
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func (s *Store[T]) copyLocked() Snapshot[T] {
	snap := s.snapshot
	snap.Records = clone(s.snapshot.Records)
	return snap
}

func clone[T any](items []T) []T {
	if len(items) == 0 {
		return nil
	}
	dup := make([]T, len(items))
	copy(dup, items)
	return dup
}
