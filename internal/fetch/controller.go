package fetch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/listfeed/listfeed/internal/httpapi"
	"github.com/listfeed/listfeed/internal/state"
)

// Endpoint describes one remote list resource.
type Endpoint[T any] struct {
	Name   string
	URL    string
	Decode func(body []byte) ([]T, error)
	// Audit reports oddities in a decoded payload that do not fail the load.
	// Each returned string is logged as a warning.
	Audit func(records []T) []string
}

// MetricsRecorder receives fetch outcomes. Implemented by *metrics.Fetch.
type MetricsRecorder interface {
	ObserveFetch(resource, outcome string, took time.Duration, records int)
	ObserveSuperseded(resource string)
}

// Options configure a Controller.
type Options struct {
	// Context bounds every request the controller issues. Defaults to
	// context.Background.
	Context      context.Context
	Logger       *zap.Logger
	Metrics      MetricsRecorder
	NewRequestID func() string
}

// Controller mediates one resource between its endpoint and observers. At
// most one request is authoritative at a time: a Load issued while another
// is in flight cancels the older request and drops its completion.
type Controller[T any] struct {
	endpoint Endpoint[T]
	getter   httpapi.Getter
	store    state.Store[T]
	logger   *zap.Logger
	metrics  MetricsRecorder
	newID    func() string

	mu         sync.Mutex
	baseCtx    context.Context
	cancelBase context.CancelFunc
	cancelLast context.CancelFunc
	generation uint64
	closed     bool
	wg         sync.WaitGroup
}

const outcomeLoaded = "loaded"

// New builds a Controller in the Idle phase. No request is issued until Load.
func New[T any](endpoint Endpoint[T], getter httpapi.Getter, opts Options) *Controller[T] {
	parent := opts.Context
	if parent == nil {
		parent = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	newID := opts.NewRequestID
	if newID == nil {
		newID = newRequestID
	}
	ctx, cancel := context.WithCancel(parent)
	return &Controller[T]{
		endpoint:   endpoint,
		getter:     getter,
		logger:     logger.With(zap.String("resource", endpoint.Name)),
		metrics:    opts.Metrics,
		newID:      newID,
		baseCtx:    ctx,
		cancelBase: cancel,
	}
}

// Name returns the endpoint name.
func (c *Controller[T]) Name() string {
	return c.endpoint.Name
}

// State returns the current snapshot.
func (c *Controller[T]) State() state.Snapshot[T] {
	return c.store.Snapshot()
}

// Phase returns the current lifecycle phase.
func (c *Controller[T]) Phase() state.Phase {
	return c.store.Snapshot().Phase
}

// Subscribe streams snapshots, starting with the current one. Call the
// returned func to release the subscription.
func (c *Controller[T]) Subscribe() (<-chan state.Snapshot[T], func()) {
	return c.store.Subscribe()
}

// Load moves to Loading, clears any previous error and issues one GET in the
// background. It never blocks on the network.
func (c *Controller[T]) Load() {
	c.start()
}

// Retry re-issues the request after a failure. It is the same as Load.
func (c *Controller[T]) Retry() {
	c.start()
}

// Refresh calls Load and waits until the state settles or ctx ends.
func (c *Controller[T]) Refresh(ctx context.Context) (state.Snapshot[T], error) {
	if _, ok := c.start(); !ok {
		return c.State(), ErrClosed
	}
	updates, release := c.Subscribe()
	defer release()

	for {
		select {
		case <-ctx.Done():
			return c.State(), ctx.Err()
		case snap, ok := <-updates:
			if !ok {
				return c.State(), ErrClosed
			}
			if snap.Phase.Settled() {
				return snap, nil
			}
		}
	}
}

// Close cancels any in-flight request and releases every subscription. No
// state change or notification happens after Close returns.
func (c *Controller[T]) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	if c.cancelLast != nil {
		c.cancelLast()
		c.cancelLast = nil
	}
	c.cancelBase()
	c.mu.Unlock()

	c.wg.Wait()
	c.store.Close()
	return nil
}

func (c *Controller[T]) start() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return "", false
	}

	if c.cancelLast != nil {
		c.cancelLast()
	}
	c.generation++
	gen := c.generation
	ctx, cancel := context.WithCancel(c.baseCtx)
	c.cancelLast = cancel

	id := c.newID()
	c.store.Begin(id)
	c.logger.Debug("load started", zap.String("request_id", id), zap.String("url", c.endpoint.URL))

	c.wg.Add(1)
	go c.run(ctx, cancel, gen, id)
	return id, true
}

func (c *Controller[T]) run(ctx context.Context, cancel context.CancelFunc, gen uint64, id string) {
	defer c.wg.Done()
	defer cancel()

	began := time.Now()
	records, status, err := c.fetch(ctx, id)
	took := time.Since(began)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.generation {
		c.logger.Debug("load superseded", zap.String("request_id", id), zap.Duration("duration", took))
		if c.metrics != nil {
			c.metrics.ObserveSuperseded(c.endpoint.Name)
		}
		return
	}
	c.cancelLast = nil

	if err != nil {
		kind, _ := KindOf(err)
		fields := []zap.Field{
			zap.String("request_id", id),
			zap.String("kind", kind.String()),
			zap.Duration("duration", took),
			zap.Error(err),
		}
		if fe, ok := err.(*Error); ok {
			fields = append(fields, zap.String("detail", fe.Detail()))
		}
		if status != 0 {
			fields = append(fields, zap.Int("status", status))
		}
		c.logger.Warn("load failed", fields...)
		if c.metrics != nil {
			c.metrics.ObserveFetch(c.endpoint.Name, kind.String(), took, 0)
		}
		c.store.Reject(err)
		return
	}

	if c.endpoint.Audit != nil {
		for _, w := range c.endpoint.Audit(records) {
			c.logger.Warn("load warning", zap.String("request_id", id), zap.String("warning", w))
		}
	}
	c.logger.Info("load finished",
		zap.String("request_id", id),
		zap.Int("status", status),
		zap.Int("records", len(records)),
		zap.Duration("duration", took))
	if c.metrics != nil {
		c.metrics.ObserveFetch(c.endpoint.Name, outcomeLoaded, took, len(records))
	}
	c.store.Resolve(records)
}

// fetch performs the request and classifies the result. The order of checks
// is fixed: transport, then status, then decode.
func (c *Controller[T]) fetch(ctx context.Context, id string) ([]T, int, error) {
	if c.getter == nil {
		return nil, 0, &Error{Kind: KindTransport, Cause: errNoGetter}
	}
	resp, err := c.getter.Get(ctx, httpapi.Request{URL: c.endpoint.URL, RequestID: id})
	if err != nil {
		return nil, 0, &Error{Kind: KindTransport, Cause: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, &Error{Kind: KindInvalidStatusCode, StatusCode: resp.StatusCode}
	}
	if c.endpoint.Decode == nil {
		return nil, resp.StatusCode, &Error{Kind: KindDecodeFailure, Cause: errNoDecoder}
	}
	records, err := c.endpoint.Decode(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &Error{Kind: KindDecodeFailure, Cause: err}
	}
	return records, resp.StatusCode, nil
}

func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
