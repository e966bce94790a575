package app

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/listfeed/listfeed/internal/state"
)

type fakeResource struct {
	name  string
	phase state.Phase
	loads atomic.Int32
}

func (f *fakeResource) Name() string       { return f.name }
func (f *fakeResource) Phase() state.Phase { return f.phase }
func (f *fakeResource) Load()              { f.loads.Add(1) }

func TestReloadLoaded_OnlyTouchesLoaded(t *testing.T) {
	tests := []struct {
		phase state.Phase
		want  int32
	}{
		{state.Idle, 0},
		{state.Loading, 0},
		{state.Loaded, 1},
		{state.Failed, 0},
	}
	for _, tt := range tests {
		t.Run(tt.phase.String(), func(t *testing.T) {
			r := &fakeResource{name: "users", phase: tt.phase}
			reloadLoaded([]Reloadable{r})
			if got := r.loads.Load(); got != tt.want {
				t.Fatalf("loads = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestReloadLoaded_Counts(t *testing.T) {
	rs := []Reloadable{
		&fakeResource{name: "users", phase: state.Loaded},
		&fakeResource{name: "musicians", phase: state.Failed},
	}
	if n := reloadLoaded(rs); n != 1 {
		t.Fatalf("reloadLoaded = %d, want 1", n)
	}
}

func TestStartPoller_DisabledWithoutInterval(t *testing.T) {
	r := &fakeResource{name: "users", phase: state.Loaded}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartPoller(ctx, 0, zaptest.NewLogger(t), r)
	time.Sleep(20 * time.Millisecond)
	if got := r.loads.Load(); got != 0 {
		t.Fatalf("loads = %d, want 0", got)
	}
}

func TestStartPoller_StopsWithContext(t *testing.T) {
	r := &fakeResource{name: "users", phase: state.Loaded}
	ctx, cancel := context.WithCancel(context.Background())
	StartPoller(ctx, time.Hour, zaptest.NewLogger(t), r)
	cancel()
	time.Sleep(20 * time.Millisecond)
	if got := r.loads.Load(); got != 0 {
		t.Fatalf("loads = %d, want 0", got)
	}
}
