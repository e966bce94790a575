package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/listfeed/listfeed/internal/records"
	"github.com/listfeed/listfeed/internal/state"
)

// View is the untyped picture of one resource the screen renders.
type View struct {
	Phase     state.Phase
	Records   []records.Record
	Err       error
	RequestID string
	Updated   time.Time
	Failures  int
}

// ErrorMessage is the banner text, empty unless the phase is Failed.
func (v View) ErrorMessage() string {
	if v.Phase != state.Failed || v.Err == nil {
		return ""
	}
	return v.Err.Error()
}

// Resource is one tab's data source.
type Resource interface {
	Title() string
	Name() string
	Current() View
	Load()
	Retry()

	listen() tea.Cmd
	release()
}

// Controller is the subset of *fetch.Controller[T] a tab needs.
type Controller[T any] interface {
	Name() string
	State() state.Snapshot[T]
	Subscribe() (<-chan state.Snapshot[T], func())
	Load()
	Retry()
}

type binding[T records.Record] struct {
	title   string
	ctrl    Controller[T]
	updates <-chan state.Snapshot[T]
	cancel  func()
}

// Bind subscribes to c and exposes it as a tab titled title.
func Bind[T records.Record](title string, c Controller[T]) Resource {
	updates, cancel := c.Subscribe()
	return &binding[T]{title: title, ctrl: c, updates: updates, cancel: cancel}
}

func (b *binding[T]) Title() string { return b.title }
func (b *binding[T]) Name() string  { return b.ctrl.Name() }
func (b *binding[T]) Current() View { return toView(b.ctrl.State()) }
func (b *binding[T]) Load()         { b.ctrl.Load() }
func (b *binding[T]) Retry()        { b.ctrl.Retry() }
func (b *binding[T]) release()      { b.cancel() }

// listen waits for the next snapshot. The update loop re-arms it after every
// stateMsg, so snapshots are applied one at a time on the UI goroutine.
func (b *binding[T]) listen() tea.Cmd {
	name := b.ctrl.Name()
	return func() tea.Msg {
		snap, ok := <-b.updates
		if !ok {
			return resourceClosedMsg{name: name}
		}
		return stateMsg{name: name, view: toView(snap)}
	}
}

func toView[T records.Record](s state.Snapshot[T]) View {
	return View{
		Phase:     s.Phase,
		Records:   records.Erase(s.Records),
		Err:       s.Err,
		RequestID: s.RequestID,
		Updated:   s.LastUpdated,
		Failures:  s.ConsecutiveFailures,
	}
}

type stateMsg struct {
	name string
	view View
}

type resourceClosedMsg struct {
	name string
}
