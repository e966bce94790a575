package ui

import (
	"errors"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/listfeed/listfeed/internal/prefs"
	"github.com/listfeed/listfeed/internal/records"
	"github.com/listfeed/listfeed/internal/state"
)

type fakeController[T any] struct {
	name    string
	store   state.Store[T]
	loads   atomic.Int32
	retries atomic.Int32
}

func (f *fakeController[T]) Name() string                                 { return f.name }
func (f *fakeController[T]) State() state.Snapshot[T]                     { return f.store.Snapshot() }
func (f *fakeController[T]) Subscribe() (<-chan state.Snapshot[T], func()) { return f.store.Subscribe() }
func (f *fakeController[T]) Load()                                        { f.loads.Add(1); f.store.Begin("load") }
func (f *fakeController[T]) Retry()                                       { f.retries.Add(1); f.store.Begin("retry") }

var testUsers = []records.User{
	{ID: 1, Email: "a@x.com", Name: "Ada", Company: records.Company{Name: "C1"}},
	{ID: 2, Email: "b@x.com", Name: "Bob", Company: records.Company{Name: "C2"}},
	{ID: 3, Email: "c@x.com", Name: "Cy", Company: records.Company{Name: "C3"}},
}

type fixture struct {
	users     *fakeController[records.User]
	musicians *fakeController[records.Musician]
	prefsPath string
	model     Model
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:     &fakeController[records.User]{name: records.UsersResource},
		musicians: &fakeController[records.Musician]{name: records.MusiciansResource},
		prefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
	}
	f.model = New(Options{
		Resources: []Resource{
			Bind[records.User]("Users", f.users),
			Bind[records.Musician]("Musicians", f.musicians),
		},
		PrefsPath: f.prefsPath,
	})
	f.update(t, tea.WindowSizeMsg{Width: 120, Height: 30})
	return f
}

func (f *fixture) update(t *testing.T, msg tea.Msg) tea.Cmd {
	t.Helper()
	next, cmd := f.model.Update(msg)
	f.model = next.(Model)
	return cmd
}

func (f *fixture) press(t *testing.T, k string) tea.Cmd {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	return f.update(t, msg)
}

// sync applies the latest snapshot of the named resource the way the listen
// command would.
func (f *fixture) sync(t *testing.T, idx int) {
	t.Helper()
	msg := f.model.resources[idx].listen()()
	f.update(t, msg)
}

func TestInit_LoadsActiveTabOnly(t *testing.T) {
	f := newFixture(t)

	cmd := f.model.ensureLoaded()
	if cmd == nil {
		t.Fatal("ensureLoaded returned nil for an idle tab")
	}
	cmd()
	if got := f.users.loads.Load(); got != 1 {
		t.Fatalf("users loads = %d, want 1", got)
	}
	if got := f.musicians.loads.Load(); got != 0 {
		t.Fatalf("musicians loads = %d, want 0", got)
	}

	f.sync(t, 0)
	if f.model.ensureLoaded() != nil {
		t.Fatal("ensureLoaded issued a second load for a loading tab")
	}
}

func TestStateMsg_RendersPhases(t *testing.T) {
	f := newFixture(t)

	f.users.Load()
	f.sync(t, 0)
	if view := f.model.View(); !strings.Contains(view, "Loading users") {
		t.Fatalf("loading view missing spinner text:\n%s", view)
	}

	f.users.store.Reject(errors.New("Request doesn't fall in the valid status code"))
	f.sync(t, 0)
	view := f.model.View()
	if !strings.Contains(view, "Request doesn't fall in the valid status code") || !strings.Contains(view, "to retry") {
		t.Fatalf("failed view missing banner:\n%s", view)
	}

	f.users.store.Begin("again")
	f.sync(t, 0)
	if view := f.model.View(); strings.Contains(view, "valid status code") {
		t.Fatalf("error banner shown while loading:\n%s", view)
	}

	f.users.store.Resolve(testUsers)
	f.sync(t, 0)
	view = f.model.View()
	for _, want := range []string{"Ada", "Bob", "a@x.com", "C1"} {
		if !strings.Contains(view, want) {
			t.Fatalf("loaded view missing %q:\n%s", want, view)
		}
	}
}

func TestRetryKey_OnlyWhenFailed(t *testing.T) {
	f := newFixture(t)

	f.press(t, "r")
	if got := f.users.retries.Load(); got != 0 {
		t.Fatalf("retries while idle = %d, want 0", got)
	}

	f.users.store.Begin("x")
	f.users.store.Reject(errors.New("boom"))
	f.sync(t, 0)
	f.press(t, "r")
	if got := f.users.retries.Load(); got != 1 {
		t.Fatalf("retries after failure = %d, want 1", got)
	}

	f.sync(t, 0)
	if f.model.views[0].Phase != state.Loading {
		t.Fatalf("phase after retry = %v, want loading", f.model.views[0].Phase)
	}
	f.press(t, "r")
	if got := f.users.retries.Load(); got != 1 {
		t.Fatalf("retries while loading = %d, want 1", got)
	}
}

func TestSelection_Clamps(t *testing.T) {
	f := newFixture(t)
	f.users.store.Resolve(testUsers)
	f.sync(t, 0)

	f.press(t, "k")
	if got := f.model.selected[0]; got != 0 {
		t.Fatalf("selected after k at top = %d, want 0", got)
	}
	f.press(t, "j")
	f.press(t, "j")
	f.press(t, "j")
	if got := f.model.selected[0]; got != 2 {
		t.Fatalf("selected after jjj = %d, want 2", got)
	}
	f.press(t, "g")
	if got := f.model.selected[0]; got != 0 {
		t.Fatalf("selected after g = %d, want 0", got)
	}
	f.press(t, "G")
	if got := f.model.selected[0]; got != 2 {
		t.Fatalf("selected after G = %d, want 2", got)
	}

	f.users.store.Resolve(testUsers[:1])
	f.sync(t, 0)
	if got := f.model.selected[0]; got != 0 {
		t.Fatalf("selected after shrink = %d, want 0", got)
	}
}

func TestTabSwitch_LoadsAndPersists(t *testing.T) {
	f := newFixture(t)

	cmd := f.press(t, "tab")
	if f.model.active != 1 {
		t.Fatalf("active = %d, want 1", f.model.active)
	}
	if cmd == nil {
		t.Fatal("switching to an idle tab returned no load command")
	}
	cmd()
	if got := f.musicians.loads.Load(); got != 1 {
		t.Fatalf("musicians loads = %d, want 1", got)
	}

	if p := prefs.Load(f.prefsPath); p.Tab != records.MusiciansResource {
		t.Fatalf("saved tab = %q, want %q", p.Tab, records.MusiciansResource)
	}
}

func TestThemeCycle_Persists(t *testing.T) {
	f := newFixture(t)

	f.press(t, "T")
	if f.model.theme.Name != "Slate" {
		t.Fatalf("theme = %q, want Slate", f.model.theme.Name)
	}
	if p := prefs.Load(f.prefsPath); p.Theme != "Slate" {
		t.Fatalf("saved theme = %q, want Slate", p.Theme)
	}
}

func TestHelpOverlay(t *testing.T) {
	f := newFixture(t)

	f.press(t, "?")
	if !f.model.showHelp || !strings.Contains(f.model.View(), "press any key to close") {
		t.Fatalf("help overlay not shown:\n%s", f.model.View())
	}
	f.press(t, "x")
	if f.model.showHelp {
		t.Fatal("help overlay still shown after a key")
	}
}

func TestMusicianDetailShowsLinks(t *testing.T) {
	f := newFixture(t)
	f.press(t, "tab")
	f.musicians.store.Resolve([]records.Musician{{
		ID: "1", ArtistName: "Band", ReleaseDate: "2023-09-15",
		ArtistURL: "https://music.apple.com/a", ArtworkURL100: "https://img/b.jpg",
	}})
	f.sync(t, 1)

	view := f.model.View()
	for _, want := range []string{"Band", "https://music.apple.com/a", "https://img/b.jpg"} {
		if !strings.Contains(view, want) {
			t.Fatalf("detail missing %q:\n%s", want, view)
		}
	}
}

func TestListen_ReportsClosedSubscription(t *testing.T) {
	f := newFixture(t)
	r := f.model.resources[0]
	_ = r.listen()() // drain the initial snapshot
	r.release()

	if _, ok := r.listen()().(resourceClosedMsg); !ok {
		t.Fatal("listen after release did not report closure")
	}
}

func TestNew_RestoresTab(t *testing.T) {
	users := &fakeController[records.User]{name: records.UsersResource}
	musicians := &fakeController[records.Musician]{name: records.MusiciansResource}
	m := New(Options{
		Resources: []Resource{Bind[records.User]("Users", users), Bind[records.Musician]("Musicians", musicians)},
		Tab:       "Musicians",
		ThemeName: "Slate",
	})
	if m.active != 1 || m.theme.Name != "Slate" {
		t.Fatalf("active=%d theme=%q, want 1 Slate", m.active, m.theme.Name)
	}
}
