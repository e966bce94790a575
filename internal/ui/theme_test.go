package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/go-cmp/cmp"

	"github.com/listfeed/listfeed/internal/state"
)

func TestGetTheme_FallsBackToDracula(t *testing.T) {
	if got := GetTheme("Slate").Name; got != "Slate" {
		t.Fatalf("GetTheme(Slate) = %q, want Slate", got)
	}
	if got := GetTheme("no-such-theme").Name; got != defaultTheme().Name {
		t.Fatalf("GetTheme(unknown) = %q, want %q", got, defaultTheme().Name)
	}
}

func TestNextTheme_Cycles(t *testing.T) {
	names := ThemeNames()
	if diff := cmp.Diff([]string{"Dracula", "Slate"}, names); diff != "" {
		t.Fatalf("ThemeNames mismatch (-want +got):\n%s", diff)
	}
	for i, name := range names {
		want := names[(i+1)%len(names)]
		if got := NextTheme(name); got != want {
			t.Fatalf("NextTheme(%q) = %q, want %q", name, got, want)
		}
	}
	if got := NextTheme("unknown"); got != names[0] {
		t.Fatalf("NextTheme(unknown) = %q, want %q", got, names[0])
	}
}

func TestPhaseStyle_Colors(t *testing.T) {
	th := defaultTheme()
	cases := map[state.Phase]string{
		state.Idle:    th.Muted,
		state.Loading: th.Info,
		state.Loaded:  th.Success,
		state.Failed:  th.Danger,
	}
	for phase, want := range cases {
		got := th.PhaseStyle(phase).GetBackground()
		if got != lipgloss.Color(want) {
			t.Fatalf("PhaseStyle(%v) background = %v, want %v", phase, got, want)
		}
	}
}
