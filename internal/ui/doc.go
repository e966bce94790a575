// Package ui is the Bubble Tea interface for listfeed.
//
// Each tab is a Resource built with Bind from a typed fetch controller. Bind
// subscribes once; the listen command blocks on that subscription and turns
// every snapshot into a stateMsg, and Update re-arms it so snapshots are
// applied in order on the program goroutine.
//
// # Screens
//
//   - Idle: hint to press R. The active tab loads on start and on first visit.
//   - Loading: spinner. Any earlier error banner is hidden.
//   - Failed: error banner with a retry hint. Records from the last success
//     stay listed below it.
//   - Loaded: record list with a detail pane, side by side on wide terminals
//     and stacked below LayoutCompactWidth.
//
// L toggles a tail of the application log file, re-read every
// LogRefreshInterval while open.
//
// # Key Bindings
//
//   - tab/l, shift+tab: switch tabs
//   - j/k, g/G: move the selection
//   - ctrl+d/ctrl+u: scroll the detail pane
//   - r: retry a failed tab
//   - R: reload the active tab
//   - T: cycle theme
//   - L: application log
//   - h or ?: help
//   - e or ctrl+c: quit
//
// Theme and active tab are saved to the prefs file whenever they change.
package ui
