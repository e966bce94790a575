package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the width below which the detail pane stacks
	// under the list instead of sitting beside it.
	LayoutCompactWidth = 100

	// ListPaneRatio is the share of the width given to the list in wide mode.
	ListPaneRatio = 0.45
)

// Log view limits.
const (
	// LogTailLines is how many lines of the log file the log view shows.
	LogTailLines = 500
)

// Timing constants.
const (
	// LogRefreshInterval is how often the open log view re-reads the file.
	LogRefreshInterval = 2 * time.Second

	// ClockInterval refreshes relative timestamps in the header.
	ClockInterval = time.Second
)
