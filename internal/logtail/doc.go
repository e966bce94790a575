// Package logtail reads the tail of the listfeed log file for the log view.
//
// Read keeps a ring buffer of maxLines so large files cost one pass and
// O(maxLines) memory. A missing file returns nil, nil.
//
// Parse turns one zap JSON line ({"level":..., "ts":..., "msg":..., ...})
// into an Entry with extra fields sorted by key. Lines that are not JSON
// objects are kept verbatim, so a hand-edited or console-encoded log still
// shows up.
package logtail
