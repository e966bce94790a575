// Package state holds the single source of truth for one resource's fetch
// pipeline.
//
// # Overview
//
// A Store[T] records which Phase a resource is in (Idle, Loading, Loaded,
// Failed), the most recent successful records, and the failure that ended the
// last request. The fetch controller is the only writer; the UI, the CLI and
// the auto-refresher are readers.
//
// # Phases
//
//	Idle ──Begin──> Loading ──Resolve──> Loaded
//	                   │                   │
//	                   └──Reject──> Failed │
//	                                  │    │
//	                Loading <──Begin──┴────┘
//
// Idle is only observed before the first Begin. Every other phase is reachable
// from every settled phase through Begin.
//
// # Update Semantics
//
//	store.Begin(id)      → Phase = Loading, Err = nil, RequestID = id
//	store.Resolve(recs)  → Phase = Loaded, Records = recs, failures reset
//	store.Reject(err)    → Phase = Failed, Err = err, Records unchanged
//
// Begin clears the previous error before the new request resolves, so an
// error is never reported alongside a fresh load.
//
// # Observation
//
// Readers either poll Snapshot or call Subscribe. Subscribers receive the
// current snapshot right away and then every transition, in order, from the
// writer's goroutine. Each subscription channel buffers a single snapshot and
// drops the stale one when a newer transition arrives, so the writer never
// blocks on a slow reader. Close releases every subscription.
//
// # Defensive Copying
//
// Records are cloned on every write and every read; a caller mutating the
// slice it received cannot affect the stored data or other readers.
//
// # Testing Considerations
//
// The zero Store is ready to use:
//
//	var s state.Store[records.User]
//	s.Begin("req-1")
//	s.Resolve(users)
package state
