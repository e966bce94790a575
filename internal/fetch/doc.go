// Package fetch implements the request→decode→publish pipeline shared by
// every list resource.
//
// # Overview
//
// A Controller[T] is bound to one Endpoint[T] (name, fixed URL, decoder) and
// one injected httpapi.Getter. Load moves the resource to Loading, issues one
// GET in the background and publishes the outcome into its state.Store.
//
// # Classification
//
// Completed requests are classified in a fixed order:
//
//  1. No response (dial, DNS, TLS, timeout, cancel) → KindTransport
//  2. Status outside [200,299] → KindInvalidStatusCode, body ignored
//  3. Decoder error → KindDecodeFailure
//  4. Otherwise Loaded, records in server order
//
// Failures are stored as *Error in the Failed phase and never returned to the
// caller of Load. (*Error).Error is the user-facing text; Detail adds the
// status or cause for logs.
//
// # Superseding
//
// Calling Load while a request is in flight cancels the older request and
// bumps a generation counter. Only the newest request may write state, so a
// late response from a superseded request can never overwrite a newer result.
// The phase stays Loading until the newest request completes.
//
// # Teardown
//
// Close cancels the in-flight request, waits for its goroutine and closes all
// subscriptions. Nothing is published after Close returns and later Load
// calls are ignored.
//
// # Decoding
//
// Unmarshal decodes JSON with a KeyStrategy. KeysFromSnakeCase rewrites every
// object key with SnakeToCamel before decoding, so a record tagged
// `json:"firstName"` accepts "first_name" on the wire.
//
// # Usage Example
//
//	ctrl := fetch.New(records.UsersEndpoint(cfg.UsersURL), client, fetch.Options{Logger: logger})
//	defer ctrl.Close()
//
//	updates, release := ctrl.Subscribe()
//	defer release()
//	ctrl.Load()
//	for snap := range updates {
//		if snap.HasError() {
//			fmt.Println(snap.ErrorMessage())
//			ctrl.Retry()
//		}
//	}
package fetch
