// Package httpapi provides the HTTP transport used by fetch controllers.
//
// # Overview
//
// Client is an explicitly constructed, injectable replacement for a shared
// network singleton. Each controller receives a Getter; production code passes
// a *Client, tests pass an httptest-backed Client or a stub.
//
// # Request Handling
//
// All requests:
//   - Use the caller's context for cancellation
//   - Set Accept: application/json
//   - Set User-Agent (default listfeed/0.1)
//   - Set X-Request-ID when the caller supplies one
//   - Read at most MaxBodyBytes (default 8 MiB) of a 2xx body; other bodies
//     are discarded
//
// The client timeout is configurable. A zero Timeout installs no client-level
// deadline, so the only bound is the transport default and the context.
//
// # Error Handling
//
// Get returns an error only when no usable response was received: malformed
// URL, dial/DNS/TLS failure, timeout, cancellation, or a body read failure.
// A response with any status code, including 4xx/5xx, is returned as-is; the
// caller decides what a status means.
//
// Example error messages:
//   - "execute request: dial tcp 127.0.0.1:1: connect: connection refused"
//   - "read response: response body too large (limit 8388608 bytes)"
//   - "parse url \"ftp://x\": unsupported scheme \"ftp\""
//
// # Thread Safety
//
// Client is safe for concurrent use.
package httpapi
