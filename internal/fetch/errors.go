package fetch

import (
	"errors"
	"fmt"
)

// Kind classifies why a load failed.
type Kind int

const (
	// KindTransport means no response was received.
	KindTransport Kind = iota
	// KindInvalidStatusCode means the status was outside [200,299].
	KindInvalidStatusCode
	// KindDecodeFailure means a 2xx body did not match the expected shape.
	KindDecodeFailure
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindInvalidStatusCode:
		return "invalid_status"
	case KindDecodeFailure:
		return "decode_failure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

const (
	msgInvalidStatus = "Request doesn't fall in the valid status code"
	msgDecodeFailure = "Failed to decode response"
)

// Error is the classified failure stored in a Failed state.
type Error struct {
	Kind       Kind
	StatusCode int   // set for KindInvalidStatusCode
	Cause      error // underlying error, nil for KindInvalidStatusCode
}

// Error returns the message shown to the user.
func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidStatusCode:
		return msgInvalidStatus
	case KindDecodeFailure:
		return msgDecodeFailure
	default:
		if e.Cause == nil {
			return "request failed"
		}
		return e.Cause.Error()
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Detail returns a diagnostic string that includes the status or cause.
func (e *Error) Detail() string {
	switch e.Kind {
	case KindInvalidStatusCode:
		return fmt.Sprintf("%s: status %d", e.Kind, e.StatusCode)
	default:
		if e.Cause == nil {
			return e.Kind.String()
		}
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
}

// KindOf extracts the Kind from err. ok is false when err is not a *Error.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if !errors.As(err, &fe) {
		return 0, false
	}
	return fe.Kind, true
}

// ErrClosed is returned by Refresh once the controller has been closed.
var ErrClosed = errors.New("controller closed")

var (
	errNoDecoder = errors.New("endpoint has no decoder")
	errNoGetter  = errors.New("no http client configured")
)
