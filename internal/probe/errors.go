package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Sentinel errors, one per failure kind. A *Error matches its kind's
// sentinel with errors.Is.
var (
	ErrInvalidURL       = errors.New("invalid URL")
	ErrConnection       = errors.New("connection error")
	ErrTimeout          = errors.New("timeout")
	ErrTooManyRedirects = errors.New("too many redirects")
)

// Kind classifies why a probe failed.
type Kind int

const (
	InvalidURL Kind = iota + 1
	ConnectionError
	Timeout
	TooManyRedirects
)

func (k Kind) String() string {
	switch k {
	case InvalidURL:
		return "InvalidURL"
	case ConnectionError:
		return "ConnectionError"
	case Timeout:
		return "Timeout"
	case TooManyRedirects:
		return "TooManyRedirects"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case InvalidURL:
		return ErrInvalidURL
	case ConnectionError:
		return ErrConnection
	case Timeout:
		return ErrTimeout
	case TooManyRedirects:
		return ErrTooManyRedirects
	}
	return nil
}

// Error is returned by Prober.Run for every failure. URL is the URL the
// failure relates to, which is the caller's target unless a redirect
// pointed somewhere unusable.
type Error struct {
	Kind Kind
	URL  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.URL)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf returns the failure kind carried by err, or 0 if err did not come
// from a probe.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}

// Classify wraps a transport or body-read failure into an *Error. Deadline
// and net timeouts become Timeout; everything else (DNS, refused
// connections, TLS, resets) is a ConnectionError.
func Classify(target string, err error) *Error {
	kind := ConnectionError
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		kind = Timeout
	}
	return &Error{Kind: kind, URL: target, Err: err}
}
