package web

import (
	"errors"
	"fmt"
)

// Kind classifies why a fetch failed.
type Kind string

const (
	KindForbidden Kind = "forbidden"     // HTTP 403, usually anti-bot blocking
	KindHTTPError Kind = "http-error"    // any other non-2xx status
	KindNetwork   Kind = "network-error" // DNS, connect, TLS, timeout or body read failure
)

// Sentinels for errors.Is matching against a *FetchError.
var (
	ErrForbidden  = errors.New("forbidden")
	ErrHTTPStatus = errors.New("unexpected http status")
	ErrNetwork    = errors.New("network error")
)

// FetchError is returned by Client.Fetch for every unsuccessful request.
// It never carries response body content.
type FetchError struct {
	Kind       Kind
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindForbidden:
		return fmt.Sprintf("fetch %s: forbidden (status 403), request likely blocked", e.URL)
	case KindHTTPError:
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	default:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrForbidden) and friends match on Kind.
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrForbidden:
		return e.Kind == KindForbidden
	case ErrHTTPStatus:
		return e.Kind == KindHTTPError
	case ErrNetwork:
		return e.Kind == KindNetwork
	}
	return false
}

// KindOf returns the classification of err, or "" when err is not a *FetchError.
func KindOf(err error) Kind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}
