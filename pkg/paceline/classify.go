package paceline

import (
	"context"
	"errors"
	"net"
	"net/http"
	"syscall"
)

// Classifier decides whether a failure is transient (worth retrying) or fatal
// (must propagate immediately).
//
// Transient failures are connection-level errors (timeouts, refused or reset
// connections), HTTP 408 and 429, any 5xx status, a 403 that carries a
// Retry-After header, and anything the Extra predicate accepts. Everything
// else is fatal.
type Classifier struct {
	// Extra, when set, marks additional failures as transient. It is how
	// callers teach the throttler about SDK-specific retryable errors.
	Extra func(error) bool
}

// IsTransient reports whether err is worth retrying.
func (c Classifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if he, ok := AsHTTPError(err); ok {
		return transientStatus(he)
	}

	if isConnectionError(err) {
		return true
	}

	if c.Extra != nil && c.Extra(err) {
		return true
	}

	return false
}

func transientStatus(he *HTTPError) bool {
	switch {
	case he.StatusCode == http.StatusRequestTimeout,
		he.StatusCode == http.StatusTooManyRequests:
		return true
	case he.StatusCode >= 500 && he.StatusCode < 600:
		return true
	case he.StatusCode == http.StatusForbidden:
		_, hinted := he.RetryAfter()
		return hinted
	}
	return false
}

func isConnectionError(err error) bool {
	// A caller-initiated cancellation is never worth retrying.
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// TransientErrors builds an Extra predicate from a fixed set of error values,
// matched with errors.Is.
func TransientErrors(targets ...error) func(error) bool {
	return func(err error) bool {
		for _, target := range targets {
			if errors.Is(err, target) {
				return true
			}
		}
		return false
	}
}
