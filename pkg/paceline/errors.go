package paceline

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNonPositiveCapacity is returned when the window capacity is zero or negative
	ErrNonPositiveCapacity = errors.New("capacity per window must be positive")

	// ErrNonPositiveWindow is returned when the window duration is zero or negative
	ErrNonPositiveWindow = errors.New("window duration must be positive")

	// ErrFractionOutOfRange is returned when a throttle fraction is outside [0, 1]
	ErrFractionOutOfRange = errors.New("throttle fraction must be between 0 and 1")

	// ErrFractionOrder is returned when the throttle-start fraction exceeds the
	// full-throttle fraction, which would make the zone ordering undefined
	ErrFractionOrder = errors.New("throttle start fraction must not exceed full throttle fraction")

	// ErrNegativeBuffer is returned when the full-throttle buffer is negative
	ErrNegativeBuffer = errors.New("full throttle buffer must not be negative")

	// ErrNonPositiveRetryCount is returned when the attempt budget is zero or negative
	ErrNonPositiveRetryCount = errors.New("retry count must be positive")

	// ErrNonPositiveBaseDelay is returned when the backoff base delay is zero or negative
	ErrNonPositiveBaseDelay = errors.New("backoff base delay must be positive")

	// ErrBackoffFactorTooSmall is returned when the backoff factor is 1 or less
	ErrBackoffFactorTooSmall = errors.New("backoff factor must be greater than 1")

	// ErrNonPositiveMaxDelay is returned when the backoff delay cap is zero or negative
	ErrNonPositiveMaxDelay = errors.New("backoff max delay must be positive")

	// ErrUnsupportedMethod is returned for HTTP methods the throttler does not support.
	// It is reported before any throttling delay or network activity.
	ErrUnsupportedMethod = errors.New("unsupported HTTP method")

	// ErrUnparsableRetryHint is returned when a Retry-After value is neither an
	// integer number of seconds nor a recognized HTTP date
	ErrUnparsableRetryHint = errors.New("unparsable retry hint")

	// ErrNilOperation is returned when Execute is called with a nil operation
	ErrNilOperation = errors.New("operation cannot be nil")

	// ErrUnknownProvider is returned when a named provider profile does not exist
	ErrUnknownProvider = errors.New("unknown provider profile")
)

// HTTPError represents a non-success HTTP response. The throttler converts any
// response with a status of 400 or above into an HTTPError so that retry
// classification can inspect status and headers uniformly.
type HTTPError struct {
	StatusCode int
	Status     string
	Headers    http.Header
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http error: %s", e.Status)
}

// RetryAfter returns the raw Retry-After header value and whether it was present.
func (e *HTTPError) RetryAfter() (string, bool) {
	if e.Headers == nil {
		return "", false
	}
	value := e.Headers.Get("Retry-After")
	return value, value != ""
}

// IsHTTPError reports whether err is (or wraps) an HTTPError.
func IsHTTPError(err error) bool {
	var he *HTTPError
	return errors.As(err, &he)
}

// AsHTTPError extracts an HTTPError from err, if present.
func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}
