package paceline

import (
	"fmt"
	"strconv"
	"time"
)

// httpDateLayouts are the date representations a Retry-After header may use,
// tried in order: RFC 1123, RFC 850, and ANSI C asctime.
var httpDateLayouts = []string{
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
}

// ParseRetryAfter converts a Retry-After header value into a wait duration.
// Integer values are seconds; otherwise the value is parsed as an HTTP date
// and the wait is the time until that date, clamped to zero if it has already
// passed. A value in neither form fails with ErrUnparsableRetryHint.
//
// A zero result from a past date is a valid (empty) hint: the caller falls
// back to its own backoff, which is a different situation from the header
// being absent entirely.
func ParseRetryAfter(value string, now time.Time) (time.Duration, error) {
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, fmt.Errorf("%w: negative seconds %d", ErrUnparsableRetryHint, seconds)
		}
		return time.Duration(seconds) * time.Second, nil
	}

	for _, layout := range httpDateLayouts {
		at, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		wait := at.Sub(now)
		if wait < 0 {
			wait = 0
		}
		return wait, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnparsableRetryHint, value)
}
