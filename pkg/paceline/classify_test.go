package paceline

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func httpErr(status int, headers http.Header) error {
	return &HTTPError{
		StatusCode: status,
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Headers:    headers,
	}
}

func TestClassifierIsTransient(t *testing.T) {
	hinted := http.Header{}
	hinted.Set("Retry-After", "30")

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"429 too many requests", httpErr(429, nil), true},
		{"408 request timeout", httpErr(408, nil), true},
		{"500 internal error", httpErr(500, nil), true},
		{"503 unavailable", httpErr(503, nil), true},
		{"599 edge of server range", httpErr(599, nil), true},
		{"404 not found", httpErr(404, nil), false},
		{"400 bad request", httpErr(400, nil), false},
		{"401 unauthorized", httpErr(401, nil), false},
		{"403 without retry hint", httpErr(403, nil), false},
		{"403 with retry hint", httpErr(403, hinted), true},
		{"connection timeout", timeoutError{}, true},
		{"connection refused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, true},
		{"connection reset", fmt.Errorf("send: %w", syscall.ECONNRESET), true},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"caller cancellation", context.Canceled, false},
		{"arbitrary error", errors.New("schema mismatch"), false},
	}

	var c Classifier
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsTransient(tt.err))
		})
	}
}

func TestClassifierWrappedHTTPError(t *testing.T) {
	var c Classifier

	wrapped := fmt.Errorf("call failed: %w", httpErr(502, nil))
	assert.True(t, c.IsTransient(wrapped))
}

func TestClassifierExtraTransient(t *testing.T) {
	errQuota := errors.New("sdk: quota exceeded")
	errSchema := errors.New("sdk: schema mismatch")

	c := Classifier{Extra: TransientErrors(errQuota)}

	assert.True(t, c.IsTransient(errQuota))
	assert.True(t, c.IsTransient(fmt.Errorf("attempt: %w", errQuota)))
	assert.False(t, c.IsTransient(errSchema))
}

func TestClassifierExtraDoesNotOverrideStatusRules(t *testing.T) {
	// The extra predicate only widens the transient set for non-HTTP errors;
	// HTTP statuses keep their own classification.
	c := Classifier{Extra: func(error) bool { return true }}
	assert.False(t, c.IsTransient(httpErr(404, nil)))
}
