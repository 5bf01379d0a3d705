package paceline

import (
	"context"
	"net/http"
	"time"
)

// fakeClock records requested sleeps without letting real time pass. Time
// only moves when a test advances it, which makes "operations issued in
// rapid succession" deterministic.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Since(t time.Time) time.Duration {
	return c.now.Sub(t)
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleeps = append(c.sleeps, d)
	return nil
}

func (c *fakeClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// scriptTransport replays a fixed sequence of responses and records each
// request it sees, including a copy of the headers at send time.
type scriptTransport struct {
	steps []scriptStep
	calls []scriptCall
}

type scriptStep struct {
	resp *Response
	err  error
}

type scriptCall struct {
	method  string
	url     string
	headers http.Header
}

func (s *scriptTransport) Send(_ context.Context, req *Request) (*Response, error) {
	s.calls = append(s.calls, scriptCall{
		method:  req.Method,
		url:     req.URL,
		headers: req.Headers.Clone(),
	})

	index := len(s.calls) - 1
	if index >= len(s.steps) {
		index = len(s.steps) - 1
	}
	step := s.steps[index]
	return step.resp, step.err
}

func okResponse() *Response {
	return &Response{StatusCode: 200, Status: "200 OK", Headers: http.Header{}}
}

func statusResponse(code int, status string, headers http.Header) *Response {
	if headers == nil {
		headers = http.Header{}
	}
	return &Response{StatusCode: code, Status: status, Headers: headers}
}

func noJitter() float64 { return 0 }
