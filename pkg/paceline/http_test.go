package paceline

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureTransport keeps the last request as sent, including body and query
// parameters, which scriptTransport does not retain.
type captureTransport struct {
	last *Request
}

func (c *captureTransport) Send(_ context.Context, req *Request) (*Response, error) {
	c.last = req
	return okResponse(), nil
}

func TestDoRejectsUnsupportedMethod(t *testing.T) {
	transport := &scriptTransport{steps: []scriptStep{{resp: okResponse()}}}
	clock := newFakeClock()
	thr := newTestThrottler(t, transport, clock)

	_, err := thr.Do(context.Background(), "BREW", "https://api.example.com/items")
	require.ErrorIs(t, err, ErrUnsupportedMethod)

	// Rejected before any throttling or network activity.
	assert.Empty(t, transport.calls)
	assert.Empty(t, clock.sleeps)
}

func TestVerbMethods(t *testing.T) {
	transport := &scriptTransport{steps: []scriptStep{{resp: okResponse()}}}
	thr := newTestThrottler(t, transport, newFakeClock())

	ctx := context.Background()
	target := "https://api.example.com/items"

	calls := []struct {
		method string
		do     func() (*Response, error)
	}{
		{http.MethodGet, func() (*Response, error) { return thr.Get(ctx, target) }},
		{http.MethodPost, func() (*Response, error) { return thr.Post(ctx, target) }},
		{http.MethodPut, func() (*Response, error) { return thr.Put(ctx, target) }},
		{http.MethodPatch, func() (*Response, error) { return thr.Patch(ctx, target) }},
		{http.MethodDelete, func() (*Response, error) { return thr.Delete(ctx, target) }},
	}

	for i, call := range calls {
		resp, err := call.do()
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, call.method, transport.calls[i].method)
		assert.Equal(t, target, transport.calls[i].url)
	}
}

func TestRequestOptions(t *testing.T) {
	transport := &captureTransport{}
	thr := newTestThrottler(t, transport, newFakeClock())

	_, err := thr.Post(context.Background(), "https://api.example.com/items",
		WithHeader("X-Request-Source", "sync-job"),
		WithParam("expand", "owner"),
		WithBody([]byte(`name=widget`)),
	)
	require.NoError(t, err)

	req := transport.last
	require.NotNil(t, req)
	assert.Equal(t, "sync-job", req.Headers.Get("X-Request-Source"))
	assert.Equal(t, "owner", req.Params.Get("expand"))
	assert.Equal(t, []byte(`name=widget`), req.Body)
}

func TestWithJSON(t *testing.T) {
	transport := &captureTransport{}
	thr := newTestThrottler(t, transport, newFakeClock())

	_, err := thr.Post(context.Background(), "https://api.example.com/items",
		WithJSON(map[string]string{"name": "widget"}),
	)
	require.NoError(t, err)

	req := transport.last
	require.NotNil(t, req)
	assert.Equal(t, "application/json", req.Headers.Get("Content-Type"))
	assert.JSONEq(t, `{"name":"widget"}`, string(req.Body))
}

func TestWithJSONEncodeFailure(t *testing.T) {
	transport := &scriptTransport{steps: []scriptStep{{resp: okResponse()}}}
	thr := newTestThrottler(t, transport, newFakeClock())

	_, err := thr.Post(context.Background(), "https://api.example.com/items",
		WithJSON(make(chan int)),
	)
	require.Error(t, err)
	assert.Empty(t, transport.calls)
}

func TestAuthHeaderInjected(t *testing.T) {
	transport := &scriptTransport{steps: []scriptStep{{resp: okResponse()}}}
	thr := newTestThrottler(t, transport, newFakeClock(),
		WithCredentials("token-1"),
		WithAuthFunc(HeaderAuth("X-Api-Key")),
	)

	_, err := thr.Get(context.Background(), "https://api.example.com/items")
	require.NoError(t, err)
	require.Len(t, transport.calls, 1)
	assert.Equal(t, "token-1", transport.calls[0].headers.Get("X-Api-Key"))
}
