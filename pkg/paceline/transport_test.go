package paceline

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransportSend(t *testing.T) {
	var seen struct {
		method string
		query  url.Values
		header http.Header
		body   []byte
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.method = r.Method
		seen.query = r.URL.Query()
		seen.header = r.Header.Clone()
		seen.body, _ = io.ReadAll(r.Body)

		w.Header().Set("X-RateLimit-Remaining", "42")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"rec1"}`))
	}))
	defer server.Close()

	transport := NewHTTPTransport(server.Client())
	resp, err := transport.Send(context.Background(), &Request{
		Method:  http.MethodPost,
		URL:     server.URL + "/records?view=grid",
		Headers: http.Header{"X-Request-Source": []string{"sync-job"}},
		Params:  url.Values{"expand": []string{"owner"}},
		Body:    []byte(`{"name":"widget"}`),
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, seen.method)
	// Explicit params merge with any query already on the URL.
	assert.Equal(t, "grid", seen.query.Get("view"))
	assert.Equal(t, "owner", seen.query.Get("expand"))
	assert.Equal(t, "sync-job", seen.header.Get("X-Request-Source"))
	assert.Equal(t, []byte(`{"name":"widget"}`), seen.body)

	assert.Equal(t, 201, resp.StatusCode)
	assert.Equal(t, "42", resp.Headers.Get("X-RateLimit-Remaining"))
	assert.Equal(t, []byte(`{"id":"rec1"}`), resp.Body)
}

func TestHTTPTransportErrorStatusIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	transport := NewHTTPTransport(server.Client())
	resp, err := transport.Send(context.Background(), &Request{
		Method:  http.MethodGet,
		URL:     server.URL,
		Headers: http.Header{},
	})

	// Status handling belongs to the classifier, not the transport.
	require.NoError(t, err)
	assert.Equal(t, 429, resp.StatusCode)
	assert.Equal(t, "7", resp.Headers.Get("Retry-After"))
}

func TestNewHTTPTransportDefaultClient(t *testing.T) {
	transport := NewHTTPTransport(nil)
	require.NotNil(t, transport.Client)
	assert.NotZero(t, transport.Client.Timeout)
}
