package paceline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

var supportedMethods = map[string]struct{}{
	http.MethodGet:    {},
	http.MethodPost:   {},
	http.MethodPut:    {},
	http.MethodPatch:  {},
	http.MethodDelete: {},
}

// RequestOption customizes a single outbound request.
type RequestOption func(*Request) error

// WithHeader adds a request header.
func WithHeader(key, value string) RequestOption {
	return func(r *Request) error {
		r.Headers.Add(key, value)
		return nil
	}
}

// WithParam adds a query parameter.
func WithParam(key, value string) RequestOption {
	return func(r *Request) error {
		r.Params.Add(key, value)
		return nil
	}
}

// WithBody sets a raw request body.
func WithBody(body []byte) RequestOption {
	return func(r *Request) error {
		r.Body = body
		return nil
	}
}

// WithJSON marshals v as the request body and sets the JSON content type.
func WithJSON(v any) RequestOption {
	return func(r *Request) error {
		payload, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode JSON body: %w", err)
		}
		r.Body = payload
		r.Headers.Set("Content-Type", "application/json")
		return nil
	}
}

// Get issues a throttled GET request.
func (t *Throttler) Get(ctx context.Context, target string, opts ...RequestOption) (*Response, error) {
	return t.Do(ctx, http.MethodGet, target, opts...)
}

// Post issues a throttled POST request.
func (t *Throttler) Post(ctx context.Context, target string, opts ...RequestOption) (*Response, error) {
	return t.Do(ctx, http.MethodPost, target, opts...)
}

// Put issues a throttled PUT request.
func (t *Throttler) Put(ctx context.Context, target string, opts ...RequestOption) (*Response, error) {
	return t.Do(ctx, http.MethodPut, target, opts...)
}

// Patch issues a throttled PATCH request.
func (t *Throttler) Patch(ctx context.Context, target string, opts ...RequestOption) (*Response, error) {
	return t.Do(ctx, http.MethodPatch, target, opts...)
}

// Delete issues a throttled DELETE request.
func (t *Throttler) Delete(ctx context.Context, target string, opts ...RequestOption) (*Response, error) {
	return t.Do(ctx, http.MethodDelete, target, opts...)
}

// Do issues a throttled request with an explicit method. Unsupported methods
// fail with ErrUnsupportedMethod before any sleep or network activity.
// Responses with a status of 400 or above come back as an *HTTPError; when
// the error is classified transient the request is retried up to the
// configured attempt budget.
func (t *Throttler) Do(ctx context.Context, method, target string, opts ...RequestOption) (*Response, error) {
	if _, ok := supportedMethods[method]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}

	req := &Request{
		Method:  method,
		URL:     target,
		Headers: http.Header{},
		Params:  url.Values{},
	}
	for _, opt := range opts {
		if err := opt(req); err != nil {
			return nil, err
		}
	}

	_, resp, err := t.execute(ctx, func(ctx context.Context) (any, *Response, error) {
		// Auth is injected per attempt so a rotated credential takes effect
		// on the retry that follows it.
		if t.creds != nil && t.authFunc != nil {
			t.authFunc(t.creds.Current(), req.Headers)
		}

		resp, err := t.transport.Send(ctx, req)
		if err != nil {
			return nil, nil, err
		}
		if resp.StatusCode >= 400 {
			return nil, nil, &HTTPError{
				StatusCode: resp.StatusCode,
				Status:     resp.Status,
				Headers:    resp.Headers,
				Body:       resp.Body,
			}
		}
		return nil, resp, nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Operation is a non-HTTP action (an SDK method call, a database write)
// executed through the throttler.
type Operation func(ctx context.Context) (any, error)

// Execute runs an arbitrary operation under the same throttle-and-retry
// policy as the HTTP verbs. Failures are retried only when the classifier
// deems them transient, which for non-HTTP errors means connection-level
// failures or the caller-supplied transient set.
//
// If the operation's result is a *Response, it also feeds the position and
// resize hooks, so SDK calls can refresh configuration the same way raw HTTP
// calls do.
func (t *Throttler) Execute(ctx context.Context, op Operation) (any, error) {
	if op == nil {
		return nil, ErrNilOperation
	}

	value, _, err := t.execute(ctx, func(ctx context.Context) (any, *Response, error) {
		v, err := op(ctx)
		if err != nil {
			return nil, nil, err
		}
		if resp, ok := v.(*Response); ok {
			return v, resp, nil
		}
		return v, nil, nil
	})
	return value, err
}
