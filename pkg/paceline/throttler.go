package paceline

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Recorder receives throttling and retry events. The metrics package provides
// the standard implementation; a nil recorder disables recording.
type Recorder interface {
	RecordThrottle(zone string, delay time.Duration)
	RecordAttempt()
	RecordSuccess()
	RecordRetry(delay time.Duration)
	RecordFailure()
}

// Throttler slows outbound operations down as usage approaches a provider's
// rate limit and retries transient failures with backoff informed by server
// hints. All mutable state lives inside one instance and every call runs in a
// single throttle-and-execute critical section, so one throttler can be
// shared by concurrent callers.
type Throttler struct {
	mu sync.Mutex

	cfg        ThrottleConfig
	window     *Window
	policy     *Policy
	classifier Classifier
	transport  Transport
	clock      Clock
	logger     *zap.Logger
	recorder   Recorder

	positionHook PositionHook
	resizeHook   ResizeHook
	creds        *Credentials
	authFunc     AuthFunc

	// jitter returns a uniform value in [0, 1) added (in seconds) to every
	// backoff delay.
	jitter func() float64
}

// New creates a Throttler from the given options. With no options it uses
// DefaultConfig, a real clock, a 30-second-timeout HTTP transport, and a
// no-op logger.
func New(opts ...Option) (*Throttler, error) {
	t := &Throttler{
		cfg:    DefaultConfig(),
		clock:  NewRealClock(),
		logger: zap.NewNop(),
		jitter: rand.Float64,
	}

	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}

	if err := t.cfg.Validate(); err != nil {
		return nil, err
	}

	if t.transport == nil {
		t.transport = NewHTTPTransport(nil)
	}

	t.window = NewWindow(t.cfg.WindowDuration, t.clock.Now())
	t.policy = NewPolicy(&t.cfg)

	return t, nil
}

// Config returns a copy of the throttler's current configuration. Dynamic
// resizes from response headers are reflected here.
func (t *Throttler) Config() ThrottleConfig {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cfg
}

// Stats is a point-in-time snapshot of the throttler's usage accounting.
type Stats struct {
	TotalOperations   int64
	CurrentOccupancy  int
	CapacityPerWindow int
	WindowDuration    time.Duration
}

// Stats returns a snapshot of the usage window.
func (t *Throttler) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Stats{
		TotalOperations:   t.window.Total(),
		CurrentOccupancy:  t.window.Occupancy(t.clock.Now()),
		CapacityPerWindow: t.cfg.CapacityPerWindow,
		WindowDuration:    t.cfg.WindowDuration,
	}
}

// attemptFunc performs one attempt of an operation. A non-nil Response feeds
// the refresh hooks on success.
type attemptFunc func(ctx context.Context) (value any, resp *Response, err error)

// execute runs the attempt loop: throttle, invoke, record on success,
// classify on failure, then wait out the server hint or an exponential
// backoff before the next attempt. The final transient failure is returned
// unchanged once the attempt budget is spent.
func (t *Throttler) execute(ctx context.Context, attempt attemptFunc) (any, *Response, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	log := t.logger.With(zap.String("call_id", uuid.NewString()))

	var lastErr error
	for i := 0; i < t.cfg.RetryCount; i++ {
		if err := t.throttle(ctx, log); err != nil {
			return nil, nil, err
		}

		if t.recorder != nil {
			t.recorder.RecordAttempt()
		}

		value, resp, err := attempt(ctx)
		if err == nil {
			t.window.Record(t.clock.Now())
			t.applyHooks(resp, log)
			if t.recorder != nil {
				t.recorder.RecordSuccess()
			}
			log.Debug("operation succeeded", zap.Int("attempt", i+1))
			return value, resp, nil
		}

		lastErr = err
		if !t.classifier.IsTransient(err) {
			if t.recorder != nil {
				t.recorder.RecordFailure()
			}
			log.Debug("fatal failure", zap.Int("attempt", i+1), zap.Error(err))
			return nil, nil, err
		}

		if i == t.cfg.RetryCount-1 {
			break
		}

		if t.creds != nil {
			t.creds.Rotate()
			log.Debug("rotated credential", zap.Int("attempt", i+1))
		}

		delay := t.retryDelay(err, i)
		if t.recorder != nil {
			t.recorder.RecordRetry(delay)
		}
		log.Info("retrying after transient failure",
			zap.Int("attempt", i+1),
			zap.Duration("delay", delay),
			zap.Error(err))

		if err := t.clock.Sleep(ctx, delay); err != nil {
			return nil, nil, err
		}
	}

	if t.recorder != nil {
		t.recorder.RecordFailure()
	}
	log.Debug("retries exhausted", zap.Int("attempts", t.cfg.RetryCount), zap.Error(lastErr))
	return nil, nil, lastErr
}

// throttle evaluates the zone policy and sleeps as directed.
func (t *Throttler) throttle(ctx context.Context, log *zap.Logger) error {
	decision := t.policy.Decide(t.window, t.clock.Now())
	if decision.Delay <= 0 {
		return nil
	}

	if t.recorder != nil {
		t.recorder.RecordThrottle(decision.Zone.String(), decision.Delay)
	}
	log.Debug("throttling",
		zap.Stringer("zone", decision.Zone),
		zap.Duration("delay", decision.Delay),
		zap.Int("occupancy", decision.Occupancy))

	return t.clock.Sleep(ctx, decision.Delay)
}

// applyHooks refreshes configuration from a successful response.
func (t *Throttler) applyHooks(resp *Response, log *zap.Logger) {
	if resp == nil {
		return
	}

	if t.positionHook != nil {
		if position, ok := t.positionHook(resp); ok {
			t.window.SetServerPosition(position)
		}
	}

	if t.resizeHook != nil {
		if capacity, window, ok := t.resizeHook(resp); ok {
			t.applyResize(capacity, window, log)
		}
	}
}

func (t *Throttler) applyResize(capacity int, window time.Duration, log *zap.Logger) {
	changed := false
	if capacity > 0 && capacity != t.cfg.CapacityPerWindow {
		t.cfg.CapacityPerWindow = capacity
		changed = true
	}
	if window > 0 && window != t.cfg.WindowDuration {
		t.cfg.WindowDuration = window
		t.window.Resize(window)
		changed = true
	}
	if changed {
		log.Debug("window resized from response headers",
			zap.Int("capacity", t.cfg.CapacityPerWindow),
			zap.Duration("window", t.cfg.WindowDuration))
	}
}

// retryDelay picks the wait before the next attempt: a positive, parseable
// server hint is used verbatim; anything else falls back to exponential
// backoff with jitter.
func (t *Throttler) retryDelay(err error, attempt int) time.Duration {
	if he, ok := AsHTTPError(err); ok {
		if hint, present := he.RetryAfter(); present {
			wait, perr := ParseRetryAfter(hint, t.clock.Now())
			if perr == nil && wait > 0 {
				return wait
			}
		}
	}
	return t.backoffDelay(attempt)
}

func (t *Throttler) backoffDelay(attempt int) time.Duration {
	seconds := t.cfg.BackoffBaseDelay.Seconds()*math.Pow(t.cfg.BackoffFactor, float64(attempt)) + t.jitter()
	if max := t.cfg.BackoffMaxDelay.Seconds(); seconds > max {
		seconds = max
	}
	return time.Duration(seconds * float64(time.Second))
}
