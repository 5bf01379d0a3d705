package paceline

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// Option is a functional option for configuring a Throttler.
type Option func(*Throttler) error

// WithConfig sets the throttle configuration. It is validated along with the
// rest of the options when New returns.
func WithConfig(cfg ThrottleConfig) Option {
	return func(t *Throttler) error {
		t.cfg = cfg
		return nil
	}
}

// WithConfigFile loads a named profile from a YAML profile file.
func WithConfigFile(path, profile string) Option {
	return func(t *Throttler) error {
		profiles, err := LoadProfiles(path)
		if err != nil {
			return err
		}
		cfg, ok := profiles[profile]
		if !ok {
			return fmt.Errorf("%w: %q in %s", ErrUnknownProvider, profile, path)
		}
		t.cfg = cfg
		return nil
	}
}

// WithTransport sets a custom transport. The default wraps net/http.
func WithTransport(transport Transport) Option {
	return func(t *Throttler) error {
		if transport == nil {
			return fmt.Errorf("%w: transport cannot be nil", ErrInvalidConfig)
		}
		t.transport = transport
		return nil
	}
}

// WithHTTPClient uses the given client for the default HTTP transport.
func WithHTTPClient(client *http.Client) Option {
	return func(t *Throttler) error {
		if client == nil {
			return fmt.Errorf("%w: http client cannot be nil", ErrInvalidConfig)
		}
		t.transport = NewHTTPTransport(client)
		return nil
	}
}

// WithLogger sets the logger for throttle and retry events.
func WithLogger(logger *zap.Logger) Option {
	return func(t *Throttler) error {
		if logger == nil {
			return fmt.Errorf("%w: logger cannot be nil", ErrInvalidConfig)
		}
		t.logger = logger
		return nil
	}
}

// WithClock sets the time source. Tests use this to observe computed delays
// without sleeping.
func WithClock(clock Clock) Option {
	return func(t *Throttler) error {
		if clock == nil {
			return fmt.Errorf("%w: clock cannot be nil", ErrInvalidConfig)
		}
		t.clock = clock
		return nil
	}
}

// WithMetrics sets the recorder receiving throttle and retry events.
func WithMetrics(recorder Recorder) Option {
	return func(t *Throttler) error {
		t.recorder = recorder
		return nil
	}
}

// WithTransientErrors marks additional error values as transient, matched
// with errors.Is. Useful when SDK calls surface retryable conditions as
// sentinel errors.
func WithTransientErrors(targets ...error) Option {
	return func(t *Throttler) error {
		t.classifier.Extra = TransientErrors(targets...)
		return nil
	}
}

// WithTransientMatcher installs an arbitrary predicate for extra transient
// failures.
func WithTransientMatcher(matcher func(error) bool) Option {
	return func(t *Throttler) error {
		if matcher == nil {
			return fmt.Errorf("%w: matcher cannot be nil", ErrInvalidConfig)
		}
		t.classifier.Extra = matcher
		return nil
	}
}

// WithCredentials configures multi-key rotation: the primary key is used
// until a transient failure triggers rotation to one of the backups. Pair
// with WithAuthFunc to control how the active key reaches the request.
func WithCredentials(primary string, backups ...string) Option {
	return func(t *Throttler) error {
		if primary == "" {
			return fmt.Errorf("%w: primary credential cannot be empty", ErrInvalidConfig)
		}
		t.creds = NewCredentials(primary, backups...)
		if t.authFunc == nil {
			t.authFunc = BearerAuth()
		}
		return nil
	}
}

// WithAuthFunc sets how the active credential is injected into outgoing
// request headers. Defaults to BearerAuth when credentials are configured.
func WithAuthFunc(fn AuthFunc) Option {
	return func(t *Throttler) error {
		if fn == nil {
			return fmt.Errorf("%w: auth func cannot be nil", ErrInvalidConfig)
		}
		t.authFunc = fn
		return nil
	}
}

// WithPositionHook reads window occupancy from response headers instead of
// the local count.
func WithPositionHook(hook PositionHook) Option {
	return func(t *Throttler) error {
		t.positionHook = hook
		return nil
	}
}

// WithResizeHook updates window capacity and duration from response headers,
// recomputing the throttle thresholds.
func WithResizeHook(hook ResizeHook) Option {
	return func(t *Throttler) error {
		t.resizeHook = hook
		return nil
	}
}
