package paceline

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Flavor selects how the full-throttle delay is computed once occupancy
// reaches the full-throttle trigger.
type Flavor int

const (
	// FixedWindow waits out the remainder of the window (plus the configured
	// buffer) regardless of how many slots remain.
	FixedWindow Flavor = iota

	// LeakyBucket divides the remaining window time evenly across the
	// remaining allowed slots, smoothing the tail of the window instead of
	// stalling through it.
	LeakyBucket
)

// ThrottleConfig holds the throttling and retry parameters for one throttler.
// It is a value type: copy it freely, validate it once at construction.
type ThrottleConfig struct {
	// CapacityPerWindow is the maximum number of operations allowed within a
	// single window.
	CapacityPerWindow int

	// WindowDuration is the length of the rolling window.
	WindowDuration time.Duration

	// ThrottleStartFraction is the fraction of capacity at which soft
	// throttling begins. Must be in [0, 1].
	ThrottleStartFraction float64

	// FullThrottleFraction is the fraction of capacity at which the throttler
	// stalls for the rest of the window. Must be in [0, 1] and at least
	// ThrottleStartFraction.
	FullThrottleFraction float64

	// FullThrottleBuffer is an extra cushion applied to full-throttle waits,
	// expressed as a fraction of the remaining time (0.10 waits 10% longer).
	FullThrottleBuffer float64

	// RetryCount is the total attempt budget, including the first attempt.
	RetryCount int

	// BackoffBaseDelay is the starting delay for exponential backoff.
	BackoffBaseDelay time.Duration

	// BackoffFactor is the exponential growth factor between attempts.
	// Must be greater than 1.
	BackoffFactor float64

	// BackoffMaxDelay caps any single backoff sleep.
	BackoffMaxDelay time.Duration

	// Flavor selects the full-throttle delay formula.
	Flavor Flavor
}

// DefaultConfig returns the conservative defaults: 10 operations per second,
// soft throttling from 75% of capacity, a full stall from 90%, and three
// attempts with exponential backoff capped at one hour.
func DefaultConfig() ThrottleConfig {
	return ThrottleConfig{
		CapacityPerWindow:     10,
		WindowDuration:        time.Second,
		ThrottleStartFraction: 0.75,
		FullThrottleFraction:  0.90,
		FullThrottleBuffer:    0.10,
		RetryCount:            3,
		BackoffBaseDelay:      2 * time.Second,
		BackoffFactor:         2.0,
		BackoffMaxDelay:       time.Hour,
		Flavor:                FixedWindow,
	}
}

// Validate checks every configuration invariant. Invalid configurations fail
// fast at construction and are never retried.
func (c ThrottleConfig) Validate() error {
	if c.CapacityPerWindow <= 0 {
		return ErrNonPositiveCapacity
	}
	if c.WindowDuration <= 0 {
		return ErrNonPositiveWindow
	}
	if c.ThrottleStartFraction < 0 || c.ThrottleStartFraction > 1 {
		return fmt.Errorf("%w: throttle start %v", ErrFractionOutOfRange, c.ThrottleStartFraction)
	}
	if c.FullThrottleFraction < 0 || c.FullThrottleFraction > 1 {
		return fmt.Errorf("%w: full throttle %v", ErrFractionOutOfRange, c.FullThrottleFraction)
	}
	if c.ThrottleStartFraction > c.FullThrottleFraction {
		return ErrFractionOrder
	}
	if c.FullThrottleBuffer < 0 {
		return ErrNegativeBuffer
	}
	if c.RetryCount <= 0 {
		return ErrNonPositiveRetryCount
	}
	if c.BackoffBaseDelay <= 0 {
		return ErrNonPositiveBaseDelay
	}
	if c.BackoffFactor <= 1 {
		return ErrBackoffFactorTooSmall
	}
	if c.BackoffMaxDelay <= 0 {
		return ErrNonPositiveMaxDelay
	}
	return nil
}

// ThrottleTrigger returns the occupancy at which soft throttling begins.
// Trigger counts round down, and full throttle fires at or beyond its
// trigger; one convention is used everywhere.
func (c ThrottleConfig) ThrottleTrigger() int {
	return int(math.Floor(float64(c.CapacityPerWindow) * c.ThrottleStartFraction))
}

// FullThrottleTrigger returns the occupancy at which the throttler stalls for
// the remainder of the window.
func (c ThrottleConfig) FullThrottleTrigger() int {
	return int(math.Floor(float64(c.CapacityPerWindow) * c.FullThrottleFraction))
}

// profileFile is the on-disk YAML shape for named throttle profiles.
// Durations are strings in time.ParseDuration format ("1s", "500ms", "1h").
type profileFile struct {
	Profiles map[string]profileConfig `yaml:"profiles"`
}

type profileConfig struct {
	Capacity         int     `yaml:"capacity"`
	Window           string  `yaml:"window"`
	ThrottleStart    float64 `yaml:"throttle_start"`
	FullThrottle     float64 `yaml:"full_throttle"`
	Buffer           float64 `yaml:"buffer"`
	Retries          int     `yaml:"retries"`
	BackoffBaseDelay string  `yaml:"backoff_base_delay"`
	BackoffFactor    float64 `yaml:"backoff_factor"`
	BackoffMaxDelay  string  `yaml:"backoff_max_delay"`
	Flavor           string  `yaml:"flavor,omitempty"`
}

// LoadProfiles loads named throttle configurations from a YAML file.
// Unset fields fall back to DefaultConfig values; every loaded profile is
// validated before it is returned.
func LoadProfiles(path string) (map[string]ThrottleConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read profile file: %v", ErrInvalidConfig, err)
	}

	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: failed to parse YAML: %v", ErrInvalidConfig, err)
	}

	profiles := make(map[string]ThrottleConfig, len(file.Profiles))
	for name, raw := range file.Profiles {
		cfg, err := raw.toConfig()
		if err != nil {
			return nil, fmt.Errorf("%w: profile %q: %v", ErrInvalidConfig, name, err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("profile %q: %w", name, err)
		}
		profiles[name] = cfg
	}

	return profiles, nil
}

func (p profileConfig) toConfig() (ThrottleConfig, error) {
	cfg := DefaultConfig()

	if p.Capacity != 0 {
		cfg.CapacityPerWindow = p.Capacity
	}
	if p.Window != "" {
		window, err := time.ParseDuration(p.Window)
		if err != nil {
			return cfg, fmt.Errorf("invalid window: %v", err)
		}
		cfg.WindowDuration = window
	}
	if p.ThrottleStart != 0 {
		cfg.ThrottleStartFraction = p.ThrottleStart
	}
	if p.FullThrottle != 0 {
		cfg.FullThrottleFraction = p.FullThrottle
	}
	if p.Buffer != 0 {
		cfg.FullThrottleBuffer = p.Buffer
	}
	if p.Retries != 0 {
		cfg.RetryCount = p.Retries
	}
	if p.BackoffBaseDelay != "" {
		base, err := time.ParseDuration(p.BackoffBaseDelay)
		if err != nil {
			return cfg, fmt.Errorf("invalid backoff_base_delay: %v", err)
		}
		cfg.BackoffBaseDelay = base
	}
	if p.BackoffFactor != 0 {
		cfg.BackoffFactor = p.BackoffFactor
	}
	if p.BackoffMaxDelay != "" {
		max, err := time.ParseDuration(p.BackoffMaxDelay)
		if err != nil {
			return cfg, fmt.Errorf("invalid backoff_max_delay: %v", err)
		}
		cfg.BackoffMaxDelay = max
	}

	switch p.Flavor {
	case "", "fixed_window":
		cfg.Flavor = FixedWindow
	case "leaky_bucket":
		cfg.Flavor = LeakyBucket
	default:
		return cfg, fmt.Errorf("invalid flavor %q", p.Flavor)
	}

	return cfg, nil
}
