package paceline

import (
	"fmt"
	"strconv"
	"time"
)

// Provider presets. Each provider is a named default configuration plus a
// choice of hooks, composed onto one Throttler; there is no per-provider
// control flow.

// AirtableConfig throttles at Airtable's published 5 requests per second,
// starting soft throttling at half the budget.
func AirtableConfig() ThrottleConfig {
	cfg := DefaultConfig()
	cfg.CapacityPerWindow = 5
	cfg.WindowDuration = time.Second
	cfg.ThrottleStartFraction = 0.50
	cfg.FullThrottleFraction = 0.70
	return cfg
}

// AsanaConfig throttles at Asana's 1500 requests per minute. Asana accounts
// usually pair this with WithCredentials for multi-key rotation.
func AsanaConfig() ThrottleConfig {
	cfg := DefaultConfig()
	cfg.CapacityPerWindow = 1500
	cfg.WindowDuration = time.Minute
	return cfg
}

// HubSpotConfig throttles at HubSpot's 160 requests per 10 seconds. HubSpot
// reports usage and window sizing in response headers, so pair this with
// HubSpotPositionHook and HubSpotResizeHook.
func HubSpotConfig() ThrottleConfig {
	cfg := DefaultConfig()
	cfg.CapacityPerWindow = 160
	cfg.WindowDuration = 10 * time.Second
	cfg.RetryCount = 4
	cfg.BackoffFactor = 3.0
	return cfg
}

// SlackConfig uses the shared defaults; Slack's tiered limits are close
// enough to them that only the capacity tends to need adjusting per tier.
func SlackConfig() ThrottleConfig {
	return DefaultConfig()
}

// PackageConfig is tuned for SDK/library operations rather than raw HTTP:
// a leaky-bucket tail and a ten-second base backoff, since package-manager
// style APIs penalize rapid retries harshly.
func PackageConfig() ThrottleConfig {
	cfg := DefaultConfig()
	cfg.Flavor = LeakyBucket
	cfg.BackoffBaseDelay = 10 * time.Second
	return cfg
}

// Provider returns the preset configuration for a provider name.
func Provider(name string) (ThrottleConfig, error) {
	switch name {
	case "airtable":
		return AirtableConfig(), nil
	case "asana":
		return AsanaConfig(), nil
	case "hubspot":
		return HubSpotConfig(), nil
	case "slack":
		return SlackConfig(), nil
	case "package":
		return PackageConfig(), nil
	default:
		return ThrottleConfig{}, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
}

// HubSpot rate limit headers.
const (
	hubspotMaxHeader       = "X-HubSpot-RateLimit-Max"
	hubspotRemainingHeader = "X-HubSpot-RateLimit-Remaining"
	hubspotIntervalHeader  = "X-HubSpot-RateLimit-Interval-Milliseconds"
)

// HubSpotPositionHook derives window occupancy from HubSpot's rate limit
// headers: the used count is the reported maximum minus what remains.
func HubSpotPositionHook() PositionHook {
	return func(resp *Response) (int, bool) {
		max, err := strconv.Atoi(resp.Headers.Get(hubspotMaxHeader))
		if err != nil {
			return 0, false
		}
		remaining, err := strconv.Atoi(resp.Headers.Get(hubspotRemainingHeader))
		if err != nil {
			return 0, false
		}
		return max - remaining, true
	}
}

// HubSpotResizeHook reads the enforcement interval HubSpot reports and
// resizes the window to match, keeping the local thresholds aligned with the
// server's actual window.
func HubSpotResizeHook() ResizeHook {
	return func(resp *Response) (int, time.Duration, bool) {
		millis, err := strconv.Atoi(resp.Headers.Get(hubspotIntervalHeader))
		if err != nil || millis <= 0 {
			return 0, 0, false
		}
		capacity := 0
		if max, err := strconv.Atoi(resp.Headers.Get(hubspotMaxHeader)); err == nil {
			capacity = max
		}
		return capacity, time.Duration(millis) * time.Millisecond, true
	}
}
