// Package paceline provides client-side adaptive throttling and retries for
// outbound calls to rate-limited APIs.
//
// Paceline sits in front of a remote API with an enforced request quota per
// time window. It proactively slows callers down as usage approaches the
// limit instead of bursting to it and stalling, and it recovers from
// transient failures (quota exhaustion, 5xx errors, connection failures)
// using backoff informed by server hints when available.
//
// # Quick Start
//
// Basic usage with default settings:
//
//	throttler, err := paceline.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resp, err := throttler.Get(ctx, "https://api.example.com/items")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(resp.StatusCode)
//
// # Throttle Zones
//
// Each call is classified by the occupancy of a rolling usage window:
//
//   - normal: under the soft threshold, no delay.
//   - throttling: the window's remaining slack is spread evenly across the
//     slots left before the hard threshold, decelerating smoothly.
//   - full throttle: the rest of the window (plus a cushion) is waited out,
//     either whole (fixed-window) or spread over the remaining slots
//     (leaky-bucket).
//   - skip window: the quota is spent; a whole window is waited out.
//
// # Retries
//
// Failures are classified as transient or fatal. Transient failures
// (connection errors, 408, 429, 5xx, 403 with a Retry-After header, and any
// caller-supplied kinds) are retried up to the configured attempt budget;
// the wait honors the server's Retry-After hint (integer seconds or an HTTP
// date) and otherwise falls back to exponential backoff with jitter. Fatal
// failures propagate immediately.
//
// # Providers
//
// A provider is a named default configuration plus a hook set, composed onto
// one Throttler:
//
//	throttler, err := paceline.New(
//	    paceline.WithConfig(paceline.HubSpotConfig()),
//	    paceline.WithCredentials(primaryKey, backupKeys...),
//	    paceline.WithPositionHook(paceline.HubSpotPositionHook()),
//	    paceline.WithResizeHook(paceline.HubSpotResizeHook()),
//	)
//
// # Non-HTTP Operations
//
// Execute runs arbitrary operations (SDK method calls) under the same
// policy:
//
//	result, err := throttler.Execute(ctx, func(ctx context.Context) (any, error) {
//	    return client.CreateRecord(ctx, record)
//	})
//
// # Concurrency
//
// One Throttler serializes its callers: each throttle-and-execute sequence
// runs as a single critical section, so the usage accounting and the active
// credential are never mutated concurrently. Paceline is not a distributed
// rate limiter; state is per-instance and is not persisted.
//
// # Examples
//
// See the examples/ directory for complete working examples.
package paceline
