package paceline

import "time"

// Zone identifies which throttling state fired for a given decision.
type Zone int

const (
	// ZoneNormal proceeds without delay.
	ZoneNormal Zone = iota

	// ZoneThrottling spreads the window's remaining slack evenly across the
	// slots left before full throttle.
	ZoneThrottling

	// ZoneFullThrottle consumes the rest of the window plus a safety cushion.
	ZoneFullThrottle

	// ZoneSkipWindow waits out an entire window because its quota is spent.
	ZoneSkipWindow
)

func (z Zone) String() string {
	switch z {
	case ZoneNormal:
		return "normal"
	case ZoneThrottling:
		return "throttling"
	case ZoneFullThrottle:
		return "full_throttle"
	case ZoneSkipWindow:
		return "skip_window"
	default:
		return "unknown"
	}
}

// Decision is the outcome of one throttle evaluation.
type Decision struct {
	// Zone is the state that fired. Exactly one zone fires per evaluation.
	Zone Zone

	// Delay is how long to sleep before proceeding. Never negative.
	Delay time.Duration

	// Occupancy is the operation count against the window at evaluation time.
	Occupancy int

	// Remaining is the time left in the current window at evaluation time.
	Remaining time.Duration
}

// Policy implements the three-zone throttle state machine over a Window.
// Zones are checked from most to least severe, so skip-window takes
// precedence over full throttle, which takes precedence over soft throttling.
type Policy struct {
	cfg *ThrottleConfig
}

// NewPolicy creates a policy reading thresholds from cfg. The config pointer
// is shared with the owning throttler so that dynamic resizes are picked up
// on the next evaluation.
func NewPolicy(cfg *ThrottleConfig) *Policy {
	return &Policy{cfg: cfg}
}

// Decide evicts expired entries, rolls the window over if it has expired, and
// returns the single zone action to apply before the next operation.
func (p *Policy) Decide(w *Window, now time.Time) Decision {
	occupancy := w.Occupancy(now)

	elapsed := now.Sub(w.Start())
	if elapsed >= p.cfg.WindowDuration {
		w.Reset(now)
		elapsed = 0
	}
	remaining := p.cfg.WindowDuration - elapsed
	if remaining < 0 {
		remaining = 0
	}

	decision := Decision{
		Zone:      ZoneNormal,
		Occupancy: occupancy,
		Remaining: remaining,
	}

	throttleAt := p.cfg.ThrottleTrigger()
	fullAt := p.cfg.FullThrottleTrigger()

	switch {
	case occupancy >= p.cfg.CapacityPerWindow:
		decision.Zone = ZoneSkipWindow
		decision.Delay = p.cfg.WindowDuration

	case occupancy >= fullAt:
		decision.Zone = ZoneFullThrottle
		decision.Delay = p.fullThrottleDelay(occupancy, remaining)

	case occupancy >= throttleAt:
		decision.Zone = ZoneThrottling
		decision.Delay = p.throttleDelay(occupancy, fullAt, remaining)
	}

	if decision.Delay < 0 {
		decision.Delay = 0
	}
	return decision
}

// throttleDelay shrinks the window's slack evenly across the slots left
// before the full-throttle trigger, capped at one whole window.
func (p *Policy) throttleDelay(occupancy, fullAt int, remaining time.Duration) time.Duration {
	slots := fullAt - occupancy
	if slots < 1 {
		slots = 1
	}
	delay := remaining / time.Duration(slots)
	if delay > p.cfg.WindowDuration {
		delay = p.cfg.WindowDuration
	}
	return delay
}

// fullThrottleDelay waits out the remainder of the window. The fixed-window
// flavor stalls through all of it; the leaky-bucket flavor divides it evenly
// across the remaining allowed slots. Both add the configured cushion.
func (p *Policy) fullThrottleDelay(occupancy int, remaining time.Duration) time.Duration {
	if p.cfg.Flavor == LeakyBucket {
		slots := p.cfg.CapacityPerWindow - occupancy
		if slots < 1 {
			slots = 1
		}
		remaining /= time.Duration(slots)
	}
	return time.Duration(float64(remaining) * (1 + p.cfg.FullThrottleBuffer))
}
