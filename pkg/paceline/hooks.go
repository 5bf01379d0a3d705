package paceline

import "time"

// PositionHook reads the current window occupancy from a successful response,
// replacing the locally tracked count. Return ok=false when the response
// carries no usable position.
type PositionHook func(resp *Response) (position int, ok bool)

// ResizeHook reads updated window parameters from a successful response.
// Return capacity <= 0 or window <= 0 to leave the respective parameter
// unchanged; return ok=false when the response carries no sizing information.
// A resize triggers threshold recomputation before the next throttle
// decision.
type ResizeHook func(resp *Response) (capacity int, window time.Duration, ok bool)
