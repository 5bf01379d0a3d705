package paceline

import (
	core "github.com/yourusername/paceline/pkg/paceline"
)

// Re-export main types for convenience
type (
	Throttler      = core.Throttler
	ThrottleConfig = core.ThrottleConfig
	Option         = core.Option
	RequestOption  = core.RequestOption
	Request        = core.Request
	Response       = core.Response
	Transport      = core.Transport
	HTTPError      = core.HTTPError
	Operation      = core.Operation
	Decision       = core.Decision
	Zone           = core.Zone
)

// New creates a new throttler
var New = core.New
