// Package extract implements the adaptive multi-strategy engine that turns
// a live room's raw HTML into a normalized stream record. Each strategy is
// an independent parser for one upstream payload shape; the dispatcher tries
// them in a resilience-ordered sequence and remembers which one last worked.
package extract

import (
	"github.com/JairFC/douyinstream-pro/internal/stream"
)

// Strategy is one self-contained algorithm for deriving a stream record
// from raw HTML. Implementations must be stateless and safe for concurrent
// use.
type Strategy interface {
	// Name is a stable identifier, used as the adaptive cache key.
	Name() string

	// Priority orders cold-cache attempts; lower runs earlier.
	Priority() int

	// CanAttempt is a cheap, side-effect-free pre-check used to skip
	// parsing when the payload is obviously absent. It must not panic,
	// whatever the input.
	CanAttempt(html string) bool

	// Extract performs the real parse. It never panics and never returns
	// a partial record: any internal parse problem comes back as a
	// diagnostic error, which the dispatcher logs and counts as a failure.
	Extract(html string, cookies map[string]string) (*stream.Record, error)
}

// Strategies returns the full strategy set in ascending priority order.
func Strategies() []Strategy {
	return []Strategy{
		&DirectURLStrategy{},
		&WrappedStateStrategy{},
		&LegacyStateStrategy{},
	}
}
