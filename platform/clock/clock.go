// Package clock provides an injectable time source so services that depend on
// wall-clock time (date heuristics, auto-close sweeps) stay deterministic in tests.
// This is part of the platform layer and contains no business logic.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// System is a Clock backed by time.Now.
type System struct{}

// Now returns the current wall-clock time in UTC.
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fixed is a Clock frozen at a single instant, for tests.
type Fixed struct {
	Instant time.Time
}

// Now returns the frozen instant.
func (f Fixed) Now() time.Time {
	return f.Instant
}

// At creates a Fixed clock frozen at the given instant.
func At(t time.Time) Fixed {
	return Fixed{Instant: t}
}
