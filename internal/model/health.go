package model

import "time"

// PairHealth tracks consecutive full-cycle failures for one pair.
// A zero PausedUntil means the pair was never paused or has resumed.
type PairHealth struct {
	ConsecutiveFailures int
	PausedUntil         time.Time
}

// Active reports whether the pair may be scanned at now.
func (h PairHealth) Active(now time.Time) bool {
	return h.PausedUntil.IsZero() || !now.Before(h.PausedUntil)
}
