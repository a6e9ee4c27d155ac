package scanner

import (
	"time"

	"LevelSentinel/internal/model"
)

// CycleReport describes one pass over every configured pair.
type CycleReport struct {
	Started  time.Time
	Duration time.Duration
	Pairs    []PairReport
}

// Alerts counts the touch events emitted during the cycle.
func (r CycleReport) Alerts() int {
	n := 0
	for _, p := range r.Pairs {
		for _, tf := range p.Timeframes {
			n += len(tf.Events)
		}
	}
	return n
}

// Counts returns how many pairs were scanned, skipped while paused, and
// failed on every timeframe.
func (r CycleReport) Counts() (scanned, skipped, failed int) {
	for _, p := range r.Pairs {
		switch {
		case p.Skipped:
			skipped++
		case !p.Success:
			scanned++
			failed++
		default:
			scanned++
		}
	}
	return scanned, skipped, failed
}

// Pauses counts pairs that entered their cooldown during the cycle.
func (r CycleReport) Pauses() int {
	n := 0
	for _, p := range r.Pairs {
		if p.Paused {
			n++
		}
	}
	return n
}

// PairReport is the outcome for one pair. Skipped pairs were paused and made
// no source calls. Paused is set when this cycle's failure started a cooldown.
type PairReport struct {
	Pair        string
	Skipped     bool
	Success     bool
	Paused      bool
	PausedUntil time.Time
	Timeframes  []TimeframeReport
}

// TimeframeReport is the outcome for one pair and timeframe.
type TimeframeReport struct {
	Timeframe model.Timeframe
	Source    string
	Levels    model.Levels
	Price     float64
	Touch     model.Touch
	Events    []model.TouchEvent
	Err       error
}
