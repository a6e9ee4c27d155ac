package tracker

import (
	"sort"
	"sync"
	"time"

	"LevelSentinel/internal/model"
)

// Defaults for the pause policy.
const (
	DefaultFailureThreshold = 3
	DefaultPauseDuration    = 30 * time.Minute
)

// PauseTracker counts consecutive failed scans per pair and pauses a pair
// for a cooldown once the threshold is reached. Expiry is checked lazily.
type PauseTracker struct {
	mu        sync.Mutex
	pairs     map[string]*model.PairHealth
	threshold int
	cooldown  time.Duration
	now       func() time.Time
}

// PauseOption configures a PauseTracker.
type PauseOption func(*PauseTracker)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) PauseOption {
	return func(t *PauseTracker) { t.now = now }
}

// NewPauseTracker creates a tracker. Non-positive arguments fall back to defaults.
func NewPauseTracker(threshold int, cooldown time.Duration, opts ...PauseOption) *PauseTracker {
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}
	if cooldown <= 0 {
		cooldown = DefaultPauseDuration
	}
	t := &PauseTracker{
		pairs:     make(map[string]*model.PairHealth),
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Active reports whether pair may be scanned now. An elapsed pause is cleared here.
func (t *PauseTracker) Active(pair string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, ok := t.pairs[pair]
	if !ok {
		return true
	}
	if !h.Active(t.now()) {
		return false
	}
	h.PausedUntil = time.Time{}
	return true
}

// RecordOutcome applies the overall result of one scan of pair. It returns
// the pause deadline and true only on the transition into the paused state.
func (t *PauseTracker) RecordOutcome(pair string, success bool) (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h := t.health(pair)
	if success {
		h.ConsecutiveFailures = 0
		return time.Time{}, false
	}
	h.ConsecutiveFailures++
	if h.ConsecutiveFailures < t.threshold {
		return time.Time{}, false
	}
	h.ConsecutiveFailures = 0
	h.PausedUntil = t.now().Add(t.cooldown)
	return h.PausedUntil, true
}

// Health returns a copy of the pair's state.
func (t *PauseTracker) Health(pair string) model.PairHealth {
	t.mu.Lock()
	defer t.mu.Unlock()
	if h, ok := t.pairs[pair]; ok {
		return *h
	}
	return model.PairHealth{}
}

// Paused returns paused pairs and their deadlines.
func (t *PauseTracker) Paused() map[string]time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	out := make(map[string]time.Time)
	for pair, h := range t.pairs {
		if !h.Active(now) {
			out[pair] = h.PausedUntil
		}
	}
	return out
}

// PausedPairs returns the names of currently paused pairs in order.
func (t *PauseTracker) PausedPairs() []string {
	paused := t.Paused()
	names := make([]string, 0, len(paused))
	for p := range paused {
		names = append(names, p)
	}
	sort.Strings(names)
	return names
}

// Threshold returns the configured failure threshold.
func (t *PauseTracker) Threshold() int { return t.threshold }

func (t *PauseTracker) health(pair string) *model.PairHealth {
	h, ok := t.pairs[pair]
	if !ok {
		h = &model.PairHealth{}
		t.pairs[pair] = h
	}
	return h
}
