package tracker

import (
	"sort"
	"sync"

	"LevelSentinel/internal/calculator"
	"LevelSentinel/internal/model"
)

// AlertKey identifies one latch.
type AlertKey struct {
	Pair      string
	Timeframe string
	Kind      model.LevelKind
}

// AlertTracker latches a level once it alerts and keeps it silent until price
// moves beyond the reset margin. State lives only for the process lifetime.
type AlertTracker struct {
	mu      sync.Mutex
	latched map[AlertKey]bool
}

// NewAlertTracker creates an empty tracker; every key starts idle.
func NewAlertTracker() *AlertTracker {
	return &AlertTracker{latched: make(map[AlertKey]bool)}
}

// ShouldAlert applies one observation and reports whether it fires an alert.
//
//	idle    + distance <= alertMargin              -> latched, alert
//	latched + distance >  resetMargin              -> idle, silent
//	latched + alertMargin < distance <= resetMargin -> latched, silent
func (t *AlertTracker) ShouldAlert(key AlertKey, distance, alertMargin, resetMargin float64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.latched[key] {
		if distance > resetMargin {
			delete(t.latched, key)
		}
		return false
	}
	if calculator.Within(distance, alertMargin) {
		t.latched[key] = true
		return true
	}
	return false
}

// Record latches key without evaluating a distance. The scan loop drives
// latches only through ShouldAlert; Record and Clear set state directly.
func (t *AlertTracker) Record(key AlertKey) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.latched[key] = true
}

// Clear returns key to idle, so the next touch alerts again.
func (t *AlertTracker) Clear(key AlertKey) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.latched, key)
}

// Latched reports whether key is currently suppressing alerts.
func (t *AlertTracker) Latched(key AlertKey) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latched[key]
}

// Snapshot returns the latched keys in a stable order.
func (t *AlertTracker) Snapshot() []AlertKey {
	t.mu.Lock()
	keys := make([]AlertKey, 0, len(t.latched))
	for k := range t.latched {
		keys = append(keys, k)
	}
	t.mu.Unlock()

	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Pair != b.Pair {
			return a.Pair < b.Pair
		}
		if a.Timeframe != b.Timeframe {
			return a.Timeframe < b.Timeframe
		}
		return a.Kind < b.Kind
	})
	return keys
}
