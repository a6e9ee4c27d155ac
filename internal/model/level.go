package model

import "time"

// LevelKind identifies which side of the range a level sits on.
type LevelKind string

const (
	Support    LevelKind = "SUPPORT"
	Resistance LevelKind = "RESISTANCE"
)

// Levels is the support/resistance pair derived from a candle window.
type Levels struct {
	Support    float64
	Resistance float64
}

// Level returns the price of the given kind.
func (l Levels) Level(kind LevelKind) float64 {
	if kind == Support {
		return l.Support
	}
	return l.Resistance
}

// Touch is the outcome of comparing a price against both levels.
// A distance of +Inf means the level was degenerate (zero or negative).
type Touch struct {
	TouchingSupport      bool
	TouchingResistance   bool
	DistanceToSupport    float64
	DistanceToResistance float64
}

// Distance returns the distance ratio for the given kind.
func (t Touch) Distance(kind LevelKind) float64 {
	if kind == Support {
		return t.DistanceToSupport
	}
	return t.DistanceToResistance
}

// Touching reports whether the given kind is being touched.
func (t Touch) Touching(kind LevelKind) bool {
	if kind == Support {
		return t.TouchingSupport
	}
	return t.TouchingResistance
}

// Indicators holds optional context computed from closes. Zero means
// unavailable, except for MACD which can be zero or negative and carries HasMACD.
type Indicators struct {
	EMA20      float64
	EMA50      float64
	RSI14      float64
	MACD       float64
	MACDSignal float64
	HasMACD    bool
}

// TouchEvent is emitted when price latches onto a level.
type TouchEvent struct {
	ID         string
	Pair       string
	Timeframe  string
	Kind       LevelKind
	Price      float64
	Level      float64
	Distance   float64
	Levels     Levels
	Source     string
	Indicators Indicators
	Bias       Bias
	At         time.Time
}

// PauseEvent is emitted when a pair enters its cooldown.
type PauseEvent struct {
	Pair     string
	Failures int
	Until    time.Time
	At       time.Time
}
