package calculator

import (
	"math"

	"LevelSentinel/internal/model"
)

// Levels reduces the candle window to support (lowest low) and resistance (highest high).
// A positive recency restricts the scan to the most recent candles.
// The second return is false when there is nothing to scan.
func Levels(candles []model.Candle, recency int) (model.Levels, bool) {
	n := len(candles)
	start := 0
	if recency > 0 && n > recency {
		start = n - recency
	}
	if n-start == 0 {
		return model.Levels{}, false
	}

	high := math.Inf(-1)
	low := math.Inf(1)
	for i := start; i < n; i++ {
		if candles[i].High > high {
			high = candles[i].High
		}
		if candles[i].Low < low {
			low = candles[i].Low
		}
	}
	return model.Levels{Support: low, Resistance: high}, true
}
