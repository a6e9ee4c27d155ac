package calculator

import (
	"math"

	"LevelSentinel/internal/model"
)

// tolerance absorbs float noise at the exact margin boundary.
const tolerance = 1e-12

// Distance returns |price-level|/level, or +Inf when the level is not positive.
func Distance(price, level float64) float64 {
	if level <= 0 || math.IsNaN(level) || math.IsNaN(price) {
		return math.Inf(1)
	}
	return math.Abs(price-level) / level
}

// Within reports whether a distance is inside the margin.
func Within(distance, margin float64) bool {
	if math.IsInf(distance, 1) {
		return false
	}
	return distance <= margin+tolerance
}

// Detect classifies price against both levels. Both flags may be set at once
// when support and resistance are close together.
func Detect(price float64, levels model.Levels, margin float64) model.Touch {
	ds := Distance(price, levels.Support)
	dr := Distance(price, levels.Resistance)
	return model.Touch{
		TouchingSupport:      Within(ds, margin),
		TouchingResistance:   Within(dr, margin),
		DistanceToSupport:    ds,
		DistanceToResistance: dr,
	}
}
