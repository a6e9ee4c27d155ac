package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"LevelSentinel/internal/model"
)

func TestDetect_Boundary(t *testing.T) {
	tests := []struct {
		price float64
		want  bool
	}{
		{98, true},
		{97.9, false},
		{100, true},
		{102, true},
		{102.1, false},
	}
	lv := model.Levels{Support: 100, Resistance: 1000}
	for _, tt := range tests {
		got := Detect(tt.price, lv, 0.02)
		assert.Equal(t, tt.want, got.TouchingSupport, "price %.2f", tt.price)
		assert.False(t, got.TouchingResistance)
	}
}

func TestDetect_ZeroLevel(t *testing.T) {
	got := Detect(10, model.Levels{Support: 0, Resistance: 0}, 1)
	assert.False(t, got.TouchingSupport)
	assert.False(t, got.TouchingResistance)
	assert.True(t, math.IsInf(got.DistanceToSupport, 1))
	assert.True(t, math.IsInf(got.DistanceToResistance, 1))

	got = Detect(0, model.Levels{Support: 0, Resistance: 5}, 1)
	assert.False(t, got.TouchingSupport)
	assert.True(t, got.TouchingResistance)
}

func TestDetect_BothLevels(t *testing.T) {
	got := Detect(100, model.Levels{Support: 99.9, Resistance: 100.1}, 0.005)
	assert.True(t, got.TouchingSupport)
	assert.True(t, got.TouchingResistance)
}

func TestDistance(t *testing.T) {
	assert.InDelta(t, 0.021, Distance(97.9, 100), 1e-9)
	assert.InDelta(t, 0.05, Distance(105, 100), 1e-9)
	assert.True(t, math.IsInf(Distance(1, -5), 1))
	assert.True(t, math.IsInf(Distance(math.NaN(), 5), 1))
	assert.False(t, Within(math.Inf(1), math.Inf(1)))
}
