package tracker

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"LevelSentinel/internal/model"
)

func TestShouldAlert_Hysteresis(t *testing.T) {
	tr := NewAlertTracker()
	key := AlertKey{Pair: "BTC/USDT", Timeframe: "1h", Kind: model.Support}

	distances := []float64{0.002, 0.005, 0.015, 0.002}
	want := []bool{true, false, false, true}

	alerts := 0
	for i, d := range distances {
		got := tr.ShouldAlert(key, d, 0.003, 0.01)
		assert.Equal(t, want[i], got, "step %d distance %.3f", i, d)
		if got {
			alerts++
		}
	}
	assert.Equal(t, 2, alerts)
}

func TestShouldAlert_StaysLatchedInBand(t *testing.T) {
	tr := NewAlertTracker()
	key := AlertKey{Pair: "ETH/USDT", Timeframe: "4h", Kind: model.Resistance}

	assert.True(t, tr.ShouldAlert(key, 0.001, 0.003, 0.01))
	for i := 0; i < 5; i++ {
		assert.False(t, tr.ShouldAlert(key, 0.001, 0.003, 0.01))
		assert.False(t, tr.ShouldAlert(key, 0.01, 0.003, 0.01))
	}
	assert.True(t, tr.Latched(key))

	assert.False(t, tr.ShouldAlert(key, 0.0100001, 0.003, 0.01))
	assert.False(t, tr.Latched(key))
}

func TestShouldAlert_IdleOutsideMargin(t *testing.T) {
	tr := NewAlertTracker()
	key := AlertKey{Pair: "BTC/USDT", Timeframe: "1d", Kind: model.Support}
	assert.False(t, tr.ShouldAlert(key, 0.005, 0.003, 0.01))
	assert.False(t, tr.Latched(key))
	assert.False(t, tr.ShouldAlert(key, math.Inf(1), 0.003, 0.01))
}

func TestShouldAlert_DegenerateDistanceResets(t *testing.T) {
	tr := NewAlertTracker()
	key := AlertKey{Pair: "BTC/USDT", Timeframe: "1d", Kind: model.Support}
	tr.Record(key)
	assert.False(t, tr.ShouldAlert(key, math.Inf(1), 0.003, 0.01))
	assert.False(t, tr.Latched(key))
}

func TestAlertTracker_KeysIndependent(t *testing.T) {
	tr := NewAlertTracker()
	sup := AlertKey{Pair: "BTC/USDT", Timeframe: "1h", Kind: model.Support}
	res := AlertKey{Pair: "BTC/USDT", Timeframe: "1h", Kind: model.Resistance}
	other := AlertKey{Pair: "BTC/USDT", Timeframe: "4h", Kind: model.Support}

	assert.True(t, tr.ShouldAlert(sup, 0, 0.01, 0.02))
	assert.True(t, tr.ShouldAlert(res, 0, 0.01, 0.02))
	assert.True(t, tr.ShouldAlert(other, 0, 0.01, 0.02))
	assert.Equal(t, []AlertKey{res, sup, other}, tr.Snapshot())

	tr.Clear(res)
	assert.False(t, tr.Latched(res))
	assert.True(t, tr.Latched(sup))
	assert.Len(t, tr.Snapshot(), 2)
}

func TestRecordAndClear_DriveShouldAlert(t *testing.T) {
	tr := NewAlertTracker()
	key := AlertKey{Pair: "ETH/USDT", Timeframe: "4h", Kind: model.Resistance}

	tr.Record(key)
	assert.False(t, tr.ShouldAlert(key, 0.001, 0.003, 0.01), "recorded key stays silent on a touch")
	assert.True(t, tr.Latched(key))

	tr.Clear(key)
	assert.True(t, tr.ShouldAlert(key, 0.001, 0.003, 0.01), "cleared key alerts on the next touch")
}
