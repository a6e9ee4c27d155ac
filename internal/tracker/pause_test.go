package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestPauseTracker_Lifecycle(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	tr := NewPauseTracker(3, 1800*time.Second, WithClock(clock.Now))
	const pair = "BTC/USDT"

	require.True(t, tr.Active(pair))
	for i := 0; i < 2; i++ {
		_, paused := tr.RecordOutcome(pair, false)
		assert.False(t, paused)
	}
	assert.Equal(t, 2, tr.Health(pair).ConsecutiveFailures)

	until, paused := tr.RecordOutcome(pair, false)
	require.True(t, paused)
	assert.Equal(t, clock.t.Add(1800*time.Second), until)
	assert.Equal(t, 0, tr.Health(pair).ConsecutiveFailures)
	assert.False(t, tr.Active(pair))
	assert.Equal(t, []string{pair}, tr.PausedPairs())

	clock.Advance(1000 * time.Second)
	assert.False(t, tr.Active(pair))

	clock.Advance(800 * time.Second)
	assert.True(t, tr.Active(pair))
	assert.True(t, tr.Health(pair).PausedUntil.IsZero())
	assert.Empty(t, tr.PausedPairs())
}

func TestPauseTracker_SuccessResetsCounter(t *testing.T) {
	tr := NewPauseTracker(3, time.Minute)
	const pair = "ETH/USDT"

	tr.RecordOutcome(pair, false)
	tr.RecordOutcome(pair, false)
	tr.RecordOutcome(pair, true)
	assert.Equal(t, 0, tr.Health(pair).ConsecutiveFailures)

	_, paused := tr.RecordOutcome(pair, false)
	assert.False(t, paused)
	_, paused = tr.RecordOutcome(pair, false)
	assert.False(t, paused)
	assert.True(t, tr.Active(pair))
}

func TestPauseTracker_PairsIndependent(t *testing.T) {
	tr := NewPauseTracker(1, time.Hour)
	_, paused := tr.RecordOutcome("A/B", false)
	assert.True(t, paused)
	assert.False(t, tr.Active("A/B"))
	assert.True(t, tr.Active("C/D"))
	assert.Len(t, tr.Paused(), 1)
}

func TestPauseTracker_Defaults(t *testing.T) {
	tr := NewPauseTracker(0, 0)
	assert.Equal(t, DefaultFailureThreshold, tr.Threshold())
	assert.Equal(t, DefaultPauseDuration, tr.cooldown)
}
