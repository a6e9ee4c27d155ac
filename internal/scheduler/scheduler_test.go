package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"LevelSentinel/internal/collector"
	"LevelSentinel/internal/metrics"
	"LevelSentinel/internal/model"
	"LevelSentinel/internal/notifier"
	"LevelSentinel/internal/scanner"
	"LevelSentinel/internal/tracker"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (n *recordingNotifier) Send(_ context.Context, msg notifier.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg.Text)
	return nil
}

func (n *recordingNotifier) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return ""
	}
	return n.sent[len(n.sent)-1]
}

func newScheduler(t *testing.T, sources ...collector.Source) (*Scheduler, *recordingNotifier) {
	t.Helper()
	n := &recordingNotifier{}
	resolver := collector.NewResolver(sources, zap.NewNop())
	sc := scanner.New(resolver, tracker.NewAlertTracker(), tracker.NewPauseTracker(1, time.Hour), n,
		scanner.Settings{AlertMargin: 0.02, ResetMargin: 0.03}, zap.NewNop())
	plan := Plan{
		Pairs:      []string{"BTC/USDT"},
		Timeframes: []model.Timeframe{{Label: "1h", Minutes: 60}},
		Interval:   10 * time.Millisecond,
	}
	return NewScheduler(context.Background(), sc, n, metrics.NewHealthStatus([]string{"mock"}), plan, zap.NewNop()), n
}

// touching closes on its own support, so every first scan alerts.
var touching = []model.Candle{
	{Time: 1700000000, Open: 110, High: 120, Low: 100, Close: 110},
	{Time: 1700003600, Open: 110, High: 110, Low: 100.5, Close: 100.5},
}

func TestRunOnce_FoldsIntoSummary(t *testing.T) {
	s, _ := newScheduler(t, &collector.MockSource{Candles: touching})

	report := s.RunOnce(context.Background())
	assert.Equal(t, 1, report.Alerts())
	s.RunOnce(context.Background())

	now := time.Now()
	sum := s.Summary(now)
	assert.Equal(t, 2, sum.Cycles)
	assert.Equal(t, 1, sum.Alerts, "latched level alerts once")
	assert.Equal(t, 0, sum.FailedScans)
	assert.Equal(t, now, sum.Until)

	next := s.Summary(now.Add(time.Hour))
	assert.Equal(t, 0, next.Cycles)
	assert.Equal(t, now, next.Since)
}

func TestRunOnce_CountsPauses(t *testing.T) {
	s, n := newScheduler(t, &collector.MockSource{Err: errors.New("down")})

	s.RunOnce(context.Background())
	sum := s.Summary(time.Now())
	assert.Equal(t, 1, sum.FailedScans)
	assert.Equal(t, 1, sum.Pauses)
	assert.Equal(t, []string{"BTC/USDT"}, sum.Paused)
	assert.Contains(t, n.Last(), "BTC/USDT paused")
}

func TestRun_StopsOnCancel(t *testing.T) {
	src := &collector.MockSource{Candles: touching}
	s, _ := newScheduler(t, src)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return src.Calls() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestHandleCommand(t *testing.T) {
	s, _ := newScheduler(t, &collector.MockSource{Candles: touching})
	s.RunOnce(context.Background())

	status := s.HandleCommand("/status@LevelSentinelBot")
	assert.Contains(t, status, "Cycles: 1")
	assert.Contains(t, status, "BTC/USDT 1h SUPPORT")

	assert.Contains(t, s.HandleCommand("/pairs"), "BTC/USDT")
	assert.Contains(t, s.HandleCommand("/pairs"), "1h")
	assert.Contains(t, s.HandleCommand("hello"), "/status")
}

func TestRegisterAll(t *testing.T) {
	s, _ := newScheduler(t, &collector.MockSource{Candles: touching})
	require.NoError(t, s.RegisterAll("@every 1m", "0 0 8 * * *"))
	assert.Len(t, s.Cron.Entries(), 2)

	assert.Error(t, s.RegisterAll("not a cron", "0 0 8 * * *"))
}

func TestDailySummary_Sends(t *testing.T) {
	s, n := newScheduler(t, &collector.MockSource{Candles: touching})
	s.RunOnce(context.Background())
	s.dailySummary()
	assert.Contains(t, n.Last(), "Daily summary")
	assert.Contains(t, n.Last(), "Cycles: 1")
}
