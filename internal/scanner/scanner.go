package scanner

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"LevelSentinel/internal/calculator"
	"LevelSentinel/internal/collector"
	"LevelSentinel/internal/metrics"
	"LevelSentinel/internal/model"
	"LevelSentinel/internal/notifier"
	"LevelSentinel/internal/recorder"
	"LevelSentinel/internal/strategy"
	"LevelSentinel/internal/tracker"
)

// CandleResolver yields a candle window and the source that produced it.
type CandleResolver interface {
	Resolve(ctx context.Context, pair string, minutes int) (collector.Resolution, error)
}

// Settings are the tunables of one scan.
type Settings struct {
	AlertMargin  float64
	ResetMargin  float64
	RecencyLimit int
	PairDelay    time.Duration
}

// Scanner runs scan cycles. It owns the alert latches and pair health; a
// cycle is strictly sequential, one pair and one timeframe at a time.
type Scanner struct {
	resolver CandleResolver
	alerts   *tracker.AlertTracker
	pauses   *tracker.PauseTracker
	notifier notifier.Notifier
	recorder recorder.Recorder
	metrics  *metrics.Metrics
	settings Settings
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithRecorder journals alerts, pauses and cycles.
func WithRecorder(r recorder.Recorder) Option {
	return func(s *Scanner) { s.recorder = r }
}

// WithMetrics reports cycle, alert and pause counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scanner) { s.metrics = m }
}

// WithClock replaces time.Now for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) { s.now = now }
}

// New creates a Scanner.
func New(resolver CandleResolver, alerts *tracker.AlertTracker, pauses *tracker.PauseTracker,
	n notifier.Notifier, settings Settings, logger *zap.Logger, opts ...Option) *Scanner {
	s := &Scanner{
		resolver: resolver,
		alerts:   alerts,
		pauses:   pauses,
		notifier: n,
		recorder: recorder.NewNoopRecorder(),
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Alerts exposes the latch state for status reporting.
func (s *Scanner) Alerts() *tracker.AlertTracker { return s.alerts }

// Pauses exposes pair health for status reporting.
func (s *Scanner) Pauses() *tracker.PauseTracker { return s.pauses }

// RunCycle scans every pair over every timeframe. One pair's failure never
// stops the others; a cancelled ctx ends the cycle after the current pair.
func (s *Scanner) RunCycle(ctx context.Context, pairs []string, timeframes []model.Timeframe) CycleReport {
	report := CycleReport{Started: s.now()}
	start := time.Now()

	scannedBefore := false
	for _, pair := range pairs {
		if ctx.Err() != nil {
			break
		}
		if scannedBefore && s.pauses.Active(pair) {
			if !sleep(ctx, s.settings.PairDelay) {
				break
			}
		}

		pr := s.AnalyzePair(ctx, pair, timeframes)
		report.Pairs = append(report.Pairs, pr)
		if !pr.Skipped {
			scannedBefore = true
		}
	}

	report.Duration = time.Since(start)
	scanned, skipped, failed := report.Counts()
	alerts := report.Alerts()

	if s.metrics != nil {
		s.metrics.ObserveCycle(report.Duration, len(s.pauses.PausedPairs()))
	}
	if err := s.recorder.RecordCycle(&recorder.CycleRecord{
		StartedAt: report.Started,
		Duration:  report.Duration,
		Scanned:   scanned,
		Skipped:   skipped,
		Failed:    failed,
		Alerts:    alerts,
	}); err != nil {
		s.logger.Error("record cycle", zap.Error(err))
	}

	s.logger.Info("cycle complete",
		zap.Duration("duration", report.Duration),
		zap.Int("scanned", scanned),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
		zap.Int("alerts", alerts))
	return report
}

// AnalyzePair scans one pair over all timeframes and updates its health.
// A paused pair is skipped entirely: no source calls, no failure accounting.
func (s *Scanner) AnalyzePair(ctx context.Context, pair string, timeframes []model.Timeframe) PairReport {
	pr := PairReport{Pair: pair}
	if !s.pauses.Active(pair) {
		pr.Skipped = true
		pr.PausedUntil = s.pauses.Health(pair).PausedUntil
		s.logger.Debug("pair paused, skipping",
			zap.String("pair", pair),
			zap.Time("until", pr.PausedUntil))
		return pr
	}

	for _, tf := range timeframes {
		if ctx.Err() != nil {
			break
		}
		tr := s.analyzeTimeframe(ctx, pair, tf)
		if tr.Err == nil {
			pr.Success = true
		}
		pr.Timeframes = append(pr.Timeframes, tr)
	}

	// An interrupted pair says nothing about its sources.
	if ctx.Err() != nil {
		return pr
	}

	until, paused := s.pauses.RecordOutcome(pair, pr.Success)
	if paused {
		pr.Paused = true
		pr.PausedUntil = until
		s.onPause(ctx, pair, until)
	}
	return pr
}

func (s *Scanner) analyzeTimeframe(ctx context.Context, pair string, tf model.Timeframe) TimeframeReport {
	tr := TimeframeReport{Timeframe: tf}

	res, err := s.resolver.Resolve(ctx, pair, tf.Minutes)
	if err != nil {
		tr.Err = err
		s.logger.Warn("no candles",
			zap.String("pair", pair),
			zap.String("timeframe", tf.String()),
			zap.Error(err))
		return tr
	}
	tr.Source = res.Source

	levels, ok := calculator.Levels(res.Candles, s.settings.RecencyLimit)
	price, hasPrice := model.LastClose(res.Candles)
	if !ok || !hasPrice || !finite(price, levels.Support, levels.Resistance) {
		tr.Err = collector.ErrNoData
		return tr
	}
	tr.Levels = levels
	tr.Price = price
	tr.Touch = calculator.Detect(price, levels, s.settings.AlertMargin)

	var (
		ind  *model.Indicators
		bias model.Bias
	)
	for _, kind := range []model.LevelKind{model.Support, model.Resistance} {
		key := tracker.AlertKey{Pair: pair, Timeframe: tf.String(), Kind: kind}
		distance := tr.Touch.Distance(kind)
		if !s.alerts.ShouldAlert(key, distance, s.settings.AlertMargin, s.settings.ResetMargin) {
			continue
		}
		if ind == nil {
			snap := calculator.Snapshot(res.Candles)
			ind = &snap
			bias = strategy.Evaluate(price, snap)
		}
		evt := model.TouchEvent{
			ID:         uuid.NewString(),
			Pair:       pair,
			Timeframe:  tf.String(),
			Kind:       kind,
			Price:      price,
			Level:      levels.Level(kind),
			Distance:   distance,
			Levels:     levels,
			Source:     res.Source,
			Indicators: *ind,
			Bias:       bias,
			At:         s.now(),
		}
		tr.Events = append(tr.Events, evt)
		s.emit(ctx, evt)
	}

	s.logger.Debug("timeframe scanned",
		zap.String("pair", pair),
		zap.String("timeframe", tf.String()),
		zap.String("source", res.Source),
		zap.Time("last_candle", res.Candles[len(res.Candles)-1].OpenTime()),
		zap.Float64("price", price),
		zap.Float64("support", levels.Support),
		zap.Float64("resistance", levels.Resistance))
	return tr
}

func (s *Scanner) emit(ctx context.Context, evt model.TouchEvent) {
	s.logger.Info("level touched",
		zap.String("id", evt.ID),
		zap.String("pair", evt.Pair),
		zap.String("timeframe", evt.Timeframe),
		zap.String("kind", string(evt.Kind)),
		zap.Float64("price", evt.Price),
		zap.Float64("level", evt.Level),
		zap.String("source", evt.Source))

	if s.metrics != nil {
		s.metrics.AlertsTotal.WithLabelValues(evt.Timeframe, string(evt.Kind)).Inc()
	}
	s.send(ctx, notifier.FormatTouchAlert(evt))
	if err := s.recorder.RecordAlert(&evt); err != nil {
		s.logger.Error("record alert", zap.String("id", evt.ID), zap.Error(err))
	}
}

func (s *Scanner) onPause(ctx context.Context, pair string, until time.Time) {
	evt := model.PauseEvent{
		Pair:     pair,
		Failures: s.pauses.Threshold(),
		Until:    until,
		At:       s.now(),
	}
	s.logger.Warn("pair paused",
		zap.String("pair", pair),
		zap.Int("failures", evt.Failures),
		zap.Time("until", until))

	if s.metrics != nil {
		s.metrics.PairPauses.Inc()
	}
	s.send(ctx, notifier.FormatPause(evt))
	if err := s.recorder.RecordPause(&evt); err != nil {
		s.logger.Error("record pause", zap.String("pair", pair), zap.Error(err))
	}
}

// send delivers once. Failures are logged and counted, never retried here.
func (s *Scanner) send(ctx context.Context, text string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, notifier.Text(text)); err != nil {
		if s.metrics != nil {
			s.metrics.NotifyFailures.Inc()
		}
		level := s.logger.Error
		if errors.Is(err, context.Canceled) {
			level = s.logger.Warn
		}
		level("send notification", zap.Error(err))
	}
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
