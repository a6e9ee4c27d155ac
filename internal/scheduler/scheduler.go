package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"LevelSentinel/internal/metrics"
	"LevelSentinel/internal/model"
	"LevelSentinel/internal/notifier"
	"LevelSentinel/internal/scanner"
)

// Plan is what gets scanned and how often.
type Plan struct {
	Pairs      []string
	Timeframes []model.Timeframe
	Interval   time.Duration
}

// Scheduler drives scan cycles on a fixed period and runs the cron jobs
// around them (heartbeat, daily summary).
type Scheduler struct {
	Cron     *cron.Cron
	Scanner  *scanner.Scanner
	Notifier notifier.Notifier
	Health   *metrics.HealthStatus
	Plan     Plan
	Ctx      context.Context
	logger   *zap.Logger

	mu        sync.Mutex
	cycles    int
	lastCycle time.Time
	window    notifier.Summary
}

// NewScheduler creates a new Scheduler. health may be nil.
func NewScheduler(ctx context.Context, sc *scanner.Scanner, n notifier.Notifier, health *metrics.HealthStatus,
	plan Plan, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Scanner:  sc,
		Notifier: n,
		Health:   health,
		Plan:     plan,
		Ctx:      ctx,
		logger:   logger,
		window:   notifier.Summary{Since: time.Now()},
	}
}

// RegisterAll registers the heartbeat and daily summary jobs.
func (s *Scheduler) RegisterAll(heartbeatCron, summaryCron string) error {
	if _, err := s.Cron.AddFunc(heartbeatCron, s.heartbeat); err != nil {
		return fmt.Errorf("register heartbeat: %w", err)
	}
	if _, err := s.Cron.AddFunc(summaryCron, s.dailySummary); err != nil {
		return fmt.Errorf("register daily summary: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// Run scans, waits the configured interval, and repeats until ctx is done.
// Cycles never overlap: the wait starts after the previous cycle completes.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		s.RunOnce(ctx)

		timer := time.NewTimer(s.Plan.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("scan loop stopped")
			return
		case <-timer.C:
		}
	}
}

// RunOnce executes a single cycle and folds it into the running counters.
func (s *Scheduler) RunOnce(ctx context.Context) scanner.CycleReport {
	report := s.Scanner.RunCycle(ctx, s.Plan.Pairs, s.Plan.Timeframes)
	_, _, failed := report.Counts()

	s.mu.Lock()
	s.cycles++
	s.lastCycle = report.Started
	s.window.Cycles++
	s.window.Alerts += report.Alerts()
	s.window.Pauses += report.Pauses()
	s.window.FailedScans += failed
	s.mu.Unlock()

	if s.Health != nil {
		s.Health.SetCycle(report.Started, s.Scanner.Pauses().PausedPairs())
	}
	return report
}

func (s *Scheduler) heartbeat() {
	s.mu.Lock()
	cycles, last := s.cycles, s.lastCycle
	s.mu.Unlock()

	s.logger.Info("heartbeat",
		zap.Int("cycles", cycles),
		zap.Time("last_cycle", last),
		zap.Strings("paused", s.Scanner.Pauses().PausedPairs()),
		zap.Int("latched", len(s.Scanner.Alerts().Snapshot())))
}

// Summary returns the activity since the last daily summary and starts a new window.
func (s *Scheduler) Summary(now time.Time) notifier.Summary {
	s.mu.Lock()
	sum := s.window
	s.window = notifier.Summary{Since: now}
	s.mu.Unlock()

	sum.Until = now
	sum.Paused = s.Scanner.Pauses().PausedPairs()
	return sum
}

func (s *Scheduler) dailySummary() {
	s.logger.Info("sending daily summary")
	s.trySend(notifier.FormatSummary(s.Summary(time.Now())))
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	// Commands in groups arrive as "/status@BotName".
	cmd := strings.TrimSpace(command)
	if i := strings.Index(cmd, "@"); i > 0 {
		cmd = cmd[:i]
	}

	switch strings.ToLower(cmd) {
	case "/status":
		return notifier.FormatStatus(s.status())
	case "/pairs":
		labels := make([]string, len(s.Plan.Timeframes))
		for i, tf := range s.Plan.Timeframes {
			labels[i] = tf.String()
		}
		return fmt.Sprintf("Pairs: %s\nTimeframes: %s",
			strings.Join(s.Plan.Pairs, ", "), strings.Join(labels, ", "))
	default:
		return "Available commands:\n• /status\n• /pairs\n• /help"
	}
}

func (s *Scheduler) status() notifier.Status {
	s.mu.Lock()
	st := notifier.Status{LastCycle: s.lastCycle, Cycles: s.cycles}
	s.mu.Unlock()

	st.Paused = s.Scanner.Pauses().Paused()
	for _, k := range s.Scanner.Alerts().Snapshot() {
		st.Latched = append(st.Latched, fmt.Sprintf("%s %s %s", k.Pair, k.Timeframe, k.Kind))
	}
	return st
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.Send(s.Ctx, notifier.Text(text)); err != nil {
		s.logger.Error("send notification", zap.Error(err))
	}
}
