package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"LevelSentinel/internal/collector"
	"LevelSentinel/internal/config"
	"LevelSentinel/internal/logger"
	"LevelSentinel/internal/metrics"
	"LevelSentinel/internal/notifier"
	"LevelSentinel/internal/recorder"
	"LevelSentinel/internal/scanner"
	"LevelSentinel/internal/scheduler"
	"LevelSentinel/internal/tracker"
)

func main() {
	// A missing .env is normal in containers.
	_ = godotenv.Load()

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Encoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("config validation", zap.Error(err))
	}
	log.Info("LevelSentinel starting",
		zap.Strings("pairs", cfg.Pairs),
		zap.Strings("sources", cfg.Sources))

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Sources in priority order
	sources, err := collector.NewSources(cfg.Sources, cfg.Proxy)
	if err != nil {
		log.Fatal("init sources", zap.Error(err))
	}
	resolver := collector.NewResolver(sources, log,
		collector.WithCandleLimit(cfg.Scan.CandleLimit),
		collector.WithRequestTimeout(cfg.RequestTimeout()),
		collector.WithObserver(m.ObserveAttempt))

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn("init sqlite recorder failed, using noop", zap.Error(err))
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	sc := scanner.New(resolver,
		tracker.NewAlertTracker(),
		tracker.NewPauseTracker(cfg.Pause.FailureThreshold, cfg.PauseDuration()),
		tn,
		scanner.Settings{
			AlertMargin:  cfg.Alert.Margin,
			ResetMargin:  cfg.Alert.ResetMargin,
			RecencyLimit: cfg.Alert.RecencyLimit,
			PairDelay:    cfg.PairDelay(),
		},
		log,
		scanner.WithRecorder(rec),
		scanner.WithMetrics(m))

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	health := metrics.NewHealthStatus(resolver.Sources())
	plan := scheduler.Plan{
		Pairs:      cfg.Pairs,
		Timeframes: cfg.Timeframes,
		Interval:   cfg.CycleInterval(),
	}
	sched := scheduler.NewScheduler(ctx, sc, tn, health, plan, log)

	// One cycle and exit, for cron-driven deployments.
	if os.Getenv("RUN_ONCE") == "true" {
		report := sched.RunOnce(ctx)
		log.Info("single cycle finished", zap.Int("alerts", report.Alerts()))
		return
	}

	srv := metrics.NewServer(cfg.Metrics.Addr, reg, health, log)
	srv.Start()

	if err := sched.RegisterAll(cfg.Schedule.HeartbeatCron, cfg.Schedule.SummaryCron); err != nil {
		log.Fatal("register cron tasks", zap.Error(err))
	}
	sched.Start()

	labels := make([]string, len(cfg.Timeframes))
	for i, tf := range cfg.Timeframes {
		labels[i] = tf.String()
	}
	startup := notifier.FormatStartup(cfg.Pairs, labels, resolver.Sources())
	if err := tn.SendWithRetry(ctx, notifier.Text(startup), 3); err != nil {
		log.Error("send startup message", zap.Error(err))
	}

	// Start Telegram polling
	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Info("telegram polling started")

	log.Info("LevelSentinel is running",
		zap.String("timeframes", strings.Join(labels, ",")),
		zap.Duration("interval", cfg.CycleInterval()))
	sched.Run(ctx)

	log.Info("shutdown signal received, stopping")
	sched.Stop()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Warn("metrics server shutdown", zap.Error(err))
	}
	log.Info("LevelSentinel stopped")
}
