package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"LevelSentinel/internal/collector"
	"LevelSentinel/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Sources    []string          `yaml:"sources"`
	Pairs      []string          `yaml:"pairs"`
	Timeframes []model.Timeframe `yaml:"timeframes"`
	Alert      struct {
		Margin       float64 `yaml:"margin"`
		ResetMargin  float64 `yaml:"reset_margin"`
		RecencyLimit int     `yaml:"recency_limit"`
	} `yaml:"alert"`
	Scan struct {
		CycleIntervalSeconds  int `yaml:"cycle_interval_seconds"`
		PairDelayMs           int `yaml:"pair_delay_ms"`
		CandleLimit           int `yaml:"candle_limit"`
		RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`
	} `yaml:"scan"`
	Pause struct {
		FailureThreshold int `yaml:"failure_threshold"`
		DurationSeconds  int `yaml:"duration_seconds"`
	} `yaml:"pause"`
	Schedule struct {
		HeartbeatCron string `yaml:"heartbeat_cron"`
		SummaryCron   string `yaml:"summary_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Logging struct {
		Level    string `yaml:"level"`
		Encoding string `yaml:"encoding"`
	} `yaml:"logging"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// Recency is -1 until set so an explicit 0 from YAML survives the defaults.
	cfg.Alert.RecencyLimit = -1

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return cfg, nil
}

func (c *Config) applyEnv() error {
	// Environment variable overrides
	if v := firstEnv("TELEGRAM_TOKEN", "TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("PAIRS"); v != "" {
		c.Pairs = splitList(v)
	}
	if v := os.Getenv("SOURCES"); v != "" {
		c.Sources = splitList(v)
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Metrics.Addr = ":" + v
	}
	if v := os.Getenv("ALERT_MARGIN"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("ALERT_MARGIN: %w", err)
		}
		c.Alert.Margin = f
	}
	if v := os.Getenv("RESET_MARGIN"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RESET_MARGIN: %w", err)
		}
		c.Alert.ResetMargin = f
	}
	if v := os.Getenv("RECENCY_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RECENCY_LIMIT: %w", err)
		}
		c.Alert.RecencyLimit = n
	}
	if v := os.Getenv("CYCLE_INTERVAL_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CYCLE_INTERVAL_SECONDS: %w", err)
		}
		c.Scan.CycleIntervalSeconds = n
	}
	return nil
}

func (c *Config) applyDefaults() {
	if len(c.Sources) == 0 {
		c.Sources = []string{"kraken", "coinbase", "kucoin"}
	}
	if len(c.Pairs) == 0 {
		c.Pairs = []string{"BTC/USDT", "ETH/USDT", "SOL/USDT"}
	}
	if len(c.Timeframes) == 0 {
		c.Timeframes = []model.Timeframe{
			{Label: "1h", Minutes: 60},
			{Label: "4h", Minutes: 240},
			{Label: "1d", Minutes: 1440},
		}
	}
	if c.Alert.Margin == 0 {
		c.Alert.Margin = 0.02
	}
	if c.Alert.ResetMargin == 0 {
		c.Alert.ResetMargin = 0.03
	}
	if c.Alert.RecencyLimit == -1 {
		c.Alert.RecencyLimit = 0
	}
	if c.Scan.CycleIntervalSeconds == 0 {
		c.Scan.CycleIntervalSeconds = 300
	}
	if c.Scan.PairDelayMs == 0 {
		c.Scan.PairDelayMs = 1000
	}
	if c.Scan.CandleLimit == 0 {
		c.Scan.CandleLimit = collector.DefaultCandleLimit
	}
	if c.Scan.RequestTimeoutSeconds == 0 {
		c.Scan.RequestTimeoutSeconds = 10
	}
	if c.Pause.FailureThreshold == 0 {
		c.Pause.FailureThreshold = 3
	}
	if c.Pause.DurationSeconds == 0 {
		c.Pause.DurationSeconds = 1800
	}
	if c.Schedule.HeartbeatCron == "" {
		c.Schedule.HeartbeatCron = "@every 1m"
	}
	if c.Schedule.SummaryCron == "" {
		c.Schedule.SummaryCron = "0 0 8 * * *"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/level_sentinel.db"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":10000"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Encoding == "" {
		c.Logging.Encoding = "json"
	}
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if len(c.Pairs) == 0 {
		return fmt.Errorf("pairs: at least one pair is required")
	}
	for _, p := range c.Pairs {
		if _, err := model.ParsePair(p); err != nil {
			return fmt.Errorf("pairs: %w", err)
		}
	}
	if len(c.Timeframes) == 0 {
		return fmt.Errorf("timeframes: at least one timeframe is required")
	}
	seen := make(map[string]bool, len(c.Timeframes))
	for _, tf := range c.Timeframes {
		if tf.Minutes <= 0 {
			return fmt.Errorf("timeframes: %s must have positive minutes", tf)
		}
		if seen[tf.String()] {
			return fmt.Errorf("timeframes: duplicate label %s", tf)
		}
		seen[tf.String()] = true
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("sources: at least one source is required")
	}
	for _, s := range c.Sources {
		if !collector.Known(s) {
			return fmt.Errorf("sources: unknown source %q", s)
		}
	}
	if c.Alert.Margin <= 0 {
		return fmt.Errorf("alert.margin must be positive")
	}
	if c.Alert.ResetMargin <= c.Alert.Margin {
		return fmt.Errorf("alert.reset_margin (%g) must exceed alert.margin (%g)", c.Alert.ResetMargin, c.Alert.Margin)
	}
	if c.Alert.RecencyLimit < 0 {
		return fmt.Errorf("alert.recency_limit must not be negative")
	}
	if c.Scan.CycleIntervalSeconds <= 0 || c.Scan.RequestTimeoutSeconds <= 0 || c.Scan.CandleLimit <= 0 {
		return fmt.Errorf("scan: interval, timeout and candle limit must be positive")
	}
	if c.Scan.PairDelayMs < 0 {
		return fmt.Errorf("scan.pair_delay_ms must not be negative")
	}
	if c.Pause.FailureThreshold < 1 {
		return fmt.Errorf("pause.failure_threshold must be at least 1")
	}
	if c.Pause.DurationSeconds <= 0 {
		return fmt.Errorf("pause.duration_seconds must be positive")
	}
	return nil
}

// CycleInterval returns the pause between cycles.
func (c *Config) CycleInterval() time.Duration {
	return time.Duration(c.Scan.CycleIntervalSeconds) * time.Second
}

// PairDelay returns the pause between pairs within a cycle.
func (c *Config) PairDelay() time.Duration {
	return time.Duration(c.Scan.PairDelayMs) * time.Millisecond
}

// RequestTimeout returns the per-source fetch timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Scan.RequestTimeoutSeconds) * time.Second
}

// PauseDuration returns the cooldown applied to a failing pair.
func (c *Config) PauseDuration() time.Duration {
	return time.Duration(c.Pause.DurationSeconds) * time.Second
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
