package notifier

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"LevelSentinel/internal/model"
)

// FormatPrice picks a precision that keeps small-priced assets readable.
func FormatPrice(p float64) string {
	switch a := math.Abs(p); {
	case a >= 100:
		return fmt.Sprintf("%.2f", p)
	case a >= 1:
		return fmt.Sprintf("%.4f", p)
	default:
		return fmt.Sprintf("%.8f", p)
	}
}

// FormatTouchAlert formats a level touch for the chat.
func FormatTouchAlert(evt model.TouchEvent) string {
	var b strings.Builder

	header := "🟢 <b>SUPPORT TOUCHED</b>"
	if evt.Kind == model.Resistance {
		header = "🔴 <b>RESISTANCE TOUCHED</b>"
	}
	b.WriteString(header + "\n")
	b.WriteString(fmt.Sprintf("⏱ %s\n", evt.Timeframe))
	b.WriteString(fmt.Sprintf("📊 %s\n", evt.Pair))
	b.WriteString(fmt.Sprintf("💰 Price: %s\n", FormatPrice(evt.Price)))
	b.WriteString(fmt.Sprintf("💎 Support: %s\n", FormatPrice(evt.Levels.Support)))
	b.WriteString(fmt.Sprintf("📈 Resistance: %s\n", FormatPrice(evt.Levels.Resistance)))
	b.WriteString(fmt.Sprintf("📏 Distance: %.2f%%\n", evt.Distance*100))

	ind := evt.Indicators
	var extras []string
	if ind.EMA20 > 0 {
		extras = append(extras, "EMA20 "+FormatPrice(ind.EMA20))
	}
	if ind.EMA50 > 0 {
		extras = append(extras, "EMA50 "+FormatPrice(ind.EMA50))
	}
	if ind.RSI14 > 0 {
		extras = append(extras, fmt.Sprintf("RSI14 %.0f", ind.RSI14))
	}
	if ind.HasMACD {
		extras = append(extras, fmt.Sprintf("MACD %s/%s", FormatPrice(ind.MACD), FormatPrice(ind.MACDSignal)))
	}
	if len(extras) > 0 {
		b.WriteString("📐 " + strings.Join(extras, " | ") + "\n")
	}
	if evt.Bias.Label != "" {
		b.WriteString(fmt.Sprintf("🧭 Bias: %s (%+.2f)\n", evt.Bias.Label, evt.Bias.TotalScore))
	}
	if evt.Bias.WarningMsg != "" {
		b.WriteString("⚠️ " + evt.Bias.WarningMsg + "\n")
	}
	if evt.Source != "" {
		b.WriteString(fmt.Sprintf("🔌 Source: %s\n", evt.Source))
	}
	return b.String()
}

// FormatPause formats the notice sent when a pair enters its cooldown.
func FormatPause(evt model.PauseEvent) string {
	return fmt.Sprintf("⏸ <b>%s paused</b>\n\n%d consecutive scans failed on every source.\nResuming after %s UTC",
		evt.Pair, evt.Failures, evt.Until.UTC().Format("2006-01-02 15:04"))
}

// FormatStartup formats the announcement sent once the bot is running.
func FormatStartup(pairs, timeframes, sources []string) string {
	var b strings.Builder
	b.WriteString("✅ <b>LevelSentinel started</b>\n\n")
	b.WriteString(fmt.Sprintf("Pairs: %s\n", strings.Join(pairs, ", ")))
	b.WriteString(fmt.Sprintf("Timeframes: %s\n", strings.Join(timeframes, ", ")))
	b.WriteString(fmt.Sprintf("Sources: %s\n", strings.Join(sources, " → ")))
	return b.String()
}

// Summary aggregates activity between two daily reports.
type Summary struct {
	Since       time.Time
	Until       time.Time
	Cycles      int
	Alerts      int
	Pauses      int
	FailedScans int
	Paused      []string
}

// FormatSummary formats the daily activity report.
func FormatSummary(s Summary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📅 <b>Daily summary</b> | %s\n\n", s.Until.UTC().Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Cycles: %d\n", s.Cycles))
	b.WriteString(fmt.Sprintf("Alerts: %d\n", s.Alerts))
	b.WriteString(fmt.Sprintf("Failed scans: %d\n", s.FailedScans))
	b.WriteString(fmt.Sprintf("Pauses: %d\n", s.Pauses))
	if len(s.Paused) > 0 {
		b.WriteString(fmt.Sprintf("Paused now: %s\n", strings.Join(s.Paused, ", ")))
	}
	return b.String()
}

// Status is the current runtime picture answered to /status.
type Status struct {
	LastCycle time.Time
	Cycles    int
	Paused    map[string]time.Time
	Latched   []string
}

// FormatStatus formats the reply to /status.
func FormatStatus(s Status) string {
	var b strings.Builder
	b.WriteString("📦 <b>Status</b>\n\n")
	if s.LastCycle.IsZero() {
		b.WriteString("Last cycle: none yet\n")
	} else {
		b.WriteString(fmt.Sprintf("Last cycle: %s UTC\n", s.LastCycle.UTC().Format("2006-01-02 15:04:05")))
	}
	b.WriteString(fmt.Sprintf("Cycles: %d\n", s.Cycles))

	if len(s.Paused) == 0 {
		b.WriteString("Paused pairs: none\n")
	} else {
		pairs := make([]string, 0, len(s.Paused))
		for p := range s.Paused {
			pairs = append(pairs, p)
		}
		sort.Strings(pairs)
		b.WriteString("Paused pairs:\n")
		for _, p := range pairs {
			b.WriteString(fmt.Sprintf("  %s until %s UTC\n", p, s.Paused[p].UTC().Format("15:04")))
		}
	}

	if len(s.Latched) == 0 {
		b.WriteString("Latched levels: none\n")
	} else {
		b.WriteString("Latched levels:\n")
		for _, l := range s.Latched {
			b.WriteString("  " + l + "\n")
		}
	}
	return b.String()
}
