package model

import (
	"fmt"
	"strings"
	"time"
)

// Candle represents a single OHLC bar. Time is the bar open in UTC epoch seconds.
type Candle struct {
	Time   int64
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// OpenTime returns the candle open as a UTC time.
func (c Candle) OpenTime() time.Time {
	return time.Unix(c.Time, 0).UTC()
}

// Timeframe is the duration covered by one candle.
type Timeframe struct {
	Label   string `yaml:"label"`
	Minutes int    `yaml:"minutes"`
}

func (tf Timeframe) String() string {
	if tf.Label != "" {
		return tf.Label
	}
	return fmt.Sprintf("%dm", tf.Minutes)
}

// Duration returns the candle length.
func (tf Timeframe) Duration() time.Duration {
	return time.Duration(tf.Minutes) * time.Minute
}

// Pair is a "BASE/QUOTE" trading pair split into its assets.
type Pair struct {
	Base  string
	Quote string
}

// ParsePair parses "BASE/QUOTE" notation. Assets are upper-cased.
func ParsePair(s string) (Pair, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 {
		return Pair{}, fmt.Errorf("pair %q: expected BASE/QUOTE", s)
	}
	base := strings.ToUpper(strings.TrimSpace(parts[0]))
	quote := strings.ToUpper(strings.TrimSpace(parts[1]))
	if base == "" || quote == "" {
		return Pair{}, fmt.Errorf("pair %q: empty asset", s)
	}
	return Pair{Base: base, Quote: quote}, nil
}

func (p Pair) String() string { return p.Base + "/" + p.Quote }

// Join renders the pair with the given separator, e.g. "BTC-USDT".
func (p Pair) Join(sep string) string { return p.Base + sep + p.Quote }

// LastClose returns the close of the newest candle.
func LastClose(candles []Candle) (float64, bool) {
	if len(candles) == 0 {
		return 0, false
	}
	return candles[len(candles)-1].Close, true
}
