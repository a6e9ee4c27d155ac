package calculator

import (
	"errors"

	"LevelSentinel/internal/model"
)

// CalculateEMA computes the exponential moving average seeded with the SMA of the first period prices.
func CalculateEMA(prices []float64, period int) (float64, error) {
	series, err := emaSeries(prices, period)
	if err != nil {
		return 0, err
	}
	return series[len(series)-1], nil
}

// emaSeries returns the EMA at every index from period-1 onward.
func emaSeries(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	if len(prices) < period {
		return nil, errors.New("not enough data for EMA calculation")
	}
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += prices[i]
	}
	out := make([]float64, 0, len(prices)-period+1)
	ema := sum / float64(period)
	out = append(out, ema)
	k := 2.0 / float64(period+1)
	for i := period; i < len(prices); i++ {
		ema = prices[i]*k + ema*(1-k)
		out = append(out, ema)
	}
	return out, nil
}

// Snapshot computes EMA20, EMA50, RSI14 and MACD(12,26,9) of closes. Values
// that cannot be computed from the window are left at zero.
func Snapshot(candles []model.Candle) model.Indicators {
	closes := extractCloses(candles)
	var ind model.Indicators
	if v, err := CalculateEMA(closes, 20); err == nil {
		ind.EMA20 = v
	}
	if v, err := CalculateEMA(closes, 50); err == nil {
		ind.EMA50 = v
	}
	if len(candles) > 14 {
		if v, err := CalculateRSI(candles, 14); err == nil {
			ind.RSI14 = v
		}
	}
	if line, signal, err := CalculateMACD(closes, 12, 26, 9); err == nil {
		ind.MACD = line
		ind.MACDSignal = signal
		ind.HasMACD = true
	}
	return ind
}

func extractCloses(bars []model.Candle) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
