package calculator

import "errors"

// CalculateMACD returns the latest MACD line (fast EMA minus slow EMA) and its
// signal line. It needs slow+signal-1 prices.
func CalculateMACD(prices []float64, fast, slow, signal int) (float64, float64, error) {
	if fast <= 0 || slow <= fast || signal <= 0 {
		return 0, 0, errors.New("invalid MACD periods")
	}
	if len(prices) < slow+signal-1 {
		return 0, 0, errors.New("not enough data for MACD calculation")
	}

	fastEMA, err := emaSeries(prices, fast)
	if err != nil {
		return 0, 0, err
	}
	slowEMA, err := emaSeries(prices, slow)
	if err != nil {
		return 0, 0, err
	}

	// fastEMA[i] is at price index i+fast-1, slowEMA[j] at j+slow-1.
	offset := slow - fast
	line := make([]float64, len(slowEMA))
	for j := range slowEMA {
		line[j] = fastEMA[j+offset] - slowEMA[j]
	}

	sig, err := emaSeries(line, signal)
	if err != nil {
		return 0, 0, err
	}
	return line[len(line)-1], sig[len(sig)-1], nil
}
