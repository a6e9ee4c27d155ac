package collector

import (
	"context"
	"sync"
	"time"

	"LevelSentinel/internal/model"
)

// MockSource returns controllable fixed data for development and testing.
// When Err is set it fails; when Candles is nil it generates bars around Price.
type MockSource struct {
	ID      string
	Price   float64
	Candles []model.Candle
	Err     error

	mu    sync.Mutex
	calls int
}

func (m *MockSource) Name() string {
	if m.ID == "" {
		return "mock"
	}
	return m.ID
}

func (m *MockSource) FetchCandles(_ context.Context, _ string, minutes, limit int) ([]model.Candle, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.Err != nil {
		return nil, unavailable(m.Name(), m.Err)
	}
	if m.Candles != nil {
		return m.Candles, nil
	}
	if limit <= 0 {
		limit = DefaultCandleLimit
	}
	return generateMockBars(m.Price, limit, minutes), nil
}

// Calls returns how many times FetchCandles was invoked.
func (m *MockSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func generateMockBars(basePrice float64, count, minutes int) []model.Candle {
	if minutes <= 0 {
		minutes = 60
	}
	step := int64(minutes) * 60
	end := time.Now().UTC().Unix()
	end -= end % step
	bars := make([]model.Candle, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.Candle{
			Time:   end - int64(count-1-i)*step,
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
