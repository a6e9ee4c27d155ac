package collector

import "LevelSentinel/internal/model"

// resample folds oldest-first candles into UTC-aligned buckets of the given length.
// The leading bucket is dropped when it is missing part of its span; the
// trailing bucket is kept since it is the candle still forming.
func resample(candles []model.Candle, minutes int) []model.Candle {
	if len(candles) == 0 || minutes <= 0 {
		return nil
	}
	span := int64(minutes) * 60

	var out []model.Candle
	var bucket model.Candle
	started, keep := false, false

	for _, c := range candles {
		key := c.Time - c.Time%span
		if started && key == bucket.Time {
			if c.High > bucket.High {
				bucket.High = c.High
			}
			if c.Low < bucket.Low {
				bucket.Low = c.Low
			}
			bucket.Close = c.Close
			bucket.Volume += c.Volume
			continue
		}
		if started && keep {
			out = append(out, bucket)
		}
		keep = started || c.Time == key
		bucket = model.Candle{Time: key, Open: c.Open, High: c.High, Low: c.Low, Close: c.Close, Volume: c.Volume}
		started = true
	}
	if started && keep {
		out = append(out, bucket)
	}
	return out
}
