package collector

import (
	"math"
	"sort"
	"strconv"

	"github.com/tidwall/gjson"

	"LevelSentinel/internal/model"
)

// msThreshold separates epoch seconds from epoch milliseconds.
const msThreshold = 1e12

// RowLayout maps a provider's positional row columns onto a Candle.
// Volume may be -1 when the provider does not report it.
type RowLayout struct {
	Time   int
	Open   int
	High   int
	Low    int
	Close  int
	Volume int
}

func (l RowLayout) width() int {
	w := 0
	for _, i := range []int{l.Time, l.Open, l.High, l.Low, l.Close, l.Volume} {
		if i+1 > w {
			w = i + 1
		}
	}
	return w
}

// normalizeRows converts provider rows into candles, skipping anything
// malformed. The result is sorted oldest-first with duplicate timestamps
// collapsed to the last row seen.
func normalizeRows(rows gjson.Result, layout RowLayout) []model.Candle {
	if !rows.IsArray() {
		return nil
	}
	width := layout.width()
	byTime := make(map[int64]model.Candle)

	rows.ForEach(func(_, row gjson.Result) bool {
		if !row.IsArray() {
			return true
		}
		cells := row.Array()
		if len(cells) < width {
			return true
		}
		ts, ok := number(cells[layout.Time])
		if !ok || ts <= 0 {
			return true
		}
		o, ok1 := number(cells[layout.Open])
		h, ok2 := number(cells[layout.High])
		l, ok3 := number(cells[layout.Low])
		c, ok4 := number(cells[layout.Close])
		if !ok1 || !ok2 || !ok3 || !ok4 || h <= 0 || l <= 0 || c <= 0 || h < l {
			return true
		}
		var v float64
		if layout.Volume >= 0 {
			if vol, ok := number(cells[layout.Volume]); ok && vol > 0 {
				v = vol
			}
		}
		sec := int64(ts)
		if ts >= msThreshold {
			sec = int64(ts / 1000)
		}
		byTime[sec] = model.Candle{Time: sec, Open: o, High: h, Low: l, Close: c, Volume: v}
		return true
	})

	candles := make([]model.Candle, 0, len(byTime))
	for _, c := range byTime {
		candles = append(candles, c)
	}
	sort.Slice(candles, func(i, j int) bool { return candles[i].Time < candles[j].Time })
	return candles
}

// number accepts finite JSON numbers and numeric strings. "NaN" and "Inf"
// parse as floats but are rejected.
func number(r gjson.Result) (float64, bool) {
	var f float64
	switch r.Type {
	case gjson.Number:
		f = r.Num
	case gjson.String:
		v, err := strconv.ParseFloat(r.Str, 64)
		if err != nil {
			return 0, false
		}
		f = v
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
