package collector

import (
	"fmt"
	"net/url"
	"sort"

	"github.com/tidwall/gjson"

	"LevelSentinel/internal/model"
)

// KrakenProvider describes the Kraken public OHLC endpoint.
func KrakenProvider() Provider {
	alias := map[string]string{"BTC": "XBT", "DOGE": "XDG"}
	asset := func(a string) string {
		if v, ok := alias[a]; ok {
			return v
		}
		return a
	}
	return Provider{
		Name:      "kraken",
		BaseURL:   "https://api.kraken.com",
		Intervals: []int{1, 5, 15, 30, 60, 240, 1440, 10080, 21600},
		MaxRows:   720,
		Symbol:    func(p model.Pair) string { return asset(p.Base) + asset(p.Quote) },
		URL: func(base, symbol string, minutes, _ int) string {
			return fmt.Sprintf("%s/0/public/OHLC?pair=%s&interval=%d", base, url.QueryEscape(symbol), minutes)
		},
		Check: func(doc gjson.Result) error {
			if errs := doc.Get("error").Array(); len(errs) > 0 {
				return fmt.Errorf("kraken api error: %s", errs[0].String())
			}
			if !doc.Get("result").IsObject() {
				return fmt.Errorf("unexpected schema: result missing")
			}
			return nil
		},
		// The result key is Kraken's own pair name, which differs from the request.
		Rows: func(doc gjson.Result) gjson.Result {
			var rows gjson.Result
			doc.Get("result").ForEach(func(key, value gjson.Result) bool {
				if key.String() != "last" && value.IsArray() {
					rows = value
					return false
				}
				return true
			})
			return rows
		},
		Layout: RowLayout{Time: 0, Open: 1, High: 2, Low: 3, Close: 4, Volume: 6},
	}
}

// CoinbaseProvider describes the Coinbase Exchange candles endpoint.
func CoinbaseProvider() Provider {
	return Provider{
		Name:      "coinbase",
		BaseURL:   "https://api.exchange.coinbase.com",
		Intervals: []int{1, 5, 15, 60, 360, 1440},
		MaxRows:   300,
		Symbol:    func(p model.Pair) string { return p.Join("-") },
		URL: func(base, symbol string, minutes, _ int) string {
			return fmt.Sprintf("%s/products/%s/candles?granularity=%d", base, url.PathEscape(symbol), minutes*60)
		},
		Check: func(doc gjson.Result) error {
			if doc.IsObject() {
				return fmt.Errorf("coinbase api error: %s", doc.Get("message").String())
			}
			return nil
		},
		Rows:   func(doc gjson.Result) gjson.Result { return doc },
		Layout: RowLayout{Time: 0, Low: 1, High: 2, Open: 3, Close: 4, Volume: 5},
	}
}

var kucoinTypes = map[int]string{
	1: "1min", 3: "3min", 5: "5min", 15: "15min", 30: "30min",
	60: "1hour", 120: "2hour", 240: "4hour", 360: "6hour", 480: "8hour", 720: "12hour",
	1440: "1day", 10080: "1week",
}

// KucoinProvider describes the KuCoin market candles endpoint.
func KucoinProvider() Provider {
	return Provider{
		Name:      "kucoin",
		BaseURL:   "https://api.kucoin.com",
		Intervals: keys(kucoinTypes),
		MaxRows:   1500,
		Symbol:    func(p model.Pair) string { return p.Join("-") },
		URL: func(base, symbol string, minutes, _ int) string {
			return fmt.Sprintf("%s/api/v1/market/candles?type=%s&symbol=%s", base, kucoinTypes[minutes], url.QueryEscape(symbol))
		},
		Check: func(doc gjson.Result) error {
			if code := doc.Get("code").String(); code != "200000" {
				return fmt.Errorf("kucoin api error: code %q %s", code, doc.Get("msg").String())
			}
			return nil
		},
		Rows:   rowsAt("data"),
		Layout: RowLayout{Time: 0, Open: 1, Close: 2, High: 3, Low: 4, Volume: 5},
	}
}

var bybitIntervals = map[int]string{
	1: "1", 3: "3", 5: "5", 15: "15", 30: "30", 60: "60", 120: "120", 240: "240",
	360: "360", 720: "720", 1440: "D", 10080: "W",
}

// BybitProvider describes the Bybit v5 spot kline endpoint.
func BybitProvider() Provider {
	return Provider{
		Name:      "bybit",
		BaseURL:   "https://api.bybit.com",
		Intervals: keys(bybitIntervals),
		MaxRows:   1000,
		Symbol:    func(p model.Pair) string { return p.Join("") },
		URL: func(base, symbol string, minutes, limit int) string {
			return fmt.Sprintf("%s/v5/market/kline?category=spot&symbol=%s&interval=%s&limit=%d",
				base, url.QueryEscape(symbol), bybitIntervals[minutes], limit)
		},
		Check: func(doc gjson.Result) error {
			code := doc.Get("retCode")
			if !code.Exists() || code.Int() != 0 {
				return fmt.Errorf("bybit api error: %s %s", code.String(), doc.Get("retMsg").String())
			}
			return nil
		},
		Rows:   rowsAt("result.list"),
		Layout: RowLayout{Time: 0, Open: 1, High: 2, Low: 3, Close: 4, Volume: 5},
	}
}

var providers = map[string]func() Provider{
	"kraken":   KrakenProvider,
	"coinbase": CoinbaseProvider,
	"kucoin":   KucoinProvider,
	"bybit":    BybitProvider,
}

// Known reports whether name is a registered provider.
func Known(name string) bool {
	_, ok := providers[name]
	return ok
}

// NewSources builds HTTP sources in the given priority order.
func NewSources(names []string, proxyURL string) ([]Source, error) {
	sources := make([]Source, 0, len(names))
	for _, name := range names {
		build, ok := providers[name]
		if !ok {
			return nil, fmt.Errorf("unknown source %q", name)
		}
		sources = append(sources, NewHTTPSource(build(), proxyURL))
	}
	return sources, nil
}

func keys(m map[int]string) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
