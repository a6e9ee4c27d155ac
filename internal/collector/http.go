package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/tidwall/gjson"

	"LevelSentinel/internal/model"
)

// DefaultCandleLimit is used when the caller passes a non-positive limit.
const DefaultCandleLimit = 200

// maxBodyBytes bounds how much of a provider response is read.
const maxBodyBytes = 8 << 20

// Provider declares how one exchange exposes OHLC rows. Adding an exchange
// means adding a Provider value, not a new parser.
type Provider struct {
	Name    string
	BaseURL string
	// Intervals lists natively supported candle lengths in minutes.
	Intervals []int
	// MaxRows caps the number of rows requested in one call.
	MaxRows int
	Symbol  func(p model.Pair) string
	URL     func(base, symbol string, minutes, limit int) string
	// Check inspects the decoded document for provider-level errors. Optional.
	Check  func(doc gjson.Result) error
	Rows   func(doc gjson.Result) gjson.Result
	Layout RowLayout
}

// plan picks the interval to request and the resampling factor.
func (p Provider) plan(minutes int) (native, factor int, ok bool) {
	if minutes <= 0 {
		return 0, 0, false
	}
	ivs := append([]int(nil), p.Intervals...)
	sort.Sort(sort.Reverse(sort.IntSlice(ivs)))
	for _, iv := range ivs {
		if iv == minutes {
			return iv, 1, true
		}
	}
	for _, iv := range ivs {
		if iv > 0 && iv < minutes && minutes%iv == 0 {
			return iv, minutes / iv, true
		}
	}
	return 0, 0, false
}

// rowsAt returns a Rows func reading a fixed gjson path.
func rowsAt(path string) func(gjson.Result) gjson.Result {
	return func(doc gjson.Result) gjson.Result { return doc.Get(path) }
}

// HTTPSource is the generic Source driven by a Provider description.
type HTTPSource struct {
	Provider Provider
	Client   *http.Client
}

// NewHTTPSource creates a source with optional proxy support.
func NewHTTPSource(p Provider, proxyURL string) *HTTPSource {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &HTTPSource{
		Provider: p,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (s *HTTPSource) Name() string { return s.Provider.Name }

// FetchCandles implements Source. Every failure is wrapped in a SourceError.
func (s *HTTPSource) FetchCandles(ctx context.Context, pair string, minutes, limit int) ([]model.Candle, error) {
	candles, err := s.fetch(ctx, pair, minutes, limit)
	if err != nil {
		return nil, unavailable(s.Provider.Name, err)
	}
	return candles, nil
}

func (s *HTTPSource) fetch(ctx context.Context, pair string, minutes, limit int) ([]model.Candle, error) {
	p := s.Provider
	parsed, err := model.ParsePair(pair)
	if err != nil {
		return nil, err
	}
	native, factor, ok := p.plan(minutes)
	if !ok {
		return nil, fmt.Errorf("%w: %d minutes", ErrUnsupportedInterval, minutes)
	}
	if limit <= 0 {
		limit = DefaultCandleLimit
	}
	request := limit * factor
	if factor > 1 {
		request += factor
	}
	if p.MaxRows > 0 && request > p.MaxRows {
		request = p.MaxRows
	}

	body, err := s.get(ctx, p.URL(p.BaseURL, p.Symbol(parsed), native, request))
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.New("decode: invalid json")
	}
	doc := gjson.ParseBytes(body)
	if p.Check != nil {
		if err := p.Check(doc); err != nil {
			return nil, err
		}
	}
	rows := p.Rows(doc)
	if !rows.IsArray() {
		return nil, errors.New("unexpected schema: candle rows not found")
	}

	candles := normalizeRows(rows, p.Layout)
	if factor > 1 {
		candles = resample(candles, minutes)
	}
	if len(candles) == 0 {
		return nil, ErrNoData
	}
	if len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	return candles, nil
}

func (s *HTTPSource) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d, body: %s", resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
