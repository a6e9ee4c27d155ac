package collector

import (
	"context"
	"errors"
	"fmt"

	"LevelSentinel/internal/model"
)

var (
	// ErrSourceUnavailable covers every adapter-level failure: network, timeout,
	// bad status, provider error payload, unexpected schema.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrNoData means the provider answered but no usable candle survived normalization.
	ErrNoData = fmt.Errorf("%w: no usable candles", ErrSourceUnavailable)
	// ErrUnsupportedInterval means the provider cannot serve the timeframe, even by resampling.
	ErrUnsupportedInterval = fmt.Errorf("%w: unsupported interval", ErrSourceUnavailable)
	// ErrAllSourcesFailed is returned by the Resolver once every source has failed.
	ErrAllSourcesFailed = errors.New("all sources failed")
)

// Source fetches OHLC candles for a pair from one upstream provider.
// Candles are returned oldest-first; an error always matches ErrSourceUnavailable.
type Source interface {
	FetchCandles(ctx context.Context, pair string, minutes, limit int) ([]model.Candle, error)
	Name() string
}

// SourceError attributes a failure to a named source.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Is makes every SourceError match ErrSourceUnavailable.
func (e *SourceError) Is(target error) bool {
	return target == ErrSourceUnavailable
}

func unavailable(source string, err error) error {
	return &SourceError{Source: source, Err: err}
}
