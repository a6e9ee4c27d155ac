package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"LevelSentinel/internal/model"
)

// Attempt is the outcome of asking one source.
type Attempt struct {
	Source  string
	Err     error
	Elapsed time.Duration
}

// Resolution is a successful lookup and its provenance.
type Resolution struct {
	Candles  []model.Candle
	Source   string
	Attempts []Attempt
}

// FallbackError reports that every source failed for one pair and timeframe.
type FallbackError struct {
	Pair     string
	Minutes  int
	Attempts []Attempt
}

func (e *FallbackError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, a.Err.Error())
	}
	return fmt.Sprintf("%s %dm: %v: %s", e.Pair, e.Minutes, ErrAllSourcesFailed, strings.Join(parts, "; "))
}

func (e *FallbackError) Is(target error) bool { return target == ErrAllSourcesFailed }

// AttemptObserver is told about every source call.
type AttemptObserver func(source string, err error, elapsed time.Duration)

// Resolver asks sources strictly in priority order and returns the first
// non-empty window. Sources are never queried in parallel.
type Resolver struct {
	sources []Source
	limit   int
	timeout time.Duration
	observe AttemptObserver
	logger  *zap.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithCandleLimit sets how many candles are requested per lookup.
func WithCandleLimit(n int) ResolverOption {
	return func(r *Resolver) { r.limit = n }
}

// WithRequestTimeout bounds each source call.
func WithRequestTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) { r.timeout = d }
}

// WithObserver registers a callback for every source attempt.
func WithObserver(fn AttemptObserver) ResolverOption {
	return func(r *Resolver) { r.observe = fn }
}

// NewResolver creates a Resolver over sources in priority order.
func NewResolver(sources []Source, logger *zap.Logger, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		sources: sources,
		limit:   DefaultCandleLimit,
		timeout: 10 * time.Second,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Sources returns the source names in priority order.
func (r *Resolver) Sources() []string {
	names := make([]string, len(r.sources))
	for i, s := range r.sources {
		names[i] = s.Name()
	}
	return names
}

// Resolve returns the candles of the first source that yields any, or a
// *FallbackError once all of them have failed.
func (r *Resolver) Resolve(ctx context.Context, pair string, minutes int) (Resolution, error) {
	attempts := make([]Attempt, 0, len(r.sources))
	for _, src := range r.sources {
		if err := ctx.Err(); err != nil {
			attempts = append(attempts, Attempt{Source: src.Name(), Err: unavailable(src.Name(), err)})
			break
		}

		start := time.Now()
		candles, err := r.fetch(ctx, src, pair, minutes)
		elapsed := time.Since(start)
		if err == nil && len(candles) == 0 {
			err = unavailable(src.Name(), ErrNoData)
		}
		if r.observe != nil {
			r.observe(src.Name(), err, elapsed)
		}
		attempts = append(attempts, Attempt{Source: src.Name(), Err: err, Elapsed: elapsed})

		if err != nil {
			r.logger.Warn("source failed",
				zap.String("source", src.Name()),
				zap.String("pair", pair),
				zap.Int("minutes", minutes),
				zap.Error(err))
			continue
		}
		r.logger.Debug("source answered",
			zap.String("source", src.Name()),
			zap.String("pair", pair),
			zap.Int("minutes", minutes),
			zap.Int("candles", len(candles)))
		return Resolution{Candles: candles, Source: src.Name(), Attempts: attempts}, nil
	}
	return Resolution{}, &FallbackError{Pair: pair, Minutes: minutes, Attempts: attempts}
}

func (r *Resolver) fetch(ctx context.Context, src Source, pair string, minutes int) ([]model.Candle, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	candles, err := src.FetchCandles(ctx, pair, minutes, r.limit)
	if err != nil {
		var se *SourceError
		if !errors.As(err, &se) {
			err = unavailable(src.Name(), err)
		}
		return nil, err
	}
	return candles, nil
}
