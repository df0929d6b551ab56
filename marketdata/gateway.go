// Package marketdata wraps bar retrieval with the throttling policy
// the provider demands: a cooldown after bulk searches, small batches
// with inter-batch delays, and bounded retry that aborts immediately
// on a rate-limit signal.
package marketdata

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/kstocklab/kats/logger"
	"github.com/kstocklab/kats/metrics"
	"github.com/kstocklab/kats/types"
)

// Granularity of the requested bars.
type Granularity string

const (
	Minute Granularity = "1m"
	Daily  Granularity = "1d"
)

// BarFetcher is the provider-side collaborator. It must return
// types.ErrRateLimited (possibly wrapped) when the provider throttles.
type BarFetcher interface {
	FetchBars(ctx context.Context, code string, g Granularity) ([]types.PriceBar, error)
}

// Config tunes the gateway. MinBars is the sufficiency threshold: a
// fetch returning fewer bars is treated as empty so every strategy
// degrades together.
type Config struct {
	BatchSize      int
	BatchDelay     time.Duration
	SearchCooldown time.Duration
	RetryMax       int
	RetryBase      time.Duration
	MinBars        int
}

type Gateway struct {
	fetcher BarFetcher
	cfg     Config
	log     logger.Logger

	mu         sync.Mutex
	lastSearch time.Time
	now        func() time.Time
}

func NewGateway(fetcher BarFetcher, cfg Config, log logger.Logger) *Gateway {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	return &Gateway{fetcher: fetcher, cfg: cfg, log: log, now: time.Now}
}

// WithClock replaces the wall clock, used by tests to step through
// the cooldown window.
func (g *Gateway) WithClock(now func() time.Time) *Gateway {
	g.now = now
	return g
}

// NoteSearch records that a bulk condition search surfaced fresh
// detections; bar fetches are suppressed for the cooldown window
// afterwards.
func (g *Gateway) NoteSearch() {
	g.mu.Lock()
	g.lastSearch = g.now()
	g.mu.Unlock()
}

// InCooldown reports whether fetches are currently suppressed.
func (g *Gateway) InCooldown() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.lastSearch.IsZero() || g.cfg.SearchCooldown <= 0 {
		return false
	}
	return g.now().Sub(g.lastSearch) < g.cfg.SearchCooldown
}

// Fetch retrieves bars for one code with bounded retry. A rate-limit
// signal aborts immediately; any other error is retried with
// exponential backoff up to RetryMax times. A fetch that returns
// fewer than MinBars bars yields nil so callers fall back to their
// degraded heuristics.
func (g *Gateway) Fetch(ctx context.Context, code string) ([]types.PriceBar, error) {
	var bars []types.PriceBar
	op := func() error {
		out, err := g.fetcher.FetchBars(ctx, code, Minute)
		if err != nil {
			if errors.Is(err, types.ErrRateLimited) {
				metrics.RateLimitedFetches.Inc()
				return backoff.Permanent(err)
			}
			return err
		}
		bars = out
		return nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewExponentialBackOff(backoff.WithInitialInterval(g.cfg.RetryBase)),
			uint64(g.cfg.RetryMax),
		), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return nil, err
	}

	if len(bars) < g.cfg.MinBars {
		return nil, nil
	}
	return bars, nil
}

// FetchBatch retrieves bars for many codes in fixed-size batches with
// an inter-batch delay. Failures are per-code: a code that cannot be
// fetched simply has no entry in the result and its strategies run
// degraded. During the post-search cooldown nothing is fetched at all.
func (g *Gateway) FetchBatch(ctx context.Context, codes []string) map[string][]types.PriceBar {
	out := make(map[string][]types.PriceBar, len(codes))
	if g.InCooldown() {
		g.log.Info("bar_fetch_suppressed",
			logger.Int("codes", len(codes)),
			logger.String("reason", "post_search_cooldown"),
		)
		return out
	}

	for start := 0; start < len(codes); start += g.cfg.BatchSize {
		if ctx.Err() != nil {
			return out
		}
		end := start + g.cfg.BatchSize
		if end > len(codes) {
			end = len(codes)
		}
		for _, code := range codes[start:end] {
			bars, err := g.Fetch(ctx, code)
			if err != nil {
				g.log.Warn("bar_fetch_failed",
					logger.String("code", code),
					logger.Err(err),
				)
				continue
			}
			if bars != nil {
				out[code] = bars
			}
		}
		if end < len(codes) && g.cfg.BatchDelay > 0 {
			select {
			case <-ctx.Done():
				return out
			case <-time.After(g.cfg.BatchDelay):
			}
		}
	}
	return out
}
