package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/ndewijer/Income-Clarity-Backend/internal/apperrors"
	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
	"github.com/ndewijer/Income-Clarity-Backend/internal/yahoo"
)

// Defaults used when the gateway is built with zero durations.
const (
	DefaultTTL     = 5 * time.Minute
	DefaultTimeout = 5 * time.Second
)

// historyLead widens bounded history windows so a close exists on or before the window start.
const historyLead = 7 * 24 * time.Hour

var tickerPattern = regexp.MustCompile(`^[A-Z0-9.\-^=]{1,15}$`)

// NormalizeTicker trims and upper-cases a symbol and checks its format.
func NormalizeTicker(ticker string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if !tickerPattern.MatchString(t) {
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidTicker, ticker)
	}
	return t, nil
}

// Gateway serves quotes, price history and dividend history.
//
// Fresh cache entries are returned without an upstream call. Otherwise the
// provider is queried with a bounded timeout, and identical concurrent
// requests share one upstream call. When the provider fails, the last cached
// value is returned flagged stale, or an unavailable result when nothing is
// cached. Only an invalid ticker is reported as an error.
type Gateway struct {
	client  yahoo.Client
	cache   Cache
	ttl     time.Duration
	timeout time.Duration
	group   singleflight.Group
	now     func() time.Time
}

// NewGateway creates a gateway over client and cache.
func NewGateway(client yahoo.Client, cache Cache, ttl, timeout time.Duration) *Gateway {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gateway{
		client:  client,
		cache:   cache,
		ttl:     ttl,
		timeout: timeout,
		now:     time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (g *Gateway) WithClock(now func() time.Time) *Gateway {
	g.now = now
	return g
}

// GetCurrentPrice returns the latest quote for ticker.
func (g *Gateway) GetCurrentPrice(ctx context.Context, ticker string) (model.Quote, error) {
	t, err := NormalizeTicker(ticker)
	if err != nil {
		return model.Quote{}, err
	}

	res, err := fetch(ctx, g, "quote:"+t, func(ctx context.Context) (model.Quote, error) {
		resp, err := g.client.QueryFiveDay(ctx, t)
		if err != nil {
			return model.Quote{}, err
		}
		chart, err := yahoo.ParseChart(resp)
		if err != nil {
			return model.Quote{}, err
		}
		return quoteFromChart(t, chart, g.now())
	})
	if err != nil {
		return model.Quote{}, err
	}
	if !res.ok {
		return model.Quote{Ticker: t, Unavailable: true}, nil
	}

	q := res.value
	if res.stale {
		q.Stale = true
		q.AsOf = res.storedAt
	}
	return q, nil
}

// GetPriceHistory returns the daily closes of ticker over period, ending now.
// ALL requests the provider's full history.
func (g *Gateway) GetPriceHistory(ctx context.Context, ticker string, period model.Period) (model.TimeSeries, error) {
	t, err := NormalizeTicker(ticker)
	if err != nil {
		return model.TimeSeries{}, err
	}

	res, err := fetch(ctx, g, fmt.Sprintf("history:%s:%s", t, period), func(ctx context.Context) (model.TimeSeries, error) {
		now := g.now()
		start := time.Unix(0, 0).UTC()
		if s, bounded := period.Start(now); bounded {
			start = s.Add(-historyLead)
		}
		resp, err := g.client.QueryRange(ctx, t, start, now)
		if err != nil {
			return model.TimeSeries{}, err
		}
		chart, err := yahoo.ParseChart(resp)
		if err != nil {
			return model.TimeSeries{}, err
		}
		ts := model.TimeSeries{Ticker: t, Points: make([]model.PricePoint, 0, len(chart.Indicators)), AsOf: now}
		for _, ind := range chart.Indicators {
			ts.Points = append(ts.Points, model.PricePoint{Date: ind.Date, Close: decimal.NewFromFloat(ind.PriceClose)})
		}
		return ts, nil
	})
	if err != nil {
		return model.TimeSeries{}, err
	}
	if !res.ok {
		return model.TimeSeries{Ticker: t, Points: []model.PricePoint{}, Unavailable: true}, nil
	}

	ts := res.value
	if res.stale {
		ts.Stale = true
		ts.AsOf = res.storedAt
	}
	return ts, nil
}

// GetDividendHistory returns the per-share dividends of ticker paid within rng.
func (g *Gateway) GetDividendHistory(ctx context.Context, ticker string, rng model.DateRange) (model.DividendHistory, error) {
	t, err := NormalizeTicker(ticker)
	if err != nil {
		return model.DividendHistory{}, err
	}

	key := fmt.Sprintf("dividends:%s:%s:%s", t, rng.From.Format("2006-01-02"), rng.To.Format("2006-01-02"))
	res, err := fetch(ctx, g, key, func(ctx context.Context) (model.DividendHistory, error) {
		resp, err := g.client.QueryRange(ctx, t, rng.From, rng.To)
		if err != nil {
			return model.DividendHistory{}, err
		}
		divs, err := yahoo.ParseDividends(resp)
		if err != nil {
			return model.DividendHistory{}, err
		}
		h := model.DividendHistory{Ticker: t, Events: make([]model.DividendEvent, 0, len(divs)), AsOf: g.now()}
		for _, d := range divs {
			if !rng.Contains(d.Date) {
				continue
			}
			h.Events = append(h.Events, model.DividendEvent{Ticker: t, Date: d.Date, Amount: decimal.NewFromFloat(d.Amount)})
		}
		return h, nil
	})
	if err != nil {
		return model.DividendHistory{}, err
	}
	if !res.ok {
		return model.DividendHistory{Ticker: t, Events: []model.DividendEvent{}, Unavailable: true}, nil
	}

	h := res.value
	if res.stale {
		h.Stale = true
		h.AsOf = res.storedAt
	}
	return h, nil
}

func quoteFromChart(ticker string, chart yahoo.PriceChart, now time.Time) (model.Quote, error) {
	q := model.Quote{Ticker: ticker, AsOf: now}

	n := len(chart.Indicators)
	switch {
	case chart.RegularMarketPrice != nil:
		q.Price = decimal.NewFromFloat(*chart.RegularMarketPrice)
	case n > 0:
		q.Price = decimal.NewFromFloat(chart.Indicators[n-1].PriceClose)
	default:
		return model.Quote{}, fmt.Errorf("no price for %s", ticker)
	}

	switch {
	case n >= 2:
		q.PreviousClose = decimal.NewNullDecimal(decimal.NewFromFloat(chart.Indicators[n-2].PriceClose))
	case chart.PreviousClose != nil:
		q.PreviousClose = decimal.NewNullDecimal(decimal.NewFromFloat(*chart.PreviousClose))
	}
	return q, nil
}

type lookup[T any] struct {
	value    T
	storedAt time.Time
	stale    bool
	ok       bool
}

// fetch implements the cache, collapse, timeout and fallback policy shared by
// every gateway read. ok is false when no value is known.
func fetch[T any](ctx context.Context, g *Gateway, key string, load func(context.Context) (T, error)) (lookup[T], error) {
	cached, hit, err := g.cache.Get(ctx, key)
	if err != nil {
		log.Printf("market data: cache read failed for %s: %v", key, err)
		hit = false
	}

	var cachedValue T
	if hit {
		if err := json.Unmarshal(cached.Value, &cachedValue); err != nil {
			log.Printf("market data: discarding undecodable cache entry %s: %v", key, err)
			hit = false
		}
	}
	if hit && g.now().Sub(cached.StoredAt) < g.ttl {
		return lookup[T]{value: cachedValue, storedAt: cached.StoredAt, ok: true}, nil
	}

	ch := g.group.DoChan(key, func() (any, error) {
		// The shared call outlives any single caller's cancellation.
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout)
		defer cancel()

		v, err := load(callCtx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", key, err)
		}
		entry := Entry{Value: raw, StoredAt: g.now()}
		if err := g.cache.Set(callCtx, key, entry); err != nil {
			log.Printf("market data: cache write failed for %s: %v", key, err)
		}
		return lookup[T]{value: v, storedAt: entry.StoredAt, ok: true}, nil
	})

	select {
	case r := <-ch:
		err = r.Err
		if err == nil {
			return r.Val.(lookup[T]), nil
		}
	case <-ctx.Done():
		err = ctx.Err()
	}

	if errors.Is(err, apperrors.ErrSymbolNotFound) {
		return lookup[T]{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidTicker, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %v", apperrors.ErrUpstreamTimeout, err)
	}

	if !hit {
		log.Printf("market data: %s unavailable: %v", key, err)
		return lookup[T]{}, nil
	}
	log.Printf("market data: serving stale %s from %s: %v", key, cached.StoredAt.Format(time.RFC3339), err)
	return lookup[T]{value: cachedValue, storedAt: cached.StoredAt, stale: true, ok: true}, nil
}
