package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Income-Clarity-Backend/internal/apperrors"
	"github.com/ndewijer/Income-Clarity-Backend/internal/repository"
)

// PriceRefreshService persists the latest quotes onto every live holding so
// the stored prices stay a usable fallback when the quote provider is down.
type PriceRefreshService struct {
	holdingRepo *repository.HoldingRepository
	market      MarketData
}

// NewPriceRefreshService creates a new PriceRefreshService.
func NewPriceRefreshService(holdingRepo *repository.HoldingRepository, market MarketData) *PriceRefreshService {
	return &PriceRefreshService{
		holdingRepo: holdingRepo,
		market:      market,
	}
}

// RefreshSummary reports the outcome of one refresh run.
type RefreshSummary struct {
	Tickers         int      `json:"tickers"`
	Updated         int      `json:"updated"`
	HoldingsUpdated int64    `json:"holdingsUpdated"`
	Skipped         []string `json:"skipped"`
	Duration        string   `json:"duration"`
}

// RefreshPrices fetches a quote for every tracked ticker and stores fresh
// ones. Stale and unavailable quotes are skipped so a stored price is never
// overwritten with an older value. Only a record store failure or context
// cancellation aborts the run.
func (s *PriceRefreshService) RefreshPrices(ctx context.Context) (*RefreshSummary, error) {
	start := time.Now()

	tickers, err := s.holdingRepo.GetTrackedTickers(ctx)
	if err != nil {
		return nil, err
	}

	summary := &RefreshSummary{Tickers: len(tickers), Skipped: []string{}}
	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		quote, err := s.market.GetCurrentPrice(ctx, ticker)
		if errors.Is(err, apperrors.ErrInvalidTicker) {
			log.Printf("price refresh: skipping %s: %v", ticker, err)
			summary.Skipped = append(summary.Skipped, ticker)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to fetch quote for %s: %w", ticker, err)
		}
		if quote.Unavailable || quote.Stale {
			summary.Skipped = append(summary.Skipped, ticker)
			continue
		}

		n, err := s.holdingRepo.UpdatePricesByTicker(ctx, ticker, decimal.NewNullDecimal(quote.Price), quote.PreviousClose, quote.AsOf)
		if err != nil {
			return nil, err
		}
		summary.Updated++
		summary.HoldingsUpdated += n
	}

	summary.Duration = time.Since(start).Round(time.Millisecond).String()
	return summary, nil
}

// Run is the scheduler entry point.
func (s *PriceRefreshService) Run(ctx context.Context) error {
	summary, err := s.RefreshPrices(ctx)
	if err != nil {
		return err
	}
	log.Printf("price refresh: %d/%d tickers updated (%d holdings), %d skipped in %s",
		summary.Updated, summary.Tickers, summary.HoldingsUpdated, len(summary.Skipped), summary.Duration)
	return nil
}
