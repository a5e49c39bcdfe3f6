package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Income-Clarity-Backend/internal/apperrors"
	"github.com/ndewijer/Income-Clarity-Backend/internal/config"
	"github.com/ndewijer/Income-Clarity-Backend/internal/engine"
	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
	"github.com/ndewijer/Income-Clarity-Backend/internal/repository"
)

// fetchConcurrency bounds the market data lookups in flight per request.
const fetchConcurrency = 8

// MarketData is the market data gateway as seen by the services.
// marketdata.Gateway implements it.
type MarketData interface {
	GetCurrentPrice(ctx context.Context, ticker string) (model.Quote, error)
	GetPriceHistory(ctx context.Context, ticker string, period model.Period) (model.TimeSeries, error)
	GetDividendHistory(ctx context.Context, ticker string, rng model.DateRange) (model.DividendHistory, error)
}

// SuperCardQuery selects the performance window and the income month.
type SuperCardQuery struct {
	Period model.Period
	Month  time.Time
}

// SuperCardService assembles the five Super Cards for a user.
//
// Records are read from the store on every call and never cached, so a write
// is visible on the next read. Market data is fetched concurrently through the
// gateway, which degrades to stale or unavailable values instead of failing.
// Only a record store failure is returned as an error.
type SuperCardService struct {
	store     *repository.Store
	market    MarketData
	planning  config.PlanningConfig
	marketCfg config.MarketConfig
	clock     func() time.Time
}

// NewSuperCardService creates a new SuperCardService.
func NewSuperCardService(store *repository.Store, market MarketData, cfg *config.Config) *SuperCardService {
	return &SuperCardService{
		store:     store,
		market:    market,
		planning:  cfg.Planning,
		marketCfg: cfg.Market,
		clock:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source, for tests.
func (s *SuperCardService) WithClock(clock func() time.Time) *SuperCardService {
	s.clock = clock
	return s
}

// userRecords is everything the cards read from the record store.
type userRecords struct {
	user           model.User
	holdings       []model.Holding
	income         []model.IncomeRecord
	trailingIncome []model.IncomeRecord
	expenses       []model.ExpenseRecord
	profile        *model.TaxProfile
	jurisdictions  []model.TaxJurisdiction
}

// marketSnapshot is the market data gathered for one request.
type marketSnapshot struct {
	mu             sync.Mutex
	quotes         map[string]model.Quote
	history        map[string]model.TimeSeries
	dividends      map[string]model.DividendHistory
	invalidTickers []string
	benchmark      model.TimeSeries
}

// ComputeSuperCards builds all five cards.
func (s *SuperCardService) ComputeSuperCards(ctx context.Context, userID string, q SuperCardQuery) (*model.SuperCards, error) {
	now := s.clock()
	if q.Period == "" {
		q.Period = model.Period1Y
	}
	if q.Month.IsZero() {
		q.Month = now
	}

	recs, err := s.loadRecords(ctx, userID, q.Month, now)
	if err != nil {
		return nil, err
	}

	snap, err := s.fetchMarketData(ctx, recs.holdings, q.Period, now)
	if err != nil {
		return nil, err
	}
	holdings := overlayQuotes(recs.holdings, snap.quotes)

	cards := &model.SuperCards{
		UserID:      userID,
		GeneratedAt: now,
		Currency:    s.marketCfg.Currency,
	}

	var g errgroup.Group
	g.Go(func() error {
		cards.Performance = engine.ComputePerformance(holdings, snap.history, snap.benchmark, q.Period, now)
		for _, t := range snap.invalidTickers {
			for _, h := range holdings {
				if h.Ticker == t {
					cards.Performance.Warn(model.WarnInvalidTicker, h.ID,
						fmt.Sprintf("quote provider does not know %s", t))
				}
			}
		}
		return nil
	})
	g.Go(func() error {
		card := engine.ComputeIncomeWaterfall(recs.income, recs.expenses, recs.profile, q.Month)
		projected, notes := engine.ProjectAnnualDividends(holdings, snap.dividends, now)
		card.ProjectedAnnualDividends = projected
		card.Merge(notes)
		cards.Income = card
		return nil
	})
	g.Go(func() error {
		cards.TaxStrategy = engine.ComputeTaxStrategyComparison(recs.profile, trailingDividends(recs.trailingIncome), recs.jurisdictions)
		return nil
	})
	g.Go(func() error {
		cards.PortfolioStrategy = engine.ComputePortfolioAllocation(holdings)
		return nil
	})
	// The cards are pure computations; Wait only joins them.
	_ = g.Wait()

	cards.FinancialPlanning = s.computePlanning(recs.user, cards.Income, cards.PortfolioStrategy)
	return cards, nil
}

func (s *SuperCardService) loadRecords(ctx context.Context, userID string, month, now time.Time) (*userRecords, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	recs := &userRecords{user: user}

	monthRange := model.MonthRange(month)
	trailing := model.DateRange{From: now.AddDate(-1, 0, 0), To: now}

	if recs.holdings, err = s.store.GetHoldings(ctx, userID, ""); err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}
	if recs.income, err = s.store.GetIncome(ctx, userID, monthRange); err != nil {
		return nil, fmt.Errorf("failed to load income: %w", err)
	}
	if recs.trailingIncome, err = s.store.GetIncome(ctx, userID, trailing); err != nil {
		return nil, fmt.Errorf("failed to load trailing income: %w", err)
	}
	if recs.expenses, err = s.store.GetExpenses(ctx, userID, monthRange); err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}
	if recs.profile, err = s.store.GetTaxProfile(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to load tax profile: %w", err)
	}
	if recs.jurisdictions, err = s.store.GetJurisdictions(ctx); err != nil {
		return nil, fmt.Errorf("failed to load jurisdictions: %w", err)
	}
	return recs, nil
}

// fetchMarketData looks up quotes, price history and trailing dividends for
// every held ticker, plus the benchmark history, with bounded concurrency.
// Tickers the provider rejects are collected rather than failing the request.
func (s *SuperCardService) fetchMarketData(ctx context.Context, holdings []model.Holding, period model.Period, now time.Time) (*marketSnapshot, error) {
	snap := &marketSnapshot{
		quotes:    map[string]model.Quote{},
		history:   map[string]model.TimeSeries{},
		dividends: map[string]model.DividendHistory{},
	}
	dividendWindow := model.DateRange{From: now.AddDate(-1, 0, 0), To: now}

	seen := map[string]bool{}
	var tickers []string
	for _, h := range holdings {
		if !seen[h.Ticker] {
			seen[h.Ticker] = true
			tickers = append(tickers, h.Ticker)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)

	for _, ticker := range tickers {
		g.Go(func() error {
			quote, err := s.market.GetCurrentPrice(gctx, ticker)
			if errors.Is(err, apperrors.ErrInvalidTicker) {
				snap.mu.Lock()
				snap.invalidTickers = append(snap.invalidTickers, ticker)
				snap.mu.Unlock()
				return nil
			}
			if err != nil {
				return err
			}

			history, err := s.market.GetPriceHistory(gctx, ticker, period)
			if err != nil && !errors.Is(err, apperrors.ErrInvalidTicker) {
				return err
			}
			divs, err := s.market.GetDividendHistory(gctx, ticker, dividendWindow)
			if err != nil && !errors.Is(err, apperrors.ErrInvalidTicker) {
				return err
			}

			snap.mu.Lock()
			defer snap.mu.Unlock()
			snap.quotes[ticker] = quote
			if !history.Unavailable {
				snap.history[ticker] = history
			}
			snap.dividends[ticker] = divs
			return nil
		})
	}

	if benchmark := s.marketCfg.BenchmarkTicker; benchmark != "" {
		g.Go(func() error {
			series, err := s.market.GetPriceHistory(gctx, benchmark, period)
			if errors.Is(err, apperrors.ErrInvalidTicker) {
				log.Printf("benchmark %s rejected by quote provider: %v", benchmark, err)
				snap.benchmark = model.TimeSeries{Ticker: benchmark, Unavailable: true}
				return nil
			}
			if err != nil {
				return err
			}
			snap.benchmark = series
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFailedToComputeSuperCards, err)
	}
	if snap.benchmark.Ticker == "" {
		snap.benchmark = model.TimeSeries{Ticker: s.marketCfg.BenchmarkTicker, Unavailable: true}
	}
	return snap, nil
}

// overlayQuotes returns copies of holdings priced with the fetched quotes.
// Without a usable quote the persisted price is kept and flagged stale.
func overlayQuotes(holdings []model.Holding, quotes map[string]model.Quote) []model.Holding {
	out := make([]model.Holding, len(holdings))
	for i, h := range holdings {
		q, ok := quotes[h.Ticker]
		switch {
		case ok && !q.Unavailable:
			asOf := q.AsOf
			h.CurrentPrice = decimal.NewNullDecimal(q.Price)
			if q.PreviousClose.Valid {
				h.PreviousClose = q.PreviousClose
			}
			h.PriceRefreshedAt = &asOf
			h.PriceStale = q.Stale
		case h.CurrentPrice.Valid:
			h.PriceStale = true
		}
		out[i] = h
	}
	return out
}

// trailingDividends sums valid dividend income, the value the tax comparison taxes.
func trailingDividends(income []model.IncomeRecord) decimal.Decimal {
	var total decimal.Decimal
	for _, rec := range income {
		if rec.Category == model.IncomeCategoryDividend && !rec.Amount.IsNegative() {
			total = total.Add(rec.Amount)
		}
	}
	return total
}

// computePlanning resolves the FIRE inputs from the user's settings, falling
// back to values derived from the other cards.
//
//	net worth          = portfolio total value
//	FIRE target        = user setting, else annual expenses / withdrawal rate
//	monthly investment = user setting, else max(0, available to reinvest)
//	expected return    = user setting, else the configured default
func (s *SuperCardService) computePlanning(user model.User, income model.IncomeCard, allocation model.PortfolioStrategyCard) model.FinancialPlanningCard {
	var notes model.Annotations

	target := model.UnavailableFigure()
	switch {
	case user.FireTarget.Valid:
		target = model.RealFigure(user.FireTarget.Decimal)
	case income.MonthlyExpenses.Available() && income.MonthlyExpenses.Value.Decimal.IsPositive() && s.planning.WithdrawalRate.IsPositive():
		annual := income.MonthlyExpenses.Value.Decimal.Mul(decimal.NewFromInt(12))
		target = income.MonthlyExpenses
		target.Value = decimal.NewNullDecimal(annual.Div(s.planning.WithdrawalRate).Round(2))
		notes.Warn(model.WarnFireTargetDerived, "",
			fmt.Sprintf("FIRE target derived from monthly expenses at a %s%% withdrawal rate",
				s.planning.WithdrawalRate.Mul(decimal.NewFromInt(100)).String()))
	}

	monthly := model.RealFigure(decimal.Zero)
	switch {
	case user.MonthlyInvestment.Valid:
		monthly = model.RealFigure(user.MonthlyInvestment.Decimal)
	case income.AvailableToReinvest.Available():
		monthly = income.AvailableToReinvest
		if monthly.Value.Decimal.IsNegative() {
			monthly.Value = decimal.NewNullDecimal(decimal.Zero)
		}
		notes.Warn(model.WarnContributionDefaulted, "", "monthly investment defaulted to the amount available to reinvest")
	default:
		notes.Warn(model.WarnContributionDefaulted, "", "monthly investment defaulted to zero")
	}

	expectedReturn := s.planning.ExpectedReturn
	if user.ExpectedReturn.Valid {
		expectedReturn = user.ExpectedReturn.Decimal
	}

	card := engine.ComputeFinancialPlanning(engine.PlanningInput{
		NetWorth:          allocation.TotalValue,
		MonthlyInvestment: monthly,
		FireTarget:        target,
		ExpectedReturn:    expectedReturn,
		HorizonYears:      s.planning.HorizonYears,
	})
	for _, w := range allocation.Warnings {
		if w.Code == model.WarnValuedAtCost {
			card.Exclude(model.WarnValuedAtCost, w.RecordID, "net worth includes "+w.Message)
		}
	}
	card.Merge(notes)
	return card
}
