package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
)

// ComputePerformance returns the portfolio return, the benchmark return and
// their difference (alpha) over period, ending at now.
//
// For ALL the return is measured against the stored cost basis. For bounded
// periods it is measured from each holding's close at the window start, using
// current shares. Holdings without any price are excluded from market value;
// holdings whose cost basis fails the sanity bound are excluded from returns.
// Both exclusions are reported as warnings and mark the card incomplete, as
// does a price history that starts inside the window.
func ComputePerformance(
	holdings []model.Holding,
	history map[string]model.TimeSeries,
	benchmark model.TimeSeries,
	period model.Period,
	now time.Time,
) model.PerformanceCard {
	card := model.PerformanceCard{
		Period:          period,
		BenchmarkTicker: benchmark.Ticker,
		Holdings:        []model.HoldingPerformance{},
		Annotations:     newAnnotations(),
	}

	start, bounded := period.Start(now)

	var (
		totalMV, totalCost decimal.Decimal
		retStart, retEnd   decimal.Decimal
		dayChange          decimal.Decimal
		mvAsOf, retAsOf    *time.Time
		dayAsOf            *time.Time
		priced, dayPriced  bool
		anyValid           bool
		earliest           time.Time
	)

	for _, h := range holdings {
		if h.IsDeleted() {
			continue
		}
		if h.Shares.IsNegative() || h.CostBasis.IsNegative() {
			card.Exclude(model.WarnInvalidRecord, h.ID,
				fmt.Sprintf("%s has negative shares or cost basis", h.Ticker))
			continue
		}
		anyValid = true
		totalCost = totalCost.Add(h.CostBasis)
		if earliest.IsZero() || h.CreatedAt.Before(earliest) {
			earliest = h.CreatedAt
		}

		row := model.HoldingPerformance{
			HoldingID:   h.ID,
			Ticker:      h.Ticker,
			Shares:      h.Shares,
			CostBasis:   h.CostBasis,
			AverageCost: round2(h.AverageCost()),
			MarketValue: model.UnavailableFigure(),
			ReturnPct:   model.UnavailableFigure(),
		}

		series := history[h.Ticker]
		price, asOf, ok := resolvePrice(h, series)
		if !ok {
			card.Exclude(model.WarnMissingPrice, h.ID,
				fmt.Sprintf("no price known for %s; excluded from market value", h.Ticker))
			row.Excluded = true
			card.Holdings = append(card.Holdings, row)
			continue
		}

		mv := round2(h.Shares.Mul(price))
		priced = true
		totalMV = totalMV.Add(mv)
		if asOf != nil {
			mvAsOf = oldest(mvAsOf, *asOf)
		}
		row.MarketValue = figure(mv, asOf)

		if h.CurrentPrice.Valid && h.PreviousClose.Valid {
			dayPriced = true
			dayChange = dayChange.Add(h.Shares.Mul(price.Sub(h.PreviousClose.Decimal)))
			if asOf != nil {
				dayAsOf = oldest(dayAsOf, *asOf)
			}
		}

		if costOutOfBounds(h, price) {
			card.Exclude(model.WarnCostBasisOutOfBounds, h.ID,
				fmt.Sprintf("%s average cost %s exceeds %s× price %s; excluded from returns",
					h.Ticker, round2(h.AverageCost()), CostBasisSanityFactor, price))
			row.Excluded = true
			card.Holdings = append(card.Holdings, row)
			continue
		}

		var from, to decimal.Decimal
		if bounded {
			startPrice, ok := series.ValueAt(start)
			if !ok {
				card.Exclude(model.WarnMissingHistory, h.ID,
					fmt.Sprintf("no price history for %s; excluded from %s return", h.Ticker, period))
				row.Excluded = true
				card.Holdings = append(card.Holdings, row)
				continue
			}
			if !series.Covers(start) {
				card.Incomplete = true
				card.Warn(model.WarnShortHistory, h.ID,
					fmt.Sprintf("%s history starts %s; %s return measured from there",
						h.Ticker, series.Points[0].Date.Format(time.DateOnly), period))
			}
			from = h.Shares.Mul(startPrice)
			to = h.Shares.Mul(price)
			if series.Stale {
				retAsOf = oldest(retAsOf, series.AsOf)
			}
		} else {
			from = h.CostBasis
			to = mv
		}
		if asOf != nil {
			retAsOf = oldest(retAsOf, *asOf)
		}

		retStart = retStart.Add(from)
		retEnd = retEnd.Add(to)
		if from.IsPositive() {
			row.ReturnPct = figure(pct(to.Sub(from), from), asOf)
		}
		card.Holdings = append(card.Holdings, row)
	}

	card.CostBasis = round2(totalCost)

	switch {
	case priced:
		card.MarketValue = figure(round2(totalMV), mvAsOf)
	case !anyValid:
		card.MarketValue = model.RealFigure(decimal.Zero)
	default:
		card.MarketValue = model.UnavailableFigure()
	}

	if dayPriced {
		card.DayChange = figure(round2(dayChange), dayAsOf)
	} else {
		card.DayChange = model.UnavailableFigure()
	}

	if retStart.IsPositive() {
		card.PortfolioReturnPct = figure(pct(retEnd.Sub(retStart), retStart), retAsOf)
	} else {
		card.PortfolioReturnPct = model.UnavailableFigure()
	}

	benchStart := start
	if !bounded {
		benchStart = earliest
	}
	card.BenchmarkReturnPct = benchmarkReturn(benchmark, benchStart)
	if !card.BenchmarkReturnPct.Available() {
		card.Exclude(model.WarnBenchmarkUnavailable, "",
			fmt.Sprintf("benchmark %s has no usable history", benchmark.Ticker))
	} else if bounded && !benchmark.Covers(start) {
		card.Incomplete = true
		card.Warn(model.WarnShortHistory, "",
			fmt.Sprintf("benchmark %s history starts %s; %s return measured from there",
				benchmark.Ticker, benchmark.Points[0].Date.Format(time.DateOnly), period))
	}

	if card.PortfolioReturnPct.Available() && card.BenchmarkReturnPct.Available() {
		alpha := card.PortfolioReturnPct.Value.Decimal.Sub(card.BenchmarkReturnPct.Value.Decimal)
		card.AlphaPct = combine(alpha, card.PortfolioReturnPct, card.BenchmarkReturnPct)
	} else {
		card.AlphaPct = model.UnavailableFigure()
	}

	card.Stale = card.MarketValue.IsStale() || card.PortfolioReturnPct.IsStale() ||
		card.BenchmarkReturnPct.IsStale() || card.DayChange.IsStale()

	return card
}

// resolvePrice picks the holding's current price, falling back to the last
// close of its history. A non-nil asOf marks the price as stale.
func resolvePrice(h model.Holding, series model.TimeSeries) (decimal.Decimal, *time.Time, bool) {
	if h.CurrentPrice.Valid {
		if !h.PriceStale {
			return h.CurrentPrice.Decimal, nil, true
		}
		asOf := h.UpdatedAt
		if h.PriceRefreshedAt != nil {
			asOf = *h.PriceRefreshedAt
		}
		return h.CurrentPrice.Decimal, &asOf, true
	}
	if last, ok := series.Last(); ok {
		asOf := last.Date
		return last.Close, &asOf, true
	}
	return decimal.Zero, nil, false
}

// costOutOfBounds reports whether the implied per-share cost is implausibly
// high relative to the current price.
func costOutOfBounds(h model.Holding, price decimal.Decimal) bool {
	if !h.Shares.IsPositive() || h.CostBasis.IsZero() {
		return false
	}
	return h.AverageCost().GreaterThan(CostBasisSanityFactor.Mul(price))
}

func benchmarkReturn(benchmark model.TimeSeries, from time.Time) model.Figure {
	if benchmark.Unavailable || len(benchmark.Points) < 2 {
		return model.UnavailableFigure()
	}
	startValue, _ := benchmark.ValueAt(from)
	last, _ := benchmark.Last()
	if !startValue.IsPositive() {
		return model.UnavailableFigure()
	}
	var asOf *time.Time
	if benchmark.Stale {
		t := benchmark.AsOf
		asOf = &t
	}
	return figure(pct(last.Close.Sub(startValue), startValue), asOf)
}
