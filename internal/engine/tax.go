package engine

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
)

// ComputeTaxStrategyComparison recomputes the tax owed on taxableValue under
// each candidate jurisdiction and ranks them from cheapest to most expensive,
// ties broken by code. Savings are measured against the tax owed at the
// profile's effective rate and are null when no usable profile exists.
// Candidates with a rate outside [0,1] are skipped with a warning.
func ComputeTaxStrategyComparison(
	profile *model.TaxProfile,
	taxableValue decimal.Decimal,
	candidates []model.TaxJurisdiction,
) model.TaxStrategyCard {
	card := model.TaxStrategyCard{
		TaxableValue: round2(taxableValue),
		Options:      []model.TaxOption{},
		MaxSavings:   model.UnavailableFigure(),
		Annotations:  newAnnotations(),
	}

	if taxableValue.IsNegative() {
		card.Exclude(model.WarnInvalidRecord, "", "taxable value is negative; comparison skipped")
		card.CurrentRate = model.UnavailableFigure()
		card.CurrentTaxOwed = model.UnavailableFigure()
		return card
	}

	rate, haveCurrent := effectiveRate(profile, &card.Annotations)
	var current decimal.Decimal
	if haveCurrent {
		card.CurrentJurisdiction = profile.Jurisdiction
		current = round2(taxableValue.Mul(rate))
		card.CurrentRate = model.RealFigure(rate)
		card.CurrentTaxOwed = model.RealFigure(current)
	} else {
		card.CurrentRate = model.UnavailableFigure()
		card.CurrentTaxOwed = model.UnavailableFigure()
	}

	for _, c := range candidates {
		if !validRate(c.DividendRate) {
			card.Warn(model.WarnInvalidTaxRate, c.Code,
				fmt.Sprintf("jurisdiction %s has rate %s outside [0,1]", c.Code, c.DividendRate))
			continue
		}
		owed := round2(taxableValue.Mul(c.DividendRate))
		opt := model.TaxOption{
			Code:      c.Code,
			Name:      c.Name,
			Rate:      c.DividendRate,
			TaxOwed:   owed,
			IsCurrent: haveCurrent && c.Code == profile.Jurisdiction,
		}
		if haveCurrent {
			opt.Savings = decimal.NewNullDecimal(current.Sub(owed))
		}
		card.Options = append(card.Options, opt)
	}

	sort.SliceStable(card.Options, func(i, j int) bool {
		a, b := card.Options[i], card.Options[j]
		if !a.TaxOwed.Equal(b.TaxOwed) {
			return a.TaxOwed.LessThan(b.TaxOwed)
		}
		return a.Code < b.Code
	})

	if len(card.Options) > 0 {
		best := card.Options[0]
		card.BestOption = best.Code
		if best.Savings.Valid {
			card.MaxSavings = model.RealFigure(decimal.Max(best.Savings.Decimal, decimal.Zero))
		}
	}

	return card
}
