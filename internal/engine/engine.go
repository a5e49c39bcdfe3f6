// Package engine computes the five Super Card view models from records and
// market data. Every function is pure: identical inputs give identical output,
// and nothing here performs I/O or reads the clock.
//
// Money is accumulated in decimal and rounded to the cent once per derived
// figure, so identities such as net = gross - tax hold exactly.
package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
)

// CostBasisSanityFactor bounds the per-share cost implied by a stored cost basis.
// A holding whose average cost exceeds this multiple of its current price is
// treated as corrupt and excluded from return calculations.
var CostBasisSanityFactor = decimal.NewFromInt(10)

// DefaultHorizonYears caps FIRE projections when no horizon is configured.
const DefaultHorizonYears = 100

// UnknownSector is the allocation bucket for holdings without a sector.
const UnknownSector = "Unknown"

var hundred = decimal.NewFromInt(100)

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// pct returns num/den as a percentage rounded to 2 places.
func pct(num, den decimal.Decimal) decimal.Decimal {
	return round2(num.Div(den).Mul(hundred))
}

func newAnnotations() model.Annotations {
	return model.Annotations{Warnings: []model.Warning{}}
}

// figure builds a figure that is stale when asOf is non-nil.
func figure(v decimal.Decimal, asOf *time.Time) model.Figure {
	if asOf != nil {
		return model.StaleFigure(v, *asOf)
	}
	return model.RealFigure(v)
}

// oldest keeps the earliest non-nil timestamp, used as the asOf of a stale aggregate.
func oldest(current *time.Time, t time.Time) *time.Time {
	if current == nil || t.Before(*current) {
		return &t
	}
	return current
}

// combine derives the quality of a figure computed from a and b.
func combine(v decimal.Decimal, a, b model.Figure) model.Figure {
	if !a.Available() || !b.Available() {
		return model.UnavailableFigure()
	}
	var asOf *time.Time
	if a.IsStale() {
		asOf = oldest(asOf, *a.Quality.AsOf)
	}
	if b.IsStale() {
		asOf = oldest(asOf, *b.Quality.AsOf)
	}
	return figure(v, asOf)
}
