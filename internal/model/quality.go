package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// QualityState tags how much a computed figure can be trusted.
type QualityState string

const (
	QualityReal        QualityState = "real"
	QualityStale       QualityState = "stale"
	QualityUnavailable QualityState = "unavailable"
)

// Quality is attached to every computed figure. AsOf is only set for stale values.
type Quality struct {
	State QualityState `json:"state"`
	AsOf  *time.Time   `json:"asOf,omitempty"`
}

// Figure is a computed value with its data quality. An unavailable figure
// carries no value at all, so nothing plausible-looking is ever substituted.
type Figure struct {
	Value   decimal.NullDecimal `json:"value"`
	Quality Quality             `json:"quality"`
}

// RealFigure wraps a value computed from fresh data.
func RealFigure(v decimal.Decimal) Figure {
	return Figure{Value: decimal.NewNullDecimal(v), Quality: Quality{State: QualityReal}}
}

// StaleFigure wraps a value computed from cached data observed at asOf.
func StaleFigure(v decimal.Decimal, asOf time.Time) Figure {
	asOf = asOf.UTC()
	return Figure{Value: decimal.NewNullDecimal(v), Quality: Quality{State: QualityStale, AsOf: &asOf}}
}

// UnavailableFigure marks a figure that could not be computed.
func UnavailableFigure() Figure {
	return Figure{Quality: Quality{State: QualityUnavailable}}
}

// Available reports whether the figure has a value.
func (f Figure) Available() bool {
	return f.Value.Valid && f.Quality.State != QualityUnavailable
}

// IsStale reports whether the figure was computed from cached data.
func (f Figure) IsStale() bool {
	return f.Quality.State == QualityStale
}

// Warning codes reported on card annotations.
const (
	WarnMissingPrice          = "MISSING_PRICE"
	WarnMissingHistory        = "MISSING_HISTORY"
	WarnShortHistory          = "SHORT_HISTORY"
	WarnCostBasisOutOfBounds  = "COST_BASIS_OUT_OF_BOUNDS"
	WarnValuedAtCost          = "VALUED_AT_COST"
	WarnInvalidRecord         = "INVALID_RECORD"
	WarnInvalidTicker         = "INVALID_TICKER"
	WarnMissingTaxProfile     = "MISSING_TAX_PROFILE"
	WarnInvalidTaxRate        = "INVALID_TAX_RATE"
	WarnBenchmarkUnavailable  = "BENCHMARK_UNAVAILABLE"
	WarnZeroTotalValue        = "ZERO_TOTAL_VALUE"
	WarnFireTargetUnavailable = "FIRE_TARGET_UNAVAILABLE"
	WarnContributionDefaulted = "CONTRIBUTION_DEFAULTED"
	WarnFireTargetDerived     = "FIRE_TARGET_DERIVED"
	WarnDividendsUnavailable  = "DIVIDENDS_UNAVAILABLE"
)

// Warning describes one record excluded or one default substituted.
type Warning struct {
	Code     string `json:"code"`
	RecordID string `json:"recordId,omitempty"`
	Message  string `json:"message"`
}

// Annotations are embedded in every card so partial data renders honestly.
type Annotations struct {
	Stale      bool      `json:"stale"`
	Incomplete bool      `json:"incomplete"`
	Warnings   []Warning `json:"warnings"`
}

// Warn records a warning without changing the card flags.
func (a *Annotations) Warn(code, recordID, message string) {
	a.Warnings = append(a.Warnings, Warning{Code: code, RecordID: recordID, Message: message})
}

// Exclude records a warning and marks the card incomplete.
func (a *Annotations) Exclude(code, recordID, message string) {
	a.Incomplete = true
	a.Warn(code, recordID, message)
}

// Merge folds another card's annotations into a.
func (a *Annotations) Merge(other Annotations) {
	a.Stale = a.Stale || other.Stale
	a.Incomplete = a.Incomplete || other.Incomplete
	a.Warnings = append(a.Warnings, other.Warnings...)
}
