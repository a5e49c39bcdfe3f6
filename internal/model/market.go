package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Period is the performance look-back window.
type Period string

const (
	Period1M  Period = "1M"
	Period3M  Period = "3M"
	Period6M  Period = "6M"
	Period1Y  Period = "1Y"
	PeriodAll Period = "ALL"
)

// ParsePeriod validates a period string. An empty string selects 1Y.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case "":
		return Period1Y, nil
	case Period1M, Period3M, Period6M, Period1Y, PeriodAll:
		return p, nil
	}
	return "", fmt.Errorf("unknown period %q (expected 1M, 3M, 6M, 1Y or ALL)", s)
}

// Start returns the beginning of the window ending at now.
// ALL has no fixed start and returns false.
func (p Period) Start(now time.Time) (time.Time, bool) {
	switch p {
	case Period1M:
		return now.AddDate(0, -1, 0), true
	case Period3M:
		return now.AddDate(0, -3, 0), true
	case Period6M:
		return now.AddDate(0, -6, 0), true
	case Period1Y:
		return now.AddDate(-1, 0, 0), true
	}
	return time.Time{}, false
}

// DateRange is an inclusive range of calendar time.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains reports whether t falls within the range, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

// MonthRange returns the range covering the calendar month containing t,
// from the first instant to the last nanosecond, in UTC.
func MonthRange(t time.Time) DateRange {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return DateRange{From: start, To: start.AddDate(0, 1, 0).Add(-time.Nanosecond)}
}

// Quote is the latest known price for a ticker.
//
// Stale is set when the value was served from cache after an upstream failure.
// Unavailable is set when no value is known at all; Price is then zero and must be ignored.
type Quote struct {
	Ticker        string              `json:"ticker"`
	Price         decimal.Decimal     `json:"price"`
	PreviousClose decimal.NullDecimal `json:"previousClose"`
	AsOf          time.Time           `json:"asOf"`
	Stale         bool                `json:"stale"`
	Unavailable   bool                `json:"unavailable"`
}

// PricePoint is one daily close.
type PricePoint struct {
	Date  time.Time       `json:"date"`
	Close decimal.Decimal `json:"close"`
}

// TimeSeries is an ascending series of daily closes.
type TimeSeries struct {
	Ticker      string       `json:"ticker"`
	Points      []PricePoint `json:"points"`
	AsOf        time.Time    `json:"asOf"`
	Stale       bool         `json:"stale"`
	Unavailable bool         `json:"unavailable"`
}

// ValueAt returns the close on or before t. When the series starts after t,
// the first close is used. Returns false for an empty series.
func (ts TimeSeries) ValueAt(t time.Time) (decimal.Decimal, bool) {
	if len(ts.Points) == 0 {
		return decimal.Zero, false
	}
	value := ts.Points[0].Close
	for _, p := range ts.Points {
		if p.Date.After(t) {
			break
		}
		value = p.Close
	}
	return value, true
}

// Covers reports whether the series has a close on or before t.
func (ts TimeSeries) Covers(t time.Time) bool {
	return len(ts.Points) > 0 && !ts.Points[0].Date.After(t)
}

// Last returns the most recent close.
func (ts TimeSeries) Last() (PricePoint, bool) {
	if len(ts.Points) == 0 {
		return PricePoint{}, false
	}
	return ts.Points[len(ts.Points)-1], true
}

// DividendEvent is one per-share dividend payment.
type DividendEvent struct {
	Ticker string          `json:"ticker"`
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// DividendHistory is the dividend events for a ticker over a range,
// tagged with the same freshness flags as a quote.
type DividendHistory struct {
	Ticker      string          `json:"ticker"`
	Events      []DividendEvent `json:"events"`
	AsOf        time.Time       `json:"asOf"`
	Stale       bool            `json:"stale"`
	Unavailable bool            `json:"unavailable"`
}
