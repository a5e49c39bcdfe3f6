// Package currency renders decimal amounts for display.
package currency

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
)

// Known reports whether code is an ISO 4217 currency code.
func Known(code string) bool {
	return money.GetCurrency(strings.ToUpper(code)) != nil
}

// Format renders amount in the display format of currency code, e.g. $80,570.53.
// The amount is rounded half away from zero to the currency's minor unit.
func Format(amount decimal.Decimal, code string) string {
	// money.New always yields a currency, defaulting unknown codes.
	cur := money.New(0, strings.ToUpper(code)).Currency()
	minor := amount.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(minor.IntPart())
}

// Percent renders a percentage value, e.g. 33.33%.
func Percent(value decimal.Decimal) string {
	return value.StringFixed(2) + "%"
}

// FormatFigure renders a money figure, marking stale values and showing
// unavailable ones as n/a.
func FormatFigure(f model.Figure, code string) string {
	return describe(f, func(d decimal.Decimal) string { return Format(d, code) })
}

// FormatPercentFigure renders a percentage figure like FormatFigure.
func FormatPercentFigure(f model.Figure) string {
	return describe(f, Percent)
}

func describe(f model.Figure, render func(decimal.Decimal) string) string {
	if !f.Available() {
		return "n/a"
	}
	s := render(f.Value.Decimal)
	if f.IsStale() {
		s += " (stale as of " + f.Quality.AsOf.Format("2006-01-02 15:04") + ")"
	}
	return s
}
