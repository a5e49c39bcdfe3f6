package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
)

// ProjectAnnualDividends estimates the next twelve months of dividend income
// from each holding's trailing twelve months of per-share dividends multiplied
// by its current shares.
func ProjectAnnualDividends(
	holdings []model.Holding,
	dividends map[string]model.DividendHistory,
	now time.Time,
) (model.Figure, model.Annotations) {
	notes := newAnnotations()
	window := model.DateRange{From: now.AddDate(-1, 0, 0), To: now}

	var (
		total     decimal.Decimal
		asOf      *time.Time
		anyKnown  bool
		anyActive bool
	)
	for _, h := range holdings {
		if h.IsDeleted() || !h.Shares.IsPositive() {
			continue
		}
		anyActive = true

		hist, ok := dividends[h.Ticker]
		if !ok || hist.Unavailable {
			notes.Exclude(model.WarnDividendsUnavailable, h.ID,
				fmt.Sprintf("dividend history unavailable for %s", h.Ticker))
			continue
		}
		anyKnown = true
		if hist.Stale {
			asOf = oldest(asOf, hist.AsOf)
		}

		var perShare decimal.Decimal
		for _, ev := range hist.Events {
			if window.Contains(ev.Date) {
				perShare = perShare.Add(ev.Amount)
			}
		}
		total = total.Add(perShare.Mul(h.Shares))
	}

	switch {
	case !anyActive:
		return model.RealFigure(decimal.Zero), notes
	case !anyKnown:
		return model.UnavailableFigure(), notes
	}
	notes.Stale = asOf != nil
	return figure(round2(total), asOf), notes
}
