package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
)

// ComputeIncomeWaterfall builds the income card for the calendar month containing month.
//
//	gross     = job + dividend income received in the month
//	taxOwed   = round2(gross × effective rate)
//	net       = gross - taxOwed
//	expenses  = one-off expenses dated in the month + recurring expenses started by month end
//	available = net - expenses
//
// Other income is reported separately and is not part of gross. Without a
// usable tax profile the rate defaults to 0, the rate figure is unavailable and
// the card is marked incomplete.
func ComputeIncomeWaterfall(
	income []model.IncomeRecord,
	expenses []model.ExpenseRecord,
	profile *model.TaxProfile,
	month time.Time,
) model.IncomeCard {
	rng := model.MonthRange(month)
	card := model.IncomeCard{
		Month:                    rng.From.Format("2006-01"),
		ProjectedAnnualDividends: model.UnavailableFigure(),
		Annotations:              newAnnotations(),
	}

	var job, dividend, other decimal.Decimal
	for _, rec := range income {
		if !rng.Contains(rec.ReceivedAt) {
			continue
		}
		if rec.Amount.IsNegative() {
			card.Exclude(model.WarnInvalidRecord, rec.ID, "income amount is negative")
			continue
		}
		switch rec.Category {
		case model.IncomeCategoryJob:
			job = job.Add(rec.Amount)
		case model.IncomeCategoryDividend:
			dividend = dividend.Add(rec.Amount)
		case model.IncomeCategoryOther:
			other = other.Add(rec.Amount)
		default:
			card.Exclude(model.WarnInvalidRecord, rec.ID,
				fmt.Sprintf("unknown income category %q", rec.Category))
		}
	}

	var spent decimal.Decimal
	for _, exp := range expenses {
		if !expenseApplies(exp, rng) {
			continue
		}
		if exp.Amount.IsNegative() {
			card.Exclude(model.WarnInvalidRecord, exp.ID, "expense amount is negative")
			continue
		}
		spent = spent.Add(exp.Amount)
	}

	card.JobIncome = round2(job)
	card.DividendIncome = round2(dividend)
	card.OtherIncome = round2(other)

	gross := round2(job.Add(dividend))
	spent = round2(spent)

	rate, ok := effectiveRate(profile, &card.Annotations)
	if ok {
		card.EffectiveTaxRate = model.RealFigure(rate)
	} else {
		card.EffectiveTaxRate = model.UnavailableFigure()
	}

	taxOwed := round2(gross.Mul(rate))
	net := gross.Sub(taxOwed)
	available := net.Sub(spent)

	card.GrossMonthly = model.RealFigure(gross)
	card.TaxOwed = model.RealFigure(taxOwed)
	card.NetMonthly = model.RealFigure(net)
	card.MonthlyExpenses = model.RealFigure(spent)
	card.AvailableToReinvest = model.RealFigure(available)
	card.AboveZeroLine = available.IsPositive()

	return card
}

// expenseApplies reports whether an expense counts towards the month.
func expenseApplies(exp model.ExpenseRecord, month model.DateRange) bool {
	if exp.Recurring {
		return !exp.Date.After(month.To)
	}
	return month.Contains(exp.Date)
}

// effectiveRate returns the profile's rate, or zero with a warning when the
// profile is missing or its rate lies outside [0,1].
func effectiveRate(profile *model.TaxProfile, notes *model.Annotations) (decimal.Decimal, bool) {
	if profile == nil {
		notes.Exclude(model.WarnMissingTaxProfile, "",
			"no tax profile configured; tax computed at the default rate of 0")
		return decimal.Zero, false
	}
	if !validRate(profile.EffectiveRate) {
		notes.Exclude(model.WarnInvalidTaxRate, profile.UserID,
			fmt.Sprintf("effective tax rate %s is outside [0,1]; tax computed at the default rate of 0", profile.EffectiveRate))
		return decimal.Zero, false
	}
	return profile.EffectiveRate, true
}

func validRate(r decimal.Decimal) bool {
	return !r.IsNegative() && r.LessThanOrEqual(decimal.NewFromInt(1))
}
