package engine

import (
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
)

// PlanningInput holds the resolved inputs of the FIRE projection.
// Figures may be stale or unavailable; their quality carries into the card.
type PlanningInput struct {
	NetWorth          model.Figure
	MonthlyInvestment model.Figure
	FireTarget        model.Figure
	ExpectedReturn    decimal.Decimal // annual, e.g. 0.07
	HorizonYears      int
}

var milestonePercents = []int{25, 50, 75, 100}

// ComputeFinancialPlanning projects net worth month by month, compounding at
// ExpectedReturn/12 and adding MonthlyInvestment, until the FIRE target is met.
//
// The projection stops at HorizonYears. A target not met within the horizon is
// reported as not reachable with no years value; so is a plan whose
// contribution is not positive while the balance cannot grow.
func ComputeFinancialPlanning(in PlanningInput) model.FinancialPlanningCard {
	horizon := in.HorizonYears
	if horizon <= 0 {
		horizon = DefaultHorizonYears
	}

	card := model.FinancialPlanningCard{
		NetWorth:          in.NetWorth,
		FireTarget:        in.FireTarget,
		MonthlyInvestment: in.MonthlyInvestment,
		ExpectedReturn:    in.ExpectedReturn,
		ProgressPct:       model.UnavailableFigure(),
		HorizonYears:      horizon,
		Milestones:        []model.Milestone{},
		Annotations:       newAnnotations(),
	}
	card.Stale = in.NetWorth.IsStale() || in.MonthlyInvestment.IsStale() || in.FireTarget.IsStale()

	if !in.FireTarget.Available() || !in.FireTarget.Value.Decimal.IsPositive() {
		card.Exclude(model.WarnFireTargetUnavailable, "", "no positive FIRE target; projection skipped")
		return card
	}
	if !in.NetWorth.Available() {
		card.Exclude(model.WarnMissingPrice, "", "net worth unavailable; projection skipped")
		return card
	}

	target := in.FireTarget.Value.Decimal
	balance := round2(in.NetWorth.Value.Decimal)
	contribution := decimal.Zero
	if in.MonthlyInvestment.Available() {
		contribution = round2(in.MonthlyInvestment.Value.Decimal)
	}
	monthlyRate := in.ExpectedReturn.Div(decimal.NewFromInt(12))

	card.ProgressPct = combine(pct(balance, target), in.NetWorth, in.FireTarget)

	thresholds := make([]decimal.Decimal, len(milestonePercents))
	for i, p := range milestonePercents {
		thresholds[i] = round2(target.Mul(decimal.NewFromInt(int64(p))).Div(hundred))
		card.Milestones = append(card.Milestones, model.Milestone{Percent: p, Amount: thresholds[i]})
	}
	mark := func(month int) {
		for i := range card.Milestones {
			if card.Milestones[i].MonthsAway != nil || balance.LessThan(thresholds[i]) {
				continue
			}
			m := month
			card.Milestones[i].Reached = month == 0
			card.Milestones[i].MonthsAway = &m
		}
	}

	mark(0)
	if !balance.LessThan(target) {
		setReached(&card, 0)
		return card
	}

	growing := monthlyRate.IsPositive() && balance.IsPositive()
	if !contribution.IsPositive() && !growing {
		return card
	}

	limit := horizon * 12
	for month := 1; month <= limit; month++ {
		balance = round2(balance.Add(balance.Mul(monthlyRate)).Add(contribution))
		mark(month)
		if !balance.LessThan(target) {
			setReached(&card, month)
			return card
		}
	}

	return card
}

func setReached(card *model.FinancialPlanningCard, months int) {
	years := decimal.NewFromInt(int64(months)).Div(decimal.NewFromInt(12)).Round(1)
	card.Reachable = true
	card.MonthsToFire = &months
	card.YearsToFire = &years
}
