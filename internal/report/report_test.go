package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
)

func sampleCards() *model.SuperCards {
	d := decimal.RequireFromString
	asOf := time.Date(2025, 3, 14, 16, 0, 0, 0, time.UTC)
	months := 30

	cards := &model.SuperCards{
		UserID:      "u-1",
		GeneratedAt: time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC),
		Currency:    "USD",
		Performance: model.PerformanceCard{
			Period:             model.PeriodAll,
			MarketValue:        model.StaleFigure(d("8000"), asOf),
			CostBasis:          d("7500"),
			DayChange:          model.UnavailableFigure(),
			PortfolioReturnPct: model.RealFigure(d("6.67")),
			BenchmarkTicker:    "SPY",
			BenchmarkReturnPct: model.UnavailableFigure(),
			AlphaPct:           model.UnavailableFigure(),
			Holdings: []model.HoldingPerformance{
				{Ticker: "SCHD", Shares: d("100"), CostBasis: d("7500"), MarketValue: model.RealFigure(d("8000")), ReturnPct: model.RealFigure(d("6.67"))},
			},
		},
		Income: model.IncomeCard{
			Month:               "2025-03",
			JobIncome:           d("5000"),
			DividendIncome:      d("200"),
			GrossMonthly:        model.RealFigure(d("5200")),
			EffectiveTaxRate:    model.RealFigure(d("0.25")),
			TaxOwed:             model.RealFigure(d("1300")),
			NetMonthly:          model.RealFigure(d("3900")),
			MonthlyExpenses:     model.RealFigure(d("1500")),
			AvailableToReinvest: model.RealFigure(d("2400")),
			AboveZeroLine:       true,
		},
		TaxStrategy: model.TaxStrategyCard{
			TaxableValue:        d("200"),
			CurrentJurisdiction: "CA",
			CurrentRate:         model.RealFigure(d("0.25")),
			CurrentTaxOwed:      model.RealFigure(d("50")),
			Options: []model.TaxOption{
				{Code: "PR", Name: "Puerto Rico", Rate: d("0"), TaxOwed: d("0"), Savings: decimal.NewNullDecimal(d("50"))},
				{Code: "CA", Name: "California", Rate: d("0.25"), TaxOwed: d("50"), Savings: decimal.NewNullDecimal(d("0")), IsCurrent: true},
			},
			BestOption: "PR",
			MaxSavings: model.RealFigure(d("50")),
		},
		PortfolioStrategy: model.PortfolioStrategyCard{
			TotalValue: model.RealFigure(d("8000")),
			BySector:   []model.AllocationSlice{{Key: "Dividend Equity", Value: d("8000"), Percent: d("100")}},
		},
		FinancialPlanning: model.FinancialPlanningCard{
			NetWorth:          model.RealFigure(d("8000")),
			FireTarget:        model.RealFigure(d("450000")),
			MonthlyInvestment: model.RealFigure(d("2400")),
			ExpectedReturn:    d("0.07"),
			ProgressPct:       model.RealFigure(d("1.78")),
			Reachable:         true,
			MonthsToFire:      &months,
			HorizonYears:      100,
			Milestones:        []model.Milestone{{Percent: 25, Amount: d("112500"), MonthsAway: &months}},
		},
	}
	cards.Performance.Stale = true
	cards.Performance.Warn(model.WarnBenchmarkUnavailable, "", "benchmark SPY has no price history")
	cards.FinancialPlanning.Warn(model.WarnFireTargetDerived, "", "derived from expenses")
	return cards
}

func TestMarkdown(t *testing.T) {
	md, err := Markdown(sampleCards())
	require.NoError(t, err)

	for _, want := range []string{
		"# Super Cards",
		"## Performance (ALL)",
		"$8,000.00 (stale as of 2025-03-14 16:00)",
		"| Day change | n/a |",
		"| Effective tax rate | 25.00% |",
		"**$2,400.00**",
		"Above the zero line.",
		"| Puerto Rico (PR) | 0.00% | $0.00 | $50.00 |",
		"California (CA) *",
		"Best option: PR, saving up to $50.00.",
		"| Dividend Equity | $8,000.00 | 100.00% |",
		"| Expected return | 7.00% |",
		"FIRE reached in 2 years 6 months.",
		"`BENCHMARK_UNAVAILABLE` benchmark SPY has no price history",
		"> Some figures use cached market data.",
	} {
		assert.Contains(t, md, want)
	}
}

func TestMarkdown_Unreachable(t *testing.T) {
	cards := sampleCards()
	cards.FinancialPlanning.Reachable = false
	cards.FinancialPlanning.MonthsToFire = nil
	cards.TaxStrategy.CurrentJurisdiction = ""

	md, err := Markdown(cards)
	require.NoError(t, err)

	assert.Contains(t, md, "FIRE target not reachable within 100 years.")
	assert.Contains(t, md, "Current jurisdiction: not set")
}

func TestTerminal(t *testing.T) {
	out, err := Terminal("# Super Cards\n\nAvailable to reinvest", "notty", 80)
	require.NoError(t, err)
	assert.Contains(t, out, "Available to reinvest")
}
