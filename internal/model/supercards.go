package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// HoldingPerformance is one row of the performance card.
type HoldingPerformance struct {
	HoldingID   string          `json:"holdingId"`
	Ticker      string          `json:"ticker"`
	Shares      decimal.Decimal `json:"shares"`
	CostBasis   decimal.Decimal `json:"costBasis"`
	AverageCost decimal.Decimal `json:"averageCost"`
	MarketValue Figure          `json:"marketValue"`
	ReturnPct   Figure          `json:"returnPct"`
	Excluded    bool            `json:"excluded"`
}

// PerformanceCard compares the portfolio return with a benchmark.
// Percentages are expressed in percent (12.5 means 12.5%).
type PerformanceCard struct {
	Period             Period               `json:"period"`
	MarketValue        Figure               `json:"marketValue"`
	CostBasis          decimal.Decimal      `json:"costBasis"`
	DayChange          Figure               `json:"dayChange"`
	PortfolioReturnPct Figure               `json:"portfolioReturnPct"`
	BenchmarkTicker    string               `json:"benchmarkTicker"`
	BenchmarkReturnPct Figure               `json:"benchmarkReturnPct"`
	AlphaPct           Figure               `json:"alphaPct"`
	Holdings           []HoldingPerformance `json:"holdings"`
	Annotations
}

// IncomeCard is the monthly gross → tax → net → reinvest waterfall.
type IncomeCard struct {
	Month                    string          `json:"month"`
	JobIncome                decimal.Decimal `json:"jobIncome"`
	DividendIncome           decimal.Decimal `json:"dividendIncome"`
	OtherIncome              decimal.Decimal `json:"otherIncome"`
	GrossMonthly             Figure          `json:"grossMonthly"`
	EffectiveTaxRate         Figure          `json:"effectiveTaxRate"`
	TaxOwed                  Figure          `json:"taxOwed"`
	NetMonthly               Figure          `json:"netMonthly"`
	MonthlyExpenses          Figure          `json:"monthlyExpenses"`
	AvailableToReinvest      Figure          `json:"availableToReinvest"`
	AboveZeroLine            bool            `json:"aboveZeroLine"`
	ProjectedAnnualDividends Figure          `json:"projectedAnnualDividends"`
	Annotations
}

// TaxOption is one candidate jurisdiction in the tax comparison.
type TaxOption struct {
	Code      string              `json:"code"`
	Name      string              `json:"name"`
	Rate      decimal.Decimal     `json:"rate"`
	TaxOwed   decimal.Decimal     `json:"taxOwed"`
	Savings   decimal.NullDecimal `json:"savings"`
	IsCurrent bool                `json:"isCurrent"`
}

// TaxStrategyCard ranks candidate jurisdictions by tax owed on the taxable value.
type TaxStrategyCard struct {
	TaxableValue        decimal.Decimal `json:"taxableValue"`
	CurrentJurisdiction string          `json:"currentJurisdiction"`
	CurrentRate         Figure          `json:"currentRate"`
	CurrentTaxOwed      Figure          `json:"currentTaxOwed"`
	Options             []TaxOption     `json:"options"`
	BestOption          string          `json:"bestOption"`
	MaxSavings          Figure          `json:"maxSavings"`
	Annotations
}

// AllocationSlice is one group of the allocation breakdown.
type AllocationSlice struct {
	Key     string          `json:"key"`
	Value   decimal.Decimal `json:"value"`
	Percent decimal.Decimal `json:"percent"`
}

// PortfolioStrategyCard breaks the portfolio down by sector and by ticker.
// Each breakdown sums to exactly 100.00 when the total value is positive.
type PortfolioStrategyCard struct {
	TotalValue Figure            `json:"totalValue"`
	BySector   []AllocationSlice `json:"bySector"`
	ByTicker   []AllocationSlice `json:"byTicker"`
	Annotations
}

// Milestone is a fraction of the FIRE target.
type Milestone struct {
	Percent    int             `json:"percent"`
	Amount     decimal.Decimal `json:"amount"`
	Reached    bool            `json:"reached"`
	MonthsAway *int            `json:"monthsAway"`
}

// FinancialPlanningCard projects the time to reach the FIRE target.
// YearsToFire is null when the target is not reachable within HorizonYears.
type FinancialPlanningCard struct {
	NetWorth          Figure           `json:"netWorth"`
	FireTarget        Figure           `json:"fireTarget"`
	MonthlyInvestment Figure           `json:"monthlyInvestment"`
	ExpectedReturn    decimal.Decimal  `json:"expectedReturn"`
	ProgressPct       Figure           `json:"progressPct"`
	Reachable         bool             `json:"reachable"`
	MonthsToFire      *int             `json:"monthsToFire"`
	YearsToFire       *decimal.Decimal `json:"yearsToFire"`
	HorizonYears      int              `json:"horizonYears"`
	Milestones        []Milestone      `json:"milestones"`
	Annotations
}

// SuperCards bundles the five dashboards computed for one request.
type SuperCards struct {
	UserID            string                `json:"userId"`
	GeneratedAt       time.Time             `json:"generatedAt"`
	Currency          string                `json:"currency"`
	Performance       PerformanceCard       `json:"performance"`
	Income            IncomeCard            `json:"income"`
	TaxStrategy       TaxStrategyCard       `json:"taxStrategy"`
	PortfolioStrategy PortfolioStrategyCard `json:"portfolioStrategy"`
	FinancialPlanning FinancialPlanningCard `json:"financialPlanning"`
}
