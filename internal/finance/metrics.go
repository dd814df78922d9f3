package finance

import "math"

// Metrics are the calculated ratios for one period. Ratio fields that need
// a balance sheet are nil when none is available or a denominator is zero.
type Metrics struct {
	PeriodLabel string `json:"period_label"`

	GrossProfit    float64 `json:"gross_profit"`
	GrossMarginPct float64 `json:"gross_margin_pct"`
	NetMarginPct   float64 `json:"net_margin_pct"`

	COGSPct      float64 `json:"cogs_pct"`
	LaborCostPct float64 `json:"labor_cost_pct"`
	RentPct      float64 `json:"rent_pct"`
	FoodCostPct  float64 `json:"food_cost_pct"`

	CurrentRatio *float64 `json:"current_ratio,omitempty"`
	CashRatio    *float64 `json:"cash_ratio,omitempty"`
	DebtToEquity *float64 `json:"debt_to_equity,omitempty"`
	TotalDebt    float64  `json:"total_debt"`
}

// Calculate derives the metrics for an income statement, folding in
// liquidity and debt figures when a balance sheet accompanies it.
func Calculate(income IncomeStatementPeriod, balance *BalanceSheetPeriod) Metrics {
	m := Metrics{
		PeriodLabel: income.Label(),
		GrossProfit: round2(income.TotalRevenue - income.TotalCOGS),
	}

	if income.TotalRevenue != 0 {
		m.GrossMarginPct = round1((income.TotalRevenue - income.TotalCOGS) / income.TotalRevenue * 100)
		m.NetMarginPct = round1(income.NetIncome / income.TotalRevenue * 100)
		m.COGSPct = round1(income.TotalCOGS / income.TotalRevenue * 100)
		m.LaborCostPct = round1(income.TotalPayroll / income.TotalRevenue * 100)
		m.RentPct = round1(income.Rent / income.TotalRevenue * 100)
	}
	if income.NetSales != 0 {
		m.FoodCostPct = round1(income.TotalPurchases / income.NetSales * 100)
	}

	if balance != nil {
		if balance.TotalCurrentLiabilities != 0 {
			current := round2(balance.TotalCurrentAssets / balance.TotalCurrentLiabilities)
			cash := round2(balance.TotalCash / balance.TotalCurrentLiabilities)
			m.CurrentRatio = &current
			m.CashRatio = &cash
		}
		if balance.TotalEquity != 0 {
			debtToEquity := round2(math.Abs(balance.TotalLiabilities / balance.TotalEquity))
			m.DebtToEquity = &debtToEquity
		}
		m.TotalDebt = balance.TotalLiabilities
	}

	return m
}

// Benchmark is an industry range for one metric.
type Benchmark struct {
	Avg  float64 `json:"avg"`
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// IndustryBenchmarks holds typical coffee-shop ranges, in percent.
var IndustryBenchmarks = map[string]Benchmark{
	"gross_margin_pct": {Avg: 60.0, Low: 55.0, High: 70.0},
	"net_margin_pct":   {Avg: 5.0, Low: 2.0, High: 10.0},
	"labor_cost_pct":   {Avg: 30.0, Low: 25.0, High: 35.0},
	"rent_pct":         {Avg: 10.0, Low: 6.0, High: 15.0},
	"cogs_pct":         {Avg: 35.0, Low: 28.0, High: 40.0},
	"food_cost_pct":    {Avg: 30.0, Low: 25.0, High: 35.0},
}

// BenchmarkStatus grades a value against an industry range: inside the range
// is good, more than 20% beyond either edge is a concern, anything between
// is a warning.
func BenchmarkStatus(value float64, b Benchmark) string {
	if b.Low <= value && value <= b.High {
		return "good"
	}
	if value < b.Low*0.8 || value > b.High*1.2 {
		return "concern"
	}
	return "warning"
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
