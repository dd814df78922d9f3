package finance

import (
	"testing"
	"time"
)

func testIncome() IncomeStatementPeriod {
	return IncomeStatementPeriod{
		PeriodStart:    time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:      time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC),
		NetSales:       136520.05,
		TotalRevenue:   136529.35,
		TotalPurchases: 51310.28,
		TotalPayroll:   33200.68,
		TotalCOGS:      84686.95,
		Rent:           20030.00,
		TotalExpenses:  123513.76,
		NetIncome:      13015.59,
	}
}

func TestCalculateMetrics(t *testing.T) {
	t.Parallel()

	income := testIncome()
	balance := &BalanceSheetPeriod{
		PeriodEnd:               income.PeriodEnd,
		TotalCash:               21000.00,
		TotalCurrentAssets:      24000.00,
		TotalCurrentLiabilities: 12000.00,
		TotalLiabilities:        90000.00,
		TotalEquity:             -15000.00,
	}

	m := Calculate(income, balance)

	if m.PeriodLabel != "FY 2023-2024" {
		t.Fatalf("period label = %q", m.PeriodLabel)
	}
	if m.GrossProfit != 51842.40 {
		t.Fatalf("gross profit = %f", m.GrossProfit)
	}
	if m.GrossMarginPct != 38.0 {
		t.Fatalf("gross margin = %f, want 38.0", m.GrossMarginPct)
	}
	if m.NetMarginPct != 9.5 {
		t.Fatalf("net margin = %f, want 9.5", m.NetMarginPct)
	}
	if m.RentPct != 14.7 {
		t.Fatalf("rent pct = %f, want 14.7", m.RentPct)
	}
	if m.CurrentRatio == nil || *m.CurrentRatio != 2.0 {
		t.Fatalf("current ratio = %v, want 2.0", m.CurrentRatio)
	}
	if m.CashRatio == nil || *m.CashRatio != 1.75 {
		t.Fatalf("cash ratio = %v, want 1.75", m.CashRatio)
	}
	if m.DebtToEquity == nil || *m.DebtToEquity != 6.0 {
		t.Fatalf("debt to equity = %v, want 6.0 (absolute value)", m.DebtToEquity)
	}
	if m.TotalDebt != 90000.00 {
		t.Fatalf("total debt = %f", m.TotalDebt)
	}
}

func TestCalculateWithoutBalanceSheet(t *testing.T) {
	t.Parallel()

	m := Calculate(testIncome(), nil)
	if m.CurrentRatio != nil || m.CashRatio != nil || m.DebtToEquity != nil {
		t.Fatal("liquidity ratios should be absent without a balance sheet")
	}
	if m.TotalDebt != 0 {
		t.Fatalf("total debt = %f, want 0", m.TotalDebt)
	}
}

func TestCalculateZeroRevenue(t *testing.T) {
	t.Parallel()

	m := Calculate(IncomeStatementPeriod{}, nil)
	if m.GrossMarginPct != 0 || m.NetMarginPct != 0 || m.FoodCostPct != 0 {
		t.Fatal("zero revenue must not divide; percentages stay zero")
	}
}

func TestBenchmarkStatus(t *testing.T) {
	t.Parallel()

	bench := Benchmark{Avg: 30.0, Low: 25.0, High: 35.0}

	cases := []struct {
		name  string
		value float64
		want  string
	}{
		{"inside range", 30.0, "good"},
		{"at low edge", 25.0, "good"},
		{"at high edge", 35.0, "good"},
		{"slightly low", 21.0, "warning"},
		{"slightly high", 41.0, "warning"},
		{"far low", 19.0, "concern"},
		{"far high", 43.0, "concern"},
	}

	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := BenchmarkStatus(tt.value, bench); got != tt.want {
				t.Fatalf("BenchmarkStatus(%f) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}
