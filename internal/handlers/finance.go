package handlers

import (
	"math"
	"net/http"

	"brewcost/internal/finance"
	applog "brewcost/internal/log"
)

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }

// currentStatements returns the two most recent income statements and
// balance sheets, or reports the section as unavailable.
func currentStatements(w http.ResponseWriter) (*finance.Data, bool) {
	if financials == nil || !financials.HasComparablePeriods() {
		writeJSONError(w, http.StatusServiceUnavailable, "financial statements not loaded")
		return nil, false
	}
	return financials, true
}

type summaryFigures struct {
	TotalRevenue float64 `json:"total_revenue"`
	NetIncome    float64 `json:"net_income"`
	TotalDebt    float64 `json:"total_debt"`
	Cash         float64 `json:"cash"`
	Equity       float64 `json:"equity"`
}

type summaryChanges struct {
	Revenue    float64 `json:"revenue"`
	RevenuePct float64 `json:"revenue_pct"`
	NetIncome  float64 `json:"net_income"`
	Debt       float64 `json:"debt"`
	Cash       float64 `json:"cash"`
}

type summaryResponse struct {
	BusinessName   string         `json:"business_name"`
	CurrentPeriod  string         `json:"current_period"`
	PreviousPeriod string         `json:"previous_period"`
	Current        summaryFigures `json:"current"`
	Changes        summaryChanges `json:"changes"`
}

// FinancialSummary reports the headline year-over-year figures.
func FinancialSummary(w http.ResponseWriter, r *http.Request) {
	data, ok := currentStatements(w)
	if !ok {
		return
	}

	current := data.IncomeStatements[0]
	previous := data.IncomeStatements[1]
	currentBalance := data.BalanceSheets[0]
	previousBalance := data.BalanceSheets[1]

	revenueChange := current.TotalRevenue - previous.TotalRevenue

	resp := summaryResponse{
		BusinessName:   data.BusinessName,
		CurrentPeriod:  current.Label(),
		PreviousPeriod: previous.Label(),
		Current: summaryFigures{
			TotalRevenue: current.TotalRevenue,
			NetIncome:    current.NetIncome,
			TotalDebt:    currentBalance.TotalLiabilities,
			Cash:         currentBalance.TotalCash,
			Equity:       currentBalance.TotalEquity,
		},
		Changes: summaryChanges{
			Revenue:   round2(revenueChange),
			NetIncome: round2(current.NetIncome - previous.NetIncome),
			Debt:      round2(currentBalance.TotalLiabilities - previousBalance.TotalLiabilities),
			Cash:      round2(currentBalance.TotalCash - previousBalance.TotalCash),
		},
	}
	if previous.TotalRevenue != 0 {
		resp.Changes.RevenuePct = round1(revenueChange / previous.TotalRevenue * 100)
	}

	writeJSON(w, http.StatusOK, resp)
}

// FinancialMetrics reports the calculated ratios for every loaded period.
func FinancialMetrics(w http.ResponseWriter, r *http.Request) {
	if financials == nil || len(financials.IncomeStatements) == 0 {
		writeJSONError(w, http.StatusServiceUnavailable, "financial statements not loaded")
		return
	}

	periods := make([]finance.Metrics, 0, len(financials.IncomeStatements))
	for i, income := range financials.IncomeStatements {
		var balance *finance.BalanceSheetPeriod
		if i < len(financials.BalanceSheets) {
			balance = &financials.BalanceSheets[i]
		}
		periods = append(periods, finance.Calculate(income, balance))
	}

	writeJSON(w, http.StatusOK, map[string]any{"periods": periods})
}

type benchmarkRow struct {
	Metric       string  `json:"metric"`
	Unit         string  `json:"unit"`
	YourValue    float64 `json:"your_value"`
	IndustryAvg  float64 `json:"industry_avg"`
	IndustryLow  float64 `json:"industry_low"`
	IndustryHigh float64 `json:"industry_high"`
	Status       string  `json:"status"`
}

// Benchmarks compares the latest period against industry ranges.
func Benchmarks(w http.ResponseWriter, r *http.Request) {
	if financials == nil || len(financials.IncomeStatements) == 0 {
		writeJSONError(w, http.StatusServiceUnavailable, "financial statements not loaded")
		return
	}

	var balance *finance.BalanceSheetPeriod
	if len(financials.BalanceSheets) > 0 {
		balance = &financials.BalanceSheets[0]
	}
	metrics := finance.Calculate(financials.IncomeStatements[0], balance)

	rows := []struct {
		key   string
		name  string
		value float64
	}{
		{"gross_margin_pct", "Gross Margin", metrics.GrossMarginPct},
		{"net_margin_pct", "Net Margin", metrics.NetMarginPct},
		{"labor_cost_pct", "Labor Cost", metrics.LaborCostPct},
		{"rent_pct", "Rent", metrics.RentPct},
		{"food_cost_pct", "Food Cost (COGS)", metrics.FoodCostPct},
	}

	benchmarks := make([]benchmarkRow, 0, len(rows))
	for _, row := range rows {
		bench, ok := finance.IndustryBenchmarks[row.key]
		if !ok {
			continue
		}
		benchmarks = append(benchmarks, benchmarkRow{
			Metric:       row.name,
			Unit:         "%",
			YourValue:    row.value,
			IndustryAvg:  bench.Avg,
			IndustryLow:  bench.Low,
			IndustryHigh: bench.High,
			Status:       finance.BenchmarkStatus(row.value, bench),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"benchmarks": benchmarks})
}

type cogsBreakdown struct {
	Purchases  float64 `json:"purchases"`
	Payroll    float64 `json:"payroll"`
	Total      float64 `json:"total"`
	PctOfTotal float64 `json:"pct_of_total"`
}

type gaBreakdown struct {
	Rent         float64 `json:"rent"`
	InterestBank float64 `json:"interest_bank"`
	Amortization float64 `json:"amortization"`
	Insurance    float64 `json:"insurance"`
	Accounting   float64 `json:"accounting"`
	Advertising  float64 `json:"advertising"`
	Repairs      float64 `json:"repairs"`
	Vehicle      float64 `json:"vehicle"`
	Telephone    float64 `json:"telephone"`
	Other        float64 `json:"other"`
	Total        float64 `json:"total"`
	PctOfTotal   float64 `json:"pct_of_total"`
}

type expenseBreakdown struct {
	Period        string        `json:"period"`
	COGS          cogsBreakdown `json:"cogs"`
	GA            gaBreakdown   `json:"ga"`
	TotalExpenses float64       `json:"total_expenses"`
}

func buildExpenseBreakdown(stmt finance.IncomeStatementPeriod) expenseBreakdown {
	out := expenseBreakdown{
		Period: stmt.Label(),
		COGS: cogsBreakdown{
			Purchases: stmt.TotalPurchases,
			Payroll:   stmt.TotalPayroll,
			Total:     stmt.TotalCOGS,
		},
		GA: gaBreakdown{
			Rent:         stmt.Rent,
			InterestBank: stmt.InterestBankCharges,
			Amortization: stmt.Amortization,
			Insurance:    stmt.Insurance,
			Accounting:   stmt.AccountingLegal,
			Advertising:  stmt.Advertising,
			Repairs:      stmt.RepairsMaintenance,
			Vehicle:      stmt.VehicleExpenses,
			Telephone:    stmt.Telephone,
			Other: stmt.BusinessFees + stmt.OfficeSupplies + stmt.TravelEntertainment +
				stmt.Utilities + stmt.CleaningSupplies + stmt.Licensing,
			Total: stmt.TotalGAExpenses,
		},
		TotalExpenses: stmt.TotalExpenses,
	}
	if stmt.TotalExpenses != 0 {
		out.COGS.PctOfTotal = round1(stmt.TotalCOGS / stmt.TotalExpenses * 100)
		out.GA.PctOfTotal = round1(stmt.TotalGAExpenses / stmt.TotalExpenses * 100)
	}
	return out
}

// ExpenseBreakdown reports where the money went, split into cost of goods
// and general/administrative spend, for the two latest periods.
func ExpenseBreakdown(w http.ResponseWriter, r *http.Request) {
	data, ok := currentStatements(w)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]expenseBreakdown{
		"current":  buildExpenseBreakdown(data.IncomeStatements[0]),
		"previous": buildExpenseBreakdown(data.IncomeStatements[1]),
	})
}

type loanProgress struct {
	Name     string  `json:"name"`
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	PaidDown float64 `json:"paid_down"`
}

type debtProgressResponse struct {
	Loans             []loanProgress `json:"loans"`
	TotalCurrent      float64        `json:"total_current"`
	TotalPrevious     float64        `json:"total_previous"`
	TotalPaidDown     float64        `json:"total_paid_down"`
	EquityCurrent     float64        `json:"equity_current"`
	EquityPrevious    float64        `json:"equity_previous"`
	EquityImprovement float64        `json:"equity_improvement"`
}

// DebtProgress tracks paydown of each long-term loan year over year.
func DebtProgress(w http.ResponseWriter, r *http.Request) {
	data, ok := currentStatements(w)
	if !ok {
		return
	}

	current := data.BalanceSheets[0]
	previous := data.BalanceSheets[1]

	loans := []loanProgress{
		{Name: "BDC Loan", Current: current.BDCLoan, Previous: previous.BDCLoan},
		{Name: "CIBC Future Entrepreneur", Current: current.CIBCLoan, Previous: previous.CIBCLoan},
		{Name: "Shareholder Loan", Current: current.ShareholderLoan, Previous: previous.ShareholderLoan},
	}

	resp := debtProgressResponse{
		EquityCurrent:     current.TotalEquity,
		EquityPrevious:    previous.TotalEquity,
		EquityImprovement: current.TotalEquity - previous.TotalEquity,
	}
	for i := range loans {
		loans[i].PaidDown = loans[i].Previous - loans[i].Current
		resp.TotalCurrent += loans[i].Current
		resp.TotalPrevious += loans[i].Previous
	}
	resp.Loans = loans
	resp.TotalPaidDown = resp.TotalPrevious - resp.TotalCurrent

	writeJSON(w, http.StatusOK, resp)
}

type cashFlowResponse struct {
	Cash struct {
		Current  float64 `json:"current"`
		Previous float64 `json:"previous"`
		Change   float64 `json:"change"`
	} `json:"cash"`
	MonthlyAverages struct {
		Revenue   float64 `json:"revenue"`
		Expenses  float64 `json:"expenses"`
		NetIncome float64 `json:"net_income"`
	} `json:"monthly_averages"`
	Liquidity struct {
		CurrentRatio     float64 `json:"current_ratio"`
		CashRunwayMonths float64 `json:"cash_runway_months"`
	} `json:"liquidity"`
}

// CashFlowHealth reports monthly averages, liquidity, and cash runway.
func CashFlowHealth(w http.ResponseWriter, r *http.Request) {
	data, ok := currentStatements(w)
	if !ok {
		return
	}

	currentBalance := data.BalanceSheets[0]
	previousBalance := data.BalanceSheets[1]
	currentIncome := data.IncomeStatements[0]

	monthlyExpenses := currentIncome.TotalExpenses / 12

	var resp cashFlowResponse
	resp.Cash.Current = currentBalance.TotalCash
	resp.Cash.Previous = previousBalance.TotalCash
	resp.Cash.Change = currentBalance.TotalCash - previousBalance.TotalCash
	resp.MonthlyAverages.Revenue = round2(currentIncome.TotalRevenue / 12)
	resp.MonthlyAverages.Expenses = round2(monthlyExpenses)
	resp.MonthlyAverages.NetIncome = round2(currentIncome.NetIncome / 12)
	if currentBalance.TotalCurrentLiabilities != 0 {
		resp.Liquidity.CurrentRatio = round2(currentBalance.TotalCurrentAssets / currentBalance.TotalCurrentLiabilities)
	}
	if monthlyExpenses != 0 {
		resp.Liquidity.CashRunwayMonths = round1(currentBalance.TotalCash / monthlyExpenses)
	}

	applog.Debug(r.Context(), "cash flow health computed", "runwayMonths", resp.Liquidity.CashRunwayMonths)
	writeJSON(w, http.StatusOK, resp)
}

type statementPeriods[T any] struct {
	Periods []T `json:"periods"`
}

type labeledIncome struct {
	Label string `json:"label"`
	finance.IncomeStatementPeriod
}

type labeledBalance struct {
	Label string `json:"label"`
	finance.BalanceSheetPeriod
}

// IncomeStatements returns every loaded income statement with its label.
func IncomeStatements(w http.ResponseWriter, r *http.Request) {
	if financials == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "financial statements not loaded")
		return
	}
	resp := statementPeriods[labeledIncome]{Periods: []labeledIncome{}}
	for _, stmt := range financials.IncomeStatements {
		resp.Periods = append(resp.Periods, labeledIncome{Label: stmt.Label(), IncomeStatementPeriod: stmt})
	}
	writeJSON(w, http.StatusOK, resp)
}

// BalanceSheets returns every loaded balance sheet with its label.
func BalanceSheets(w http.ResponseWriter, r *http.Request) {
	if financials == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "financial statements not loaded")
		return
	}
	resp := statementPeriods[labeledBalance]{Periods: []labeledBalance{}}
	for _, sheet := range financials.BalanceSheets {
		resp.Periods = append(resp.Periods, labeledBalance{Label: sheet.Label(), BalanceSheetPeriod: sheet})
	}
	writeJSON(w, http.StatusOK, resp)
}
