// Package finance holds the yearly financial statements and the summary
// arithmetic over them: margins, efficiency ratios, liquidity, debt, and
// comparisons against coffee-shop industry benchmarks.
package finance

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// BalanceSheetPeriod is one year-end balance sheet.
type BalanceSheetPeriod struct {
	PeriodEnd time.Time `json:"period_end"`

	CashOnHand               float64 `json:"cash_on_hand"`
	SavingsAccount           float64 `json:"savings_account"`
	ChequingAccount          float64 `json:"chequing_account"`
	TotalCash                float64 `json:"total_cash"`
	Inventory                float64 `json:"inventory"`
	TotalCurrentAssets       float64 `json:"total_current_assets"`
	LeaseholdImprovements    float64 `json:"leasehold_improvements"`
	LeaseholdAmortization    float64 `json:"leasehold_amortization"`
	NetLeasehold             float64 `json:"net_leasehold"`
	FurnitureEquipment       float64 `json:"furniture_equipment"`
	FurnitureAmortization    float64 `json:"furniture_amortization"`
	NetFurniture             float64 `json:"net_furniture"`
	TotalCapitalAssets       float64 `json:"total_capital_assets"`
	TotalAssets              float64 `json:"total_assets"`
	AccountsPayable          float64 `json:"accounts_payable"`
	EIPayable                float64 `json:"ei_payable"`
	CPPPayable               float64 `json:"cpp_payable"`
	WSIBPayable              float64 `json:"wsib_payable"`
	GSTHSTCollected          float64 `json:"gst_hst_collected"`
	GSTHSTPaid               float64 `json:"gst_hst_paid"`
	GSTHSTRemittances        float64 `json:"gst_hst_remittances"`
	TotalCurrentLiabilities  float64 `json:"total_current_liabilities"`
	BDCLoan                  float64 `json:"bdc_loan"`
	CIBCLoan                 float64 `json:"cibc_loan"`
	ShareholderLoan          float64 `json:"shareholder_loan"`
	TotalLongTermLiabilities float64 `json:"total_long_term_liabilities"`
	TotalLiabilities         float64 `json:"total_liabilities"`
	ShareCapital             float64 `json:"share_capital"`
	RetainedEarningsPrevious float64 `json:"retained_earnings_previous"`
	CurrentEarnings          float64 `json:"current_earnings"`
	TotalRetainedEarnings    float64 `json:"total_retained_earnings"`
	TotalEquity              float64 `json:"total_equity"`
}

// IncomeStatementPeriod is one fiscal-year income statement.
type IncomeStatementPeriod struct {
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`

	FoodBeverageSales     float64 `json:"food_beverage_sales"`
	Tips                  float64 `json:"tips"`
	NonTaxableGrocery     float64 `json:"non_taxable_grocery"`
	LiquorSales           float64 `json:"liquor_sales"`
	ConsignmentSales      float64 `json:"consignment_sales"`
	GiftCardSales         float64 `json:"gift_card_sales"`
	NetSales              float64 `json:"net_sales"`
	Grants                float64 `json:"grants"`
	InterestRevenue       float64 `json:"interest_revenue"`
	TotalOtherRevenue     float64 `json:"total_other_revenue"`
	TotalRevenue          float64 `json:"total_revenue"`
	SmallToolsSupplies    float64 `json:"small_tools_supplies"`
	InventoryBeginning    float64 `json:"inventory_beginning"`
	DeliveryServices      float64 `json:"delivery_services"`
	FreightExpense        float64 `json:"freight_expense"`
	FoodBeveragePurchases float64 `json:"food_beverage_purchases"`
	LiquorPurchases       float64 `json:"liquor_purchases"`
	KitchenSupplies       float64 `json:"kitchen_supplies"`
	ConsignmentPurchases  float64 `json:"consignment_purchases"`
	InventoryEnd          float64 `json:"inventory_end"`
	TotalPurchases        float64 `json:"total_purchases"`
	WagesSalaries         float64 `json:"wages_salaries"`
	EIExpense             float64 `json:"ei_expense"`
	CPPExpense            float64 `json:"cpp_expense"`
	WSIBExpense           float64 `json:"wsib_expense"`
	TotalPayroll          float64 `json:"total_payroll"`
	TotalCOGS             float64 `json:"total_cogs"`
	AccountingLegal       float64 `json:"accounting_legal"`
	Advertising           float64 `json:"advertising"`
	BusinessFees          float64 `json:"business_fees"`
	Amortization          float64 `json:"amortization"`
	Insurance             float64 `json:"insurance"`
	InterestBankCharges   float64 `json:"interest_bank_charges"`
	OfficeSupplies        float64 `json:"office_supplies"`
	VehicleExpenses       float64 `json:"vehicle_expenses"`
	Rent                  float64 `json:"rent"`
	RepairsMaintenance    float64 `json:"repairs_maintenance"`
	Telephone             float64 `json:"telephone"`
	TravelEntertainment   float64 `json:"travel_entertainment"`
	Utilities             float64 `json:"utilities"`
	CleaningSupplies      float64 `json:"cleaning_supplies"`
	Licensing             float64 `json:"licensing"`
	TotalGAExpenses       float64 `json:"total_ga_expenses"`
	TotalExpenses         float64 `json:"total_expenses"`
	NetIncome             float64 `json:"net_income"`
}

// Label formats the fiscal-year label for an income statement.
func (p IncomeStatementPeriod) Label() string {
	return fmt.Sprintf("FY %d-%d", p.PeriodStart.Year(), p.PeriodEnd.Year())
}

// Label formats the as-at label for a balance sheet.
func (p BalanceSheetPeriod) Label() string {
	return "As at " + p.PeriodEnd.Format("Jan 2, 2006")
}

// Data holds the loaded statements, most recent period first.
type Data struct {
	BusinessName     string                  `json:"business_name"`
	BalanceSheets    []BalanceSheetPeriod    `json:"balance_sheets"`
	IncomeStatements []IncomeStatementPeriod `json:"income_statements"`
}

const statementsFile = "financials.json"

// Load reads the financial statement document from the data directory. A
// missing document yields empty Data, not an error; callers report the
// sections as unavailable.
func Load(dir string) (*Data, error) {
	raw, err := os.ReadFile(filepath.Join(dir, statementsFile))
	if errors.Is(err, fs.ErrNotExist) {
		return &Data{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", statementsFile, err)
	}

	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode %s: %w", statementsFile, err)
	}
	return &data, nil
}

// HasComparablePeriods reports whether year-over-year sections can be built.
func (d *Data) HasComparablePeriods() bool {
	return len(d.IncomeStatements) >= 2 && len(d.BalanceSheets) >= 2
}
