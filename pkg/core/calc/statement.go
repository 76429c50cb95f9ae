// Package calc derives the three financial statements from classified ledger
// records: per-year aggregation, TB+GL merging with an opening snapshot,
// indirect-method cash flow drivers and reconciliation checks.
package calc

// Statement line-item keys. Values are always USD; working capital deltas
// carry indirect-method cash flow signs (asset build-up is a cash outflow).
const (
	// Income statement
	KeyRevenue              = "revenue"
	KeyCOGS                 = "cogs"
	KeyDistributionExpenses = "distribution_expenses"
	KeyMarketingAdmin       = "marketing_admin"
	KeyResearchDev          = "research_dev"
	KeyDepreciationExpense  = "depreciation_expense"
	KeyInterestExpense      = "interest_expense"
	KeyTaxExpense           = "tax_expense"
	KeyNetIncome            = "net_income"

	// Balance sheet
	KeyCash                    = "cash"
	KeyAccountsReceivable      = "accounts_receivable"
	KeyInventory               = "inventory"
	KeyPrepaidExpenses         = "prepaid_expenses"
	KeyOtherCurrentAssets      = "other_current_assets"
	KeyPPEGross                = "ppe_gross"
	KeyAccumulatedDepreciation = "accumulated_depreciation"
	KeyAccountsPayable         = "accounts_payable"
	KeyAccruedPayroll          = "accrued_payroll"
	KeyDeferredRevenue         = "deferred_revenue"
	KeyInterestPayable         = "interest_payable"
	KeyOtherCurrentLiabilities = "other_current_liabilities"
	KeyIncomeTaxesPayable      = "income_taxes_payable"
	KeyLongTermDebt            = "long_term_debt"
	KeyCommonStock             = "common_stock"
	KeyRetainedEarnings        = "retained_earnings"

	// Cash flow
	KeyDeltaAR                 = "delta_ar"
	KeyDeltaInventory          = "delta_inventory"
	KeyDeltaPrepaid            = "delta_prepaid"
	KeyDeltaOtherCurrentAssets = "delta_other_current_assets"
	KeyDeltaAP                 = "delta_ap"
	KeyDeltaAccruedPayroll     = "delta_accrued_payroll"
	KeyDeltaDeferredRevenue    = "delta_deferred_revenue"
	KeyDeltaInterestPayable    = "delta_interest_payable"
	KeyDeltaOtherCurrentLiabs  = "delta_other_current_liabilities"
	KeyDeltaIncomeTaxesPayable = "delta_income_taxes_payable"
	KeyDeltaDebt               = "delta_debt"
	KeyCapex                   = "capex"
	KeyStockIssuance           = "stock_issuance"
	KeyDividends               = "dividends"
)

// IncomeStatementKeys are the keys the GL overlay owns during a merge.
var IncomeStatementKeys = []string{
	KeyRevenue, KeyCOGS, KeyDistributionExpenses, KeyMarketingAdmin,
	KeyResearchDev, KeyDepreciationExpense, KeyInterestExpense,
	KeyTaxExpense, KeyNetIncome,
}

// BalanceSheetKeys are guaranteed present (zero-defaulted) on every year,
// including the opening snapshot.
var BalanceSheetKeys = []string{
	KeyCash, KeyAccountsReceivable, KeyInventory, KeyPrepaidExpenses,
	KeyOtherCurrentAssets, KeyPPEGross, KeyAccumulatedDepreciation,
	KeyAccountsPayable, KeyAccruedPayroll, KeyDeferredRevenue,
	KeyInterestPayable, KeyOtherCurrentLiabilities, KeyIncomeTaxesPayable,
	KeyLongTermDebt, KeyCommonStock, KeyRetainedEarnings,
}

// WorkingCapitalDeltaKeys are the ten operating deltas feeding cash from
// operations, in presentation order.
var WorkingCapitalDeltaKeys = []string{
	KeyDeltaAR, KeyDeltaInventory, KeyDeltaPrepaid, KeyDeltaOtherCurrentAssets,
	KeyDeltaAP, KeyDeltaAccruedPayroll, KeyDeltaDeferredRevenue,
	KeyDeltaInterestPayable, KeyDeltaOtherCurrentLiabs, KeyDeltaIncomeTaxesPayable,
}

// YearStatement maps line-item keys to USD amounts for one calendar year.
// Absent keys read as zero.
type YearStatement map[string]float64

// Subtotals below mirror the statement presentation; they are derived on
// demand and never stored as keys.

// GrossProfit is revenue less cost of goods sold.
func (s YearStatement) GrossProfit() float64 {
	return s[KeyRevenue] - s[KeyCOGS]
}

// TotalOpex sums the four operating expense lines.
func (s YearStatement) TotalOpex() float64 {
	return s[KeyDistributionExpenses] + s[KeyMarketingAdmin] + s[KeyResearchDev] + s[KeyDepreciationExpense]
}

// EBIT is gross profit less operating expenses.
func (s YearStatement) EBIT() float64 {
	return s.GrossProfit() - s.TotalOpex()
}

// EBT is EBIT less interest expense.
func (s YearStatement) EBT() float64 {
	return s.EBIT() - s[KeyInterestExpense]
}

// NetPPE is gross PP&E less accumulated depreciation.
func (s YearStatement) NetPPE() float64 {
	return s[KeyPPEGross] - s[KeyAccumulatedDepreciation]
}

// TotalAssets covers the modelled asset set: current assets plus net PP&E.
func (s YearStatement) TotalAssets() float64 {
	return s[KeyCash] + s[KeyAccountsReceivable] + s[KeyInventory] +
		s[KeyPrepaidExpenses] + s[KeyOtherCurrentAssets] + s.NetPPE()
}

// TotalLiabilities sums the seven modelled liability lines.
func (s YearStatement) TotalLiabilities() float64 {
	return s[KeyAccountsPayable] + s[KeyAccruedPayroll] + s[KeyDeferredRevenue] +
		s[KeyInterestPayable] + s[KeyOtherCurrentLiabilities] +
		s[KeyIncomeTaxesPayable] + s[KeyLongTermDebt]
}

// TotalEquity is common stock plus retained earnings, both as reported by
// the trial balance.
func (s YearStatement) TotalEquity() float64 {
	return s[KeyCommonStock] + s[KeyRetainedEarnings]
}

// CashFromOperations is net income plus depreciation plus the signed working
// capital deltas.
func (s YearStatement) CashFromOperations() float64 {
	wc := 0.0
	for _, k := range WorkingCapitalDeltaKeys {
		wc += s[k]
	}
	return s[KeyNetIncome] + s[KeyDepreciationExpense] + wc
}

// CashFromInvesting is capex (already negative for purchases).
func (s YearStatement) CashFromInvesting() float64 {
	return s[KeyCapex]
}

// CashFromFinancing is stock issuance less dividends plus the debt delta.
func (s YearStatement) CashFromFinancing() float64 {
	return s[KeyStockIssuance] - s[KeyDividends] + s[KeyDeltaDebt]
}

// NetCashChange is the sum of the three cash flow sections.
func (s YearStatement) NetCashChange() float64 {
	return s.CashFromOperations() + s.CashFromInvesting() + s.CashFromFinancing()
}
