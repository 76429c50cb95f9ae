// Package report renders finished statements as plain-text tables. Each
// presentation row is a tagged variant: a header, a spacer, a direct line
// item read straight from the statement, or a derived subtotal resolved
// through an explicit formula table.
package report

import "threestmt/pkg/core/calc"

// RowKind tags the variant of a presentation row.
type RowKind int

const (
	RowHeader RowKind = iota
	RowSpacer
	RowDirect  // value is statements[year][Key]
	RowDerived // value comes from the formula dispatch table
)

// Formula names a derived-row computation. Every value here must have an
// entry in formulas; Resolve treats a missing entry as a zero row.
type Formula string

const (
	FormulaGrossProfit            Formula = "gross_profit"
	FormulaTotalOpex              Formula = "total_opex"
	FormulaEBIT                   Formula = "ebit"
	FormulaEBT                    Formula = "ebt"
	FormulaGrossMargin            Formula = "gross_margin"
	FormulaNetMargin              Formula = "net_margin"
	FormulaNetPPE                 Formula = "net_ppe"
	FormulaTotalAssets            Formula = "total_assets"
	FormulaTotalLiabilities       Formula = "total_liabilities"
	FormulaTotalEquity            Formula = "total_equity"
	FormulaTotalLiabilitiesEquity Formula = "total_liabilities_equity"
	FormulaCashFromOperations     Formula = "cash_from_operations"
	FormulaCashFromInvesting      Formula = "cash_from_investing"
	FormulaCashFromFinancing      Formula = "cash_from_financing"
	FormulaNetCashChange          Formula = "net_cash_change"
	FormulaBeginningCash          Formula = "beginning_cash"
	FormulaEndingCash             Formula = "ending_cash"
)

// formulas is the single dispatch point for derived rows. prev is the prior
// year's statement (the opening snapshot for the first statement year) and
// may be nil for formulas that do not look back.
var formulas = map[Formula]func(cur, prev calc.YearStatement) float64{
	FormulaGrossProfit: func(cur, _ calc.YearStatement) float64 { return cur.GrossProfit() },
	FormulaTotalOpex:   func(cur, _ calc.YearStatement) float64 { return cur.TotalOpex() },
	FormulaEBIT:        func(cur, _ calc.YearStatement) float64 { return cur.EBIT() },
	FormulaEBT:         func(cur, _ calc.YearStatement) float64 { return cur.EBT() },
	FormulaGrossMargin: func(cur, _ calc.YearStatement) float64 { return calc.ComputeMargins(cur).GrossMargin },
	FormulaNetMargin:   func(cur, _ calc.YearStatement) float64 { return calc.ComputeMargins(cur).NetMargin },
	FormulaNetPPE:      func(cur, _ calc.YearStatement) float64 { return cur.NetPPE() },
	FormulaTotalAssets: func(cur, _ calc.YearStatement) float64 { return cur.TotalAssets() },
	FormulaTotalLiabilities: func(cur, _ calc.YearStatement) float64 {
		return cur.TotalLiabilities()
	},
	FormulaTotalEquity: func(cur, _ calc.YearStatement) float64 { return cur.TotalEquity() },
	FormulaTotalLiabilitiesEquity: func(cur, _ calc.YearStatement) float64 {
		return cur.TotalLiabilities() + cur.TotalEquity()
	},
	FormulaCashFromOperations: func(cur, _ calc.YearStatement) float64 { return cur.CashFromOperations() },
	FormulaCashFromInvesting:  func(cur, _ calc.YearStatement) float64 { return cur.CashFromInvesting() },
	FormulaCashFromFinancing:  func(cur, _ calc.YearStatement) float64 { return cur.CashFromFinancing() },
	FormulaNetCashChange:      func(cur, _ calc.YearStatement) float64 { return cur.NetCashChange() },
	FormulaBeginningCash: func(_, prev calc.YearStatement) float64 {
		return prev[calc.KeyCash]
	},
	FormulaEndingCash: func(cur, prev calc.YearStatement) float64 {
		return prev[calc.KeyCash] + cur.NetCashChange()
	},
}

// Row is one presentation row.
type Row struct {
	Kind    RowKind
	Label   string
	Key     string  // RowDirect only
	Formula Formula // RowDerived only
	Percent bool    // render as a percentage
}

// Resolve computes a row's value for one year. ok is false for headers,
// spacers and unknown formulas.
func Resolve(row Row, cur, prev calc.YearStatement) (value float64, ok bool) {
	switch row.Kind {
	case RowDirect:
		return cur[row.Key], true
	case RowDerived:
		fn, found := formulas[row.Formula]
		if !found {
			return 0, false
		}
		return fn(cur, prev), true
	default:
		return 0, false
	}
}

// IncomeStatementRows lays out the income statement.
func IncomeStatementRows() []Row {
	return []Row{
		{Kind: RowHeader, Label: "INCOME STATEMENT"},
		{Kind: RowDirect, Label: "Revenues", Key: calc.KeyRevenue},
		{Kind: RowDirect, Label: "Cost of Goods Sold", Key: calc.KeyCOGS},
		{Kind: RowDerived, Label: "Gross Profit", Formula: FormulaGrossProfit},
		{Kind: RowSpacer},
		{Kind: RowDirect, Label: "Distribution Expenses", Key: calc.KeyDistributionExpenses},
		{Kind: RowDirect, Label: "Marketing and Administration", Key: calc.KeyMarketingAdmin},
		{Kind: RowDirect, Label: "Research and Development", Key: calc.KeyResearchDev},
		{Kind: RowDirect, Label: "Depreciation", Key: calc.KeyDepreciationExpense},
		{Kind: RowDerived, Label: "Total Operating Expenses", Formula: FormulaTotalOpex},
		{Kind: RowDerived, Label: "EBIT", Formula: FormulaEBIT},
		{Kind: RowSpacer},
		{Kind: RowDirect, Label: "Interest", Key: calc.KeyInterestExpense},
		{Kind: RowDerived, Label: "EBT", Formula: FormulaEBT},
		{Kind: RowDirect, Label: "Taxes", Key: calc.KeyTaxExpense},
		{Kind: RowDirect, Label: "Net Income", Key: calc.KeyNetIncome},
		{Kind: RowSpacer},
		{Kind: RowDerived, Label: "Gross Margin", Formula: FormulaGrossMargin, Percent: true},
		{Kind: RowDerived, Label: "Net Margin", Formula: FormulaNetMargin, Percent: true},
	}
}

// BalanceSheetRows lays out the balance sheet.
func BalanceSheetRows() []Row {
	return []Row{
		{Kind: RowHeader, Label: "BALANCE SHEET"},
		{Kind: RowDirect, Label: "Cash", Key: calc.KeyCash},
		{Kind: RowDirect, Label: "Trade and Other Receivables", Key: calc.KeyAccountsReceivable},
		{Kind: RowDirect, Label: "Inventories", Key: calc.KeyInventory},
		{Kind: RowDirect, Label: "Prepaid Expenses", Key: calc.KeyPrepaidExpenses},
		{Kind: RowDirect, Label: "Other Current Assets", Key: calc.KeyOtherCurrentAssets},
		{Kind: RowDirect, Label: "Property Plant and Equipment - Gross", Key: calc.KeyPPEGross},
		{Kind: RowDirect, Label: "Less: Accumulated Depreciation", Key: calc.KeyAccumulatedDepreciation},
		{Kind: RowDerived, Label: "Net Property Plant and Equipment", Formula: FormulaNetPPE},
		{Kind: RowDerived, Label: "Total Assets", Formula: FormulaTotalAssets},
		{Kind: RowSpacer},
		{Kind: RowDirect, Label: "Accounts Payable", Key: calc.KeyAccountsPayable},
		{Kind: RowDirect, Label: "Accrued Payroll", Key: calc.KeyAccruedPayroll},
		{Kind: RowDirect, Label: "Deferred Revenue", Key: calc.KeyDeferredRevenue},
		{Kind: RowDirect, Label: "Interest Payable", Key: calc.KeyInterestPayable},
		{Kind: RowDirect, Label: "Other Current Liabilities", Key: calc.KeyOtherCurrentLiabilities},
		{Kind: RowDirect, Label: "Income Taxes Payable", Key: calc.KeyIncomeTaxesPayable},
		{Kind: RowDirect, Label: "Long-Term Debt", Key: calc.KeyLongTermDebt},
		{Kind: RowDerived, Label: "Total Liabilities", Formula: FormulaTotalLiabilities},
		{Kind: RowSpacer},
		{Kind: RowDirect, Label: "Common Stock and Additional Paid-In Capital", Key: calc.KeyCommonStock},
		{Kind: RowDirect, Label: "Retained Earnings", Key: calc.KeyRetainedEarnings},
		{Kind: RowDerived, Label: "Total Equity", Formula: FormulaTotalEquity},
		{Kind: RowDerived, Label: "Total Liabilities and Equity", Formula: FormulaTotalLiabilitiesEquity},
	}
}

// CashFlowRows lays out the indirect-method cash flow statement.
func CashFlowRows() []Row {
	return []Row{
		{Kind: RowHeader, Label: "CASH FLOW STATEMENT"},
		{Kind: RowDirect, Label: "Net Income", Key: calc.KeyNetIncome},
		{Kind: RowDirect, Label: "Depreciation", Key: calc.KeyDepreciationExpense},
		{Kind: RowDirect, Label: "Change in Accounts Receivable", Key: calc.KeyDeltaAR},
		{Kind: RowDirect, Label: "Change in Inventory", Key: calc.KeyDeltaInventory},
		{Kind: RowDirect, Label: "Change in Prepaid Expenses", Key: calc.KeyDeltaPrepaid},
		{Kind: RowDirect, Label: "Change in Other Current Assets", Key: calc.KeyDeltaOtherCurrentAssets},
		{Kind: RowDirect, Label: "Change in Accounts Payable", Key: calc.KeyDeltaAP},
		{Kind: RowDirect, Label: "Change in Accrued Payroll", Key: calc.KeyDeltaAccruedPayroll},
		{Kind: RowDirect, Label: "Change in Deferred Revenue", Key: calc.KeyDeltaDeferredRevenue},
		{Kind: RowDirect, Label: "Change in Interest Payable", Key: calc.KeyDeltaInterestPayable},
		{Kind: RowDirect, Label: "Change in Other Current Liabilities", Key: calc.KeyDeltaOtherCurrentLiabs},
		{Kind: RowDirect, Label: "Change in Income Taxes Payable", Key: calc.KeyDeltaIncomeTaxesPayable},
		{Kind: RowDerived, Label: "Cash from Operations", Formula: FormulaCashFromOperations},
		{Kind: RowSpacer},
		{Kind: RowDirect, Label: "Acquisitions of Property and Equipment", Key: calc.KeyCapex},
		{Kind: RowDerived, Label: "Cash from Investing", Formula: FormulaCashFromInvesting},
		{Kind: RowSpacer},
		{Kind: RowDirect, Label: "Issuance of Common Stock", Key: calc.KeyStockIssuance},
		{Kind: RowDirect, Label: "Dividends (current year)", Key: calc.KeyDividends},
		{Kind: RowDirect, Label: "Increase/(Decrease) in Long-Term Debt", Key: calc.KeyDeltaDebt},
		{Kind: RowDerived, Label: "Cash from Financing", Formula: FormulaCashFromFinancing},
		{Kind: RowSpacer},
		{Kind: RowDerived, Label: "Net Change in Cash", Formula: FormulaNetCashChange},
		{Kind: RowDerived, Label: "Beginning Cash", Formula: FormulaBeginningCash},
		{Kind: RowDerived, Label: "Ending Cash", Formula: FormulaEndingCash},
	}
}
