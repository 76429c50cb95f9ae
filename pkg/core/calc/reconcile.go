package calc

// CheckResult carries the reconciliation residuals for one statement year.
// Residuals are reported raw; whether a residual counts as "reconciled" is
// caller policy (the CLI uses a one-cent tolerance).
type CheckResult struct {
	// BalanceSheetCheck is assets minus (liabilities + equity), where equity
	// is the trial balance input, not a forced roll-forward.
	BalanceSheetCheck float64 `json:"balance_sheet_check"`
	// CashFlowCheck is ending cash per the trial balance minus ending cash
	// per the indirect-method roll-forward.
	CashFlowCheck float64 `json:"cashflow_check"`
	// Retained earnings roll-forward diagnostics. Calc chains from the
	// opening snapshot; the diff is TB minus calc.
	RetainedEarningsCalc float64 `json:"retained_earnings_calc"`
	RetainedEarningsTB   float64 `json:"retained_earnings_tb"`
	RetainedEarningsDiff float64 `json:"retained_earnings_diff"`
}

// Reconcile computes per-year checks over a merged statement set. The
// earliest year is treated as the opening snapshot and gets no checks of its
// own. Fewer than two years means there is nothing to roll forward, so the
// result is empty. Reconcile never fails: imbalances are findings, not
// errors.
func Reconcile(statements map[int]YearStatement) map[int]CheckResult {
	years := Years(statements)
	if len(years) < 2 {
		return map[int]CheckResult{}
	}

	year0 := years[0]
	stmtYears := years[1:]

	reCalc := statements[year0][KeyRetainedEarnings]
	checks := make(map[int]CheckResult, len(stmtYears))

	prev := year0
	for _, y := range stmtYears {
		cur := statements[y]

		ni := cur[KeyNetIncome]
		div := cur[KeyDividends]
		reCalc = reCalc + ni - div

		bsCheck := cur.TotalAssets() - (cur.TotalLiabilities() + cur.TotalEquity())

		beginCash := statements[prev][KeyCash]
		endCashCalc := beginCash + cur.NetCashChange()
		cfCheck := cur[KeyCash] - endCashCalc

		reTB := cur[KeyRetainedEarnings]
		checks[y] = CheckResult{
			BalanceSheetCheck:    bsCheck,
			CashFlowCheck:        cfCheck,
			RetainedEarningsCalc: reCalc,
			RetainedEarningsTB:   reTB,
			RetainedEarningsDiff: reTB - reCalc,
		}
		prev = y
	}

	return checks
}
