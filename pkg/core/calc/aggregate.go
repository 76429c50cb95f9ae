package calc

import (
	"math"
	"sort"

	"threestmt/pkg/core/classify"
	"threestmt/pkg/models"
)

// Aggregate builds one YearStatement per calendar year from classified
// records. Trial balance data is a snapshot set: only the rows on the latest
// date within each year count, so monthly snapshots are never summed. GL
// activity sums every posting in the year. Rows without a date are dropped.
//
// When two or more years are present, a trailing pass fills cash flow deltas
// between consecutive years. That pass exists for single-source mode;
// MergeTBGL recomputes every delta against the opening snapshot and
// overwrites these values when both datasets are available.
func Aggregate(records []classify.ClassifiedRecord, kind models.DatasetKind) map[int]YearStatement {
	byYear := make(map[int][]classify.ClassifiedRecord)
	for _, r := range records {
		if !r.HasDate() {
			continue
		}
		y := r.TxnDate.Year()
		byYear[y] = append(byYear[y], r)
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	out := make(map[int]YearStatement, len(years))
	for _, y := range years {
		rows := byYear[y]
		if kind == models.TrialBalance {
			rows = latestSnapshot(rows)
		}
		s := buildStatement(rows)
		if kind == models.GLActivity {
			// Activity postings net to period movement, not a balance;
			// presenting movement as a balance would be wrong, so GL
			// statements carry zero balance sheet lines.
			for _, k := range BalanceSheetKeys {
				s[k] = 0
			}
		}
		out[y] = s
	}

	for i := 1; i < len(years); i++ {
		addDeltas(out[years[i]], out[years[i-1]])
	}

	return out
}

// latestSnapshot keeps only the rows dated on the latest TxnDate present.
func latestSnapshot(rows []classify.ClassifiedRecord) []classify.ClassifiedRecord {
	var latest = rows[0].TxnDate
	for _, r := range rows[1:] {
		if r.TxnDate.After(latest) {
			latest = r.TxnDate
		}
	}
	var out []classify.ClassifiedRecord
	for _, r := range rows {
		if r.TxnDate.Equal(latest) {
			out = append(out, r)
		}
	}
	return out
}

type sumMode int

const (
	sumNet sumMode = iota // debit - credit
	sumDebit
	sumCredit
)

func sumCategory(rows []classify.ClassifiedRecord, cat classify.Category, mode sumMode) float64 {
	total := 0.0
	for _, r := range rows {
		if r.Category != cat {
			continue
		}
		debit, _ := r.Debit.Float64()
		credit, _ := r.Credit.Float64()
		switch mode {
		case sumDebit:
			total += debit
		case sumCredit:
			total += credit
		default:
			total += debit - credit
		}
	}
	return total
}

// buildStatement computes all stored line items for one year's rows.
// Revenue is credit-normal and expenses are debit-normal; balance sheet
// lines use net amounts, with liabilities, equity and accumulated
// depreciation normalized to positive magnitudes.
func buildStatement(rows []classify.ClassifiedRecord) YearStatement {
	s := make(YearStatement)

	// Income statement
	s[KeyRevenue] = sumCategory(rows, classify.Revenue, sumCredit)
	s[KeyCOGS] = sumCategory(rows, classify.COGS, sumDebit)
	s[KeyDistributionExpenses] = sumCategory(rows, classify.DistributionExpenses, sumDebit)
	s[KeyMarketingAdmin] = sumCategory(rows, classify.MarketingAdmin, sumDebit)
	s[KeyResearchDev] = sumCategory(rows, classify.ResearchDev, sumDebit)
	s[KeyDepreciationExpense] = sumCategory(rows, classify.DepreciationExpense, sumDebit)
	s[KeyInterestExpense] = sumCategory(rows, classify.InterestExpense, sumDebit)
	s[KeyTaxExpense] = sumCategory(rows, classify.TaxExpense, sumDebit)
	s[KeyNetIncome] = s.EBT() - s[KeyTaxExpense]

	// Assets
	s[KeyCash] = sumCategory(rows, classify.Cash, sumNet)
	s[KeyAccountsReceivable] = sumCategory(rows, classify.AccountsReceivable, sumNet)
	s[KeyInventory] = sumCategory(rows, classify.Inventory, sumNet)
	s[KeyPrepaidExpenses] = sumCategory(rows, classify.PrepaidExpenses, sumNet)
	s[KeyOtherCurrentAssets] = sumCategory(rows, classify.OtherCurrentAssets, sumNet)
	s[KeyPPEGross] = sumCategory(rows, classify.PPEGross, sumNet)
	s[KeyAccumulatedDepreciation] = math.Abs(sumCategory(rows, classify.AccumulatedDepreciation, sumNet))

	// Liabilities
	s[KeyAccountsPayable] = math.Abs(sumCategory(rows, classify.AccountsPayable, sumNet))
	s[KeyAccruedPayroll] = math.Abs(sumCategory(rows, classify.AccruedPayroll, sumNet))
	s[KeyDeferredRevenue] = math.Abs(sumCategory(rows, classify.DeferredRevenue, sumNet))
	s[KeyInterestPayable] = math.Abs(sumCategory(rows, classify.InterestPayable, sumNet))
	s[KeyOtherCurrentLiabilities] = math.Abs(sumCategory(rows, classify.OtherCurrentLiabilities, sumNet))
	s[KeyIncomeTaxesPayable] = math.Abs(sumCategory(rows, classify.IncomeTaxesPayable, sumNet))
	s[KeyLongTermDebt] = math.Abs(sumCategory(rows, classify.LongTermDebt, sumNet))

	// Equity
	s[KeyCommonStock] = math.Abs(sumCategory(rows, classify.CommonStock, sumNet))
	s[KeyRetainedEarnings] = math.Abs(sumCategory(rows, classify.RetainedEarnings, sumNet))

	return s
}

// addDeltas fills cash flow drivers on cur from the change against prev.
// Asset increases consume cash (negative), liability increases free it.
func addDeltas(cur, prev YearStatement) {
	cur[KeyDeltaAR] = -(cur[KeyAccountsReceivable] - prev[KeyAccountsReceivable])
	cur[KeyDeltaInventory] = -(cur[KeyInventory] - prev[KeyInventory])
	cur[KeyDeltaPrepaid] = -(cur[KeyPrepaidExpenses] - prev[KeyPrepaidExpenses])
	cur[KeyDeltaOtherCurrentAssets] = -(cur[KeyOtherCurrentAssets] - prev[KeyOtherCurrentAssets])
	cur[KeyDeltaAP] = cur[KeyAccountsPayable] - prev[KeyAccountsPayable]
	cur[KeyDeltaAccruedPayroll] = cur[KeyAccruedPayroll] - prev[KeyAccruedPayroll]
	cur[KeyDeltaDeferredRevenue] = cur[KeyDeferredRevenue] - prev[KeyDeferredRevenue]
	cur[KeyDeltaInterestPayable] = cur[KeyInterestPayable] - prev[KeyInterestPayable]
	cur[KeyDeltaOtherCurrentLiabs] = cur[KeyOtherCurrentLiabilities] - prev[KeyOtherCurrentLiabilities]
	cur[KeyDeltaIncomeTaxesPayable] = cur[KeyIncomeTaxesPayable] - prev[KeyIncomeTaxesPayable]
	cur[KeyDeltaDebt] = cur[KeyLongTermDebt] - prev[KeyLongTermDebt]
	cur[KeyCapex] = -(cur[KeyPPEGross] - prev[KeyPPEGross])
	cur[KeyStockIssuance] = cur[KeyCommonStock] - prev[KeyCommonStock]
}
