package calc

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"threestmt/pkg/core/classify"
	"threestmt/pkg/models"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func row(date string, cat classify.Category, debit, credit float64) classify.ClassifiedRecord {
	return classify.ClassifiedRecord{
		LedgerRecord: models.LedgerRecord{
			TxnDate: day(date),
			Debit:   decimal.NewFromFloat(debit),
			Credit:  decimal.NewFromFloat(credit),
		},
		Category: cat,
	}
}

func approx(t *testing.T, label string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", label, got, want)
	}
}

// Trial balance files are snapshots: within a year only the latest date
// counts, so a March and a December snapshot never add together.
func TestAggregateTrialBalanceLatestSnapshot(t *testing.T) {
	records := []classify.ClassifiedRecord{
		row("2023-03-31", classify.Cash, 80, 0),
		row("2023-12-31", classify.Cash, 100, 0),
		row("2023-12-31", classify.RetainedEarnings, 0, 100),
	}
	out := Aggregate(records, models.TrialBalance)
	s, ok := out[2023]
	if !ok {
		t.Fatal("missing 2023 statement")
	}
	approx(t, "cash", s[KeyCash], 100)
	approx(t, "retained earnings", s[KeyRetainedEarnings], 100)
}

// GL activity sums every posting in the year.
func TestAggregateGLSumsActivity(t *testing.T) {
	records := []classify.ClassifiedRecord{
		row("2023-03-01", classify.Revenue, 0, 600),
		row("2023-09-01", classify.Revenue, 0, 400),
		row("2023-05-01", classify.COGS, 300, 0),
	}
	out := Aggregate(records, models.GLActivity)
	s := out[2023]
	approx(t, "revenue", s[KeyRevenue], 1000)
	approx(t, "cogs", s[KeyCOGS], 300)
	approx(t, "net income", s[KeyNetIncome], 700)
	approx(t, "gross profit", s.GrossProfit(), 700)
}

// Credit-normal balance sheet lines come out as positive magnitudes even
// though their net debit-credit sum is negative.
func TestAggregateSignNormalization(t *testing.T) {
	records := []classify.ClassifiedRecord{
		row("2023-12-31", classify.Cash, 500, 0),
		row("2023-12-31", classify.AccountsPayable, 0, 200),
		row("2023-12-31", classify.LongTermDebt, 0, 150),
		row("2023-12-31", classify.CommonStock, 0, 100),
		row("2023-12-31", classify.RetainedEarnings, 0, 50),
		row("2023-12-31", classify.AccumulatedDepreciation, 0, 30),
		row("2023-12-31", classify.PPEGross, 80, 0),
	}
	out := Aggregate(records, models.TrialBalance)
	s := out[2023]
	approx(t, "accounts payable", s[KeyAccountsPayable], 200)
	approx(t, "long-term debt", s[KeyLongTermDebt], 150)
	approx(t, "common stock", s[KeyCommonStock], 100)
	approx(t, "accumulated depreciation", s[KeyAccumulatedDepreciation], 30)
	approx(t, "net ppe", s.NetPPE(), 50)
	approx(t, "total assets", s.TotalAssets(), 550)
	approx(t, "total liabilities", s.TotalLiabilities(), 350)
	approx(t, "total equity", s.TotalEquity(), 150)
}

func TestAggregateDropsDatelessRows(t *testing.T) {
	records := []classify.ClassifiedRecord{
		{
			LedgerRecord: models.LedgerRecord{Debit: decimal.NewFromInt(999)},
			Category:     classify.Cash,
		},
		row("2023-12-31", classify.Cash, 100, 0),
	}
	out := Aggregate(records, models.TrialBalance)
	if len(out) != 1 {
		t.Fatalf("expected 1 year, got %d", len(out))
	}
	approx(t, "cash", out[2023][KeyCash], 100)
}

// With two or more years the single-source fallback fills cash flow deltas
// between consecutive years.
func TestAggregateConsecutiveYearDeltas(t *testing.T) {
	records := []classify.ClassifiedRecord{
		row("2022-12-31", classify.AccountsReceivable, 50, 0),
		row("2022-12-31", classify.AccountsPayable, 0, 20),
		row("2023-12-31", classify.AccountsReceivable, 80, 0),
		row("2023-12-31", classify.AccountsPayable, 0, 35),
	}
	out := Aggregate(records, models.TrialBalance)

	cur := out[2023]
	// Asset build-up is a cash outflow; liability build-up frees cash.
	approx(t, "delta AR", cur[KeyDeltaAR], -30)
	approx(t, "delta AP", cur[KeyDeltaAP], 15)

	// The first year has no prior, so no deltas.
	if _, ok := out[2022][KeyDeltaAR]; ok {
		t.Error("first year should not carry deltas")
	}
}

// Activity data carries no balances: balance sheet lines on a GL aggregate
// are zero even when the GL posts against balance sheet accounts.
func TestAggregateGLZeroesBalanceSheet(t *testing.T) {
	records := []classify.ClassifiedRecord{
		row("2023-03-01", classify.Cash, 600, 0),
		row("2023-03-01", classify.Revenue, 0, 600),
	}
	out := Aggregate(records, models.GLActivity)
	s := out[2023]
	approx(t, "revenue", s[KeyRevenue], 600)
	approx(t, "cash", s[KeyCash], 0)
}

func TestAggregateEmptyInput(t *testing.T) {
	out := Aggregate(nil, models.GLActivity)
	if len(out) != 0 {
		t.Errorf("expected empty result, got %d years", len(out))
	}
}
