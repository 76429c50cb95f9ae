// Package classify maps raw ledger accounts to financial statement line item
// (FSLI) categories. Classification is two-tier: name-based alias matching
// first, account number range fallback second, with an explicit unclassified
// sentinel for accounts neither tier can place.
package classify

import (
	"regexp"
	"strings"

	"threestmt/pkg/models"
)

// Category is an FSLI bucket. Values double as statement line-item keys.
type Category string

const (
	// Assets
	Cash                    Category = "cash"
	AccountsReceivable      Category = "accounts_receivable"
	Inventory               Category = "inventory"
	PrepaidExpenses         Category = "prepaid_expenses"
	OtherCurrentAssets      Category = "other_current_assets"
	PPEGross                Category = "ppe_gross"
	AccumulatedDepreciation Category = "accumulated_depreciation"
	OtherFixedAssets        Category = "other_fixed_assets"

	// Liabilities
	AccountsPayable         Category = "accounts_payable"
	AccruedPayroll          Category = "accrued_payroll"
	DeferredRevenue         Category = "deferred_revenue"
	InterestPayable         Category = "interest_payable"
	OtherCurrentLiabilities Category = "other_current_liabilities"
	IncomeTaxesPayable      Category = "income_taxes_payable"
	LongTermDebt            Category = "long_term_debt"

	// Equity
	CommonStock      Category = "common_stock"
	RetainedEarnings Category = "retained_earnings"
	Dividends        Category = "dividends"

	// Income statement
	Revenue              Category = "revenue"
	COGS                 Category = "cogs"
	DistributionExpenses Category = "distribution_expenses"
	MarketingAdmin       Category = "marketing_admin"
	ResearchDev          Category = "research_dev"
	DepreciationExpense  Category = "depreciation_expense"
	OtherOpex            Category = "other_opex"
	InterestExpense      Category = "interest_expense"
	TaxExpense           Category = "tax_expense"

	// Unclassified is the sentinel for accounts neither tier can place.
	Unclassified Category = "unclassified"
)

// Policy names the matching behavior of the name tier. Only the permissive
// bidirectional substring policy exists today; the name is explicit so a
// stricter word-boundary policy can be added without touching call sites.
type Policy string

const PolicyPermissiveSubstring Policy = "permissive_substring"

type aliasEntry struct {
	category Category
	aliases  []string
}

// accountNameAliases is scanned in order; the first matching alias wins, so
// entry order is part of the contract (e.g. a bare "depreciation" lands on
// accumulated_depreciation, which precedes depreciation_expense).
var accountNameAliases = []aliasEntry{
	// Assets
	{Cash, []string{
		"cash", "cash and cash equivalents", "cash equivalents",
		"bank", "petty cash", "cash on hand",
	}},
	{AccountsReceivable, []string{
		"accounts receivable", "a/r", "ar", "trade receivable",
		"trade and other receivables", "receivables", "debtors",
	}},
	{Inventory, []string{
		"inventory", "inventories", "stock", "merchandise",
		"finished goods", "raw materials", "work in process", "wip",
	}},
	{PrepaidExpenses, []string{
		"prepaid", "prepaid expenses", "prepayments", "deferred expenses",
	}},
	{OtherCurrentAssets, []string{
		"other current assets", "current assets - other",
		"deposits", "advances",
	}},
	{PPEGross, []string{
		"property plant and equipment", "ppe", "pp&e", "fixed assets",
		"property, plant & equipment", "capital assets", "plant and equipment",
		"property and equipment", "equipment", "machinery", "buildings",
		"land and buildings", "furniture", "fixtures", "vehicles",
	}},
	{AccumulatedDepreciation, []string{
		"accumulated depreciation", "accumulated depr", "acc depreciation",
		"depreciation", "amortization",
	}},

	// Liabilities
	{AccountsPayable, []string{
		"accounts payable", "a/p", "ap", "trade payable",
		"trade payables", "payables", "creditors",
	}},
	{AccruedPayroll, []string{
		"accrued payroll", "accrued wages", "accrued salaries",
		"payroll payable", "wages payable", "salaries payable",
		"employee compensation", "accrued compensation", "bonus accrual",
	}},
	{DeferredRevenue, []string{
		"deferred revenue", "unearned revenue", "deferred income",
		"contract liabilities", "customer deposits", "advance payments",
		"prepayments from customers",
	}},
	{InterestPayable, []string{
		"interest payable", "accrued interest", "interest accrual",
	}},
	{OtherCurrentLiabilities, []string{
		"other current liabilities", "accrued liabilities",
		"accrued expenses", "other accruals", "current liabilities - other",
	}},
	{IncomeTaxesPayable, []string{
		"income taxes payable", "income tax payable", "tax payable",
		"taxes payable", "current tax liability",
	}},
	{LongTermDebt, []string{
		"long-term debt", "long term debt", "notes payable",
		"term loan", "revolver", "loan payable", "borrowings",
		"bank loan", "debt",
	}},

	// Equity
	{CommonStock, []string{
		"common stock", "share capital", "paid-in capital",
		"additional paid-in capital", "apic", "contributed capital",
		"common stock and additional paid-in capital",
	}},
	{RetainedEarnings, []string{
		"retained earnings", "accumulated earnings",
		"accumulated profits", "earnings retained",
	}},
	{Dividends, []string{
		"dividends", "dividend", "dividends declared",
		"common dividends", "dividend payable",
	}},

	// Income statement
	{Revenue, []string{
		"revenue", "revenues", "sales", "income", "turnover",
		"product revenue", "service revenue", "net sales",
	}},
	{COGS, []string{
		"cost of goods sold", "cogs", "cost of sales",
		"cost of revenue", "direct costs",
	}},
	{DistributionExpenses, []string{
		"distribution", "distribution expenses", "shipping",
		"freight", "delivery", "logistics",
	}},
	{MarketingAdmin, []string{
		"marketing", "marketing and administration", "sg&a",
		"selling general and administrative", "admin", "administrative",
		"general and administrative", "overhead",
	}},
	{ResearchDev, []string{
		"research and development", "r&d", "research", "development",
	}},
	{DepreciationExpense, []string{
		"depreciation expense", "depreciation", "amortization expense",
		"depr expense", "amort expense",
	}},
	{InterestExpense, []string{
		"interest expense", "interest", "finance charges",
		"interest on debt", "borrowing costs",
	}},
	{TaxExpense, []string{
		"income tax expense", "tax expense", "taxes",
		"provision for income taxes", "current tax", "income taxes",
	}},
}

var payrollKeywords = []string{"payroll", "wage", "salary", "bonus", "compensation"}

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeName lowercases, trims, collapses whitespace, strips commas and
// periods, and rewrites "&" to "and" so that name variants compare equal.
func NormalizeName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = whitespaceRe.ReplaceAllString(normalized, " ")
	normalized = strings.ReplaceAll(normalized, ",", "")
	normalized = strings.ReplaceAll(normalized, ".", "")
	normalized = strings.ReplaceAll(normalized, "&", "and")
	return normalized
}

// classifyAccrued applies the standard rule for accrued liabilities: payroll
// language means accrued_payroll, anything else is other_current_liabilities.
func classifyAccrued(accountName string) Category {
	lower := strings.ToLower(accountName)
	for _, kw := range payrollKeywords {
		if strings.Contains(lower, kw) {
			return AccruedPayroll
		}
	}
	return OtherCurrentLiabilities
}

// classifyByName runs the alias tier. The empty name never matches anything.
func classifyByName(accountName string) (Category, bool) {
	normalized := NormalizeName(accountName)
	if normalized == "" {
		return Unclassified, false
	}

	if strings.Contains(normalized, "accrued") {
		return classifyAccrued(accountName), true
	}

	for _, entry := range accountNameAliases {
		for _, alias := range entry.aliases {
			if strings.Contains(normalized, alias) || strings.Contains(alias, normalized) {
				return entry.category, true
			}
		}
	}
	return Unclassified, false
}

// Classifier maps accounts to FSLI categories. The zero-value semantics are
// not useful; construct with New.
type Classifier struct {
	policy Policy
	ranges RangeTable
}

// New returns a classifier using the given account number ranges, or the
// default chart when ranges is nil.
func New(ranges RangeTable) *Classifier {
	if ranges == nil {
		ranges = DefaultRanges
	}
	return &Classifier{policy: PolicyPermissiveSubstring, ranges: ranges}
}

// Policy reports the active name-matching policy.
func (c *Classifier) Policy() Policy { return c.policy }

// Classify resolves one account. Name matching is primary, number ranges are
// the fallback, unclassified is the result when neither applies. number may
// be nil for accounts without a numeric code.
func (c *Classifier) Classify(accountName string, number *int) Category {
	if cat, ok := classifyByName(accountName); ok {
		return cat
	}
	if number != nil {
		if cat, ok := c.ranges.Lookup(*number); ok {
			return cat
		}
	}
	return Unclassified
}

// ClassifiedRecord pairs a ledger record with its resolved category.
type ClassifiedRecord struct {
	models.LedgerRecord
	Category Category `json:"category"`
}

// ClassifyRecords resolves every record. Input order is preserved and the
// result is deterministic for a given classifier.
func (c *Classifier) ClassifyRecords(records []models.LedgerRecord) []ClassifiedRecord {
	out := make([]ClassifiedRecord, 0, len(records))
	for _, r := range records {
		out = append(out, ClassifiedRecord{
			LedgerRecord: r,
			Category:     c.Classify(r.AccountName, r.AccountNumber),
		})
	}
	return out
}

// Stats summarizes how well a dataset classified.
type Stats struct {
	TotalAccounts        int              `json:"total_accounts"`
	MappedAccounts       int              `json:"mapped_accounts"`
	UnclassifiedAccounts int              `json:"unclassified_accounts"`
	MappingRate          float64          `json:"mapping_rate"`
	CategoryCounts       map[Category]int `json:"category_distribution"`
}

// ComputeStats tallies mapping coverage over classified records.
func ComputeStats(records []ClassifiedRecord) Stats {
	s := Stats{CategoryCounts: make(map[Category]int)}
	s.TotalAccounts = len(records)
	for _, r := range records {
		s.CategoryCounts[r.Category]++
		if r.Category == Unclassified {
			s.UnclassifiedAccounts++
		} else {
			s.MappedAccounts++
		}
	}
	if s.TotalAccounts > 0 {
		s.MappingRate = float64(s.MappedAccounts) / float64(s.TotalAccounts)
	}
	return s
}
