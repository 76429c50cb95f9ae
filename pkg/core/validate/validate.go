// Package validate checks ledger datasets before they reach statement math:
// debit/credit balancing per period and per transaction, plus common data
// quality findings with optional auto-fixes.
package validate

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"threestmt/pkg/models"
)

// Severity grades a validation issue.
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityWarning  Severity = "Warning"
	SeverityInfo     Severity = "Info"
)

// Fix names an auto-fix that can repair the issue carrying it.
type Fix string

const (
	FixRemoveMissingDates Fix = "remove_missing_dates"
	FixMapUnclassified    Fix = "map_unclassified"
	FixAccountNumbers     Fix = "fix_account_numbers"
	FixRemoveDuplicates   Fix = "remove_duplicates"
	FixRemoveFutureDates  Fix = "remove_future_dates"
)

// Issue is one validation finding. AffectedRows holds input indices, capped
// at 100 entries; TotalAffected carries the real count.
type Issue struct {
	Severity      Severity `json:"severity"`
	Category      string   `json:"category"`
	Summary       string   `json:"issue"`
	Impact        string   `json:"impact"`
	Suggestion    string   `json:"suggestion"`
	AutoFix       Fix      `json:"auto_fix,omitempty"`
	AffectedRows  []int    `json:"affected_rows,omitempty"`
	TotalAffected int      `json:"total_affected"`
	Detail        string   `json:"detail,omitempty"`
}

// Tolerances bounds acceptable debit/credit drift. The effective tolerance
// for a comparison is max(Abs, Rel * larger side).
type Tolerances struct {
	Abs decimal.Decimal
	Rel decimal.Decimal
}

// DefaultTolerances allows one cent absolute or 0.01% relative drift.
func DefaultTolerances() Tolerances {
	return Tolerances{
		Abs: decimal.NewFromFloat(0.01),
		Rel: decimal.NewFromFloat(0.0001),
	}
}

func (t Tolerances) bound(maxSide decimal.Decimal) decimal.Decimal {
	rel := maxSide.Mul(t.Rel)
	if rel.LessThan(t.Abs) {
		return t.Abs
	}
	return rel
}

// balanced reports whether debit and credit agree within tolerance.
func (t Tolerances) balanced(debit, credit decimal.Decimal) bool {
	maxSide := debit
	if credit.GreaterThan(maxSide) {
		maxSide = credit
	}
	return debit.Sub(credit).Abs().LessThanOrEqual(t.bound(maxSide))
}

// HasCritical reports whether any issue is Critical.
func HasCritical(issues []Issue) bool {
	for _, is := range issues {
		if is.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

const maxReportedRows = 100

func capRows(rows []int) []int {
	if len(rows) > maxReportedRows {
		return rows[:maxReportedRows]
	}
	return rows
}

// TrialBalance validates snapshot data: every period (distinct TxnDate) must
// balance, and the file as a whole must balance. Rows without a date are
// excluded from per-period grouping but still count toward the overall sums.
func TrialBalance(records []models.LedgerRecord, tol Tolerances) []Issue {
	var issues []Issue

	type sums struct{ debit, credit decimal.Decimal }
	periods := make(map[time.Time]*sums)
	var order []time.Time

	var totalDebit, totalCredit decimal.Decimal
	for _, r := range records {
		totalDebit = totalDebit.Add(r.Debit)
		totalCredit = totalCredit.Add(r.Credit)
		if !r.HasDate() {
			continue
		}
		p, ok := periods[r.TxnDate]
		if !ok {
			p = &sums{}
			periods[r.TxnDate] = p
			order = append(order, r.TxnDate)
		}
		p.debit = p.debit.Add(r.Debit)
		p.credit = p.credit.Add(r.Credit)
	}

	var unbalanced []string
	for _, d := range order {
		p := periods[d]
		if !tol.balanced(p.debit, p.credit) {
			unbalanced = append(unbalanced, d.Format("2006-01-02"))
		}
	}
	if len(unbalanced) > 0 {
		issues = append(issues, Issue{
			Severity:      SeverityCritical,
			Category:      "Trial Balance",
			Summary:       fmt.Sprintf("TB does not balance for %d period(s)", len(unbalanced)),
			Impact:        "Financial statements will be inaccurate",
			Suggestion:    "Review source data for these periods",
			TotalAffected: len(unbalanced),
			Detail:        fmt.Sprintf("Periods out of balance: %v", unbalanced),
		})
	}

	if !tol.balanced(totalDebit, totalCredit) {
		diff := totalDebit.Sub(totalCredit).Abs()
		issues = append(issues, Issue{
			Severity:   SeverityCritical,
			Category:   "Trial Balance",
			Summary:    fmt.Sprintf("Overall TB out of balance by $%s", diff.StringFixed(2)),
			Impact:     fmt.Sprintf("Total Debits: $%s != Total Credits: $%s", totalDebit.StringFixed(2), totalCredit.StringFixed(2)),
			Suggestion: "Review all entries",
		})
	}

	return issues
}

// GLActivity validates posting data. When at least half the rows carry a
// TransactionID, every transaction must balance individually; with weaker
// coverage only the overall totals are checked and the overall finding is
// upgraded to Critical since it is the only balance evidence available.
func GLActivity(records []models.LedgerRecord, tol Tolerances) []Issue {
	var issues []Issue

	withID := 0
	for _, r := range records {
		if r.TransactionID != "" {
			withID++
		}
	}

	hasTxnID := false
	switch {
	case withID == 0:
		issues = append(issues, Issue{
			Severity:   SeverityInfo,
			Category:   "Data Quality",
			Summary:    "TransactionID not found",
			Impact:     "Transaction-level balancing unavailable",
			Suggestion: "Using total-file balancing only (weaker validation)",
		})
	case len(records) > 0 && float64(withID)/float64(len(records)) < 0.5:
		issues = append(issues, Issue{
			Severity:   SeverityWarning,
			Category:   "Data Quality",
			Summary:    fmt.Sprintf("TransactionID only %.0f%% populated", 100*float64(withID)/float64(len(records))),
			Impact:     "Transaction-level balancing unavailable",
			Suggestion: "Using total-file balancing only",
		})
	default:
		hasTxnID = true
	}

	if hasTxnID {
		type sums struct{ debit, credit decimal.Decimal }
		txns := make(map[string]*sums)
		var order []string
		for _, r := range records {
			if r.TransactionID == "" {
				continue
			}
			t, ok := txns[r.TransactionID]
			if !ok {
				t = &sums{}
				txns[r.TransactionID] = t
				order = append(order, r.TransactionID)
			}
			t.debit = t.debit.Add(r.Debit)
			t.credit = t.credit.Add(r.Credit)
		}

		unbalanced := 0
		for _, id := range order {
			t := txns[id]
			if !tol.balanced(t.debit, t.credit) {
				unbalanced++
			}
		}
		if unbalanced > 0 {
			issues = append(issues, Issue{
				Severity:      SeverityCritical,
				Category:      "Transaction Balance",
				Summary:       fmt.Sprintf("%d transaction(s) do not balance", unbalanced),
				Impact:        "Debits != Credits for these transactions",
				Suggestion:    "Review and correct these transactions",
				TotalAffected: unbalanced,
			})
		}
	}

	var totalDebit, totalCredit decimal.Decimal
	for _, r := range records {
		totalDebit = totalDebit.Add(r.Debit)
		totalCredit = totalCredit.Add(r.Credit)
	}
	if !tol.balanced(totalDebit, totalCredit) {
		severity := SeverityWarning
		if !hasTxnID {
			severity = SeverityCritical
		}
		diff := totalDebit.Sub(totalCredit).Abs()
		issues = append(issues, Issue{
			Severity:   severity,
			Category:   "Overall Balance",
			Summary:    fmt.Sprintf("Overall GL out of balance by $%s", diff.StringFixed(2)),
			Impact:     fmt.Sprintf("Total Debits: $%s != Total Credits: $%s", totalDebit.StringFixed(2), totalCredit.StringFixed(2)),
			Suggestion: "Review all entries",
		})
	}

	return issues
}

// CommonIssues scans for dataset-independent quality problems: missing or
// invalid account numbers, missing dates, duplicate transaction IDs, future
// dates and amount outliers. now anchors the future-date check.
func CommonIssues(records []models.LedgerRecord, now time.Time) []Issue {
	var issues []Issue

	var missingDates []int
	for i, r := range records {
		if !r.HasDate() {
			missingDates = append(missingDates, i)
		}
	}
	if len(missingDates) > 0 {
		issues = append(issues, Issue{
			Severity:      SeverityWarning,
			Category:      "Missing Data",
			Summary:       fmt.Sprintf("%d transactions missing dates", len(missingDates)),
			Impact:        "Cannot determine period",
			Suggestion:    fmt.Sprintf("Remove %d rows", len(missingDates)),
			AutoFix:       FixRemoveMissingDates,
			AffectedRows:  capRows(missingDates),
			TotalAffected: len(missingDates),
		})
	}

	var missingAcct, invalidAcct []int
	for i, r := range records {
		if r.AccountNumber == nil {
			missingAcct = append(missingAcct, i)
		} else if *r.AccountNumber < 0 || *r.AccountNumber > 99999 {
			invalidAcct = append(invalidAcct, i)
		}
	}
	if len(missingAcct) > 0 {
		issues = append(issues, Issue{
			Severity:      SeverityCritical,
			Category:      "Missing Data",
			Summary:       fmt.Sprintf("%d transactions without account numbers", len(missingAcct)),
			Impact:        "Cannot categorize",
			Suggestion:    "Map to Unclassified (9999)",
			AutoFix:       FixMapUnclassified,
			AffectedRows:  capRows(missingAcct),
			TotalAffected: len(missingAcct),
		})
	}
	if len(invalidAcct) > 0 {
		issues = append(issues, Issue{
			Severity:      SeverityCritical,
			Category:      "Data Quality",
			Summary:       fmt.Sprintf("%d invalid account numbers", len(invalidAcct)),
			Impact:        "Mapping errors",
			Suggestion:    "Convert negative to positive",
			AutoFix:       FixAccountNumbers,
			AffectedRows:  capRows(invalidAcct),
			TotalAffected: len(invalidAcct),
		})
	}

	seen := make(map[string]int)
	for _, r := range records {
		if r.TransactionID != "" {
			seen[r.TransactionID]++
		}
	}
	var dupes []int
	for i, r := range records {
		if r.TransactionID != "" && seen[r.TransactionID] > 1 {
			dupes = append(dupes, i)
		}
	}
	if len(dupes) > 0 {
		issues = append(issues, Issue{
			Severity:      SeverityWarning,
			Category:      "Duplicates",
			Summary:       fmt.Sprintf("%d duplicate transaction IDs", len(dupes)),
			Impact:        "May inflate amounts",
			Suggestion:    fmt.Sprintf("Remove %d duplicates", len(dupes)/2),
			AutoFix:       FixRemoveDuplicates,
			AffectedRows:  capRows(dupes),
			TotalAffected: len(dupes),
		})
	}

	var future []int
	for i, r := range records {
		if r.HasDate() && r.TxnDate.After(now) {
			future = append(future, i)
		}
	}
	if len(future) > 0 {
		issues = append(issues, Issue{
			Severity:      SeverityWarning,
			Category:      "Data Quality",
			Summary:       fmt.Sprintf("%d future-dated transactions", len(future)),
			Impact:        "May affect current period",
			Suggestion:    fmt.Sprintf("Remove %d rows", len(future)),
			AutoFix:       FixRemoveFutureDates,
			AffectedRows:  capRows(future),
			TotalAffected: len(future),
		})
	}

	if outliers := findOutliers(records); len(outliers) > 0 {
		issues = append(issues, Issue{
			Severity:      SeverityInfo,
			Category:      "Outliers",
			Summary:       fmt.Sprintf("%d potential outlier transactions", len(outliers)),
			Impact:        "Unusual amounts detected",
			Suggestion:    "Review for accuracy",
			AffectedRows:  capRows(outliers),
			TotalAffected: len(outliers),
		})
	}

	return issues
}

// findOutliers flags rows whose absolute debit exceeds mean + 3 sigma
// (sample standard deviation) of all absolute debits.
func findOutliers(records []models.LedgerRecord) []int {
	if len(records) < 2 {
		return nil
	}

	abs := make([]float64, len(records))
	var sum float64
	for i, r := range records {
		v, _ := r.Debit.Abs().Float64()
		abs[i] = v
		sum += v
	}
	mean := sum / float64(len(abs))

	var sq float64
	for _, v := range abs {
		d := v - mean
		sq += d * d
	}
	std := math.Sqrt(sq / float64(len(abs)-1))

	threshold := mean + 3*std
	var out []int
	for i, v := range abs {
		if v > threshold {
			out = append(out, i)
		}
	}
	return out
}
