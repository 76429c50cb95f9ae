package calc

import (
	"fmt"
	"sort"
)

// DefaultStatementYearCount is how many trailing years appear on the
// finished statements.
const DefaultStatementYearCount = 3

// MissingOpeningSnapshotError means the trial balance has no snapshot for
// the year before the first statement year, so opening balances (and every
// first-year delta) would be undefined.
type MissingOpeningSnapshotError struct {
	Year0              int
	FirstStatementYear int
}

func (e *MissingOpeningSnapshotError) Error() string {
	return fmt.Sprintf(
		"missing opening snapshot in trial balance: need %d year-end balances to open first statement year %d",
		e.Year0, e.FirstStatementYear)
}

// MergeTBGL combines trial balance snapshots (balance sheet authority) with
// GL activity (income statement authority) into the final statement set.
//
// The union of years across both inputs is trimmed to the latest
// statementYearCount years (default 3). The year before the first statement
// year is Year0, the opening snapshot: it must exist in the trial balance or
// the merge fails with *MissingOpeningSnapshotError. Year0 carries balance
// sheet keys only and is keyed into the result like any other year; callers
// use StatementYears to find the user-visible years.
//
// For every statement year the GL overlay writes all income statement keys,
// zero-filling ones the GL never saw, so a sparse GL cannot leak stale trial
// balance income values through. Dividends come from the retained earnings
// roll-forward, clamped at zero since negative dividends are not a thing.
func MergeTBGL(tb, gl map[int]YearStatement, statementYearCount int) (map[int]YearStatement, error) {
	if statementYearCount <= 0 {
		statementYearCount = DefaultStatementYearCount
	}

	yearSet := make(map[int]bool)
	for y := range tb {
		yearSet[y] = true
	}
	for y := range gl {
		yearSet[y] = true
	}
	allYears := make([]int, 0, len(yearSet))
	for y := range yearSet {
		allYears = append(allYears, y)
	}
	sort.Ints(allYears)
	if len(allYears) == 0 {
		return map[int]YearStatement{}, nil
	}

	stmtYears := allYears
	if len(allYears) > statementYearCount {
		stmtYears = allYears[len(allYears)-statementYearCount:]
	}

	year0 := stmtYears[0] - 1
	if _, ok := tb[year0]; !ok {
		return nil, &MissingOpeningSnapshotError{Year0: year0, FirstStatementYear: stmtYears[0]}
	}

	combined := make(map[int]YearStatement, len(stmtYears)+1)

	// Year0 is opening balances only.
	opening := make(YearStatement, len(BalanceSheetKeys))
	for _, k := range BalanceSheetKeys {
		opening[k] = tb[year0][k]
	}
	combined[year0] = opening

	for _, y := range stmtYears {
		s := make(YearStatement)
		if tbYear, ok := tb[y]; ok {
			for _, k := range BalanceSheetKeys {
				s[k] = tbYear[k]
			}
		} else {
			for _, k := range BalanceSheetKeys {
				s[k] = 0
			}
		}
		glYear := gl[y] // nil reads as zero
		for _, k := range IncomeStatementKeys {
			s[k] = glYear[k]
		}
		combined[y] = s
	}

	// Dividends from the RE roll-forward, then cash flow drivers from
	// balance sheet deltas. prev is Year0 for the first statement year.
	prev := year0
	for _, y := range stmtYears {
		cur := combined[y]
		pri := combined[prev]

		reBegin := pri[KeyRetainedEarnings]
		reEnd := cur[KeyRetainedEarnings]
		div := reBegin + cur[KeyNetIncome] - reEnd
		if div < 0 {
			div = 0
		}
		cur[KeyDividends] = div

		addDeltas(cur, pri)
		prev = y
	}

	return combined, nil
}

// Years returns the sorted years of a statement set.
func Years(statements map[int]YearStatement) []int {
	years := make([]int, 0, len(statements))
	for y := range statements {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// StatementYears returns the user-visible years of a merged set: everything
// after the earliest year, which is the hidden opening snapshot.
func StatementYears(statements map[int]YearStatement) []int {
	years := Years(statements)
	if len(years) == 0 {
		return nil
	}
	return years[1:]
}
