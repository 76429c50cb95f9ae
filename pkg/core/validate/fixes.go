package validate

import (
	"fmt"
	"time"

	"threestmt/pkg/models"
)

// UnclassifiedAccountNumber is the catch-all account assigned by the
// map_unclassified fix; it sits outside every default chart range.
const UnclassifiedAccountNumber = 9999

// ApplyFixes runs the selected auto-fixes over a copy of records and returns
// the repaired slice plus a human-readable change log. Unknown fix names are
// ignored. now anchors the future-date fix.
func ApplyFixes(records []models.LedgerRecord, fixes []Fix, now time.Time) ([]models.LedgerRecord, []string) {
	selected := make(map[Fix]bool, len(fixes))
	for _, f := range fixes {
		selected[f] = true
	}

	out := make([]models.LedgerRecord, len(records))
	copy(out, records)
	var changes []string

	if selected[FixRemoveMissingDates] {
		before := len(out)
		out = filterRecords(out, func(r models.LedgerRecord) bool { return r.HasDate() })
		if removed := before - len(out); removed > 0 {
			changes = append(changes, fmt.Sprintf("Removed %d rows with missing dates", removed))
		}
	}

	if selected[FixMapUnclassified] {
		count := 0
		for i := range out {
			if out[i].AccountNumber == nil {
				n := UnclassifiedAccountNumber
				out[i].AccountNumber = &n
				count++
			}
		}
		if count > 0 {
			changes = append(changes, fmt.Sprintf("Mapped %d entries to Unclassified (%d)", count, UnclassifiedAccountNumber))
		}
	}

	if selected[FixAccountNumbers] {
		count := 0
		for i := range out {
			n := out[i].AccountNumber
			if n == nil {
				continue
			}
			if *n < 0 {
				fixed := -*n
				out[i].AccountNumber = &fixed
				count++
			} else if *n > 99999 {
				// counted but left alone; there is no safe rewrite
				count++
			}
		}
		if count > 0 {
			changes = append(changes, fmt.Sprintf("Fixed %d invalid account numbers", count))
		}
	}

	if selected[FixRemoveDuplicates] {
		seen := make(map[string]bool)
		before := len(out)
		out = filterRecords(out, func(r models.LedgerRecord) bool {
			if r.TransactionID == "" {
				return true
			}
			if seen[r.TransactionID] {
				return false
			}
			seen[r.TransactionID] = true
			return true
		})
		if removed := before - len(out); removed > 0 {
			changes = append(changes, fmt.Sprintf("Removed %d duplicate transactions", removed))
		}
	}

	if selected[FixRemoveFutureDates] {
		before := len(out)
		out = filterRecords(out, func(r models.LedgerRecord) bool {
			return !r.HasDate() || !r.TxnDate.After(now)
		})
		if removed := before - len(out); removed > 0 {
			changes = append(changes, fmt.Sprintf("Removed %d future-dated transactions", removed))
		}
	}

	return out, changes
}

func filterRecords(records []models.LedgerRecord, keep func(models.LedgerRecord) bool) []models.LedgerRecord {
	out := records[:0]
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
