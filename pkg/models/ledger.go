package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DatasetKind distinguishes the two accounting semantics an uploaded ledger
// extract can carry. The distinction drives aggregation: snapshots keep the
// latest balance per year, activity sums postings across the year.
type DatasetKind string

const (
	// TrialBalance rows are point-in-time ending balances per account.
	TrialBalance DatasetKind = "trial_balance"
	// GLActivity rows are individual postings over a period.
	GLActivity DatasetKind = "gl_activity"
)

// LedgerRecord is one normalized row of ledger input after header
// canonicalization. Debit and Credit are kept as decimals so that
// debit/credit equality checks are exact; statement math downstream
// works in float64.
type LedgerRecord struct {
	TxnDate       time.Time       `json:"txn_date"`
	AccountNumber *int            `json:"account_number,omitempty"`
	AccountName   string          `json:"account_name"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Currency      string          `json:"currency,omitempty"`
}

// HasDate reports whether the row carried a parseable transaction date.
func (r *LedgerRecord) HasDate() bool {
	return !r.TxnDate.IsZero()
}

// Net returns debit minus credit for the row.
func (r *LedgerRecord) Net() decimal.Decimal {
	return r.Debit.Sub(r.Credit)
}
