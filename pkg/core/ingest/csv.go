// Package ingest turns raw CSV exports into normalized ledger records.
// Header names are canonicalized across common accounting-system variants
// and amounts are parsed into exact decimals.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"threestmt/pkg/models"
)

// Canonical column names after header normalization.
const (
	ColTxnDate       = "TxnDate"
	ColAccountNumber = "AccountNumber"
	ColAccountName   = "AccountName"
	ColDebit         = "Debit"
	ColCredit        = "Credit"
	ColTransactionID = "TransactionID"
	ColCurrency      = "Currency"
)

// headerAliases maps lowercased, underscored header variants to canonical
// column names.
var headerAliases = map[string]string{
	"txndate":          ColTxnDate,
	"transaction_date": ColTxnDate,
	"date":             ColTxnDate,
	"transdate":        ColTxnDate,

	"accountnumber":  ColAccountNumber,
	"account_number": ColAccountNumber,
	"acct_num":       ColAccountNumber,
	"account":        ColAccountNumber,
	"acct":           ColAccountNumber,

	"accountname":  ColAccountName,
	"account_name": ColAccountName,
	"acct_name":    ColAccountName,
	"description":  ColAccountName,

	"debit": ColDebit,
	"dr":    ColDebit,

	"credit": ColCredit,
	"cr":     ColCredit,

	"transactionid":  ColTransactionID,
	"transaction_id": ColTransactionID,
	"txn_id":         ColTransactionID,
	"txnid":          ColTransactionID,
	"glid":           ColTransactionID,

	"currency": ColCurrency,
	"curr":     ColCurrency,
}

// requiredColumns must all be present after normalization.
var requiredColumns = []string{ColTxnDate, ColAccountNumber, ColAccountName, ColDebit, ColCredit}

// NormalizeHeader canonicalizes one header cell. Unrecognized headers are
// returned trimmed but otherwise unchanged.
func NormalizeHeader(h string) string {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
	if canonical, ok := headerAliases[key]; ok {
		return canonical
	}
	return strings.TrimSpace(h)
}

// MissingColumnsError reports required columns absent from a file.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("required columns missing: %s", strings.Join(e.Missing, ", "))
}

// Report summarizes parsing quality for one file.
type Report struct {
	Rows       int `json:"rows"`
	BadDates   int `json:"bad_dates"`
	BadAmounts int `json:"bad_amounts"`
}

// dateLayouts are tried in order for each date cell.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02-Jan-2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseAmount reads a money cell. Blank cells are zero; "$" and thousands
// separators are tolerated.
func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, true
	}
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + strings.Trim(s, "()")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ReadLedgerCSV parses one CSV export into ledger records. Rows with
// unparseable dates or amounts are kept with zero values and counted in the
// report; the validator decides what to do with them. Missing required
// columns are a hard error (*MissingColumnsError).
func ReadLedgerCSV(r io.Reader) ([]models.LedgerRecord, *Report, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		canonical := NormalizeHeader(h)
		if _, dup := index[canonical]; !dup {
			index[canonical] = i
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, nil, &MissingColumnsError{Missing: missing}
	}

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []models.LedgerRecord
	report := &Report{}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read csv row: %w", err)
		}
		report.Rows++

		var rec models.LedgerRecord
		if t, ok := parseDate(cell(row, ColTxnDate)); ok {
			rec.TxnDate = t
		} else {
			report.BadDates++
		}

		if s := cell(row, ColAccountNumber); s != "" {
			if n, err := strconv.Atoi(s); err == nil {
				rec.AccountNumber = &n
			}
		}

		rec.AccountName = cell(row, ColAccountName)

		if d, ok := parseAmount(cell(row, ColDebit)); ok {
			rec.Debit = d
		} else {
			report.BadAmounts++
		}
		if c, ok := parseAmount(cell(row, ColCredit)); ok {
			rec.Credit = c
		} else {
			report.BadAmounts++
		}

		rec.TransactionID = cell(row, ColTransactionID)
		rec.Currency = strings.ToUpper(cell(row, ColCurrency))

		records = append(records, rec)
	}

	return records, report, nil
}
