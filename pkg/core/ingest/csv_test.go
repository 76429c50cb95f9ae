package ingest

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"threestmt/pkg/models"
)

func TestNormalizeHeader(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"TxnDate", ColTxnDate},
		{"Transaction Date", ColTxnDate},
		{" DATE ", ColTxnDate},
		{"Acct Num", ColAccountNumber},
		{"account_number", ColAccountNumber},
		{"Description", ColAccountName},
		{"DR", ColDebit},
		{"cr", ColCredit},
		{"GLID", ColTransactionID},
		{"Curr", ColCurrency},
		{"Memo", "Memo"}, // unknown headers pass through
	}
	for _, c := range cases {
		if got := NormalizeHeader(c.in); got != c.want {
			t.Errorf("NormalizeHeader(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestReadLedgerCSV(t *testing.T) {
	csvData := `Transaction Date,Acct Num,Description,DR,CR,Txn ID,Curr
2023-01-15,1000,Cash,"$1,234.56",,T1,USD
01/20/2023,4000,Sales,,(500),T2,usd
2023/02/01,2000,Accounts Payable,,250.00,T3,USD
`
	records, rep, err := ReadLedgerCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ReadLedgerCSV: %v", err)
	}
	if rep.Rows != 3 || rep.BadDates != 0 || rep.BadAmounts != 0 {
		t.Errorf("report = %+v, want 3 clean rows", rep)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	r := records[0]
	if r.TxnDate.Format("2006-01-02") != "2023-01-15" {
		t.Errorf("row 0 date = %v", r.TxnDate)
	}
	if r.AccountNumber == nil || *r.AccountNumber != 1000 {
		t.Errorf("row 0 account number = %v", r.AccountNumber)
	}
	if !r.Debit.Equal(decimal.NewFromFloat(1234.56)) {
		t.Errorf("row 0 debit = %s, want 1234.56", r.Debit)
	}
	if r.TransactionID != "T1" || r.Currency != "USD" {
		t.Errorf("row 0 id/currency = %q/%q", r.TransactionID, r.Currency)
	}

	// US-style date layout and parenthesized negative.
	if records[1].TxnDate.Format("2006-01-02") != "2023-01-20" {
		t.Errorf("row 1 date = %v", records[1].TxnDate)
	}
	if !records[1].Credit.Equal(decimal.NewFromInt(-500)) {
		t.Errorf("row 1 credit = %s, want -500", records[1].Credit)
	}
	// Lowercase currency is uppercased.
	if records[1].Currency != "USD" {
		t.Errorf("row 1 currency = %q", records[1].Currency)
	}
}

func TestReadLedgerCSVKeepsBadRows(t *testing.T) {
	csvData := `TxnDate,AccountNumber,AccountName,Debit,Credit
not-a-date,1000,Cash,100,
2023-01-15,1000,Cash,oops,
`
	records, rep, err := ReadLedgerCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ReadLedgerCSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("bad rows must be kept, got %d records", len(records))
	}
	if rep.BadDates != 1 || rep.BadAmounts != 1 {
		t.Errorf("report = %+v, want 1 bad date and 1 bad amount", rep)
	}
	if records[0].HasDate() {
		t.Error("unparseable date should leave the zero time")
	}
	if !records[1].Debit.IsZero() {
		t.Errorf("unparseable debit should be zero, got %s", records[1].Debit)
	}
}

func TestReadLedgerCSVMissingColumns(t *testing.T) {
	csvData := `TxnDate,AccountName,Debit
2023-01-15,Cash,100
`
	_, _, err := ReadLedgerCSV(strings.NewReader(csvData))
	var mc *MissingColumnsError
	if !errors.As(err, &mc) {
		t.Fatalf("expected *MissingColumnsError, got %v", err)
	}
	want := map[string]bool{ColAccountNumber: true, ColCredit: true}
	if len(mc.Missing) != 2 || !want[mc.Missing[0]] || !want[mc.Missing[1]] {
		t.Errorf("missing = %v, want AccountNumber and Credit", mc.Missing)
	}
}

func TestDetectCurrency(t *testing.T) {
	records := []models.LedgerRecord{
		{Currency: "EUR"},
		{Currency: "EUR"},
		{Currency: "USD"},
		{Currency: ""},
	}
	if got := DetectCurrency(records); got != "EUR" {
		t.Errorf("DetectCurrency = %q, want EUR", got)
	}
	if got := DetectCurrency(nil); got != "USD" {
		t.Errorf("DetectCurrency(nil) = %q, want USD default", got)
	}
}

func TestConvertToUSD(t *testing.T) {
	records := []models.LedgerRecord{
		{Currency: "EUR", Debit: decimal.NewFromInt(100)},
		{Currency: "EUR", Credit: decimal.NewFromInt(200)},
	}
	converted, ok := ConvertToUSD(records)
	if !ok {
		t.Fatal("EUR conversion should succeed")
	}
	if !converted[0].Debit.Equal(decimal.NewFromInt(108)) {
		t.Errorf("converted debit = %s, want 108", converted[0].Debit)
	}
	if !converted[1].Credit.Equal(decimal.NewFromInt(216)) {
		t.Errorf("converted credit = %s, want 216", converted[1].Credit)
	}
	for _, r := range converted {
		if r.Currency != "USD" {
			t.Errorf("currency = %q after conversion", r.Currency)
		}
	}
	// Input untouched.
	if !records[0].Debit.Equal(decimal.NewFromInt(100)) {
		t.Error("input mutated by conversion")
	}
}

func TestConvertToUSDUnknownCurrency(t *testing.T) {
	records := []models.LedgerRecord{{Currency: "XYZ", Debit: decimal.NewFromInt(100)}}
	converted, ok := ConvertToUSD(records)
	if ok {
		t.Error("unknown currency should report false")
	}
	if !converted[0].Debit.Equal(decimal.NewFromInt(100)) {
		t.Errorf("unknown currency amounts must pass through, got %s", converted[0].Debit)
	}
}
