package ingest

import (
	"github.com/shopspring/decimal"

	"threestmt/pkg/models"
)

// exchangeRates are flat USD conversion rates applied uniformly to a file.
// This is deliberately coarse: the engine reports in USD and per-transaction
// FX precision is out of scope.
var exchangeRates = map[string]decimal.Decimal{
	"USD": decimal.NewFromFloat(1.0),
	"EUR": decimal.NewFromFloat(1.08),
	"GBP": decimal.NewFromFloat(1.27),
	"JPY": decimal.NewFromFloat(0.0067),
	"CNY": decimal.NewFromFloat(0.14),
	"CAD": decimal.NewFromFloat(0.71),
	"AUD": decimal.NewFromFloat(0.64),
	"CHF": decimal.NewFromFloat(1.13),
	"INR": decimal.NewFromFloat(0.012),
	"MXN": decimal.NewFromFloat(0.058),
}

// DetectCurrency returns the most common non-empty Currency value, or "USD"
// when no row carries one.
func DetectCurrency(records []models.LedgerRecord) string {
	counts := make(map[string]int)
	best, bestCount := "USD", 0
	for _, r := range records {
		if r.Currency == "" {
			continue
		}
		counts[r.Currency]++
		if counts[r.Currency] > bestCount {
			best, bestCount = r.Currency, counts[r.Currency]
		}
	}
	return best
}

// ConvertToUSD multiplies every debit and credit by the flat rate for the
// detected file currency. Unknown currencies pass through unchanged and the
// second return is false.
func ConvertToUSD(records []models.LedgerRecord) ([]models.LedgerRecord, bool) {
	currency := DetectCurrency(records)
	if currency == "USD" {
		return records, true
	}
	rate, ok := exchangeRates[currency]
	if !ok {
		return records, false
	}

	out := make([]models.LedgerRecord, len(records))
	copy(out, records)
	for i := range out {
		out[i].Debit = out[i].Debit.Mul(rate)
		out[i].Credit = out[i].Credit.Mul(rate)
		out[i].Currency = "USD"
	}
	return out, true
}
