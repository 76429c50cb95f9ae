package classify

import (
	"fmt"
	"os"

	hjson "github.com/hjson/hjson-go/v4"
)

// Range maps an inclusive account number interval to a category.
type Range struct {
	Category Category `json:"category"`
	Low      int      `json:"low"`
	High     int      `json:"high"`
}

// RangeTable is scanned in order; the first containing range wins, which
// matters for overlapping entries (1590-1599 sits inside both the PP&E and
// accumulated depreciation ranges below and resolves to PP&E).
type RangeTable []Range

// DefaultRanges is the built-in chart-of-accounts numbering convention.
var DefaultRanges = RangeTable{
	// Assets
	{Cash, 1000, 1099},
	{AccountsReceivable, 1100, 1199},
	{Inventory, 1200, 1299},
	{PrepaidExpenses, 1300, 1349},
	{OtherCurrentAssets, 1350, 1499},
	{PPEGross, 1500, 1599},
	{AccumulatedDepreciation, 1590, 1599},
	{OtherFixedAssets, 1600, 1999},

	// Liabilities
	{AccountsPayable, 2000, 2099},
	{AccruedPayroll, 2100, 2149},
	{DeferredRevenue, 2150, 2249},
	{InterestPayable, 2250, 2299},
	{OtherCurrentLiabilities, 2300, 2449},
	{IncomeTaxesPayable, 2450, 2499},
	{LongTermDebt, 2500, 2999},

	// Equity
	{CommonStock, 3000, 3099},
	{RetainedEarnings, 3100, 3199},
	{Dividends, 3200, 3999},

	// Income statement
	{Revenue, 4000, 4999},
	{COGS, 5000, 5099},
	{DistributionExpenses, 5100, 5199},
	{MarketingAdmin, 5200, 5299},
	{ResearchDev, 5300, 5349},
	{DepreciationExpense, 5350, 5399},
	{OtherOpex, 5400, 5999},
	{InterestExpense, 6000, 6099},
	{TaxExpense, 6100, 6999},
}

// Lookup finds the first range containing number.
func (t RangeTable) Lookup(number int) (Category, bool) {
	for _, r := range t {
		if r.Low <= number && number <= r.High {
			return r.Category, true
		}
	}
	return Unclassified, false
}

// ParseRanges reads a hand-written HJSON range override file of the form
//
//	{
//	  # comments and unquoted keys are fine
//	  cash: [1000, 1499]
//	  revenue: [4000, 4999]
//	}
//
// Entries keep file order, so overlapping ranges resolve the same way the
// author wrote them down.
func ParseRanges(data []byte) (RangeTable, error) {
	var om hjson.OrderedMap
	if err := hjson.Unmarshal(data, &om); err != nil {
		return nil, fmt.Errorf("parse account ranges: %w", err)
	}

	table := make(RangeTable, 0, len(om.Keys))
	for _, key := range om.Keys {
		pair, ok := om.Map[key].([]interface{})
		if !ok || len(pair) != 2 {
			return nil, fmt.Errorf("account ranges: %q must be a [low, high] pair", key)
		}
		low, lowOK := pair[0].(float64)
		high, highOK := pair[1].(float64)
		if !lowOK || !highOK {
			return nil, fmt.Errorf("account ranges: %q bounds must be numbers", key)
		}
		if int(low) > int(high) {
			return nil, fmt.Errorf("account ranges: %q low %d exceeds high %d", key, int(low), int(high))
		}
		table = append(table, Range{Category: Category(key), Low: int(low), High: int(high)})
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("account ranges: no entries")
	}
	return table, nil
}

// LoadRangesFile reads a range override file from disk.
func LoadRangesFile(path string) (RangeTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read account ranges: %w", err)
	}
	return ParseRanges(data)
}
