package calc

// safeDiv guards ratio math against zero denominators.
func safeDiv(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// Margins are income statement ratios as fractions of revenue (0.40 = 40%).
// A zero-revenue year yields zero margins rather than NaN.
type Margins struct {
	GrossMargin     float64 `json:"gross_margin"`
	OperatingMargin float64 `json:"operating_margin"`
	NetMargin       float64 `json:"net_margin"`
}

// ComputeMargins derives margins for one year.
func ComputeMargins(s YearStatement) Margins {
	rev := s[KeyRevenue]
	return Margins{
		GrossMargin:     safeDiv(s.GrossProfit(), rev),
		OperatingMargin: safeDiv(s.EBIT(), rev),
		NetMargin:       safeDiv(s[KeyNetIncome], rev),
	}
}
