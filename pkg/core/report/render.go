package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"threestmt/pkg/core/calc"
)

// Render writes one statement table with a column per year. years are the
// user-visible columns; statements may additionally hold the opening
// snapshot year, which backs lookback formulas (beginning cash) without
// getting a column of its own.
func Render(w io.Writer, rows []Row, statements map[int]calc.YearStatement, years []int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)

	allYears := calc.Years(statements)
	prevOf := make(map[int]int, len(allYears))
	for i := 1; i < len(allYears); i++ {
		prevOf[allYears[i]] = allYears[i-1]
	}

	for _, row := range rows {
		switch row.Kind {
		case RowHeader:
			fmt.Fprintf(tw, "%s", row.Label)
			for _, y := range years {
				fmt.Fprintf(tw, "\t%d", y)
			}
			fmt.Fprint(tw, "\t\n")
		case RowSpacer:
			fmt.Fprint(tw, "\t\n")
		default:
			fmt.Fprintf(tw, "%s", row.Label)
			for _, y := range years {
				cur := statements[y]
				var prev calc.YearStatement
				if p, ok := prevOf[y]; ok {
					prev = statements[p]
				}
				v, ok := Resolve(row, cur, prev)
				if !ok {
					fmt.Fprint(tw, "\t")
					continue
				}
				if row.Percent {
					fmt.Fprintf(tw, "\t%.1f%%", v*100)
				} else {
					fmt.Fprintf(tw, "\t%.2f", v)
				}
			}
			fmt.Fprint(tw, "\t\n")
		}
	}

	return tw.Flush()
}

// RenderStatements writes all three statements for the visible years.
func RenderStatements(w io.Writer, statements map[int]calc.YearStatement, years []int) error {
	for i, rows := range [][]Row{IncomeStatementRows(), BalanceSheetRows(), CashFlowRows()} {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := Render(w, rows, statements, years); err != nil {
			return err
		}
	}
	return nil
}

// RenderChecks writes the reconciliation residuals per statement year.
// tolerance grades each residual as OK or CHECK.
func RenderChecks(w io.Writer, checks map[int]calc.CheckResult, years []int, tolerance float64) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "RECONCILIATION\tBS check\tCF check\tRE calc\tRE (TB)\tRE diff\tstatus\t\n")
	for _, y := range years {
		c, ok := checks[y]
		if !ok {
			continue
		}
		status := "OK"
		if abs(c.BalanceSheetCheck) > tolerance || abs(c.CashFlowCheck) > tolerance {
			status = "CHECK"
		}
		fmt.Fprintf(tw, "%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%s\t\n",
			y, c.BalanceSheetCheck, c.CashFlowCheck,
			c.RetainedEarningsCalc, c.RetainedEarningsTB, c.RetainedEarningsDiff, status)
	}
	return tw.Flush()
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
