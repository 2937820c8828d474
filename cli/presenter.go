package cli

import (
	"fmt"
	"io"

	"loan-widget/domain"
)

// linePresenter prints widget events as plain lines, for non-interactive use.
type linePresenter struct {
	out     io.Writer
	verbose bool

	// armed is set once restored values have been validated.
	armed bool
}

func (p *linePresenter) FieldValidated(res domain.ValidationResult) {
	if p.armed && !res.Valid {
		fmt.Fprintf(p.out, "  %s: %s\n", res.Field, res.Message)
	}
}

func (p *linePresenter) BusyChanged(busy bool) {
	if busy && p.verbose {
		fmt.Fprintln(p.out, "Calculating...")
	}
}

func (p *linePresenter) ResultReady(domain.FormattedResult) {}

func (p *linePresenter) Notice(msg string) {
	fmt.Fprintf(p.out, "! %s\n", msg)
}

func (p *linePresenter) Cleared() {}

func printResult(w io.Writer, input *domain.LoanInput, res *domain.FormattedResult) {
	if input != nil {
		fmt.Fprintf(w, "Amount:          %g\n", input.Amount)
		fmt.Fprintf(w, "Interest:        %g%%\n", input.AnnualRatePercent)
		fmt.Fprintf(w, "Years:           %d\n", input.TermYears)
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Monthly payment: %s\n", res.MonthlyPayment)
	fmt.Fprintf(w, "Total payment:   %s\n", res.TotalPayment)
	fmt.Fprintf(w, "Total interest:  %s\n", res.TotalInterest)
}
