// Package money renders amounts as locale-aware currency strings.
package money

import (
	"fmt"
	"math"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"loan-widget/domain"
)

// Formatter prints amounts with the grouping of a locale, two fraction digits
// and the symbol of a single fixed currency.
type Formatter struct {
	printer *message.Printer
	unit    currency.Unit
	symbol  string
}

// NewFormatter builds a formatter for a BCP 47 locale and an ISO 4217 code.
func NewFormatter(locale, code string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("invalid currency %q: %w", code, err)
	}

	p := message.NewPrinter(tag)
	return &Formatter{
		printer: p,
		unit:    unit,
		symbol:  p.Sprint(currency.NarrowSymbol(unit)),
	}, nil
}

// MustFormatter is like NewFormatter but panics on error.
func MustFormatter(locale, code string) *Formatter {
	f, err := NewFormatter(locale, code)
	if err != nil {
		panic(err)
	}
	return f
}

// Symbol returns the currency symbol used as prefix.
func (f *Formatter) Symbol() string {
	return f.symbol
}

// Unit returns the currency.
func (f *Formatter) Unit() currency.Unit {
	return f.unit
}

// Format renders v, e.g. "$1,322.74" for en-US and USD. The locale only
// drives digit grouping and the decimal mark; the symbol of the fixed unit
// always leads, so de-DE with EUR gives "€11.322,74".
func (f *Formatter) Format(v float64) string {
	cents := math.Round(math.Abs(v) * 100)
	sign := ""
	if v < 0 && cents != 0 {
		sign = "-"
	}
	return sign + f.symbol + f.printer.Sprintf("%.2f", cents/100)
}

// Result renders every figure of a LoanResult.
func (f *Formatter) Result(r domain.LoanResult) domain.FormattedResult {
	return domain.FormattedResult{
		MonthlyPayment: f.Format(r.MonthlyPayment),
		TotalPayment:   f.Format(r.TotalPayment),
		TotalInterest:  f.Format(r.TotalInterest),
	}
}
