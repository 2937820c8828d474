package domain

import "time"

// FieldID identifies one of the widget's input fields.
type FieldID string

const (
	FieldAmount   FieldID = "amount"
	FieldInterest FieldID = "interest"
	FieldYears    FieldID = "years"
)

// Fields returns the input fields in display order.
func Fields() []FieldID {
	return []FieldID{FieldAmount, FieldInterest, FieldYears}
}

// RawInput holds the field contents exactly as the user typed them.
type RawInput struct {
	Amount   string `json:"amount" yaml:"amount"`
	Interest string `json:"interest" yaml:"interest"`
	Years    string `json:"years" yaml:"years"`
}

// Get returns the raw value of a field. Unknown fields read as empty.
func (r RawInput) Get(field FieldID) string {
	switch field {
	case FieldAmount:
		return r.Amount
	case FieldInterest:
		return r.Interest
	case FieldYears:
		return r.Years
	}
	return ""
}

// Set stores the raw value of a field and reports whether the field is known.
func (r *RawInput) Set(field FieldID, value string) bool {
	switch field {
	case FieldAmount:
		r.Amount = value
	case FieldInterest:
		r.Interest = value
	case FieldYears:
		r.Years = value
	default:
		return false
	}
	return true
}

// IsEmpty reports whether every field is blank.
func (r RawInput) IsEmpty() bool {
	return r.Amount == "" && r.Interest == "" && r.Years == ""
}

type LoanInput struct {
	Amount            float64 `json:"amount" yaml:"amount"`
	AnnualRatePercent float64 `json:"annual_rate_percent" yaml:"annual_rate_percent"`
	TermYears         int     `json:"term_years" yaml:"term_years"`
}

type LoanResult struct {
	MonthlyPayment float64 `json:"monthly_payment" yaml:"monthly_payment"`
	TotalPayment   float64 `json:"total_payment" yaml:"total_payment"`
	TotalInterest  float64 `json:"total_interest" yaml:"total_interest"`
}

// FormattedResult is a LoanResult rendered as currency strings.
type FormattedResult struct {
	MonthlyPayment string `json:"monthly_payment" yaml:"monthly_payment"`
	TotalPayment   string `json:"total_payment" yaml:"total_payment"`
	TotalInterest  string `json:"total_interest" yaml:"total_interest"`
}

// Calculation is one successful computation kept in the history.
type Calculation struct {
	ID        int64      `json:"id" yaml:"id"`
	Input     LoanInput  `json:"input" yaml:"input"`
	Result    LoanResult `json:"result" yaml:"result"`
	CreatedAt time.Time  `json:"created_at" yaml:"created_at"`
}
