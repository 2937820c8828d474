package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"loan-widget/domain"
)

// defaultRules is the rule table shared by every Validator. It is never mutated.
var defaultRules = map[domain.FieldID]domain.ValidationRule{
	domain.FieldAmount: {
		Min:     MinLoanAmount,
		Max:     MaxLoanAmount,
		Message: "Amount must be between 100 and 99,999,999",
	},
	domain.FieldInterest: {
		Min:     MinInterestRate,
		Max:     MaxInterestRate,
		Message: "Interest rate must be between 0.01% and 100%",
	},
	domain.FieldYears: {
		Min:         MinTermYears,
		Max:         MaxTermYears,
		Message:     "Term must be a whole number of years between 1 and 50",
		WholeNumber: true,
	},
}

// Validator checks raw field contents against the static rule table.
type Validator struct {
	rules map[domain.FieldID]domain.ValidationRule
}

func NewValidator() *Validator {
	return &Validator{rules: defaultRules}
}

// Rule returns the rule for field.
func (v *Validator) Rule(field domain.FieldID) (domain.ValidationRule, bool) {
	rule, ok := v.rules[field]
	return rule, ok
}

// Validate checks a single raw value. A value that does not parse is reported
// as invalid. Validate panics if field has no rule: callers hold the field set.
func (v *Validator) Validate(field domain.FieldID, raw string) domain.ValidationResult {
	_, res := v.check(field, raw)
	return res
}

// ValidateAll checks every field without stopping at the first failure.
func (v *Validator) ValidateAll(raw domain.RawInput) domain.ValidationReport {
	report := domain.ValidationReport{AllValid: true}
	values := make(map[domain.FieldID]float64, 3)

	for _, field := range domain.Fields() {
		value, res := v.check(field, raw.Get(field))
		report.Results = append(report.Results, res)
		if !res.Valid {
			report.AllValid = false
			continue
		}
		values[field] = value
	}

	if report.AllValid {
		report.Input = domain.LoanInput{
			Amount:            values[domain.FieldAmount],
			AnnualRatePercent: values[domain.FieldInterest],
			TermYears:         int(values[domain.FieldYears]),
		}
	}
	return report
}

func (v *Validator) check(field domain.FieldID, raw string) (float64, domain.ValidationResult) {
	rule, ok := v.rules[field]
	if !ok {
		panic(fmt.Errorf("validate %q: %w", field, domain.ErrUnknownField))
	}

	invalid := domain.ValidationResult{Field: field, Message: rule.Message}

	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, invalid
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value == 0 {
		return 0, invalid
	}
	if value < rule.Min || value > rule.Max {
		return 0, invalid
	}
	if rule.WholeNumber && value != math.Trunc(value) {
		return 0, invalid
	}

	return value, domain.ValidationResult{Field: field, Valid: true}
}
