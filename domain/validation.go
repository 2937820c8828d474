package domain

// ValidationRule bounds a single field. Both bounds are inclusive.
type ValidationRule struct {
	Min         float64
	Max         float64
	Message     string
	WholeNumber bool
}

type ValidationResult struct {
	Field   FieldID `json:"field" yaml:"field"`
	Valid   bool    `json:"valid" yaml:"valid"`
	Message string  `json:"message,omitempty" yaml:"message,omitempty"`
}

// ValidationReport aggregates the per-field results of a submission.
// Input is only populated when AllValid is true.
type ValidationReport struct {
	AllValid bool               `json:"all_valid" yaml:"all_valid"`
	Results  []ValidationResult `json:"results" yaml:"results"`
	Input    LoanInput          `json:"-" yaml:"-"`
}

// Invalid returns the failing results only.
func (r ValidationReport) Invalid() []ValidationResult {
	var out []ValidationResult
	for _, res := range r.Results {
		if !res.Valid {
			out = append(out, res)
		}
	}
	return out
}
