package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNonFinite    = errors.New("result is not a finite number")
	ErrUnknownField = errors.New("unknown field")
	ErrNotFound     = errors.New("not found")
)

// ErrorKind is a coarse-grained categorization for errors.
type ErrorKind string

const (
	KindInvalidInput ErrorKind = "invalid_input"
	KindNonFinite    ErrorKind = "non_finite"
	KindStorage      ErrorKind = "storage"
)

// CalcError is returned by the calculator. It wraps ErrInvalidInput or ErrNonFinite.
type CalcError struct {
	Kind ErrorKind
	Err  error
}

func (e *CalcError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("calculate: %s: %v", e.Kind, e.Err)
}

func (e *CalcError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewCalcError wraps the sentinel for kind with detail.
func NewCalcError(kind ErrorKind, detail string) *CalcError {
	base := ErrInvalidInput
	if kind == KindNonFinite {
		base = ErrNonFinite
	}
	return &CalcError{Kind: kind, Err: fmt.Errorf("%w: %s", base, detail)}
}

// OpError wraps an underlying error with operation context and a kind.
type OpError struct {
	Op   string
	Kind ErrorKind
	Key  string
	Err  error
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Key != "" {
		base += fmt.Sprintf(" (key=%s)", e.Key)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ce *CalcError
	if errors.As(err, &ce) {
		return ce.Kind == kind
	}
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind == kind
	}
	return false
}

// UserMessage returns the notice shown to the user for a calculation failure.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "Please check your numbers: the loan amount and term must be greater than zero."
	case errors.Is(err, ErrNonFinite):
		return "Those values can't be calculated. Please try different numbers."
	}
	return "Something went wrong while calculating. Please try again."
}
