package prompt

import (
	"context"
	"errors"
	"fmt"

	"loan-widget/domain"
	"loan-widget/service"
)

var fieldPrompts = map[domain.FieldID]InputConfig{
	domain.FieldAmount:   {Message: "Loan amount:", Help: "Principal to borrow, between 100 and 99,999,999"},
	domain.FieldInterest: {Message: "Annual interest rate (%):", Help: "Yearly rate in percent, e.g. 6.5"},
	domain.FieldYears:    {Message: "Term (years):", Help: "Whole number of years, 1 to 50"},
}

// Session walks the user through the widget with a Driver.
type Session struct {
	widget *service.LoanWidget
	driver Driver
}

// NewSession returns a session driving widget through driver.
func NewSession(widget *service.LoanWidget, driver Driver) *Session {
	return &Session{widget: widget, driver: driver}
}

// Run asks for the three fields, calculates, and offers to go again until the
// user declines. An interrupted prompt ends the session without error.
func (s *Session) Run(ctx context.Context) error {
	raw := s.widget.Init(ctx)

	for {
		for _, field := range domain.Fields() {
			value, err := s.ask(ctx, field, raw.Get(field))
			if err != nil {
				return ignoreAbort(err)
			}
			raw.Set(field, value)
		}

		outcome, err := s.widget.OnSubmit(ctx)
		if err != nil {
			return err
		}
		if err := s.report(ctx, outcome); err != nil {
			return err
		}

		again, err := s.driver.Confirm(ctx, ConfirmConfig{Message: "Calculate another?"})
		if err != nil {
			return ignoreAbort(err)
		}
		if !again {
			return nil
		}

		keep, err := s.driver.Confirm(ctx, ConfirmConfig{Message: "Start from the current values?", Default: true})
		if err != nil {
			return ignoreAbort(err)
		}
		if !keep {
			s.widget.OnReset()
			raw = domain.RawInput{}
		}
	}
}

func (s *Session) ask(ctx context.Context, field domain.FieldID, current string) (string, error) {
	cfg := fieldPrompts[field]
	cfg.Default = current
	cfg.Validator = func(value string) error {
		res, err := s.widget.OnFieldChanged(field, value)
		if err != nil {
			return err
		}
		if !res.Valid {
			return errors.New(res.Message)
		}
		return nil
	}

	value, err := s.driver.Input(ctx, cfg)
	if err != nil {
		return "", err
	}
	if err := s.widget.SetField(field, value); err != nil {
		return "", err
	}
	return value, nil
}

func (s *Session) report(ctx context.Context, outcome service.SubmitOutcome) error {
	switch outcome.Status {
	case service.SubmitSucceeded:
		f := outcome.Formatted
		return s.driver.Info(ctx, fmt.Sprintf(
			"\nMonthly payment: %s\nTotal payment:   %s\nTotal interest:  %s\n",
			f.MonthlyPayment, f.TotalPayment, f.TotalInterest,
		))
	case service.SubmitFailed:
		return s.driver.Info(ctx, "! "+outcome.Notice)
	case service.SubmitRejected:
		for _, res := range outcome.Validation {
			if !res.Valid {
				if err := s.driver.Info(ctx, fmt.Sprintf("%s: %s", res.Field, res.Message)); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return s.driver.Info(ctx, fmt.Sprintf("Submission %s", outcome.Status))
}

func ignoreAbort(err error) error {
	if errors.Is(err, ErrAborted) {
		return nil
	}
	return err
}
