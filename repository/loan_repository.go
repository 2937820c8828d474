package repository

import (
	"context"

	"loan-widget/domain"
)

// LoanRepository records successful calculations.
type LoanRepository interface {
	Save(ctx context.Context, calc domain.Calculation) error
	// List returns the most recent calculations first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]domain.Calculation, error)
}
