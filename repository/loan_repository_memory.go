package repository

import (
	"context"
	"sync"

	"loan-widget/domain"
)

// LoanRepositoryMemory is an in-memory implementation of LoanRepository.
type LoanRepositoryMemory struct {
	mu     sync.Mutex
	data   []domain.Calculation
	nextID int64
}

// NewLoanRepositoryMemory creates a new in-memory loan repository.
func NewLoanRepositoryMemory() *LoanRepositoryMemory {
	return &LoanRepositoryMemory{
		data: []domain.Calculation{},
	}
}

// Save stores the calculation in memory.
func (r *LoanRepositoryMemory) Save(_ context.Context, calc domain.Calculation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	calc.ID = r.nextID
	r.data = append(r.data, calc)
	return nil
}

func (r *LoanRepositoryMemory) List(_ context.Context, limit int) ([]domain.Calculation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Calculation, 0, len(r.data))
	for i := len(r.data) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, r.data[i])
	}
	return out, nil
}
