package service

import (
	"fmt"
	"math"

	"loan-widget/domain"
)

// ComputeAmortization returns the fixed monthly payment of a fully amortized
// loan along with the totals over its life. Values are not rounded.
func ComputeAmortization(
	principal float64,
	annualRatePercent float64,
	termYears int,
) (domain.LoanResult, error) {

	n := termYears * MonthsPerYear
	if n <= 0 {
		return domain.LoanResult{}, domain.NewCalcError(domain.KindInvalidInput,
			fmt.Sprintf("term must be positive, got %d years", termYears))
	}
	if principal <= 0 {
		return domain.LoanResult{}, domain.NewCalcError(domain.KindInvalidInput,
			fmt.Sprintf("principal must be positive, got %g", principal))
	}

	monthlyRate := annualRatePercent / 100 / MonthsPerYear
	periods := float64(n)

	var monthly float64
	if monthlyRate == 0 {
		monthly = principal / periods
	} else {
		factor := math.Pow(1+monthlyRate, periods)
		monthly = principal * factor * monthlyRate / (factor - 1)
	}

	total := monthly * periods
	result := domain.LoanResult{
		MonthlyPayment: monthly,
		TotalPayment:   total,
		TotalInterest:  total - principal,
	}

	if !isFinite(result.MonthlyPayment) || !isFinite(result.TotalPayment) || !isFinite(result.TotalInterest) {
		return domain.LoanResult{}, domain.NewCalcError(domain.KindNonFinite,
			fmt.Sprintf("monthly payment is %v", monthly))
	}

	return result, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
