package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-widget/domain"
)

func TestComputeAmortization_WithInterest(t *testing.T) {
	result, err := ComputeAmortization(10000, 5, 5)
	require.NoError(t, err)

	assert.InDelta(t, 188.71, result.MonthlyPayment, 0.01)
	assert.InDelta(t, 11322.74, result.TotalPayment, 0.01)
	assert.InDelta(t, 1322.74, result.TotalInterest, 0.01)
}

func TestComputeAmortization_ZeroInterest(t *testing.T) {
	result, err := ComputeAmortization(1200, 0, 1)
	require.NoError(t, err)

	assert.Equal(t, domain.LoanResult{MonthlyPayment: 100, TotalPayment: 1200, TotalInterest: 0}, result)
}

func TestComputeAmortization_DoesNotRound(t *testing.T) {
	result, err := ComputeAmortization(10000, 5, 5)
	require.NoError(t, err)

	assert.NotEqual(t, math.Round(result.MonthlyPayment*100)/100, result.MonthlyPayment)
}

func TestComputeAmortization_TotalsAreConsistent(t *testing.T) {
	cases := []struct {
		principal float64
		rate      float64
		years     int
	}{
		{MinLoanAmount, MinInterestRate, MinTermYears},
		{MaxLoanAmount, MaxInterestRate, MaxTermYears},
		{250000, 6.5, 30},
		{5000, 19.99, 3},
		{100, 100, 1},
		{99_999_999, 0.01, 50},
	}

	for _, tc := range cases {
		result, err := ComputeAmortization(tc.principal, tc.rate, tc.years)
		require.NoError(t, err, "%+v", tc)

		n := float64(tc.years * MonthsPerYear)
		assert.Greater(t, result.MonthlyPayment, 0.0)
		assert.Greater(t, result.TotalPayment, 0.0)
		assert.Greater(t, result.TotalInterest, 0.0)
		assert.InEpsilon(t, result.MonthlyPayment*n, result.TotalPayment, 1e-9)
		assert.InDelta(t, result.TotalPayment-tc.principal, result.TotalInterest, 1e-6)
	}
}

func TestComputeAmortization_InvalidInput(t *testing.T) {
	cases := []struct {
		name      string
		principal float64
		years     int
	}{
		{"zero term", 1000, 0},
		{"negative term", 1000, -2},
		{"zero principal", 0, 10},
		{"negative principal", -50, 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeAmortization(tc.principal, 5, tc.years)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.True(t, domain.IsKind(err, domain.KindInvalidInput))
		})
	}
}

func TestComputeAmortization_NonFinite(t *testing.T) {
	cases := []struct {
		name      string
		principal float64
		rate      float64
	}{
		{"infinite principal", math.Inf(1), 5},
		{"nan principal", math.NaN(), 5},
		{"nan rate", 1000, math.NaN()},
		{"overflowing factor", 1000, 1e308},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeAmortization(tc.principal, tc.rate, 10)
			require.ErrorIs(t, err, domain.ErrNonFinite)
		})
	}
}
