package service

import "time"

const (
	MonthsPerYear = 12

	MinLoanAmount   = 100.0
	MaxLoanAmount   = 99_999_999.0
	MinInterestRate = 0.01  // annual %
	MaxInterestRate = 100.0 // annual %
	MinTermYears    = 1
	MaxTermYears    = 50

	DefaultSimulatedLatency = 400 * time.Millisecond
	DefaultNoticeDuration   = 3 * time.Second
	DefaultStorageKey       = "loan_widget_last_entry"
)
