// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/mortgage-calc/internal/report"
	"github.com/iwvelando/mortgage-calc/pkg/loans"
)

// FindLoan finds a loan of a combined report by name.
// Returns a pointer to the loan if found, nil otherwise.
func FindLoan(result *report.CombinedReport, name string) *report.LoanReport {
	for _, loan := range []*report.LoanReport{&result.Subsidized, &result.Bank} {
		if loan.Terms.Name == name {
			return loan
		}
	}
	return nil
}

// FindRow returns the amortization row of the given month, or nil when the
// schedule does not reach it.
func FindRow(s loans.Schedule, month int) *loans.Row {
	if month < 1 || month > s.Months() {
		return nil
	}
	rows := s.Rows()
	return &rows[month-1]
}
