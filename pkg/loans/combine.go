package loans

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// CombinedLoanResult pairs the independent schedules of two loans that are
// serviced in parallel. The schedules keep their own lengths.
type CombinedLoanResult struct {
	First               Schedule
	Second              Schedule
	TotalMonthlyPayment float64
}

// Combine builds the schedule of each loan with its own term and sums their
// payments. The two schedules share no state and are built concurrently.
func Combine(first, second LoanTerms) (CombinedLoanResult, error) {
	var result CombinedLoanResult
	var g errgroup.Group

	g.Go(func() error {
		s, err := first.Schedule()
		if err != nil {
			return fmt.Errorf("loan %s: %w", loanLabel(first, "first"), err)
		}
		result.First = s
		return nil
	})
	g.Go(func() error {
		s, err := second.Schedule()
		if err != nil {
			return fmt.Errorf("loan %s: %w", loanLabel(second, "second"), err)
		}
		result.Second = s
		return nil
	})

	if err := g.Wait(); err != nil {
		return CombinedLoanResult{}, err
	}

	result.TotalMonthlyPayment = result.First.Payment + result.Second.Payment
	return result, nil
}

// Summary sums the lifetime totals of each schedule independently.
func (c CombinedLoanResult) Summary() Summary {
	return Summarize(c.First).Add(Summarize(c.Second))
}

// Months returns the length of the longer of the two schedules.
func (c CombinedLoanResult) Months() int {
	return max(c.First.Months(), c.Second.Months())
}

func loanLabel(t LoanTerms, fallback string) string {
	if t.Name != "" {
		return t.Name
	}
	return fallback
}
