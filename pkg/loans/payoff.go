package loans

import (
	"fmt"
	"math"
	"time"

	"github.com/iwvelando/mortgage-calc/pkg/constants"
	"github.com/iwvelando/mortgage-calc/pkg/datetime"
	"github.com/iwvelando/mortgage-calc/pkg/mathutil"
)

// integerSnap absorbs floating error in the closed-form month count so an
// exact term is not rounded up to the next month.
const integerSnap = 1e-9

// PayoffProjection describes when a loan is expected to be cleared.
type PayoffProjection struct {
	StartDate       time.Time
	ExpectedEndDate time.Time

	// PayoffDate is ExpectedEndDate plus AdditionalMonths. It is the zero
	// time when Computable is false.
	PayoffDate       time.Time
	AdditionalMonths int
	TermMonths       int
	Computable       bool
}

// TotalMonths returns the nominal term plus the additional months needed.
func (p PayoffProjection) TotalMonths() int {
	return p.TermMonths + p.AdditionalMonths
}

// TotalYears returns TotalMonths expressed in years.
func (p PayoffProjection) TotalYears() float64 {
	return float64(p.TotalMonths()) / constants.MonthsPerYear
}

// MonthsToPayoff returns the number of monthly payments needed to clear
// remainingBalance under a fixed payment, rounded up to whole months.
//
// A non-positive balance needs 0 months. At a zero rate the count is
// ceil(balance / payment). ErrUnpayable is returned when the payment never
// outgrows the interest on the balance.
func MonthsToPayoff(remainingBalance, payment, annualRatePercent float64) (int, error) {
	if err := validateRate(annualRatePercent); err != nil {
		return 0, err
	}
	if !mathutil.IsFinite(remainingBalance) || !mathutil.IsFinite(payment) {
		return 0, fmt.Errorf("%w: balance %v and payment %v must be finite", ErrInvalidInput, remainingBalance, payment)
	}
	if remainingBalance <= 0 {
		return 0, nil
	}
	if payment <= 0 {
		return 0, ErrUnpayable
	}

	if annualRatePercent == 0 {
		return ceilMonths(remainingBalance / payment)
	}

	r := MonthlyRate(annualRatePercent)
	ratio := r * remainingBalance / payment
	if ratio >= 1 {
		return 0, ErrUnpayable
	}
	return ceilMonths(-math.Log1p(-ratio) / math.Log1p(r))
}

func ceilMonths(months float64) (int, error) {
	if !mathutil.IsFinite(months) || months > math.MaxInt32 {
		return 0, ErrUnpayable
	}
	if nearest := math.Round(months); math.Abs(months-nearest) < integerSnap {
		months = nearest
	}
	return int(math.Ceil(months)), nil
}

// ExpectedEndDate returns the date on which a loan of termMonths starting at
// start nominally ends.
func ExpectedEndDate(start time.Time, termMonths int, strategy datetime.Strategy) time.Time {
	years := termMonths / constants.MonthsPerYear
	months := termMonths % constants.MonthsPerYear
	return strategy.AddMonths(strategy.AddYears(start, years), months)
}

// ProjectPayoff projects the actual payoff date of a schedule that starts at
// start. Months still needed after the nominal term come from the schedule's
// terminal balance and payment. The schedule is not modified.
func ProjectPayoff(s Schedule, start time.Time, strategy datetime.Strategy) PayoffProjection {
	projection := PayoffProjection{
		StartDate:       start,
		ExpectedEndDate: ExpectedEndDate(start, s.TermMonths, strategy),
		TermMonths:      s.TermMonths,
	}

	if len(s.Balance) == 0 || s.Balance[0] <= 0 {
		projection.ExpectedEndDate = start
		projection.PayoffDate = start
		projection.TermMonths = 0
		projection.Computable = true
		return projection
	}

	additional, err := MonthsToPayoff(s.FinalBalance(), s.Payment, s.AnnualRatePercent)
	if err != nil {
		return projection
	}

	projection.AdditionalMonths = additional
	projection.PayoffDate = strategy.AddMonths(projection.ExpectedEndDate, additional)
	projection.Computable = true
	return projection
}
