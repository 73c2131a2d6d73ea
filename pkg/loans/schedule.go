package loans

import (
	"errors"
	"fmt"

	"github.com/iwvelando/mortgage-calc/pkg/mathutil"
)

// Schedule is the amortization schedule of one loan.
//
// Balance, InterestPortion and PrincipalPortion all have TermMonths+1
// entries. Index 0 is the initial state: the full principal as balance and
// zero interest and principal. Indices 1..TermMonths hold the realized
// breakdown of each month. InterestPortion+PrincipalPortion equals Payment
// only for months 1..PaidOffMonth (or 1..TermMonths when the loan is not paid
// off). A payoff month that would overpay carries just the balance left plus
// its interest, and the months after it are zero.
type Schedule struct {
	Principal         float64
	AnnualRatePercent float64
	TermMonths        int
	Payment           float64

	Balance          []float64
	InterestPortion  []float64
	PrincipalPortion []float64

	// PaidOffMonth is the month in which the balance reached zero, or 0 if
	// it is still outstanding after TermMonths.
	PaidOffMonth int

	// NegativeAmortizationMonth is the first month whose payment did not
	// cover the accruing interest, or 0 if there was none.
	NegativeAmortizationMonth int
}

// Row is one line of an amortization table.
type Row struct {
	Month            int
	Balance          float64
	PrincipalPortion float64
	InterestPortion  float64
	Total            float64
}

// BuildSchedule walks the balance of a loan forward month by month under a
// fixed payment.
//
// Each month accrues interest on the previous balance and applies the rest of
// the payment to principal. When the balance drops to within a cent of zero,
// or the payment would overpay it, the month is recorded as PaidOffMonth, the
// balance is set to exactly zero and the remaining months stay empty. A
// payment that does not cover the interest is still walked forward and
// reported through NegativeAmortizationMonth.
func BuildSchedule(principal, annualRatePercent float64, termMonths int, payment float64) (Schedule, error) {
	if err := validatePrincipal(principal); err != nil {
		return Schedule{}, err
	}
	if err := validateRate(annualRatePercent); err != nil {
		return Schedule{}, err
	}
	if err := validateTerm(termMonths); err != nil {
		return Schedule{}, err
	}
	if !mathutil.IsFinite(payment) {
		return Schedule{}, fmt.Errorf("%w: payment %v must be finite", ErrInvalidInput, payment)
	}
	if payment < 0 {
		return Schedule{}, fmt.Errorf("%w: payment %v must not be negative", ErrInvalidInput, payment)
	}

	s := Schedule{
		Principal:         principal,
		AnnualRatePercent: annualRatePercent,
		TermMonths:        termMonths,
		Payment:           payment,
		Balance:           make([]float64, termMonths+1),
		InterestPortion:   make([]float64, termMonths+1),
		PrincipalPortion:  make([]float64, termMonths+1),
	}
	s.Balance[0] = principal

	for month := 1; month <= termMonths; month++ {
		if s.PaidOffMonth != 0 {
			break
		}

		previous := s.Balance[month-1]
		interest := InterestPayment(previous, annualRatePercent)
		principalPortion := payment - interest
		if payment <= interest && s.NegativeAmortizationMonth == 0 {
			s.NegativeAmortizationMonth = month
		}

		balance := previous - principalPortion
		if principalPortion > 0 && (balance < 0 || mathutil.Round(balance) == 0) {
			if !mathutil.IsZero(balance) {
				// The fixed payment exceeds what is left; the last payment shrinks.
				principalPortion = previous
			}
			balance = 0
			s.PaidOffMonth = month
		}

		s.Balance[month] = balance
		s.InterestPortion[month] = interest
		s.PrincipalPortion[month] = principalPortion
	}

	return s, nil
}

// Months returns the number of monthly periods in the schedule.
func (s Schedule) Months() int {
	return len(s.Balance) - 1
}

// FinalBalance returns the balance left after the last month.
func (s Schedule) FinalBalance() float64 {
	if len(s.Balance) == 0 {
		return 0
	}
	return s.Balance[len(s.Balance)-1]
}

// PaymentAt returns the amount actually paid in the given month.
func (s Schedule) PaymentAt(month int) float64 {
	if month < 1 || month >= len(s.Balance) {
		return 0
	}
	return s.InterestPortion[month] + s.PrincipalPortion[month]
}

// NegativeAmortization reports whether any payment failed to cover interest.
func (s Schedule) NegativeAmortization() bool {
	return s.NegativeAmortizationMonth != 0
}

// Degenerate reports whether the schedule was computed at a zero rate.
func (s Schedule) Degenerate() bool {
	return s.AnnualRatePercent == 0
}

// Condition returns the non-fatal conditions observed while building the
// schedule, matchable with errors.Is, or nil.
func (s Schedule) Condition() error {
	var conditions []error
	if s.Degenerate() {
		conditions = append(conditions, ErrDegenerateRate)
	}
	if s.NegativeAmortization() {
		conditions = append(conditions, fmt.Errorf("%w (month %d)", ErrNegativeAmortization, s.NegativeAmortizationMonth))
	}
	return errors.Join(conditions...)
}

// Rows returns the table rows for months 1..Months().
func (s Schedule) Rows() []Row {
	rows := make([]Row, 0, s.Months())
	for month := 1; month <= s.Months(); month++ {
		rows = append(rows, Row{
			Month:            month,
			Balance:          s.Balance[month],
			PrincipalPortion: s.PrincipalPortion[month],
			InterestPortion:  s.InterestPortion[month],
			Total:            s.PaymentAt(month),
		})
	}
	return rows
}
