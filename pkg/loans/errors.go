package loans

import "errors"

var (
	// ErrInvalidInput reports a non-positive principal or term, a rate
	// outside [0, 100], or a non-finite value.
	ErrInvalidInput = errors.New("invalid loan input")

	// ErrDegenerateRate marks a schedule computed at a zero rate with the
	// linear fallback formulas.
	ErrDegenerateRate = errors.New("zero interest rate")

	// ErrNegativeAmortization marks a schedule whose payment does not cover
	// the interest accruing in at least one month.
	ErrNegativeAmortization = errors.New("payment does not cover accruing interest")

	// ErrUnpayable is returned when a balance can never be repaid with the
	// given payment.
	ErrUnpayable = errors.New("balance cannot be repaid with this payment")
)
