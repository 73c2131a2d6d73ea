package loans

import (
	"github.com/iwvelando/mortgage-calc/pkg/constants"
	"github.com/shopspring/decimal"
)

// Summary holds the lifetime totals of a schedule, rounded to cents.
type Summary struct {
	TotalInterest    float64
	TotalPrincipal   float64
	TotalPaid        float64
	RemainingBalance float64
}

// Summarize totals the interest and principal series of a schedule.
func Summarize(s Schedule) Summary {
	interest := decimal.Zero
	principal := decimal.Zero
	for month := 1; month <= s.Months(); month++ {
		interest = interest.Add(decimal.NewFromFloat(s.InterestPortion[month]))
		principal = principal.Add(decimal.NewFromFloat(s.PrincipalPortion[month]))
	}

	return Summary{
		TotalInterest:    currency(interest),
		TotalPrincipal:   currency(principal),
		TotalPaid:        currency(interest.Add(principal)),
		RemainingBalance: currency(decimal.NewFromFloat(s.FinalBalance())),
	}
}

// Add returns the element-wise sum of two summaries.
func (s Summary) Add(other Summary) Summary {
	return Summary{
		TotalInterest:    sumCurrency(s.TotalInterest, other.TotalInterest),
		TotalPrincipal:   sumCurrency(s.TotalPrincipal, other.TotalPrincipal),
		TotalPaid:        sumCurrency(s.TotalPaid, other.TotalPaid),
		RemainingBalance: sumCurrency(s.RemainingBalance, other.RemainingBalance),
	}
}

func sumCurrency(a, b float64) float64 {
	return currency(decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)))
}

func currency(d decimal.Decimal) float64 {
	return d.Round(constants.CurrencyPlaces).InexactFloat64()
}
