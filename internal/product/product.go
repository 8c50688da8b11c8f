package product

import (
	"github.com/shopspring/decimal"

	"github.com/aspirehq/loan-engine/internal/domain"
	customError "github.com/aspirehq/loan-engine/pkg/errors"
)

// Info carries the interest terms of a single loan product: the fixed rate
// and the divisor the total-payable formula uses (100 x periods-per-year,
// weeks for PERSONAL, months for HOME and CAR).
type Info struct {
	Rate    decimal.Decimal
	divisor decimal.Decimal
}

var products = map[string]Info{
	domain.LoanTypePersonal: {
		Rate:    decimal.NewFromFloat(0.10),
		divisor: decimal.NewFromInt(100 * 52),
	},
	domain.LoanTypeHome: {
		Rate:    decimal.NewFromFloat(0.08),
		divisor: decimal.NewFromInt(100 * 12),
	},
	domain.LoanTypeCar: {
		Rate:    decimal.NewFromFloat(0.09),
		divisor: decimal.NewFromInt(100 * 12),
	},
}

// InfoFor returns the interest terms for a loan product.
func InfoFor(loanType string) (Info, error) {
	info, ok := products[loanType]
	if !ok {
		return Info{}, customError.WrapUnsupportedProduct(loanType)
	}
	return info, nil
}

// TotalPayable computes the amount the borrower repays over the full term:
// principal * rate * term / (100 * periods-per-year).
func (i Info) TotalPayable(principal decimal.Decimal, term int) decimal.Decimal {
	return principal.
		Mul(i.Rate).
		Mul(decimal.NewFromInt(int64(term))).
		Div(i.divisor)
}
