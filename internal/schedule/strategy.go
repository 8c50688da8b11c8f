package schedule

import (
	"github.com/aspirehq/loan-engine/internal/domain"
	customError "github.com/aspirehq/loan-engine/pkg/errors"
)

// RepaymentStrategy generates the full installment batch for an approved
// loan. The batch is created exactly once per loan and never regenerated.
type RepaymentStrategy interface {
	Generate(loan *domain.Loan) []*domain.Installment
}

// StrategyFor returns the repayment strategy for a loan product. Only
// PERSONAL loans have one; approving any other product fails here. That
// restriction is a contract, not an oversight: no cadence is defined for
// HOME or CAR repayment.
func StrategyFor(loanType string) (RepaymentStrategy, error) {
	switch loanType {
	case domain.LoanTypePersonal:
		return &FixedInstallmentStrategy{}, nil
	default:
		return nil, customError.WrapUnsupportedProduct(loanType)
	}
}
