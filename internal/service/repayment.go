package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/aspirehq/loan-engine/internal/domain"
	customError "github.com/aspirehq/loan-engine/pkg/errors"
)

// Repay allocates a single payment across the loan's pending installments,
// earliest due date first, carrying any remainder to the next installment.
// The loan lookup is scoped to the repayable status, so an absent loan, an
// unapproved loan, and an already paid loan all surface as the same
// not-found error. If the payment settles every installment, the loan
// flips to PAID in the same call.
func (s *LoanService) Repay(ctx context.Context, loanID uuid.UUID, amount decimal.Decimal) (*domain.Loan, error) {
	loan, err := s.LoanRepo.GetByIDWithStatus(ctx, loanID, domain.LoanStatusApproved)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapRepayableLoanNotFound(loanID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	pending, err := s.InstallmentRepo.GetByLoanIDAndStatusOrderedByDueDate(ctx, loanID, domain.InstallmentStatusPending)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if len(pending) == 0 {
		return nil, customError.WrapNoPendingInstallments(loanID.String())
	}

	// A payment below the earliest due installment is rejected before any
	// allocation, even if later installments carry smaller balances.
	first := pending[0]
	if amount.LessThan(first.Amount) {
		return nil, customError.WrapInsufficientRepayment(first.Amount.String(), amount.String())
	}

	allocate(pending, amount)

	// Every fetched installment is persisted, including trailing ones the
	// payment never reached. The extra writes are no-ops.
	for _, installment := range pending {
		if err := s.InstallmentRepo.Save(ctx, installment); err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
	}

	all, err := s.InstallmentRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	allPaid := true
	for _, installment := range all {
		if installment.Status != domain.InstallmentStatusPaid {
			allPaid = false
			break
		}
	}
	if allPaid {
		loan.Status = domain.LoanStatusPaid
	}

	if err := s.LoanRepo.Update(ctx, loan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateCaches(ctx, loanID)

	s.log.WithFields(logrus.Fields{
		"loan_id": loanID,
		"amount":  amount,
		"paid":    allPaid,
	}).Info("repayment allocated")

	return loan, nil
}

// allocate walks the pending installments in ascending due-date order and
// mutates them in place. An installment fully covered by the remaining
// amount flips to PAID; the first one it cannot cover is shrunk by the
// remainder and stays PENDING, and everything after it is untouched.
func allocate(pending []*domain.Installment, amount decimal.Decimal) {
	remaining := amount
	for _, installment := range pending {
		if remaining.GreaterThanOrEqual(installment.Amount) {
			installment.Status = domain.InstallmentStatusPaid
			remaining = remaining.Sub(installment.Amount)
		} else {
			installment.Amount = installment.Amount.Sub(remaining)
			remaining = decimal.Zero
		}
	}
}
