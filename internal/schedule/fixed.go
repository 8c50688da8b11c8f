package schedule

import (
	"github.com/google/uuid"

	"github.com/aspirehq/loan-engine/internal/domain"
	"github.com/aspirehq/loan-engine/pkg/utils"
)

// FixedInstallmentStrategy splits the amount to be paid evenly across the
// loan term on a weekly cadence. The per-installment amount is not rounded
// and no remainder is redistributed; any precision drift against the loan
// total is accepted.
type FixedInstallmentStrategy struct{}

// Generate produces loan.LoanTerm pending installments in ascending
// due-date order. The first installment is due on the loan's start date,
// each subsequent one 7 days after the previous.
func (s *FixedInstallmentStrategy) Generate(loan *domain.Loan) []*domain.Installment {
	perInstallment := utils.PerInstallmentAmount(loan.AmountToBePaid, loan.LoanTerm)

	installments := make([]*domain.Installment, 0, loan.LoanTerm)
	for week := 0; week < loan.LoanTerm; week++ {
		installments = append(installments, &domain.Installment{
			ID:      uuid.New(),
			LoanID:  loan.ID,
			UserID:  loan.UserID,
			Amount:  perInstallment,
			DueDate: utils.DueDateForWeek(*loan.StartDate, week),
			Status:  domain.InstallmentStatusPending,
		})
	}

	return installments
}
