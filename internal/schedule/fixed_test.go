package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/aspirehq/loan-engine/internal/domain"
	customError "github.com/aspirehq/loan-engine/pkg/errors"
)

func TestStrategyFor(t *testing.T) {
	tests := []struct {
		name          string
		loanType      string
		expectedError bool
	}{
		{name: "personal loans have a strategy", loanType: domain.LoanTypePersonal},
		{name: "home loans have none", loanType: domain.LoanTypeHome, expectedError: true},
		{name: "car loans have none", loanType: domain.LoanTypeCar, expectedError: true},
		{name: "unknown product", loanType: "BOAT", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategy, err := StrategyFor(tt.loanType)

			if tt.expectedError {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, customError.ErrUnsupportedProduct))
				assert.Nil(t, strategy)
				return
			}

			assert.NoError(t, err)
			assert.IsType(t, &FixedInstallmentStrategy{}, strategy)
		})
	}
}

func approvedLoan(amountToBePaid decimal.Decimal, term int, startDate time.Time) *domain.Loan {
	return &domain.Loan{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		AmountToBePaid: amountToBePaid,
		LoanTerm:       term,
		LoanType:       domain.LoanTypePersonal,
		Status:         domain.LoanStatusApproved,
		StartDate:      &startDate,
	}
}

func TestFixedInstallmentStrategyGenerate(t *testing.T) {
	startDate := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	loan := approvedLoan(decimal.RequireFromString("10.4"), 52, startDate)

	installments := (&FixedInstallmentStrategy{}).Generate(loan)

	assert.Len(t, installments, 52)

	sum := decimal.Zero
	for i, installment := range installments {
		assert.Equal(t, loan.ID, installment.LoanID)
		assert.Equal(t, loan.UserID, installment.UserID)
		assert.Equal(t, domain.InstallmentStatusPending, installment.Status)
		assert.True(t, installment.Amount.Equal(decimal.RequireFromString("0.2")),
			"installment %d amount %s", i, installment.Amount)
		assert.True(t, installment.DueDate.Equal(startDate.AddDate(0, 0, 7*i)),
			"installment %d due %s", i, installment.DueDate)
		sum = sum.Add(installment.Amount)
	}

	assert.True(t, sum.Equal(loan.AmountToBePaid))
}

func TestGenerateFirstDueDateIsStartDate(t *testing.T) {
	startDate := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	loan := approvedLoan(decimal.NewFromInt(200), 4, startDate)

	installments := (&FixedInstallmentStrategy{}).Generate(loan)

	assert.True(t, installments[0].DueDate.Equal(startDate))
	for i := 1; i < len(installments); i++ {
		gap := installments[i].DueDate.Sub(installments[i-1].DueDate)
		assert.Equal(t, 7*24*time.Hour, gap)
	}
}

func TestGenerateUnevenDivisionDriftAccepted(t *testing.T) {
	startDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	loan := approvedLoan(decimal.NewFromInt(100), 3, startDate)

	installments := (&FixedInstallmentStrategy{}).Generate(loan)
	assert.Len(t, installments, 3)

	sum := decimal.Zero
	for _, installment := range installments {
		sum = sum.Add(installment.Amount)
	}

	// 100/3 does not divide evenly; no remainder redistribution happens, so
	// the sum may drift from the total within division precision.
	drift := loan.AmountToBePaid.Sub(sum).Abs()
	assert.True(t, drift.LessThan(decimal.RequireFromString("0.0001")),
		"drift %s", drift)
}

func TestGenerateIsDeterministic(t *testing.T) {
	startDate := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	loan := approvedLoan(decimal.RequireFromString("10.4"), 52, startDate)

	first := (&FixedInstallmentStrategy{}).Generate(loan)
	second := (&FixedInstallmentStrategy{}).Generate(loan)

	assert.Equal(t, len(first), len(second))
	for i := range first {
		assert.True(t, first[i].Amount.Equal(second[i].Amount))
		assert.True(t, first[i].DueDate.Equal(second[i].DueDate))
	}
}
