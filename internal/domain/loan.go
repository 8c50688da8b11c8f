package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LoanStatusPending  = "PENDING"
	LoanStatusApproved = "APPROVED"
	LoanStatusPaid     = "PAID"
)

const (
	LoanTypePersonal = "PERSONAL"
	LoanTypeHome     = "HOME"
	LoanTypeCar      = "CAR"
)

// Loan represents a loan entity. AmountToBePaid and InterestRate are fixed
// at creation and never recomputed.
type Loan struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	UserID         uuid.UUID       `json:"user_id" db:"user_id"`
	AmountRequired decimal.Decimal `json:"amount_required" db:"amount_required"`
	LoanTerm       int             `json:"loan_term" db:"loan_term"`
	AmountToBePaid decimal.Decimal `json:"amount_to_be_paid" db:"amount_to_be_paid"`
	InterestRate   decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	LoanType       string          `json:"loan_type" db:"loan_type"`
	Status         string          `json:"status" db:"status"`
	RequestDate    time.Time       `json:"request_date" db:"request_date"`
	StartDate      *time.Time      `json:"start_date,omitempty" db:"start_date"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// DTOs for requests and responses

type CreateLoanRequest struct {
	UserID         string  `json:"user_id" validate:"required,uuid"`
	AmountRequired float64 `json:"amount_required" validate:"required,gt=0"`
	LoanTerm       int     `json:"loan_term" validate:"required,gt=0"`
	LoanType       string  `json:"loan_type" validate:"required,oneof=PERSONAL HOME CAR"`
}

type ApproveLoanRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

type RepaymentRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

type LoanListResponse struct {
	Loans []*Loan `json:"loans"`
}

type ApproveLoanResponse struct {
	Loan         *Loan          `json:"loan"`
	Installments []*Installment `json:"installments"`
}

type OutstandingResponse struct {
	LoanID      string          `json:"loan_id"`
	Outstanding decimal.Decimal `json:"outstanding"`
}
