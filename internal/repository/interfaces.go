package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aspirehq/loan-engine/internal/domain"
)

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// Create persists a new loan
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByID retrieves a loan by its ID
	GetByID(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error)

	// GetByIDWithStatus retrieves a loan by ID scoped to a status
	GetByIDWithStatus(ctx context.Context, loanID uuid.UUID, status string) (*domain.Loan, error)

	// GetByUserID retrieves all loans owned by a user
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Loan, error)

	// GetByUserIDAndStatus retrieves a user's loans filtered by status
	GetByUserIDAndStatus(ctx context.Context, userID uuid.UUID, status string) ([]*domain.Loan, error)

	// GetAll retrieves every loan
	GetAll(ctx context.Context) ([]*domain.Loan, error)

	// GetAllByStatus retrieves every loan with the given status
	GetAllByStatus(ctx context.Context, status string) ([]*domain.Loan, error)

	// Update updates a loan's mutable fields (status, start date)
	Update(ctx context.Context, loan *domain.Loan) error
}

// InstallmentRepository defines the interface for installment data operations
type InstallmentRepository interface {
	// Save updates a single installment (amount or status)
	Save(ctx context.Context, installment *domain.Installment) error

	// CreateBatch persists a loan's full installment schedule in one transaction
	CreateBatch(ctx context.Context, installments []*domain.Installment) error

	// GetByLoanID retrieves all installments for a loan
	GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Installment, error)

	// GetByLoanIDAndStatusOrderedByDueDate retrieves a loan's installments
	// with the given status in ascending due-date order
	GetByLoanIDAndStatusOrderedByDueDate(ctx context.Context, loanID uuid.UUID, status string) ([]*domain.Installment, error)

	// GetOverdue retrieves pending installments due before the given date,
	// across all loans
	GetOverdue(ctx context.Context, before time.Time) ([]*domain.Installment, error)
}

// UserRepository defines the interface for the user directory
type UserRepository interface {
	// Create persists a new user
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
