package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/aspirehq/loan-engine/internal/domain"
)

type installmentRepository struct {
	db *sqlx.DB
}

func NewInstallmentRepository(db *sqlx.DB) InstallmentRepository {
	return &installmentRepository{db: db}
}

const installmentColumns = `id, loan_id, user_id, amount, due_date, status, created_at`

func (r *installmentRepository) Save(ctx context.Context, installment *domain.Installment) error {
	query := `
		UPDATE installments
		SET amount = $2, status = $3
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		installment.ID,
		installment.Amount,
		installment.Status,
	)

	return err
}

func (r *installmentRepository) CreateBatch(ctx context.Context, installments []*domain.Installment) error {
	query := `
		INSERT INTO installments (` + installmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, installment := range installments {
		_, err = tx.ExecContext(ctx, query,
			installment.ID,
			installment.LoanID,
			installment.UserID,
			installment.Amount,
			installment.DueDate,
			installment.Status,
			installment.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *installmentRepository) GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Installment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM installments
		WHERE loan_id = $1
		ORDER BY due_date
	`

	var installments []*domain.Installment
	if err := r.db.SelectContext(ctx, &installments, query, loanID); err != nil {
		return nil, err
	}

	return installments, nil
}

func (r *installmentRepository) GetByLoanIDAndStatusOrderedByDueDate(ctx context.Context, loanID uuid.UUID, status string) ([]*domain.Installment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM installments
		WHERE loan_id = $1 AND status = $2
		ORDER BY due_date
	`

	var installments []*domain.Installment
	if err := r.db.SelectContext(ctx, &installments, query, loanID, status); err != nil {
		return nil, err
	}

	return installments, nil
}

func (r *installmentRepository) GetOverdue(ctx context.Context, before time.Time) ([]*domain.Installment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM installments
		WHERE status = $1 AND due_date < $2
		ORDER BY loan_id, due_date
	`

	var installments []*domain.Installment
	if err := r.db.SelectContext(ctx, &installments, query, domain.InstallmentStatusPending, before); err != nil {
		return nil, err
	}

	return installments, nil
}
