package handler_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/aspirehq/loan-engine/internal/domain"
	"github.com/aspirehq/loan-engine/internal/handler"
	"github.com/aspirehq/loan-engine/internal/service"
	"github.com/aspirehq/loan-engine/tests/mocks"
)

type fixture struct {
	loanRepo        *mocks.MockLoanRepository
	installmentRepo *mocks.MockInstallmentRepository
	userRepo        *mocks.MockUserRepository
	router          *mux.Router
}

func newFixture() *fixture {
	f := &fixture{
		loanRepo:        &mocks.MockLoanRepository{},
		installmentRepo: &mocks.MockInstallmentRepository{},
		userRepo:        &mocks.MockUserRepository{},
	}

	svc := service.NewLoanService(f.loanRepo, f.installmentRepo, f.userRepo, nil, nil, nil)
	h := handler.NewLoanHandler(svc)

	f.router = mux.NewRouter()
	f.router.HandleFunc("/loans", h.CreateLoan).Methods("POST")
	f.router.HandleFunc("/loans", h.ListLoans).Methods("GET")
	f.router.HandleFunc("/loans/{loanId}/approvals", h.ApproveLoan).Methods("POST")
	f.router.HandleFunc("/loans/{loanId}/repayments", h.Repay).Methods("POST")

	return f
}

func (f *fixture) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf).WithContext(context.Background())
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestCreateLoanEndpoint(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Email: "borrower@example.com", Role: domain.UserRoleBorrower}

	t.Run("valid request creates a pending loan", func(t *testing.T) {
		f := newFixture()
		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		f.loanRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		rec := f.do(http.MethodPost, "/loans", domain.CreateLoanRequest{
			UserID:         user.ID.String(),
			AmountRequired: 10400,
			LoanTerm:       52,
			LoanType:       domain.LoanTypePersonal,
		})

		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("unknown user maps to 404", func(t *testing.T) {
		f := newFixture()
		f.userRepo.On("GetByID", mock.Anything, user.ID).Return(nil, sql.ErrNoRows)

		rec := f.do(http.MethodPost, "/loans", domain.CreateLoanRequest{
			UserID:         user.ID.String(),
			AmountRequired: 10400,
			LoanTerm:       52,
			LoanType:       domain.LoanTypePersonal,
		})

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("validation failure maps to 400", func(t *testing.T) {
		f := newFixture()

		rec := f.do(http.MethodPost, "/loans", domain.CreateLoanRequest{
			UserID:         user.ID.String(),
			AmountRequired: -5,
			LoanTerm:       52,
			LoanType:       "BOAT",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		f.userRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func TestApproveLoanEndpoint(t *testing.T) {
	adminUser := &domain.User{ID: uuid.New(), Email: "admin@example.com", Role: domain.UserRoleAdmin}
	borrowerUser := &domain.User{ID: uuid.New(), Email: "borrower@example.com", Role: domain.UserRoleBorrower}

	loan := &domain.Loan{
		ID:             uuid.New(),
		UserID:         borrowerUser.ID,
		AmountRequired: decimal.NewFromInt(10400),
		LoanTerm:       52,
		AmountToBePaid: decimal.RequireFromString("10.4"),
		LoanType:       domain.LoanTypePersonal,
		Status:         domain.LoanStatusPending,
	}

	t.Run("admin approval returns the schedule", func(t *testing.T) {
		f := newFixture()
		f.userRepo.On("GetByID", mock.Anything, adminUser.ID).Return(adminUser, nil)
		f.loanRepo.On("GetByID", mock.Anything, loan.ID).Return(loan, nil)
		f.loanRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
		f.installmentRepo.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)

		rec := f.do(http.MethodPost, "/loans/"+loan.ID.String()+"/approvals", domain.ApproveLoanRequest{
			UserID: adminUser.ID.String(),
		})

		assert.Equal(t, http.StatusOK, rec.Code)

		var envelope struct {
			Data domain.ApproveLoanResponse `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		assert.Len(t, envelope.Data.Installments, 52)
		assert.Equal(t, domain.LoanStatusApproved, envelope.Data.Loan.Status)
	})

	t.Run("borrower approval maps to 403", func(t *testing.T) {
		f := newFixture()
		f.userRepo.On("GetByID", mock.Anything, borrowerUser.ID).Return(borrowerUser, nil)

		rec := f.do(http.MethodPost, "/loans/"+loan.ID.String()+"/approvals", domain.ApproveLoanRequest{
			UserID: borrowerUser.ID.String(),
		})

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestRepayEndpoint(t *testing.T) {
	startDate := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	loan := &domain.Loan{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		LoanType:  domain.LoanTypePersonal,
		Status:    domain.LoanStatusApproved,
		StartDate: &startDate,
	}

	t.Run("repayment below first installment maps to 400", func(t *testing.T) {
		f := newFixture()
		f.loanRepo.On("GetByIDWithStatus", mock.Anything, loan.ID, domain.LoanStatusApproved).Return(loan, nil)
		f.installmentRepo.On("GetByLoanIDAndStatusOrderedByDueDate", mock.Anything, loan.ID, domain.InstallmentStatusPending).
			Return([]*domain.Installment{{
				ID:      uuid.New(),
				LoanID:  loan.ID,
				Amount:  decimal.NewFromInt(60),
				DueDate: startDate,
				Status:  domain.InstallmentStatusPending,
			}}, nil)

		rec := f.do(http.MethodPost, "/loans/"+loan.ID.String()+"/repayments", domain.RepaymentRequest{Amount: 50})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("repaying a settled loan maps to 404", func(t *testing.T) {
		f := newFixture()
		f.loanRepo.On("GetByIDWithStatus", mock.Anything, loan.ID, domain.LoanStatusApproved).Return(nil, sql.ErrNoRows)

		rec := f.do(http.MethodPost, "/loans/"+loan.ID.String()+"/repayments", domain.RepaymentRequest{Amount: 50})

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
