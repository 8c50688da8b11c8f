package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/aspirehq/loan-engine/internal/domain"
	"github.com/aspirehq/loan-engine/internal/service"
	"github.com/aspirehq/loan-engine/pkg/response"
)

type LoanHandler struct {
	service   *service.LoanService
	validator *validator.Validate
}

func NewLoanHandler(service *service.LoanService) *LoanHandler {
	return &LoanHandler{
		service:   service,
		validator: validator.New(),
	}
}

// CreateLoan handles POST /loans
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.BadRequest(w, "invalid user id", err)
		return
	}

	loan, err := h.service.CreateLoan(r.Context(), userID, req.LoanType, decimal.NewFromFloat(req.AmountRequired), req.LoanTerm)
	if err != nil {
		response.FromBusinessError(w, err)
		return
	}

	response.Created(w, loan)
}

// ApproveLoan handles POST /loans/{loanId}/approvals
func (h *LoanHandler) ApproveLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := uuid.Parse(mux.Vars(r)["loanId"])
	if err != nil {
		response.BadRequest(w, "invalid loan id", err)
		return
	}

	var req domain.ApproveLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	approverID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.BadRequest(w, "invalid user id", err)
		return
	}

	loan, installments, err := h.service.ApproveLoan(r.Context(), loanID, approverID)
	if err != nil {
		response.FromBusinessError(w, err)
		return
	}

	response.Success(w, domain.ApproveLoanResponse{Loan: loan, Installments: installments})
}

// ListLoans handles GET /loans?userId=...&status=...
func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	userID, status, ok := h.listParams(w, r)
	if !ok {
		return
	}

	loans, err := h.service.ListLoansForUser(r.Context(), userID, status)
	if err != nil {
		response.FromBusinessError(w, err)
		return
	}

	response.Success(w, domain.LoanListResponse{Loans: loans})
}

// ListAllLoans handles GET /loans/all?userId=...&status=... for admins
func (h *LoanHandler) ListAllLoans(w http.ResponseWriter, r *http.Request) {
	userID, status, ok := h.listParams(w, r)
	if !ok {
		return
	}

	loans, err := h.service.ListLoansForAdmin(r.Context(), userID, status)
	if err != nil {
		response.FromBusinessError(w, err)
		return
	}

	response.Success(w, domain.LoanListResponse{Loans: loans})
}

// Repay handles POST /loans/{loanId}/repayments
func (h *LoanHandler) Repay(w http.ResponseWriter, r *http.Request) {
	loanID, err := uuid.Parse(mux.Vars(r)["loanId"])
	if err != nil {
		response.BadRequest(w, "invalid loan id", err)
		return
	}

	var req domain.RepaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	loan, err := h.service.Repay(r.Context(), loanID, decimal.NewFromFloat(req.Amount))
	if err != nil {
		response.FromBusinessError(w, err)
		return
	}

	response.Success(w, loan)
}

// GetSchedule handles GET /loans/{loanId}/installments
func (h *LoanHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	loanID, err := uuid.Parse(mux.Vars(r)["loanId"])
	if err != nil {
		response.BadRequest(w, "invalid loan id", err)
		return
	}

	installments, err := h.service.GetSchedule(r.Context(), loanID)
	if err != nil {
		response.FromBusinessError(w, err)
		return
	}

	response.Success(w, domain.ScheduleResponse{LoanID: loanID.String(), Installments: installments})
}

// GetOutstanding handles GET /loans/{loanId}/outstanding
func (h *LoanHandler) GetOutstanding(w http.ResponseWriter, r *http.Request) {
	loanID, err := uuid.Parse(mux.Vars(r)["loanId"])
	if err != nil {
		response.BadRequest(w, "invalid loan id", err)
		return
	}

	outstanding, err := h.service.GetOutstanding(r.Context(), loanID)
	if err != nil {
		response.FromBusinessError(w, err)
		return
	}

	response.Success(w, domain.OutstandingResponse{LoanID: loanID.String(), Outstanding: outstanding})
}

func (h *LoanHandler) listParams(w http.ResponseWriter, r *http.Request) (uuid.UUID, string, bool) {
	userID, err := uuid.Parse(r.URL.Query().Get("userId"))
	if err != nil {
		response.BadRequest(w, "invalid user id", err)
		return uuid.Nil, "", false
	}

	status := r.URL.Query().Get("status")
	switch status {
	case "", domain.LoanStatusPending, domain.LoanStatusApproved, domain.LoanStatusPaid:
	default:
		response.BadRequest(w, "invalid status filter", nil)
		return uuid.Nil, "", false
	}

	return userID, status, true
}
