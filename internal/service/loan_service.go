package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/aspirehq/loan-engine/internal/config"
	"github.com/aspirehq/loan-engine/internal/domain"
	"github.com/aspirehq/loan-engine/internal/product"
	"github.com/aspirehq/loan-engine/internal/repository"
	"github.com/aspirehq/loan-engine/internal/schedule"
	customError "github.com/aspirehq/loan-engine/pkg/errors"
)

// LoanService orchestrates the loan lifecycle: request, approval with
// installment generation, listing, and repayment allocation.
type LoanService struct {
	LoanRepo        repository.LoanRepository
	InstallmentRepo repository.InstallmentRepository
	UserRepo        repository.UserRepository
	redis           *redis.Client
	log             *logrus.Logger
	config          *config.Config
}

func NewLoanService(
	loanRepo repository.LoanRepository,
	installmentRepo repository.InstallmentRepository,
	userRepo repository.UserRepository,
	redisClient *redis.Client,
	log *logrus.Logger,
	cfg *config.Config,
) *LoanService {
	if log == nil {
		log = logrus.New()
	}
	return &LoanService{
		LoanRepo:        loanRepo,
		InstallmentRepo: installmentRepo,
		UserRepo:        userRepo,
		redis:           redisClient,
		log:             log,
		config:          cfg,
	}
}

// CreateLoan validates the requesting user, fixes the interest rate and
// total payable from the product's interest policy, and persists a new
// PENDING loan. Any existing user may request a loan.
func (s *LoanService) CreateLoan(ctx context.Context, userID uuid.UUID, loanType string, amountRequired decimal.Decimal, loanTerm int) (*domain.Loan, error) {
	user, err := s.UserRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapUserNotFound(userID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	info, err := product.InfoFor(loanType)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	loan := &domain.Loan{
		ID:             uuid.New(),
		UserID:         user.ID,
		AmountRequired: amountRequired,
		LoanTerm:       loanTerm,
		AmountToBePaid: info.TotalPayable(amountRequired, loanTerm),
		InterestRate:   info.Rate,
		LoanType:       loanType,
		Status:         domain.LoanStatusPending,
		RequestDate:    now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.LoanRepo.Create(ctx, loan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.log.WithFields(logrus.Fields{
		"loan_id":   loan.ID,
		"user_id":   user.ID,
		"loan_type": loanType,
	}).Info("loan requested")

	return loan, nil
}

// ApproveLoan stamps the start date, flips the loan to APPROVED, and
// generates and persists the full installment schedule. Only ADMIN users
// may approve.
func (s *LoanService) ApproveLoan(ctx context.Context, loanID, approverID uuid.UUID) (*domain.Loan, []*domain.Installment, error) {
	approver, err := s.UserRepo.GetByID(ctx, approverID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, customError.WrapUserNotFound(approverID.String())
		}
		return nil, nil, customError.WrapDatabaseError(err)
	}
	if approver.Role != domain.UserRoleAdmin {
		return nil, nil, customError.WrapUnauthorized(approverID.String())
	}

	loan, err := s.LoanRepo.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, customError.WrapLoanNotFound(loanID.String())
		}
		return nil, nil, customError.WrapDatabaseError(err)
	}

	strategy, err := schedule.StrategyFor(loan.LoanType)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	loan.Status = domain.LoanStatusApproved
	loan.StartDate = &now

	installments := strategy.Generate(loan)
	for _, installment := range installments {
		installment.CreatedAt = now
	}

	if err := s.LoanRepo.Update(ctx, loan); err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}
	if err := s.InstallmentRepo.CreateBatch(ctx, installments); err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	s.invalidateCaches(ctx, loanID)

	s.log.WithFields(logrus.Fields{
		"loan_id":      loan.ID,
		"approver_id":  approver.ID,
		"installments": len(installments),
	}).Info("loan approved")

	return loan, installments, nil
}

// ListLoansForUser returns the loans owned by a user, optionally filtered
// by status. An empty status means no filter.
func (s *LoanService) ListLoansForUser(ctx context.Context, userID uuid.UUID, status string) ([]*domain.Loan, error) {
	if _, err := s.UserRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapUserNotFound(userID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	var (
		loans []*domain.Loan
		err   error
	)
	if status == "" {
		loans, err = s.LoanRepo.GetByUserID(ctx, userID)
	} else {
		loans, err = s.LoanRepo.GetByUserIDAndStatus(ctx, userID, status)
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return loans, nil
}

// ListLoansForAdmin returns all loans in the system, optionally filtered
// by status. The requester must be an ADMIN.
func (s *LoanService) ListLoansForAdmin(ctx context.Context, requesterID uuid.UUID, status string) ([]*domain.Loan, error) {
	requester, err := s.UserRepo.GetByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapUserNotFound(requesterID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	if requester.Role != domain.UserRoleAdmin {
		return nil, customError.WrapUnauthorized(requesterID.String())
	}

	var loans []*domain.Loan
	if status == "" {
		loans, err = s.LoanRepo.GetAll(ctx)
	} else {
		loans, err = s.LoanRepo.GetAllByStatus(ctx, status)
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return loans, nil
}

// GetSchedule returns all installments for a loan, read through the cache.
func (s *LoanService) GetSchedule(ctx context.Context, loanID uuid.UUID) ([]*domain.Installment, error) {
	cacheKey := scheduleCacheKey(loanID)
	if cached := s.cacheGet(ctx, cacheKey); cached != nil {
		var installments []*domain.Installment
		if err := json.Unmarshal(cached, &installments); err == nil {
			return installments, nil
		}
	}

	if _, err := s.LoanRepo.GetByID(ctx, loanID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound(loanID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	installments, err := s.InstallmentRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if data, err := json.Marshal(installments); err == nil {
		s.cacheSet(ctx, cacheKey, data)
	}

	return installments, nil
}

// GetOutstanding returns the sum of the loan's pending installment
// amounts, read through the cache.
func (s *LoanService) GetOutstanding(ctx context.Context, loanID uuid.UUID) (decimal.Decimal, error) {
	cacheKey := outstandingCacheKey(loanID)
	if cached := s.cacheGet(ctx, cacheKey); cached != nil {
		if outstanding, err := decimal.NewFromString(string(cached)); err == nil {
			return outstanding, nil
		}
	}

	if _, err := s.LoanRepo.GetByID(ctx, loanID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, customError.WrapLoanNotFound(loanID.String())
		}
		return decimal.Zero, customError.WrapDatabaseError(err)
	}

	pending, err := s.InstallmentRepo.GetByLoanIDAndStatusOrderedByDueDate(ctx, loanID, domain.InstallmentStatusPending)
	if err != nil {
		return decimal.Zero, customError.WrapDatabaseError(err)
	}

	outstanding := decimal.Zero
	for _, installment := range pending {
		outstanding = outstanding.Add(installment.Amount)
	}

	s.cacheSet(ctx, cacheKey, []byte(outstanding.String()))

	return outstanding, nil
}

func scheduleCacheKey(loanID uuid.UUID) string {
	return fmt.Sprintf("loan:%s:schedule", loanID)
}

func outstandingCacheKey(loanID uuid.UUID) string {
	return fmt.Sprintf("loan:%s:outstanding", loanID)
}

// Cache access is best effort: a failed read falls through to the
// database, a failed write or delete is logged and ignored.

func (s *LoanService) cacheGet(ctx context.Context, key string) []byte {
	if s.redis == nil {
		return nil
	}
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.WithError(customError.WrapCacheError(err)).Warnf("cache read failed for %s", key)
		}
		return nil
	}
	return data
}

func (s *LoanService) cacheSet(ctx context.Context, key string, data []byte) {
	if s.redis == nil {
		return
	}
	ttl := 15 * time.Minute
	if s.config != nil {
		ttl = s.config.GetCacheTTL()
	}
	if err := s.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		s.log.WithError(customError.WrapCacheError(err)).Warnf("cache write failed for %s", key)
	}
}

func (s *LoanService) invalidateCaches(ctx context.Context, loanID uuid.UUID) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, scheduleCacheKey(loanID), outstandingCacheKey(loanID)).Err(); err != nil {
		s.log.WithError(customError.WrapCacheError(err)).Warnf("cache invalidation failed for loan %s", loanID)
	}
}
