package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrUserNotFound          = errors.New("user not found")
	ErrLoanNotFound          = errors.New("loan not found")
	ErrUnauthorized          = errors.New("user does not have access for this feature")
	ErrNoPendingInstallments = errors.New("no pending installments for this loan")
	ErrInsufficientRepayment = errors.New("repayment amount should be greater than or equal to installment amount")
	ErrUnsupportedProduct    = errors.New("unsupported loan type")
	ErrUserAlreadyExists     = errors.New("user already exists")
	ErrBadCredentials        = errors.New("invalid email or password")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeUserNotFound          = "USER_NOT_FOUND"
	ErrCodeLoanNotFound          = "LOAN_NOT_FOUND"
	ErrCodeUnauthorized          = "UNAUTHORIZED"
	ErrCodeNoPendingInstallments = "NO_PENDING_INSTALLMENTS"
	ErrCodeInsufficientRepayment = "INSUFFICIENT_REPAYMENT"
	ErrCodeUnsupportedProduct    = "UNSUPPORTED_PRODUCT"
	ErrCodeUserAlreadyExists     = "USER_ALREADY_EXISTS"
	ErrCodeBadCredentials        = "BAD_CREDENTIALS"
	ErrCodeDatabaseError         = "DATABASE_ERROR"
	ErrCodeCacheError            = "CACHE_ERROR"
)

// Wrap common errors with business context
func WrapUserNotFound(userID string) *BusinessError {
	return NewBusinessError(
		ErrCodeUserNotFound,
		fmt.Sprintf("User not found with id %s", userID),
		ErrUserNotFound,
	)
}

func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan not found for: %s", loanID),
		ErrLoanNotFound,
	)
}

func WrapRepayableLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("No repayable loan found for: %s", loanID),
		ErrLoanNotFound,
	)
}

func WrapUnauthorized(userID string) *BusinessError {
	return NewBusinessError(
		ErrCodeUnauthorized,
		fmt.Sprintf("User %s does not have access for this feature", userID),
		ErrUnauthorized,
	)
}

func WrapNoPendingInstallments(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeNoPendingInstallments,
		fmt.Sprintf("No pending installments exist for loan: %s", loanID),
		ErrNoPendingInstallments,
	)
}

func WrapInsufficientRepayment(required, actual string) *BusinessError {
	return NewBusinessError(
		ErrCodeInsufficientRepayment,
		fmt.Sprintf("Repayment amount %s is below the earliest due installment amount %s", actual, required),
		ErrInsufficientRepayment,
	)
}

func WrapUnsupportedProduct(loanType string) *BusinessError {
	return NewBusinessError(
		ErrCodeUnsupportedProduct,
		fmt.Sprintf("Unsupported loan type: %s", loanType),
		ErrUnsupportedProduct,
	)
}

func WrapUserAlreadyExists(email string) *BusinessError {
	return NewBusinessError(
		ErrCodeUserAlreadyExists,
		fmt.Sprintf("User with email %s already exists", email),
		ErrUserAlreadyExists,
	)
}

func WrapBadCredentials() *BusinessError {
	return NewBusinessError(
		ErrCodeBadCredentials,
		"Invalid email or password",
		ErrBadCredentials,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"cache operation failed",
		err,
	)
}
