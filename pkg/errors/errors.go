package errors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Domain errors
var (
	ErrInvalidAmount                   = errors.New("invalid amount")
	ErrInvalidInstallmentCount         = errors.New("invalid installment count")
	ErrInsufficientFunds               = errors.New("insufficient funds")
	ErrInsufficientPendingInstallments = errors.New("insufficient pending installments")
	ErrAccountNotFound                 = errors.New("account not found")
	ErrSameAccountTransfer             = errors.New("source and destination account are the same")
	ErrLoanLimitExceeded               = errors.New("loan limit exceeded")
	ErrPaymentCapacityExceeded         = errors.New("payment capacity exceeded")
	ErrAccountNotOperational           = errors.New("account is not operational")
	ErrLoanNotFound                    = errors.New("loan not found")
	ErrLoanNotActive                   = errors.New("loan is not active")
	ErrUserNotFound                    = errors.New("user not found")
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
	ErrCodeInvalidAmount                   = "INVALID_AMOUNT"
	ErrCodeInvalidInstallmentCount         = "INVALID_INSTALLMENT_COUNT"
	ErrCodeInsufficientFunds               = "INSUFFICIENT_FUNDS"
	ErrCodeInsufficientPendingInstallments = "INSUFFICIENT_PENDING_INSTALLMENTS"
	ErrCodeAccountNotFound                 = "ACCOUNT_NOT_FOUND"
	ErrCodeSameAccountTransfer             = "SAME_ACCOUNT_TRANSFER"
	ErrCodeLoanLimitExceeded               = "LOAN_LIMIT_EXCEEDED"
	ErrCodePaymentCapacityExceeded         = "PAYMENT_CAPACITY_EXCEEDED"
	ErrCodeAccountNotOperational           = "ACCOUNT_NOT_OPERATIONAL"
	ErrCodeLoanNotFound                    = "LOAN_NOT_FOUND"
	ErrCodeLoanNotActive                   = "LOAN_NOT_ACTIVE"
	ErrCodeUserNotFound                    = "USER_NOT_FOUND"
	ErrCodeDatabaseError                   = "DATABASE_ERROR"
	ErrCodeCacheError                      = "CACHE_ERROR"
)

// Wrap common errors with business context
func WrapInvalidAmount(reason string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidAmount,
		reason,
		ErrInvalidAmount,
	)
}

func WrapInvalidInstallmentCount(count, min, max int) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidInstallmentCount,
		fmt.Sprintf("installment count %d must be between %d and %d", count, min, max),
		ErrInvalidInstallmentCount,
	)
}

func WrapInsufficientFunds(requested, available decimal.Decimal) *BusinessError {
	return NewBusinessError(
		ErrCodeInsufficientFunds,
		fmt.Sprintf("requested %s exceeds available balance %s", requested.StringFixed(2), available.StringFixed(2)),
		ErrInsufficientFunds,
	)
}

func WrapInsufficientPendingInstallments(requested, pending int) *BusinessError {
	return NewBusinessError(
		ErrCodeInsufficientPendingInstallments,
		fmt.Sprintf("requested payment of %d installments but only %d are pending", requested, pending),
		ErrInsufficientPendingInstallments,
	)
}

func WrapAccountNotFound(ref string) *BusinessError {
	return NewBusinessError(
		ErrCodeAccountNotFound,
		fmt.Sprintf("account %s not found", ref),
		ErrAccountNotFound,
	)
}

func WrapSameAccountTransfer(accountNumber string) *BusinessError {
	return NewBusinessError(
		ErrCodeSameAccountTransfer,
		fmt.Sprintf("cannot transfer from account %s to itself", accountNumber),
		ErrSameAccountTransfer,
	)
}

func WrapLoanLimitExceeded(requested, limit decimal.Decimal) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanLimitExceeded,
		fmt.Sprintf("requested principal %s exceeds maximum allowed: %s (5x current balance)", requested.StringFixed(2), limit.StringFixed(2)),
		ErrLoanLimitExceeded,
	)
}

func WrapPaymentCapacityExceeded(installment, limit decimal.Decimal) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentCapacityExceeded,
		fmt.Sprintf("installment amount %s exceeds payment capacity: %s (70%% of current balance)", installment.StringFixed(2), limit.StringFixed(2)),
		ErrPaymentCapacityExceeded,
	)
}

func WrapAccountNotOperational(accountNumber, status string) *BusinessError {
	return NewBusinessError(
		ErrCodeAccountNotOperational,
		fmt.Sprintf("account %s is %s and cannot be operated on", accountNumber, status),
		ErrAccountNotOperational,
	)
}

func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("loan %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapLoanNotActive(loanID, status string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotActive,
		fmt.Sprintf("loan %s is %s and cannot accept payments", loanID, status),
		ErrLoanNotActive,
	)
}

func WrapUserNotFound(userID string) *BusinessError {
	return NewBusinessError(
		ErrCodeUserNotFound,
		fmt.Sprintf("user %s not found", userID),
		ErrUserNotFound,
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
