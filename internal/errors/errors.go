package errors

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	InvalidAmount          ErrorCode = "invalid_amount"
	InsufficientFunds      ErrorCode = "insufficient_funds"
	LimitExceeded          ErrorCode = "limit_exceeded"
	MaxWithdrawalsExceeded ErrorCode = "max_withdrawals_exceeded"
	CustomerNotFound       ErrorCode = "customer_not_found"
	AccountNotFound        ErrorCode = "account_not_found"
	NoAccount              ErrorCode = "no_account"
	DuplicateCustomer      ErrorCode = "duplicate_customer"
	DuplicateAccount       ErrorCode = "duplicate_account"
	InvalidInput           ErrorCode = "invalid_input"
	InternalError          ErrorCode = "internal_error"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches on code, so a rejection carrying a formatted message still
// matches the predefined value.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewAppErrorf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithDetails returns a copy carrying details, leaving shared values intact.
func (e *AppError) WithDetails(details string) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case InvalidAmount, InvalidInput:
		return http.StatusBadRequest
	case CustomerNotFound, AccountNotFound:
		return http.StatusNotFound
	case DuplicateCustomer, DuplicateAccount:
		return http.StatusConflict
	case InsufficientFunds, LimitExceeded, MaxWithdrawalsExceeded, NoAccount:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Predefined errors for common cases
var (
	ErrInvalidAmount          = NewAppError(InvalidAmount, "invalid amount")
	ErrInsufficientFunds      = NewAppError(InsufficientFunds, "insufficient funds")
	ErrLimitExceeded          = NewAppError(LimitExceeded, "withdrawal exceeds the account limit")
	ErrMaxWithdrawalsExceeded = NewAppError(MaxWithdrawalsExceeded, "maximum number of withdrawals exceeded")
	ErrCustomerNotFound       = NewAppError(CustomerNotFound, "customer not found")
	ErrAccountNotFound        = NewAppError(AccountNotFound, "account not found")
	ErrNoAccount              = NewAppError(NoAccount, "customer has no account")
	ErrDuplicateCustomer      = NewAppError(DuplicateCustomer, "customer already exists")
	ErrDuplicateAccount       = NewAppError(DuplicateAccount, "account already exists")
	ErrInvalidInput           = NewAppError(InvalidInput, "invalid input")
	ErrInternal               = NewAppError(InternalError, "an unexpected error occurred")
)
