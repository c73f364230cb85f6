package ledgererrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/UmarRehanShaikh/pronttera-time-off/internal/shared/apperror"
)

var (
	ErrLedgerNotFound = apperror.New(
		apperror.CodeNotFound,
		"Leave ledger not found",
		http.StatusNotFound,
	)

	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"User ID is not a valid UUID",
		http.StatusBadRequest,
	)

	ErrInvalidYear = apperror.New(
		apperror.CodeInvalidInput,
		"Year is out of range",
		http.StatusBadRequest,
	)

	ErrInvalidDays = apperror.New(
		apperror.CodeInvalidInput,
		"Days must be a positive integer",
		http.StatusBadRequest,
	)

	ErrInvalidLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"Leave type must be GENERAL or OPTIONAL",
		http.StatusBadRequest,
	)

	ErrOptionalQuotaExceeded = apperror.New(
		apperror.CodeQuotaExceeded,
		"Optional holiday quota of 4 per year exceeded",
		http.StatusBadRequest,
	)

	ErrConcurrencyConflict = apperror.New(
		apperror.CodeConflict,
		"Ledger was modified concurrently, please retry",
		http.StatusConflict,
	)
)

// errInsufficientBalance is the sentinel behind every shortfall error, so
// callers can match with errors.Is regardless of the shortfall amount.
var errInsufficientBalance = errors.New("insufficient leave balance")

// NewInsufficientBalance builds a shortfall error carrying the number of
// unsatisfied days.
func NewInsufficientBalance(shortfall int) *apperror.AppError {
	return apperror.Wrap(
		errInsufficientBalance,
		apperror.CodeInsufficientBalance,
		fmt.Sprintf("Insufficient leave balance. Short by %d days", shortfall),
		http.StatusBadRequest,
	)
}

// IsInsufficientBalance reports whether err is a shortfall error produced by
// NewInsufficientBalance.
func IsInsufficientBalance(err error) bool {
	return errors.Is(err, errInsufficientBalance)
}
