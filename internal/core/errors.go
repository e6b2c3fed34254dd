package core

import "errors"

// Stable error codes returned to API clients and used in notifications.
const (
	CodeInvalidAmount      = "invalid_amount"
	CodeSameAccount        = "same_account"
	CodeInsufficientFunds  = "insufficient_funds"
	CodeCategoryResolution = "category_resolution_failed"
	CodeSubmissionFailed   = "submission_failed"
	CodeInvalidDate        = "invalid_date"
	CodeNotFound           = "not_found"
	CodeValidation         = "validation_error"
	CodeInternal           = "internal_error"
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrInvalidAmount, CodeInvalidAmount},
	{ErrSameAccount, CodeSameAccount},
	{ErrInsufficientFunds, CodeInsufficientFunds},
	{ErrCategoryResolution, CodeCategoryResolution},
	{ErrAccountNotOwned, CodeValidation},
	{ErrSubmissionFailed, CodeSubmissionFailed},
	{ErrInvalidDate, CodeInvalidDate},
	{ErrNotFound, CodeNotFound},
	{ErrEmptyName, CodeValidation},
	{ErrEmptyAccount, CodeValidation},
}

// ErrorCode maps err to its stable code, first match in table order.
// Unknown errors map to CodeInternal.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return CodeInternal
}

// IsValidationError reports whether err was raised before any write happened
// and can be fixed by the user.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrSameAccount) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrEmptyName) ||
		errors.Is(err, ErrEmptyAccount)
}
