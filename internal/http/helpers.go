package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"fintrack/internal/auth"
	"fintrack/internal/core"
)

const codeBadRequest = "bad_request"

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// formatEuros formats miliunits as a Euro currency string (e.g., "€12,34").
func formatEuros(miliunits int64) string {
	s := strings.Replace(core.FormatMiliunits(miliunits), ".", ",", 1)
	if strings.HasPrefix(s, "-") {
		return "-€" + s[1:]
	}
	return "€" + s
}

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeData wraps v in the {"data": ...} envelope.
func writeData(w http.ResponseWriter, status int, v any) {
	writeJSON(w, status, map[string]any{"data": v})
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]apiError{"error": {Code: code, Message: message}})
}

// writeDomainError maps err to its status code and stable error code.
// Internal errors and foreign account ids never reach the client.
func writeDomainError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	message := err.Error()
	if status >= 500 || errors.Is(err, core.ErrAccountNotOwned) {
		message = userMessage(err)
	}
	writeAPIError(w, status, core.ErrorCode(err), message)
}

// statusForError maps domain errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case core.IsValidationError(err), errors.Is(err, core.ErrAccountNotOwned):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// userMessage is the notification text shown for err.
func userMessage(err error) string {
	if errors.Is(err, core.ErrAccountNotOwned) {
		return "Account not found"
	}
	switch core.ErrorCode(err) {
	case core.CodeInvalidAmount:
		return "Enter a positive amount"
	case core.CodeSameAccount:
		return "Source and target account must differ"
	case core.CodeInsufficientFunds:
		return "Insufficient funds in the source account"
	case core.CodeInvalidDate:
		return "Enter a valid date"
	case core.CodeCategoryResolution:
		return "Could not prepare the transfer category, please retry"
	case core.CodeSubmissionFailed:
		return "The transfer could not be saved"
	case core.CodeNotFound:
		return "Not found"
	case core.CodeValidation:
		return "Invalid data"
	default:
		return "Unexpected error"
	}
}

// currentUser returns the authenticated user. The auth middleware always
// sets one, so a missing id falls back to the local user.
func currentUser(r *http.Request) string {
	if id, ok := auth.UserID(r.Context()); ok {
		return id
	}
	return auth.LocalUserID
}

func balanceKey(userID, accountID string) string {
	return userID + "|" + accountID
}
