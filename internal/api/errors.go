package api

import (
	"encoding/json"
	"net/http"
)

// Error codes shared across the admin API. Clients branch on the code, not
// the message. Domain-specific codes (ALREADY_REVIEWED,
// DUPLICATE_PRODUCT_CODE) live with the handlers that emit them.
const (
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeNotFound         = "NOT_FOUND"
	CodeInternal         = "INTERNAL"
)

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(ErrorEnvelope{
		Error: APIError{Code: code, Message: message},
	})
}

// WriteInternal is the catch-all for unexpected failures; the detail stays
// in the logs, never in the response body.
func WriteInternal(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, CodeInternal, "internal error")
}
