// Package httpx provides the JSON response helpers shared by every API module.
package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// ErrorBody is the stable error envelope returned on every failure.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error sends the error envelope with the given status and message.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Error: message})
}

// ErrorWithDetails sends the error envelope including a details string.
func ErrorWithDetails(w http.ResponseWriter, status int, message, details string) {
	JSON(w, status, ErrorBody{Error: message, Details: details})
}

// Internal sends a 500 envelope carrying a correlation reference and returns
// the reference so the caller can log it alongside the underlying error.
func Internal(w http.ResponseWriter, message string) string {
	ref := uuid.NewString()
	ErrorWithDetails(w, http.StatusInternalServerError, message, "ref: "+ref)
	return ref
}

// DecodeJSON decodes a JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
