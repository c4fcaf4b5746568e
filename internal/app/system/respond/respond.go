// Package respond writes JSON responses in the shapes API clients expect:
// resource documents, write envelopes, and {message} / {error} failures.
package respond

import (
	"encoding/json"
	"net/http"
)

// JSON writes v as JSON with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes v as JSON with status 200.
func OK(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, v)
}

// Message writes {"message": msg}.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"message": msg})
}

// Error writes {"error": msg}.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"error": msg})
}

// Canonical messages for the authorization failures.
const (
	MsgUnauthorized = "Unauthorized Access"
	MsgForbidden    = "Forbidden Access"
	MsgInternal     = "Internal server error"
)

// Unauthorized writes the 401 body.
func Unauthorized(w http.ResponseWriter) {
	Message(w, http.StatusUnauthorized, MsgUnauthorized)
}

// Forbidden writes the 403 body.
func Forbidden(w http.ResponseWriter) {
	Message(w, http.StatusForbidden, MsgForbidden)
}
