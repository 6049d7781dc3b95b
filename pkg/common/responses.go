// Package common holds the JSON helpers shared by every HTTP surface.
// Book endpoints answer with bare JSON documents, never an envelope.
package common

import (
	"encoding/json"
	"net/http"
	"strings"

	"books-backend/pkg/errors"
)

// MessageResponse is the {"message": ...} body clients read on failure
type MessageResponse struct {
	Message string `json:"message"`
}

// RespondJSON sends a JSON response
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// RespondPreflight answers an OPTIONS request for an endpoint accepting a single method
func RespondPreflight(w http.ResponseWriter, method string) {
	for name, value := range PreflightHeaders(method) {
		w.Header().Set(name, value)
	}
	w.WriteHeader(http.StatusNoContent)
}

// PreflightHeaders names the one method an endpoint accepts
func PreflightHeaders(method string) map[string]string {
	return map[string]string{
		"Allow":                        method,
		"Access-Control-Allow-Methods": method,
	}
}

// DecodeJSON strictly parses a request body into v.
// Malformed input becomes a VALIDATION error.
func DecodeJSON(body []byte, v interface{}) error {
	if len(strings.TrimSpace(string(body))) == 0 {
		return errors.NewValidationError("request body is required")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.NewValidationError("invalid request body").WithCause(err)
	}
	return nil
}
