package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// ErrorResponse is the JSON body of every failed request.
// Clients only rely on Message.
type ErrorResponse struct {
	Message   string                 `json:"message"`
	Type      string                 `json:"type,omitempty"`
	Code      string                 `json:"code,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// ErrorHandler turns errors into logged JSON responses
type ErrorHandler struct {
	logger *zap.Logger
	debug  bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *zap.Logger, debug bool) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
		debug:  debug,
	}
}

// Response maps err to a status code and body, logging it on the way.
// It is shared by the net/http handlers and the function URL handlers.
func (h *ErrorHandler) Response(method, path, requestID string, err error) (int, ErrorResponse) {
	fields := []zap.Field{
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
	}

	appErr := GetAppError(err)
	if appErr == nil {
		status := http.StatusInternalServerError
		response := ErrorResponse{
			Message:   "An internal error occurred",
			Type:      string(ErrorTypeInternal),
			RequestID: requestID,
		}
		if h.debug {
			response.Message = err.Error()
		}
		h.logger.Error("Unhandled error", append(fields, zap.Error(err), zap.Int("status", status))...)
		return status, response
	}

	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}

	response := ErrorResponse{
		Message:   appErr.Message,
		Type:      string(appErr.Type),
		Code:      appErr.Code,
		Details:   appErr.Details,
		RequestID: requestID,
	}
	if h.debug && appErr.Cause != nil {
		if response.Details == nil {
			response.Details = make(map[string]interface{})
		}
		response.Details["cause"] = appErr.Cause.Error()
	}

	fields = append(fields, zap.String("error_type", string(appErr.Type)), zap.Int("status", status))
	if appErr.Code != "" {
		fields = append(fields, zap.String("error_code", appErr.Code))
	}
	if appErr.Cause != nil {
		fields = append(fields, zap.Error(appErr.Cause))
	}

	switch {
	case status >= 500:
		h.logger.Error(appErr.Message, fields...)
	case status >= 400:
		h.logger.Warn(appErr.Message, fields...)
	default:
		h.logger.Info(appErr.Message, fields...)
	}

	return status, response
}

// Handle processes an error and sends an HTTP response
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	status, response := h.Response(r.Method, r.URL.Path, r.Header.Get("X-Request-ID"), err)
	h.sendJSON(w, status, response)
}

// sendJSON sends a JSON response
func (h *ErrorHandler) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode error response", zap.Error(err))
	}
}

// Middleware returns an HTTP middleware that turns panics into 500 responses
func (h *ErrorHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.Handle(w, r, NewInternalError(fmt.Sprintf("panic: %v", rec)))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
