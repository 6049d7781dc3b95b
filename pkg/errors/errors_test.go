package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAppError_Chain(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := fmt.Errorf("get book: %w", NewDatabaseError("GetItem", cause))

	appErr := GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, ErrorTypeDatabase, appErr.Type)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
	assert.Contains(t, appErr.Error(), "caused by: connection reset")
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusCode(NewNotFoundError("Book 1 not found")))
	assert.Equal(t, http.StatusBadRequest, StatusCode(NewValidationError("bad")))
	assert.Equal(t, http.StatusServiceUnavailable, StatusCode(NewUnavailableError("getBook")))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(fmt.Errorf("plain")))
}

func TestIsHelpers(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFoundError("x")))
	assert.False(t, IsNotFound(NewValidationError("x")))
	assert.True(t, IsValidation(fmt.Errorf("wrapped: %w", NewValidationError("x"))))
	assert.False(t, IsValidation(nil))
}

func TestErrorHandler_Handle(t *testing.T) {
	handler := NewErrorHandler(zap.NewNop(), false)

	t.Run("application error keeps its message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/getBook/42", nil)
		handler.Handle(rec, req, NewNotFoundError("Book 42 not found"))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Book 42 not found", body.Message)
		assert.Equal(t, "NOT_FOUND", body.Type)
	})

	t.Run("plain error is hidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/getBooks", nil)
		handler.Handle(rec, req, fmt.Errorf("secret detail"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "secret detail")
	})

	t.Run("debug exposes cause", func(t *testing.T) {
		debugHandler := NewErrorHandler(zap.NewNop(), true)
		status, body := debugHandler.Response("GET", "/", "req-1", NewDatabaseError("Scan", fmt.Errorf("throttled")))
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "throttled", body.Details["cause"])
		assert.Equal(t, "req-1", body.RequestID)
	})
}

func TestErrorHandler_MiddlewareRecovers(t *testing.T) {
	handler := NewErrorHandler(zap.NewNop(), false)
	panicking := handler.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	panicking.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
