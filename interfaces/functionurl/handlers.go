// Package functionurl exposes each book operation as its own Lambda
// function URL handler. The relay has already dropped the operation
// segment, so handlers see "/" or "/{id}".
package functionurl

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"books-backend/application/services"
	"books-backend/domain/book"
	"books-backend/pkg/common"
	pkgerrors "books-backend/pkg/errors"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
)

// HandlerFunc is the signature lambda.Start expects for a function URL
type HandlerFunc func(ctx context.Context, req events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error)

// Handlers adapts function URL events to the book service
type Handlers struct {
	service      *services.BookService
	errorHandler *pkgerrors.ErrorHandler
	logger       *zap.Logger
}

// NewHandlers creates the function URL handlers
func NewHandlers(service *services.BookService, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *Handlers {
	return &Handlers{
		service:      service,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// ForOperation returns the handler serving one operation
func (h *Handlers) ForOperation(operation string) (HandlerFunc, error) {
	switch operation {
	case services.OpGetBook:
		return h.GetBook, nil
	case services.OpGetBooks:
		return h.GetBooks, nil
	case services.OpCreateBook:
		return h.CreateBook, nil
	case services.OpUpdateBook:
		return h.UpdateBook, nil
	case services.OpDeleteBook:
		return h.DeleteBook, nil
	default:
		return nil, fmt.Errorf("unknown operation %q", operation)
	}
}

// GetBook handles GET /{id}
func (h *Handlers) GetBook(ctx context.Context, req events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	h.logRequest(services.OpGetBook, req)

	b, err := h.service.GetBook(ctx, bookID(req))
	if err != nil {
		return h.failure(req, err), nil
	}
	return h.success(req, b), nil
}

// GetBooks handles GET /?author=
func (h *Handlers) GetBooks(ctx context.Context, req events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	h.logRequest(services.OpGetBooks, req)

	books, err := h.service.GetBooks(ctx, req.QueryStringParameters["author"])
	if err != nil {
		return h.failure(req, err), nil
	}
	return h.success(req, books), nil
}

// CreateBook handles POST /
func (h *Handlers) CreateBook(ctx context.Context, req events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	h.logRequest(services.OpCreateBook, req)
	if isPreflight(req) {
		return preflight(http.MethodPost), nil
	}

	body, err := requestBody(req)
	if err != nil {
		return h.failure(req, err), nil
	}
	var fields book.Fields
	if err := common.DecodeJSON(body, &fields); err != nil {
		return h.failure(req, err), nil
	}

	created, err := h.service.CreateBook(ctx, fields)
	if err != nil {
		return h.failure(req, err), nil
	}
	return h.success(req, created), nil
}

// UpdateBook handles PUT /{id}
func (h *Handlers) UpdateBook(ctx context.Context, req events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	h.logRequest(services.OpUpdateBook, req)
	if isPreflight(req) {
		return preflight(http.MethodPut), nil
	}

	body, err := requestBody(req)
	if err != nil {
		return h.failure(req, err), nil
	}
	var b book.Book
	if err := common.DecodeJSON(body, &b); err != nil {
		return h.failure(req, err), nil
	}

	updated, err := h.service.UpdateBook(ctx, bookID(req), b)
	if err != nil {
		return h.failure(req, err), nil
	}
	return h.success(req, updated), nil
}

// DeleteBook handles DELETE /{id}
func (h *Handlers) DeleteBook(ctx context.Context, req events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	h.logRequest(services.OpDeleteBook, req)
	if isPreflight(req) {
		return preflight(http.MethodDelete), nil
	}

	if !h.service.DeleteBook(ctx, bookID(req)) {
		return h.failure(req, pkgerrors.NewValidationError("Couldn't delete").WithCode("DELETE_FAILED")), nil
	}
	return h.success(req, struct{}{}), nil
}

func (h *Handlers) logRequest(operation string, req events.LambdaFunctionURLRequest) {
	h.logger.Debug("Function URL request",
		zap.String("operation", operation),
		zap.String("method", req.RequestContext.HTTP.Method),
		zap.String("path", req.RawPath),
		zap.String("query", req.RawQueryString),
		zap.String("request_id", req.RequestContext.RequestID),
	)
}

func (h *Handlers) success(req events.LambdaFunctionURLRequest, data interface{}) events.LambdaFunctionURLResponse {
	return h.jsonResponse(req, http.StatusOK, data)
}

func (h *Handlers) failure(req events.LambdaFunctionURLRequest, err error) events.LambdaFunctionURLResponse {
	status, body := h.errorHandler.Response(req.RequestContext.HTTP.Method, req.RawPath, req.RequestContext.RequestID, err)
	return h.jsonResponse(req, status, body)
}

func (h *Handlers) jsonResponse(req events.LambdaFunctionURLRequest, status int, data interface{}) events.LambdaFunctionURLResponse {
	body, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err), zap.String("path", req.RawPath))
		return events.LambdaFunctionURLResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       `{"message":"An internal error occurred"}`,
		}
	}
	return events.LambdaFunctionURLResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

func preflight(method string) events.LambdaFunctionURLResponse {
	return events.LambdaFunctionURLResponse{
		StatusCode: http.StatusNoContent,
		Headers:    common.PreflightHeaders(method),
	}
}

func isPreflight(req events.LambdaFunctionURLRequest) bool {
	return req.RequestContext.HTTP.Method == http.MethodOptions
}

// bookID is everything after the leading slash
func bookID(req events.LambdaFunctionURLRequest) string {
	return strings.TrimPrefix(req.RawPath, "/")
}

func requestBody(req events.LambdaFunctionURLRequest) ([]byte, error) {
	if !req.IsBase64Encoded {
		return []byte(req.Body), nil
	}
	body, err := base64.StdEncoding.DecodeString(req.Body)
	if err != nil {
		return nil, pkgerrors.NewValidationError("invalid request body").WithCause(err)
	}
	return body, nil
}
