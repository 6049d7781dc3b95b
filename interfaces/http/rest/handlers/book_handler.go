package handlers

import (
	"io"
	"net/http"

	"books-backend/application/services"
	"books-backend/domain/book"
	"books-backend/pkg/common"
	"books-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxBodyBytes caps request bodies; a book is a few hundred bytes
const maxBodyBytes = 64 << 10

// BookHandler handles book-related HTTP requests
type BookHandler struct {
	service      *services.BookService
	errorHandler *errors.ErrorHandler
	logger       *zap.Logger
}

// NewBookHandler creates a new book handler
func NewBookHandler(
	service *services.BookService,
	errorHandler *errors.ErrorHandler,
	logger *zap.Logger,
) *BookHandler {
	return &BookHandler{
		service:      service,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// GetBook handles GET /getBook/{id}
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.GetBook(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, b)
}

// GetBooks handles GET /getBooks?author=
func (h *BookHandler) GetBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.GetBooks(r.Context(), r.URL.Query().Get("author"))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, books)
}

// CreateBook handles POST /createBook
func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var fields book.Fields
	if err := h.decode(w, r, &fields); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	created, err := h.service.CreateBook(r.Context(), fields)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, created)
}

// UpdateBook handles PUT /updateBook/{id}
func (h *BookHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	var b book.Book
	if err := h.decode(w, r, &b); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	updated, err := h.service.UpdateBook(r.Context(), chi.URLParam(r, "id"), b)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, updated)
}

// DeleteBook handles DELETE /deleteBook/{id}
func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	if !h.service.DeleteBook(r.Context(), chi.URLParam(r, "id")) {
		h.errorHandler.Handle(w, r, errors.NewValidationError("Couldn't delete").WithCode("DELETE_FAILED"))
		return
	}
	common.RespondJSON(w, http.StatusOK, struct{}{})
}

// Preflight answers OPTIONS on an endpoint that accepts only method
func (h *BookHandler) Preflight(method string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		common.RespondPreflight(w, method)
	}
}

func (h *BookHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return errors.NewValidationError("invalid request body").WithCause(err)
	}
	return common.DecodeJSON(body, v)
}
