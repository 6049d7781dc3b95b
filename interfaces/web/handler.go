// Package web renders the book list and the create/edit form as server-side HTML.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"books-backend/domain/book"
	"books-backend/pkg/client"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PageSize is the number of rows shown per list page
const PageSize = 20

//go:embed templates/*.html
var templateFS embed.FS

// BooksAPI is the part of the HTTP client the pages call
type BooksAPI interface {
	GetBook(ctx context.Context, id string) (book.Book, error)
	GetBooks(ctx context.Context, author string) ([]book.Book, error)
	CreateBook(ctx context.Context, fields book.Fields) (book.Book, error)
	UpdateBook(ctx context.Context, b book.Book) (book.Book, error)
	DeleteBook(ctx context.Context, id string) error
}

var _ BooksAPI = (*client.Client)(nil)

// Handler serves the presentation pages
type Handler struct {
	api       BooksAPI
	templates *template.Template
	logger    *zap.Logger
}

// NewHandler parses the embedded templates
func NewHandler(api BooksAPI, logger *zap.Logger) (*Handler, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Handler{
		api:       api,
		templates: templates,
		logger:    logger,
	}, nil
}

// Routes returns the page router
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/books", http.StatusFound)
	})
	r.Get("/books", h.List)
	r.Post("/books/action", h.Action)
	r.Get("/books/new", h.New)
	r.Get("/books/{id}/edit", h.Edit)
	r.Post("/books/save", h.Save)
	return r
}

type listPage struct {
	Title    string
	Error    string
	Books    []book.Book
	Selected string
	Page     int
	Pages    int
	PrevPage int
	NextPage int
	Total    int
}

type formPage struct {
	Title string
	Error string
	Book  book.Book
}

// List shows one page of the book table
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.api.GetBooks(r.Context(), "")
	if err != nil {
		h.renderList(w, http.StatusBadGateway, listPage{Title: "Books", Error: err.Error(), Page: 1, Pages: 1})
		return
	}

	page := paginate(books, atoi(r.URL.Query().Get("page"), 1))
	page.Selected = r.URL.Query().Get("selected")
	h.renderList(w, http.StatusOK, page)
}

// Action dispatches the list buttons on the selected row
func (h *Handler) Action(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	id := r.PostForm.Get("id")
	page := atoi(r.PostForm.Get("page"), 1)

	switch r.PostForm.Get("action") {
	case "new":
		http.Redirect(w, r, "/books/new", http.StatusSeeOther)
	case "edit":
		if id == "" {
			http.Redirect(w, r, listURL(page), http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/books/"+url.PathEscape(id)+"/edit", http.StatusSeeOther)
	case "delete":
		if id != "" {
			if err := h.api.DeleteBook(r.Context(), id); err != nil {
				h.logger.Warn("Delete from list failed", zap.String("bookID", id), zap.Error(err))
				h.renderList(w, http.StatusBadGateway, listPage{Title: "Books", Error: err.Error(), Page: 1, Pages: 1})
				return
			}
		}
		http.Redirect(w, r, listURL(page), http.StatusSeeOther)
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
	}
}

// New shows an empty form
func (h *Handler) New(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, http.StatusOK, formPage{Title: "New book"})
}

// Edit shows the form filled with an existing book
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	b, err := h.api.GetBook(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		status := http.StatusBadGateway
		if client.IsNotFound(err) {
			status = http.StatusNotFound
		}
		h.renderForm(w, status, formPage{Title: "Edit book", Error: err.Error()})
		return
	}
	h.renderForm(w, http.StatusOK, formPage{Title: "Edit book", Book: b})
}

// Save creates the book when the form has no identifier and updates it otherwise
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	b := book.Book{
		ID:     r.PostForm.Get("id"),
		Name:   strings.TrimSpace(r.PostForm.Get("name")),
		Author: strings.TrimSpace(r.PostForm.Get("author")),
	}
	title := "New book"
	if b.ID != "" {
		title = "Edit book"
	}

	date, err := book.ParseDate(strings.TrimSpace(r.PostForm.Get("releaseDate")))
	if err != nil {
		h.renderForm(w, http.StatusBadRequest, formPage{Title: title, Error: err.Error(), Book: b})
		return
	}
	b.ReleaseDate = date

	if b.ID == "" {
		_, err = h.api.CreateBook(r.Context(), b.Fields())
	} else {
		_, err = h.api.UpdateBook(r.Context(), b)
	}
	if err != nil {
		status := http.StatusBadGateway
		var apiErr *client.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode < 500 {
			status = apiErr.StatusCode
		}
		h.renderForm(w, status, formPage{Title: title, Error: err.Error(), Book: b})
		return
	}

	http.Redirect(w, r, "/books", http.StatusSeeOther)
}

func (h *Handler) renderList(w http.ResponseWriter, status int, page listPage) {
	h.render(w, status, "list", page)
}

func (h *Handler) renderForm(w http.ResponseWriter, status int, page formPage) {
	h.render(w, status, "form", page)
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("Failed to render page", zap.String("template", name), zap.Error(err))
	}
}

// paginate cuts one page out of books, clamping the page number
func paginate(books []book.Book, page int) listPage {
	pages := (len(books) + PageSize - 1) / PageSize
	if pages == 0 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	start := (page - 1) * PageSize
	end := start + PageSize
	if end > len(books) {
		end = len(books)
	}

	return listPage{
		Title:    "Books",
		Books:    books[start:end],
		Page:     page,
		Pages:    pages,
		PrevPage: page - 1,
		NextPage: page + 1,
		Total:    len(books),
	}
}

func listURL(page int) string {
	return "/books?page=" + strconv.Itoa(page)
}

func atoi(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
