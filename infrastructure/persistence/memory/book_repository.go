// Package memory provides an in-process book store for local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"books-backend/application/ports"
	"books-backend/domain/book"
)

// BookRepository keeps books in a map guarded by a RWMutex
type BookRepository struct {
	mu    sync.RWMutex
	books map[string]book.Book
}

var _ ports.BookRepository = (*BookRepository)(nil)

// NewBookRepository creates an empty store
func NewBookRepository() *BookRepository {
	return &BookRepository{books: make(map[string]book.Book)}
}

func (r *BookRepository) Get(ctx context.Context, id string) (book.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.books[id]
	if !ok {
		return book.Book{}, ports.BookNotFound(id)
	}
	return b, nil
}

func (r *BookRepository) List(ctx context.Context) ([]book.Book, error) {
	return r.filter(func(book.Book) bool { return true }), nil
}

func (r *BookRepository) ListByAuthor(ctx context.Context, author string) ([]book.Book, error) {
	return r.filter(func(b book.Book) bool { return b.Author == author }), nil
}

func (r *BookRepository) Put(ctx context.Context, b book.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.books[b.ID] = b
	return nil
}

func (r *BookRepository) Update(ctx context.Context, b book.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing := r.books[b.ID]
	r.books[b.ID] = b.Fields().Apply(existing.WithID(b.ID))
	return nil
}

func (r *BookRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.books, id)
	return nil
}

// filter returns matching books ordered by author then id, like the author index
func (r *BookRepository) filter(keep func(book.Book) bool) []book.Book {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]book.Book, 0, len(r.books))
	for _, b := range r.books {
		if keep(b) {
			result = append(result, b)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Author != result[j].Author {
			return result[i].Author < result[j].Author
		}
		return result[i].ID < result[j].ID
	})
	return result
}
