package ports

import (
	"context"
	"fmt"

	"books-backend/domain/book"
	"books-backend/domain/events"
	"books-backend/pkg/errors"
)

// BookRepository defines the interface for book persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type BookRepository interface {
	// Get retrieves a book by its ID, returning a NOT_FOUND error when absent
	Get(ctx context.Context, id string) (book.Book, error)

	// List returns every stored book, following store pagination to the end
	List(ctx context.Context) ([]book.Book, error)

	// ListByAuthor returns the books whose author matches exactly
	ListByAuthor(ctx context.Context, author string) ([]book.Book, error)

	// Put stores a new book
	Put(ctx context.Context, b book.Book) error

	// Update overwrites name, author and release date for b.ID.
	// The item is created if it does not exist.
	Update(ctx context.Context, b book.Book) error

	// Delete removes a book. Deleting a missing book is not an error.
	Delete(ctx context.Context, id string) error
}

// EventPublisher publishes domain events to external consumers
type EventPublisher interface {
	Publish(ctx context.Context, events ...events.DomainEvent) error
}

// BookNotFound is the error every repository returns for a missing book
func BookNotFound(id string) error {
	return errors.NewNotFoundError(fmt.Sprintf("Book %s not found", id)).WithCode("BOOK_NOT_FOUND")
}
