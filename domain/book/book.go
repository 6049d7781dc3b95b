// Package book holds the Book entity and its value types.
package book

import (
	"github.com/google/uuid"
)

// Book is the only entity managed by the service.
// ID is assigned on creation and never changes afterwards.
type Book struct {
	ID          string `json:"id,omitempty"`
	Author      string `json:"author"`
	Name        string `json:"name"`
	ReleaseDate Date   `json:"releaseDate"`
}

// IDGenerator produces new book identifiers
type IDGenerator func() string

// NewID returns a random UUIDv4 string
func NewID() string {
	return uuid.New().String()
}

// WithID returns a copy of the book carrying the given identifier
func (b Book) WithID(id string) Book {
	b.ID = id
	return b
}

// Fields holds the mutable part of a book as submitted by a client
type Fields struct {
	Author      string `json:"author" validate:"required,max=512"`
	Name        string `json:"name" validate:"required,max=512"`
	ReleaseDate Date   `json:"releaseDate"`
}

// Apply copies the submitted fields onto a book, keeping its identifier
func (f Fields) Apply(b Book) Book {
	b.Author = f.Author
	b.Name = f.Name
	b.ReleaseDate = f.ReleaseDate
	return b
}

// Fields returns the mutable part of the book
func (b Book) Fields() Fields {
	return Fields{
		Author:      b.Author,
		Name:        b.Name,
		ReleaseDate: b.ReleaseDate,
	}
}
