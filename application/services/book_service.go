package services

import (
	"context"
	"time"

	"books-backend/application/ports"
	"books-backend/domain/book"
	"books-backend/domain/events"
	"books-backend/pkg/errors"
	"books-backend/pkg/observability"
	"books-backend/pkg/utils"

	"go.uber.org/zap"
)

// Operation names, shared with the HTTP layers and metrics labels
const (
	OpGetBook    = "getBook"
	OpGetBooks   = "getBooks"
	OpCreateBook = "createBook"
	OpUpdateBook = "updateBook"
	OpDeleteBook = "deleteBook"
)

// MsgIDMismatch is returned when the path and body carry different identifiers
const MsgIDMismatch = "Two different book IDs given!"

// BookService implements the five book operations on top of a repository.
// Handlers are thin: they parse the request and call exactly one method.
type BookService struct {
	repo      ports.BookRepository
	publisher ports.EventPublisher
	metrics   *observability.Collector
	tracer    *observability.Tracer
	logger    *zap.Logger
	newID     book.IDGenerator
	now       func() time.Time
}

// NewBookService creates a new book service. publisher, metrics and tracer may be nil.
func NewBookService(
	repo ports.BookRepository,
	publisher ports.EventPublisher,
	metrics *observability.Collector,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *BookService {
	return &BookService{
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
		tracer:    tracer,
		logger:    logger,
		newID:     book.NewID,
		now:       time.Now,
	}
}

// WithIDGenerator replaces the identifier source
func (s *BookService) WithIDGenerator(gen book.IDGenerator) *BookService {
	s.newID = gen
	return s
}

// WithClock replaces the clock used for event timestamps
func (s *BookService) WithClock(now func() time.Time) *BookService {
	s.now = now
	return s
}

// GetBook fetches one book by identifier
func (s *BookService) GetBook(ctx context.Context, id string) (book.Book, error) {
	var result book.Book
	err := s.run(ctx, OpGetBook, func(ctx context.Context) error {
		if id == "" {
			return ports.BookNotFound(id)
		}
		b, err := s.repo.Get(ctx, id)
		if err != nil {
			return err
		}
		result = b
		return nil
	})
	return result, err
}

// GetBooks lists the books of one author, or every book when author is empty.
// The result is never nil.
func (s *BookService) GetBooks(ctx context.Context, author string) ([]book.Book, error) {
	var result []book.Book
	err := s.run(ctx, OpGetBooks, func(ctx context.Context) error {
		var (
			books []book.Book
			err   error
		)
		if author != "" {
			s.tracer.AddAnnotation(ctx, "author", author)
			books, err = s.repo.ListByAuthor(ctx, author)
		} else {
			books, err = s.repo.List(ctx)
		}
		if err != nil {
			return err
		}
		result = books
		return nil
	})
	if err == nil && result == nil {
		result = []book.Book{}
	}
	return result, err
}

// CreateBook stores a new book under a freshly generated identifier
func (s *BookService) CreateBook(ctx context.Context, fields book.Fields) (book.Book, error) {
	var result book.Book
	err := s.run(ctx, OpCreateBook, func(ctx context.Context) error {
		if err := utils.ValidateStruct(fields); err != nil {
			return errors.NewValidationError(err.Error())
		}

		b := fields.Apply(book.Book{ID: s.newID()})
		if err := s.repo.Put(ctx, b); err != nil {
			return err
		}

		s.logger.Info("Book created", zap.String("bookID", b.ID))
		s.publish(ctx, events.NewBookCreated(b, s.now()))
		result = b
		return nil
	})
	return result, err
}

// UpdateBook overwrites the fields of the book identified by id.
// The body identifier must match id. Missing books are created.
func (s *BookService) UpdateBook(ctx context.Context, id string, b book.Book) (book.Book, error) {
	var result book.Book
	err := s.run(ctx, OpUpdateBook, func(ctx context.Context) error {
		if id != b.ID {
			return errors.NewValidationError(MsgIDMismatch).
				WithDetails(map[string]interface{}{"path_id": id, "body_id": b.ID})
		}
		if err := utils.ValidateStruct(b.Fields()); err != nil {
			return errors.NewValidationError(err.Error())
		}

		if err := s.repo.Update(ctx, b); err != nil {
			return err
		}

		s.logger.Info("Book updated", zap.String("bookID", b.ID))
		s.publish(ctx, events.NewBookUpdated(b, s.now()))
		result = b
		return nil
	})
	return result, err
}

// DeleteBook removes a book and reports whether the store accepted the call.
// Failures are logged, not returned.
func (s *BookService) DeleteBook(ctx context.Context, id string) bool {
	err := s.run(ctx, OpDeleteBook, func(ctx context.Context) error {
		if id == "" {
			return errors.NewValidationError("book id is required")
		}
		if err := s.repo.Delete(ctx, id); err != nil {
			return err
		}
		s.publish(ctx, events.NewBookDeleted(id, s.now()))
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to delete book", zap.String("bookID", id), zap.Error(err))
		return false
	}
	return true
}

// run traces fn and records its outcome
func (s *BookService) run(ctx context.Context, operation string, fn func(context.Context) error) error {
	err := s.tracer.TraceFunction(ctx, operation, fn)
	switch {
	case err == nil:
		s.metrics.RecordOperation(operation, "ok")
	case errors.IsNotFound(err):
		s.metrics.RecordOperation(operation, "not_found")
	case errors.IsValidation(err):
		s.metrics.RecordOperation(operation, "invalid")
	default:
		s.metrics.RecordOperation(operation, "error")
	}
	return err
}

// publish sends an event when a publisher is configured. Errors never reach the caller.
func (s *BookService) publish(ctx context.Context, event events.DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event",
			zap.String("eventType", event.GetEventType()),
			zap.String("bookID", event.GetAggregateID()),
			zap.Error(err),
		)
	}
}
