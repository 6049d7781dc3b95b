package events

import (
	"time"

	"books-backend/domain/book"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// Event types, used as EventBridge detail-type
const (
	TypeBookCreated = "BookCreated"
	TypeBookUpdated = "BookUpdated"
	TypeBookDeleted = "BookDeleted"
)

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// BookCreated is raised after a book has been stored for the first time
type BookCreated struct {
	BaseEvent
	Book book.Book `json:"book"`
}

// NewBookCreated creates a BookCreated event
func NewBookCreated(b book.Book, timestamp time.Time) BookCreated {
	return BookCreated{
		BaseEvent: newBase(b.ID, TypeBookCreated, timestamp),
		Book:      b,
	}
}

// BookUpdated is raised after the fields of a book were overwritten
type BookUpdated struct {
	BaseEvent
	Book book.Book `json:"book"`
}

// NewBookUpdated creates a BookUpdated event
func NewBookUpdated(b book.Book, timestamp time.Time) BookUpdated {
	return BookUpdated{
		BaseEvent: newBase(b.ID, TypeBookUpdated, timestamp),
		Book:      b,
	}
}

// BookDeleted is raised after a book was removed
type BookDeleted struct {
	BaseEvent
	BookID string `json:"book_id"`
}

// NewBookDeleted creates a BookDeleted event
func NewBookDeleted(bookID string, timestamp time.Time) BookDeleted {
	return BookDeleted{
		BaseEvent: newBase(bookID, TypeBookDeleted, timestamp),
		BookID:    bookID,
	}
}

func newBase(id, eventType string, timestamp time.Time) BaseEvent {
	return BaseEvent{
		AggregateID: id,
		EventType:   eventType,
		Timestamp:   timestamp.UTC(),
		Version:     1,
	}
}
