package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"books-backend/domain/book"
	"books-backend/domain/events"
	"books-backend/infrastructure/persistence/memory"
	"books-backend/pkg/errors"
	"books-backend/pkg/observability"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockPublisher is a mock implementation of ports.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	args := m.Called(ctx, evts)
	return args.Error(0)
}

// MockRepository is a mock implementation of ports.BookRepository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Get(ctx context.Context, id string) (book.Book, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(book.Book), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context) ([]book.Book, error) {
	args := m.Called(ctx)
	books, _ := args.Get(0).([]book.Book)
	return books, args.Error(1)
}

func (m *MockRepository) ListByAuthor(ctx context.Context, author string) ([]book.Book, error) {
	args := m.Called(ctx, author)
	books, _ := args.Get(0).([]book.Book)
	return books, args.Error(1)
}

func (m *MockRepository) Put(ctx context.Context, b book.Book) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockRepository) Update(ctx context.Context, b book.Book) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func sequentialIDs() book.IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestService(t *testing.T) *BookService {
	t.Helper()
	return NewBookService(memory.NewBookRepository(), nil, nil, nil, zap.NewNop())
}

func TestBookService_CreateReturnsFreshIDs(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		created, err := service.CreateBook(ctx, book.Fields{Author: "A", Name: fmt.Sprintf("N%d", i)})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.False(t, seen[created.ID], "id %s returned twice", created.ID)
		seen[created.ID] = true
	}
}

func TestBookService_GetAfterCreate(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	created, err := service.CreateBook(ctx, book.Fields{
		Author:      "A",
		Name:        "N",
		ReleaseDate: book.MustParseDate("2020-01-01"),
	})
	require.NoError(t, err)

	got, err := service.GetBook(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestBookService_UpdatePreservesID(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	created, err := service.CreateBook(ctx, book.Fields{Author: "A", Name: "N"})
	require.NoError(t, err)

	changed := created
	changed.Name = "N2"
	changed.ReleaseDate = book.MustParseDate("1999-12-31")

	updated, err := service.UpdateBook(ctx, created.ID, changed)
	require.NoError(t, err)
	assert.Equal(t, changed, updated)

	got, err := service.GetBook(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "N2", got.Name)
	assert.Equal(t, "1999-12-31", got.ReleaseDate.String())
}

func TestBookService_UpdateIDMismatch(t *testing.T) {
	repo := new(MockRepository)
	service := NewBookService(repo, nil, nil, nil, zap.NewNop())

	_, err := service.UpdateBook(context.Background(), "1", book.Book{ID: "2", Author: "A", Name: "N"})

	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Equal(t, MsgIDMismatch, errors.GetAppError(err).Message)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestBookService_GetEmptyIDIsNotFound(t *testing.T) {
	repo := new(MockRepository)
	service := NewBookService(repo, nil, nil, nil, zap.NewNop())

	_, err := service.GetBook(context.Background(), "")

	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestBookService_DeleteThenGet(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	created, err := service.CreateBook(ctx, book.Fields{Author: "A", Name: "N"})
	require.NoError(t, err)

	assert.True(t, service.DeleteBook(ctx, created.ID))

	_, err = service.GetBook(ctx, created.ID)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, fmt.Sprintf("Book %s not found", created.ID), errors.GetAppError(err).Message)
}

func TestBookService_GetBooksByAuthor(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	for _, f := range []book.Fields{
		{Author: "X", Name: "1"},
		{Author: "Y", Name: "2"},
		{Author: "X", Name: "3"},
		{Author: "x", Name: "4"},
	} {
		_, err := service.CreateBook(ctx, f)
		require.NoError(t, err)
	}

	books, err := service.GetBooks(ctx, "X")
	require.NoError(t, err)
	require.Len(t, books, 2)
	for _, b := range books {
		assert.Equal(t, "X", b.Author)
	}

	all, err := service.GetBooks(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestBookService_GetBooksNeverNil(t *testing.T) {
	repo := new(MockRepository)
	repo.On("List", mock.Anything).Return(nil, nil)
	service := NewBookService(repo, nil, nil, nil, zap.NewNop())

	books, err := service.GetBooks(context.Background(), "")

	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

func TestBookService_CreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		fields  book.Fields
		wantMsg string
	}{
		{name: "missing author", fields: book.Fields{Name: "N"}, wantMsg: "author is required"},
		{name: "missing name", fields: book.Fields{Author: "A"}, wantMsg: "name is required"},
		{name: "missing both", fields: book.Fields{}, wantMsg: "author is required; name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			service := NewBookService(repo, nil, nil, nil, zap.NewNop())

			_, err := service.CreateBook(context.Background(), tt.fields)

			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
			assert.Equal(t, tt.wantMsg, errors.GetAppError(err).Message)
			repo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
		})
	}
}

func TestBookService_PublishesEvents(t *testing.T) {
	ctx := context.Background()
	publisher := new(MockPublisher)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	service := NewBookService(memory.NewBookRepository(), publisher, nil, nil, zap.NewNop()).
		WithIDGenerator(sequentialIDs()).
		WithClock(func() time.Time { return fixed })

	var published []string
	publisher.On("Publish", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			for _, e := range args.Get(1).([]events.DomainEvent) {
				published = append(published, e.GetEventType()+":"+e.GetAggregateID())
				assert.Equal(t, fixed, e.GetTimestamp())
			}
		}).
		Return(nil)

	created, err := service.CreateBook(ctx, book.Fields{Author: "A", Name: "N"})
	require.NoError(t, err)
	assert.Equal(t, "id-1", created.ID)

	_, err = service.UpdateBook(ctx, "id-1", created)
	require.NoError(t, err)
	assert.True(t, service.DeleteBook(ctx, "id-1"))

	assert.Equal(t, []string{"BookCreated:id-1", "BookUpdated:id-1", "BookDeleted:id-1"}, published)
}

func TestBookService_PublishFailureDoesNotFail(t *testing.T) {
	publisher := new(MockPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(stderrors.New("bus down"))
	service := NewBookService(memory.NewBookRepository(), publisher, nil, nil, zap.NewNop())

	created, err := service.CreateBook(context.Background(), book.Fields{Author: "A", Name: "N"})

	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	publisher.AssertExpectations(t)
}

func TestBookService_DeleteFailureIsSwallowed(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Delete", mock.Anything, "42").Return(errors.NewDatabaseError("DeleteItem", stderrors.New("throttled")))
	metrics := observability.NewCollector("test")
	service := NewBookService(repo, nil, metrics, nil, zap.NewNop())

	assert.False(t, service.DeleteBook(context.Background(), "42"))
	assert.False(t, service.DeleteBook(context.Background(), ""))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.BookOperations.WithLabelValues(OpDeleteBook, "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.BookOperations.WithLabelValues(OpDeleteBook, "invalid")))
}

func TestBookService_StoreErrorPropagates(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Get", mock.Anything, "1").Return(book.Book{}, errors.NewDatabaseError("GetItem", stderrors.New("boom")))
	service := NewBookService(repo, nil, nil, nil, zap.NewNop())

	_, err := service.GetBook(context.Background(), "1")

	require.Error(t, err)
	assert.Equal(t, 500, errors.StatusCode(err))
}

// Create, read back, delete, read again
func TestBookService_Scenario(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	created, err := service.CreateBook(ctx, book.Fields{
		Author:      "A",
		Name:        "N",
		ReleaseDate: book.MustParseDate("2020-01-01"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := service.GetBook(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Author)
	assert.Equal(t, "N", got.Name)
	assert.Equal(t, "2020-01-01", got.ReleaseDate.String())

	require.True(t, service.DeleteBook(ctx, created.ID))
	_, err = service.GetBook(ctx, created.ID)
	assert.Equal(t, 404, errors.StatusCode(err))
}
