package memory

import (
	"context"
	"testing"

	"books-backend/domain/book"
	"books-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewBookRepository()

	b := book.Book{ID: "1", Author: "A", Name: "N", ReleaseDate: book.MustParseDate("2020-01-01")}
	require.NoError(t, repo.Put(ctx, b))

	got, err := repo.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, b, got)

	b.Name = "Renamed"
	require.NoError(t, repo.Update(ctx, b))
	got, err = repo.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)

	require.NoError(t, repo.Delete(ctx, "1"))
	_, err = repo.Get(ctx, "1")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, "Book 1 not found", errors.GetAppError(err).Message)

	assert.NoError(t, repo.Delete(ctx, "1"), "deleting a missing book is not an error")
}

func TestBookRepository_UpdateCreatesMissing(t *testing.T) {
	ctx := context.Background()
	repo := NewBookRepository()

	require.NoError(t, repo.Update(ctx, book.Book{ID: "ghost", Author: "A", Name: "N"}))

	got, err := repo.Get(ctx, "ghost")
	require.NoError(t, err)
	assert.Equal(t, "ghost", got.ID)
}

func TestBookRepository_ListByAuthor(t *testing.T) {
	ctx := context.Background()
	repo := NewBookRepository()
	for _, b := range []book.Book{
		{ID: "3", Author: "X", Name: "c"},
		{ID: "1", Author: "X", Name: "a"},
		{ID: "2", Author: "Y", Name: "b"},
	} {
		require.NoError(t, repo.Put(ctx, b))
	}

	byX, err := repo.ListByAuthor(ctx, "X")
	require.NoError(t, err)
	require.Len(t, byX, 2)
	assert.Equal(t, "1", byX[0].ID)
	assert.Equal(t, "3", byX[1].ID)

	none, err := repo.ListByAuthor(ctx, "Z")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
