package common

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"books-backend/domain/book"
	"books-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondJSON(rec, http.StatusOK, []book.Book{})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRespondPreflight(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondPreflight(rec, http.MethodDelete)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "DELETE", rec.Header().Get("Allow"))
	assert.Equal(t, "DELETE", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Empty(t, rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	var fields book.Fields
	require.NoError(t, DecodeJSON([]byte(`{"author":"A","name":"N","releaseDate":"2020-01-01","extra":1}`), &fields))
	assert.Equal(t, "A", fields.Author)
	assert.Equal(t, "2020-01-01", fields.ReleaseDate.String())

	for _, body := range []string{"", "   ", "{", `{"releaseDate":"yesterday"}`, `[1,2]`} {
		err := DecodeJSON([]byte(body), &fields)
		assert.True(t, errors.IsValidation(err), "body %q", body)
	}
}
