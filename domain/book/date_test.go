package book

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "calendar day", input: "2020-01-01", want: "2020-01-01"},
		{name: "javascript timestamp", input: "2020-01-01T00:00:00.000Z", want: "2020-01-01"},
		{name: "timestamp with offset", input: "2020-01-01T23:30:00-02:00", want: "2020-01-02"},
		{name: "empty is unset", input: "", want: ""},
		{name: "garbage", input: "yesterday", wantErr: true},
		{name: "impossible day", input: "2020-02-31", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestDate_JSON(t *testing.T) {
	t.Run("set date is emitted as calendar day", func(t *testing.T) {
		data, err := json.Marshal(Book{ID: "1", Author: "A", Name: "N", ReleaseDate: NewDate(2020, time.January, 1)})
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"1","author":"A","name":"N","releaseDate":"2020-01-01"}`, string(data))
	})

	t.Run("unset date is null", func(t *testing.T) {
		data, err := json.Marshal(Book{ID: "1", Author: "A", Name: "N"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"1","author":"A","name":"N","releaseDate":null}`, string(data))
	})

	t.Run("decodes null and timestamps", func(t *testing.T) {
		var b Book
		require.NoError(t, json.Unmarshal([]byte(`{"author":"A","name":"N","releaseDate":null}`), &b))
		assert.True(t, b.ReleaseDate.IsZero())

		require.NoError(t, json.Unmarshal([]byte(`{"author":"A","name":"N","releaseDate":"1999-12-31T10:00:00Z"}`), &b))
		assert.Equal(t, MustParseDate("1999-12-31"), b.ReleaseDate)
	})

	t.Run("rejects non-string", func(t *testing.T) {
		var b Book
		assert.Error(t, json.Unmarshal([]byte(`{"releaseDate":42}`), &b))
	})
}

func TestFields_ApplyKeepsID(t *testing.T) {
	original := Book{ID: "abc", Author: "old", Name: "old"}
	updated := Fields{Author: "new", Name: "title", ReleaseDate: MustParseDate("2001-02-03")}.Apply(original)

	assert.Equal(t, "abc", updated.ID)
	assert.Equal(t, "new", updated.Author)
	assert.Equal(t, "title", updated.Name)
	assert.Equal(t, "2001-02-03", updated.ReleaseDate.String())
}
