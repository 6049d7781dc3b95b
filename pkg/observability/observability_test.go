package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Records(t *testing.T) {
	c := NewCollector("books")

	c.RecordOperation("createBook", "ok")
	c.RecordOperation("createBook", "ok")
	c.RecordOperation("deleteBook", "failed")
	c.RecordDB("PutItem", "books", nil, time.Millisecond)
	c.RecordDB("PutItem", "books", errors.New("x"), time.Millisecond)
	c.RecordHTTP("GET", "/getBooks", "200", time.Millisecond)
	c.RecordUpstream("getBook", "200")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.BookOperations.WithLabelValues("createBook", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.BookOperations.WithLabelValues("deleteBook", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.DBOperations.WithLabelValues("PutItem", "books", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "/getBooks", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.UpstreamRequests.WithLabelValues("getBook", "200")))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "books_book_operations_total")
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.RecordOperation("getBook", "ok")
		c.RecordDB("GetItem", "books", nil, time.Second)
		c.RecordHTTP("GET", "/", "200", time.Second)
		c.RecordUpstream("getBook", "200")
	})
}

func TestTracer_DisabledRunsFunction(t *testing.T) {
	tracer := NewTracer("books", false)
	called := false
	err := tracer.TraceFunction(context.Background(), "getBook", func(ctx context.Context) error {
		called = true
		return errors.New("boom")
	})
	assert.True(t, called)
	assert.EqualError(t, err, "boom")

	var nilTracer *Tracer
	assert.False(t, nilTracer.Enabled())
	assert.NoError(t, nilTracer.TraceFunction(context.Background(), "x", func(context.Context) error { return nil }))
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("production", "warn")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))

	_, err = NewLogger("development", "loud")
	assert.Error(t, err)
}
