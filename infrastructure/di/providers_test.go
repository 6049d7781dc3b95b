package di

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"books-backend/infrastructure/config"
	"books-backend/infrastructure/persistence/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	cfg := config.Defaults()
	cfg.StoreBackend = config.StoreMemory
	cfg.LogLevel = "error"
	return cfg
}

func TestInitializeContainer_MemoryStore(t *testing.T) {
	container, err := InitializeContainer(context.Background(), memoryConfig())
	require.NoError(t, err)

	assert.IsType(t, &memory.BookRepository{}, container.BookRepo)
	assert.NotNil(t, container.FunctionURL)

	handler := container.Router.Setup()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := `{"name":"Dune","author":"Frank Herbert","releaseDate":"1965-08-01"}`
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/createBook", strings.NewReader(body)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"author":"Frank Herbert"`)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/getBooks?author=Frank+Herbert", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Dune"`)
}

func TestProvideEventPublisher_NoBus(t *testing.T) {
	cfg := memoryConfig()
	logger, err := ProvideLogger(cfg)
	require.NoError(t, err)

	assert.Nil(t, ProvideEventPublisher(cfg, nil, logger))
}
