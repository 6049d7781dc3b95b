package rest

import (
	"net/http"

	"books-backend/infrastructure/config"
	"books-backend/interfaces/http/rest/handlers"
	"books-backend/interfaces/http/rest/middleware"
	"books-backend/pkg/errors"
	"books-backend/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	bookHandler  *handlers.BookHandler
	errorHandler *errors.ErrorHandler
	metrics      *observability.Collector
	config       *config.Config
	logger       *zap.Logger
	ui           http.Handler
}

// NewRouter creates a new router instance
func NewRouter(
	bookHandler *handlers.BookHandler,
	errorHandler *errors.ErrorHandler,
	metrics *observability.Collector,
	cfg *config.Config,
	logger *zap.Logger,
) *Router {
	return &Router{
		bookHandler:  bookHandler,
		errorHandler: errorHandler,
		metrics:      metrics,
		config:       cfg,
		logger:       logger,
	}
}

// WithUI mounts the presentation layer on every path the API does not claim
func (rt *Router) WithUI(ui http.Handler) *Router {
	rt.ui = ui
	return rt
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(middleware.RequestIDHeader)
	router.Use(chimiddleware.RealIP)
	router.Use(rt.errorHandler.Middleware)
	router.Use(middleware.Logger(rt.logger))
	if rt.config.EnableMetrics {
		router.Use(middleware.Metrics(rt.metrics))
	}

	if rt.config.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: rt.config.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID",
				"X-Amz-Date", "X-Amz-Security-Token", "X-Amz-Content-Sha256"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,

			// book routes answer OPTIONS themselves with 204 and Allow
			OptionsPassthrough: true,
		}))
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.config.EnableMetrics {
		router.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	rt.mountBooks(router)

	if rt.ui != nil {
		router.Mount("/", rt.ui)
	}

	return router
}

// mountBooks registers the five book endpoints under their operation names
func (rt *Router) mountBooks(r chi.Router) {
	h := rt.bookHandler

	r.Get("/getBook/{id}", h.GetBook)
	r.Options("/getBook/{id}", h.Preflight(http.MethodGet))
	r.Get("/getBooks", h.GetBooks)
	r.Options("/getBooks", h.Preflight(http.MethodGet))

	r.Post("/createBook", h.CreateBook)
	r.Options("/createBook", h.Preflight(http.MethodPost))

	r.Put("/updateBook/{id}", h.UpdateBook)
	r.Options("/updateBook/{id}", h.Preflight(http.MethodPut))

	r.Delete("/deleteBook/{id}", h.DeleteBook)
	r.Options("/deleteBook/{id}", h.Preflight(http.MethodDelete))
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready","store":"` + rt.config.StoreBackend + `"}`))
}
