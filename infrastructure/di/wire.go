//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"books-backend/application/ports"
	"books-backend/application/services"
	"books-backend/infrastructure/config"
	"books-backend/infrastructure/edge"
	"books-backend/interfaces/functionurl"
	"books-backend/interfaces/http/proxy"
	"books-backend/interfaces/http/rest"
	"books-backend/interfaces/http/rest/handlers"
	"books-backend/interfaces/web"
	"books-backend/pkg/observability"

	"github.com/google/wire"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	Metrics     *observability.Collector
	Tracer      *observability.Tracer
	BookRepo    ports.BookRepository
	BookService *services.BookService
	FunctionURL *functionurl.Handlers
	Router      *rest.Router
	Web         *web.Handler
}

// RelayContainer holds the dependencies of the relay binaries
type RelayContainer struct {
	Config    *config.Config
	Logger    *zap.Logger
	Metrics   *observability.Collector
	EdgeRelay *edge.Relay
}

// ProxyContainer holds the reverse proxy relay and its dependencies
type ProxyContainer struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *observability.Collector
	Proxy   *proxy.Relay
}

// ObservabilitySet provides logging, metrics and tracing
var ObservabilitySet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	ProvideTracer,
)

// AWSSet provides the AWS configuration and clients
var AWSSet = wire.NewSet(
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideSSMClient,
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ObservabilitySet,
	AWSSet,
	ProvideBookRepository,
	ProvideEventPublisher,
	ProvideErrorHandler,
	ProvideWebHandler,
	services.NewBookService,
	handlers.NewBookHandler,
	functionurl.NewHandlers,
	rest.NewRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}

// InitializeRelayContainer wires the Lambda@Edge relay
func InitializeRelayContainer(ctx context.Context, cfg *config.Config) (*RelayContainer, error) {
	wire.Build(
		ObservabilitySet,
		ProvideAWSConfig,
		ProvideSigner,
		edge.NewRelay,
		wire.Struct(new(RelayContainer), "*"),
	)
	return nil, nil
}

// InitializeProxyContainer wires the reverse proxy relay
func InitializeProxyContainer(ctx context.Context, cfg *config.Config) (*ProxyContainer, error) {
	wire.Build(
		ObservabilitySet,
		ProvideAWSConfig,
		ProvideSSMClient,
		ProvideSigner,
		ProvideErrorHandler,
		ProvideWebHandler,
		ProvideProxyRelay,
		wire.Struct(new(ProxyContainer), "*"),
	)
	return nil, nil
}
