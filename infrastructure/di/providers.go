package di

import (
	"context"
	"fmt"

	"books-backend/application/ports"
	"books-backend/infrastructure/config"
	"books-backend/infrastructure/edge"
	"books-backend/infrastructure/messaging/eventbridge"
	"books-backend/infrastructure/persistence/dynamodb"
	"books-backend/infrastructure/persistence/memory"
	"books-backend/interfaces/http/proxy"
	"books-backend/interfaces/web"
	"books-backend/pkg/client"
	"books-backend/pkg/errors"
	"books-backend/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"go.uber.org/zap"
)

// ServiceName labels metrics and trace segments
const ServiceName = "books"

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	return observability.NewLogger(cfg.Environment, cfg.LogLevel)
}

// ProvideMetrics creates the Prometheus collector
func ProvideMetrics() *observability.Collector {
	return observability.NewCollector(ServiceName)
}

// ProvideTracer creates the X-Ray tracer, disabled unless ENABLE_TRACING is set
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer(ServiceName, cfg.EnableTracing)
}

// ProvideAWSConfig creates AWS configuration. The SDK retryer is limited to
// a single attempt: a failed store call fails the request.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config, tracer *observability.Tracer) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithRetryMaxAttempts(1),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	tracer.InstrumentAWS(&awsCfg)
	return awsCfg, nil
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideSSMClient creates an SSM client in the region holding the function URL parameters
func ProvideSSMClient(awsCfg aws.Config, cfg *config.Config) *awsssm.Client {
	return awsssm.NewFromConfig(awsCfg, func(o *awsssm.Options) {
		if cfg.Relay.SSMRegion != "" {
			o.Region = cfg.Relay.SSMRegion
		}
	})
}

// ProvideBookRepository selects the store named by STORE_BACKEND
func ProvideBookRepository(
	cfg *config.Config,
	client *awsdynamodb.Client,
	metrics *observability.Collector,
	logger *zap.Logger,
) ports.BookRepository {
	if cfg.StoreBackend == config.StoreMemory {
		logger.Warn("Using in-memory book store; data is lost on restart")
		return memory.NewBookRepository()
	}
	return dynamodb.NewBookRepository(client, cfg.TableName, cfg.AuthorIndexName, metrics, logger)
}

// ProvideEventPublisher creates the EventBridge publisher, or none when no bus is configured
func ProvideEventPublisher(cfg *config.Config, client *awseventbridge.Client, logger *zap.Logger) ports.EventPublisher {
	if cfg.EventBusName == "" {
		return nil
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, cfg.EventSource, logger)
}

// ProvideErrorHandler creates the shared error handler; development responses carry causes
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *errors.ErrorHandler {
	return errors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideWebHandler creates the presentation pages backed by the HTTP API at API_BASE_URL
func ProvideWebHandler(cfg *config.Config, logger *zap.Logger) (*web.Handler, error) {
	return web.NewHandler(client.New(cfg.APIBaseURL, nil), logger)
}

// ProvideSigner creates the SigV4 signer using the process credentials
func ProvideSigner(awsCfg aws.Config, cfg *config.Config) *edge.Signer {
	return edge.NewSigner(awsCfg.Credentials, cfg.Relay.SigningRegion)
}

// ProvideProxyRelay resolves the upstream function URLs and builds the reverse proxy
func ProvideProxyRelay(
	ctx context.Context,
	cfg *config.Config,
	ssmClient *awsssm.Client,
	signer *edge.Signer,
	webHandler *web.Handler,
	errorHandler *errors.ErrorHandler,
	metrics *observability.Collector,
	logger *zap.Logger,
) (*proxy.Relay, error) {
	if err := cfg.Relay.ResolveUpstreams(ctx, ssmClient); err != nil {
		return nil, err
	}
	return proxy.NewRelay(
		cfg.Relay.Upstreams,
		signer,
		nil,
		proxy.BreakerSettingsFrom(cfg.Relay),
		webHandler.Routes(),
		errorHandler,
		metrics,
		logger,
	)
}
