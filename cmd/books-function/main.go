// Command books-function runs one book operation behind a Lambda function URL.
// The operation comes from FUNCTION_OPERATION, or from the handler name
// (e.g. "books.updateBookHandler") when that is unset.
package main

import (
	"context"
	"log"

	"books-backend/infrastructure/config"
	"books-backend/infrastructure/di"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.FunctionOperation == "" {
		log.Fatal("FUNCTION_OPERATION is not set and the handler name does not name an operation")
	}

	container, err := di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	handler, err := container.FunctionURL.ForOperation(cfg.FunctionOperation)
	if err != nil {
		container.Logger.Fatal("Failed to select handler", zap.Error(err))
	}

	container.Logger.Info("Starting function",
		zap.String("operation", cfg.FunctionOperation),
		zap.String("table", cfg.TableName),
	)
	lambda.Start(handler)
}
