// Command edge-auth is the origin-request function that re-signs requests
// for the book function URLs with its own credentials.
package main

import (
	"context"
	"log"

	"books-backend/infrastructure/config"
	"books-backend/infrastructure/di"

	"github.com/aws/aws-lambda-go/lambda"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := di.InitializeRelayContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	lambda.Start(container.EdgeRelay.Handle)
}
