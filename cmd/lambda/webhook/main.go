// Webhook Lambda entry point
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"fillout-webhook/internal/app"
	"fillout-webhook/internal/config"
	"fillout-webhook/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	_ = utils.InitLogger(cfg.LogLevel, cfg.Stage)
	defer utils.Sync()

	a, err := app.New(context.Background(), cfg, nil)
	if err != nil {
		utils.GetLogger().Fatal("Failed to initialize application", zap.Error(err))
	}
	defer a.Close()

	// Start Lambda
	lambda.Start(a.Webhook.Handle)
}
