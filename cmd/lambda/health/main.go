// Health Check Lambda entry point
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"fillout-webhook/internal/app"
	"fillout-webhook/internal/config"
	"fillout-webhook/internal/handlers"
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

	st, err := app.OpenStore(context.Background(), cfg)
	if err != nil {
		utils.GetLogger().Fatal("Failed to open store", zap.Error(err))
	}
	defer st.Close()

	// Start Lambda
	lambda.Start(handlers.NewHealthHandler(st).Handle)
}
