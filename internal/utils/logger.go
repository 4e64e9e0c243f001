// Package utils provides logging helpers for the webhook service.
package utils

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the global logger instance.
var Logger *zap.Logger

// InitLogger initializes the global logger. JSON output is used on Lambda
// and outside the dev stage; colored console output otherwise.
func InitLogger(level, stage string) error {
	zapLevel := parseLevel(level)

	isLambda := os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""

	var config zap.Config
	if isLambda || (stage != "" && stage != "dev") {
		config = zap.NewProductionConfig()
		config.OutputPaths = []string{"stdout"}
		config.ErrorOutputPaths = []string{"stderr"}
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	logger, err := config.Build()
	if err != nil {
		return err
	}

	Logger = logger.With(zap.String("service", "fillout-webhook"))
	return nil
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// GetLogger returns the global logger, initializing if necessary.
func GetLogger() *zap.Logger {
	if Logger == nil {
		_ = InitLogger("info", "dev")
	}
	return Logger
}

// Sync flushes any buffered log entries.
func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}

// LogField creates a zap field for structured logging.
type LogField = zap.Field

// Common field constructors
var (
	String   = zap.String
	Int      = zap.Int
	Bool     = zap.Bool
	Error    = zap.Error
	Any      = zap.Any
	Duration = zap.Duration
	Stringer = zap.Stringer
)
