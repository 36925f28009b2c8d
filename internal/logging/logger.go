package logging

import (
	"fmt"
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var globalLogger atomic.Pointer[zap.SugaredLogger]

// Init initializes the global logger with JSON output
func Init(appEnv string, level string) error {
	var config zap.Config

	if appEnv == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
		config.Level = zap.NewAtomicLevelAt(lvl)
	}

	// Ensure output is JSON
	config.Encoding = "json"

	logger, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	globalLogger.Store(logger.Sugar())
	return nil
}

// SetLogger replaces the global logger, e.g. with zaptest or zap.NewNop in tests.
func SetLogger(l *zap.Logger) {
	globalLogger.Store(l.Sugar())
}

// GetLogger returns the global SugaredLogger for structured logging
func GetLogger() *zap.SugaredLogger {
	if l := globalLogger.Load(); l != nil {
		return l
	}
	// Fallback logger if Init wasn't called
	logger, _ := zap.NewProduction()
	globalLogger.CompareAndSwap(nil, logger.Sugar())
	return globalLogger.Load()
}

// Close flushes any buffered logs
func Close() error {
	if l := globalLogger.Load(); l != nil {
		return l.Sync()
	}
	return nil
}

// Info logs an info message with optional fields
func Info(message string, fields ...interface{}) {
	GetLogger().Infow(message, fields...)
}

// Debug logs a debug message with optional fields
func Debug(message string, fields ...interface{}) {
	GetLogger().Debugw(message, fields...)
}

// Warn logs a warning message with optional fields
func Warn(message string, fields ...interface{}) {
	GetLogger().Warnw(message, fields...)
}

// Error logs an error message with optional fields
func Error(message string, fields ...interface{}) {
	GetLogger().Errorw(message, fields...)
}

// Fatal logs a fatal message and exits
func Fatal(message string, fields ...interface{}) {
	GetLogger().Fatalw(message, fields...)
	os.Exit(1)
}

// With returns a child logger carrying the given fields
func With(fields ...interface{}) *zap.SugaredLogger {
	return GetLogger().With(fields...)
}

// WithRequest creates a logger with request context fields
func WithRequest(requestID string, client string, endpoint string) *zap.SugaredLogger {
	return GetLogger().With(
		"request_id", requestID,
		"client", client,
		"endpoint", endpoint,
	)
}
