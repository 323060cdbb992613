// Package log provides centralized logging functionality using zap logger.
package log

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var log *zap.SugaredLogger
var baseLogger *zap.Logger

// Options controls where log output goes
type Options struct {
	Debug bool

	// File, when set, adds a rotated JSON log file alongside stderr
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// InitWithOptions initializes the package-level logger, optionally teeing
// output to a size-rotated file.
func InitWithOptions(opts Options) error {
	var zapLogger *zap.Logger
	var err error

	if opts.Debug {
		zapLogger, err = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		zapLogger, err = zap.NewProduction(zap.AddCallerSkip(1))
	}
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %v", err)
	}

	if opts.File != "" {
		level := zapcore.InfoLevel
		if opts.Debug {
			level = zapcore.DebugLevel
		}
		fileCore := zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(newRotator(opts)),
			level,
		)
		zapLogger = zapLogger.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapcore.NewTee(c, fileCore)
		}))
	}

	baseLogger = zapLogger
	log = zapLogger.Sugar()
	return nil
}

func newRotator(opts Options) *lumberjack.Logger {
	size := opts.MaxSizeMB
	if size <= 0 {
		size = 10
	}
	return &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    size,
		MaxBackups: opts.MaxBackups,
		Compress:   true,
	}
}

// GetZapLogger returns the base zap logger
func GetZapLogger() *zap.Logger {
	if baseLogger == nil {
		// Fallback logger if not initialized
		baseLogger, _ = zap.NewProduction(zap.AddCallerSkip(1))
		log = baseLogger.Sugar()
	}
	return baseLogger
}

// GetSugaredLogger returns the sugared logger instance
func GetSugaredLogger() *zap.SugaredLogger {
	if log == nil {
		// Fallback logger if not initialized
		baseLogger, _ = zap.NewProduction(zap.AddCallerSkip(1))
		log = baseLogger.Sugar()
	}
	return log
}

// With returns a child logger carrying the given fields. The caller skip is
// removed since the child is called directly rather than through this package.
func With(keysAndValues ...interface{}) *zap.SugaredLogger {
	return GetZapLogger().WithOptions(zap.AddCallerSkip(-1)).Sugar().With(keysAndValues...)
}

// Sync flushes any buffered log entries
func Sync() {
	if log != nil {
		log.Sync()
	}
}

// Package-level convenience functions
func Infof(template string, args ...interface{}) {
	GetSugaredLogger().Infof(template, args...)
}

func Errorf(template string, args ...interface{}) {
	GetSugaredLogger().Errorf(template, args...)
}
