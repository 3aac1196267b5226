// Package logger provides centralized logging for the application.
// File: logger/logger.go
package logger

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ------------------- global loggers -------------------

// four logger levels accessible throughout the application
var (
	Info  *log.Logger
	Warn  *log.Logger
	Error *log.Logger
	Debug *log.Logger
)

// base is the zap logger the level loggers write through.
var base *zap.Logger

// ------------------- logger initialization -------------------

// InitLogger creates or reinitializes the logging system. It:
// - Builds a JSON zap logger writing to stdout.
// - When dir is non-empty, ensures it exists and adds a timestamped log file in it.
// - Configures the Info, Warn, Error and Debug loggers on top of zap.
func InitLogger(dir string, debug bool) error {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	if dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
		logFileName := filepath.Join(dir, time.Now().Format("2006-01-02_15-04-05")+".log")
		cfg.OutputPaths = append(cfg.OutputPaths, logFileName)
	}

	z, err := cfg.Build()
	if err != nil {
		return err
	}
	install(z)
	return nil
}

// install swaps the zap backend and rebuilds the level loggers.
func install(z *zap.Logger) {
	if base != nil {
		_ = base.Sync()
	}
	base = z
	Info = mustStdLog(z, zapcore.InfoLevel)
	Warn = mustStdLog(z, zapcore.WarnLevel)
	Error = mustStdLog(z, zapcore.ErrorLevel)
	Debug = mustStdLog(z, zapcore.DebugLevel)
}

func mustStdLog(z *zap.Logger, level zapcore.Level) *log.Logger {
	l, err := zap.NewStdLogAt(z, level)
	if err != nil {
		// only fails for levels zap does not know about
		return log.New(os.Stdout, level.CapitalString()+": ", log.LstdFlags)
	}
	return l
}

// SetLogLevel adjusts the Debug logger's output depending on environment.
// In production debug output is discarded entirely.
func SetLogLevel(env string) {
	if env == "production" {
		Debug.SetOutput(io.Discard)
	}
}

// Sync flushes any buffered entries. Call before the process exits.
func Sync() {
	if base != nil {
		_ = base.Sync()
	}
}

// init installs a stdout-only logger so every package can log before main
// (and in tests) without touching the filesystem.
func init() {
	if err := InitLogger("", false); err != nil {
		install(zap.NewNop())
	}
}
