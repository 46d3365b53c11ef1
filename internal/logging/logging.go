// Package logging provides categorized file logging for the storefront
// client. The TUI owns the terminal, so nothing here ever writes to
// stdout or stderr: each category logs to its own file under
// <home>/logs/, and logging is a no-op unless debug is enabled.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category names a client subsystem with its own log file.
type Category string

const (
	CategoryBoot    Category = "boot"    // startup, config, storage
	CategoryAPI     Category = "api"     // backend requests and failures
	CategoryCart    Category = "cart"    // cart store mutations
	CategorySession Category = "session" // login/logout, token validation
	CategoryUI      Category = "ui"      // page transitions, view errors
)

var (
	mu      sync.Mutex
	loggers = make(map[Category]*zap.Logger)
	logsDir string
	enabled bool
)

// Initialize sets the log directory and whether logging is active.
// Called once at startup; For returns no-op loggers before that.
func Initialize(home string, debug bool) error {
	mu.Lock()
	defer mu.Unlock()

	enabled = debug
	if !debug {
		return nil
	}
	logsDir = filepath.Join(home, "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("create logs dir: %w", err)
	}
	return nil
}

// For returns the logger for a category, creating it on first use.
func For(category Category) *zap.Logger {
	mu.Lock()
	defer mu.Unlock()

	if !enabled {
		return zap.NewNop()
	}
	if l, ok := loggers[category]; ok {
		return l
	}

	path := filepath.Join(logsDir, string(category)+".log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zap.NewNop()
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.Lock(file),
		zap.DebugLevel,
	)
	l := zap.New(core).With(zap.String("category", string(category)))
	loggers[category] = l
	return l
}

// Sync flushes every open category logger. Called on shutdown.
func Sync() {
	mu.Lock()
	defer mu.Unlock()
	for _, l := range loggers {
		_ = l.Sync()
	}
}
