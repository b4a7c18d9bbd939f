// Package logging provides config-driven categorized logging for varp.
// One zap.Logger is lazily constructed per Category; when the configured
// debug mode is off, or a category is explicitly disabled, the logger for
// that category is a no-op core. Logs are written under
// <workspace>/.varp/logs/<category>.log.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"varp/internal/config"
)

// Category names one of the core's subsystems.
type Category string

const (
	CategoryManifest     Category = "manifest"
	CategoryDocs         Category = "docs"
	CategoryHazard       Category = "hazard"
	CategoryWave         Category = "wave"
	CategoryCriticalPath Category = "critical_path"
	CategoryCapability   Category = "capability"
	CategoryRestart      Category = "restart"
	CategoryImportScan   Category = "import_scan"
	CategoryLinkScan     Category = "link_scan"
	CategoryCoChange     Category = "co_change"
	CategoryCoupling     Category = "coupling"
	CategoryLint         Category = "lint"
	CategoryPlanValidate Category = "plan_validate"
	CategoryGitAdapter   Category = "git_adapter"
	CategoryCLI          Category = "cli"
)

var (
	mu         sync.RWMutex
	loggers    = map[Category]*zap.Logger{}
	workspace  string
	cfg        config.LoggingConfig
	initialized bool
)

// Initialize sets up categorized logging for the given workspace root using
// cfg. Safe to call once at process startup. When cfg.DebugMode is false,
// Get returns a no-op logger for every category.
func Initialize(ws string, loggingCfg config.LoggingConfig) error {
	if ws == "" {
		return fmt.Errorf("logging: workspace path required")
	}
	mu.Lock()
	defer mu.Unlock()
	workspace = ws
	cfg = loggingCfg
	loggers = map[Category]*zap.Logger{}
	initialized = true

	if cfg.DebugMode {
		logsDir := filepath.Join(workspace, ".varp", "logs")
		if err := os.MkdirAll(logsDir, 0o755); err != nil {
			return fmt.Errorf("logging: create log dir: %w", err)
		}
	}
	return nil
}

// Get returns the logger for category, constructing it on first use.
func Get(cat Category) *zap.Logger {
	mu.RLock()
	if l, ok := loggers[cat]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[cat]; ok {
		return l
	}
	l := build(cat)
	loggers[cat] = l
	return l
}

func build(cat Category) *zap.Logger {
	if !initialized || !cfg.DebugMode || categoryDisabled(cat) {
		return zap.NewNop()
	}

	level := parseLevel(cfg.Level)
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	var encoder zapcore.Encoder
	if cfg.JSONFormat {
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	path := filepath.Join(workspace, ".varp", "logs", string(cat)+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zap.NewNop()
	}
	core := zapcore.NewCore(encoder, zapcore.AddSync(f), level)
	return zap.New(core).With(zap.String("category", string(cat)))
}

func categoryDisabled(cat Category) bool {
	enabled, ok := cfg.Categories[string(cat)]
	return ok && !enabled
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// CloseAll flushes and releases every constructed logger. Call once at
// process shutdown.
func CloseAll() {
	mu.Lock()
	defer mu.Unlock()
	for _, l := range loggers {
		_ = l.Sync()
	}
	loggers = map[Category]*zap.Logger{}
	initialized = false
}
