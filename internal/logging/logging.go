// Package logging provides categorized, leveled logging for the refactoring
// engine. Each engine component (workspace, resolver, references, commit,
// operation, refactor, query) logs through its own named category so that a
// single zap core can be filtered or routed per component, mirroring how the
// teacher's internal/logging package gave every subsystem its own category.
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category identifies the engine subsystem emitting a log record.
type Category string

const (
	CategoryWorkspace  Category = "workspace"
	CategoryResolver   Category = "resolver"
	CategoryRefs       Category = "refs"
	CategoryCommit     Category = "commit"
	CategoryOperation  Category = "operation"
	CategoryRefactor   Category = "refactor"
	CategoryQuery      Category = "query"
	CategorySyntax     Category = "syntax"
	CategorySemantic   Category = "semantic"
	CategoryConfig     Category = "config"
	CategoryCLI        Category = "cli"
)

var (
	mu      sync.RWMutex
	base    *zap.Logger = zap.NewNop()
	loggers             = make(map[Category]*zap.Logger)
)

// Configure installs the base zap logger used to derive all category
// loggers. Call once at process startup (cmd/csref/main.go does this from
// the --verbose flag); tests may call it with zap.NewNop() or a
// zaptest-backed logger.
func Configure(logger *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	base = logger
	loggers = make(map[Category]*zap.Logger)
}

// Development builds a human-readable, colorized development logger at the
// given level; pass the result to Configure to install it. cmd/csref builds
// one on every run, at debug level when --verbose is passed and info level
// otherwise.
func Development(level zapcore.Level) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// Get returns the logger for a category, tagged with a "component" field so
// log sinks can filter by subsystem the same way the teacher's per-category
// log files allowed.
func Get(category Category) *zap.Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}
	l := base.With(zap.String("component", string(category)))
	loggers[category] = l
	return l
}

// Sync flushes any buffered log entries. Safe to call even when the
// underlying writer doesn't support syncing (e.g. a no-op logger).
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = base.Sync()
}
