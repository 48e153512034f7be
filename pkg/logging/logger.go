// Package logging provides structured contextual loggers layered on
// log/slog: a process-wide base logger plus With* helpers that attach the
// identifiers a reader most often wants when tracing storage/lock behavior.
package logging

import (
	"log/slog"
	"os"
	"sync"
)

var (
	base     *slog.Logger
	baseOnce sync.Once
)

// GetLogger returns the process-wide base logger, initializing it on first
// use to a text handler on stderr at Info level.
func GetLogger() *slog.Logger {
	baseOnce.Do(func() {
		base = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	})
	return base
}

// SetLogger overrides the process-wide base logger, for tests that want to
// capture or silence log output.
func SetLogger(l *slog.Logger) {
	base = l
}

// WithTx returns a logger annotated with a transaction id.
func WithTx(txID string) *slog.Logger {
	return GetLogger().With("tx", txID)
}

// WithTable returns a logger annotated with a table name.
func WithTable(tableName string) *slog.Logger {
	return GetLogger().With("table", tableName)
}

// WithPage returns a logger annotated with a page identifier's string form.
func WithPage(pageID string) *slog.Logger {
	return GetLogger().With("page", pageID)
}

// WithLock returns a logger annotated with a transaction and page pair, for
// tracing lock acquisition and blocking.
func WithLock(txID, pageID string) *slog.Logger {
	return GetLogger().With("tx", txID, "page", pageID)
}
