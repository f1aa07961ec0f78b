// Package observability provides repository logging, Prometheus metrics and
// OpenTelemetry tracing.
package observability

import (
	"context"
	"log/slog"
)

// RepoLogger writes structured records for repository writes and failures.
// Records go through the process default slog logger so request-scoped
// attributes from the context are attached.
type RepoLogger struct {
	table string
}

// NewRepoLogger creates a RepoLogger for the given table.
func NewRepoLogger(table string) *RepoLogger {
	return &RepoLogger{table: table}
}

func (l *RepoLogger) log(ctx context.Context, level slog.Level, msg, op string, attrs []slog.Attr) {
	base := []slog.Attr{
		slog.String("table", l.table),
		slog.String("operation", op),
	}
	slog.Default().LogAttrs(ctx, level, msg, append(base, attrs...)...)
}

// LogCreate records an insert.
func (l *RepoLogger) LogCreate(ctx context.Context, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelDebug, "repository create", "create", attrs)
}

// LogUpdate records an update.
func (l *RepoLogger) LogUpdate(ctx context.Context, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelDebug, "repository update", "update", attrs)
}

// LogDelete records a delete. Deletes are kept at info level.
func (l *RepoLogger) LogDelete(ctx context.Context, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelInfo, "repository delete", "delete", attrs)
}

// LogError records a failed repository operation.
func (l *RepoLogger) LogError(ctx context.Context, err error, op string) {
	l.log(ctx, slog.LevelError, "repository error", op, []slog.Attr{slog.String("error", err.Error())})
}
