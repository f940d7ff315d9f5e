package logger

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// WithContext кладёт логгер в контекст. Так атрибуты прогона (run_id)
// доходят до компонентов, у которых свой логгер.
func WithContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext возвращает логгер из контекста или fallback.
func FromContext(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return fallback
}
