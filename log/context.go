package log

import (
	"context"

	"github.com/rs/zerolog"
)

type IContextGetter interface {
	Value(key interface{}) interface{}
}

type contextKey struct{}

var contextLoggerKey = contextKey{}

// FromContext returns the logger stored in ctx, or the global Logger.
// A Nop logger is returned if Init was never called.
func FromContext(ctx IContextGetter) *zerolog.Logger {
	if ctx != nil {
		if ctxLogger, ok := ctx.Value(contextLoggerKey).(*zerolog.Logger); ok && ctxLogger != nil {
			return ctxLogger
		}
	}
	return Get()
}

func SetContextLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	return context.WithValue(ctx, contextLoggerKey, logger)
}
