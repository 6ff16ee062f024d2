package redis

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/frame-go/cachekit/log"
)

// redisLogger receives go-redis internal messages, such as pool and failover events.
// A logger set on the request context with log.SetContextLogger wins over the manager logger.
type redisLogger struct {
	logger *zerolog.Logger
}

func newRedisLogger(logger *zerolog.Logger) *redisLogger {
	return &redisLogger{logger: logger}
}

func (l *redisLogger) Printf(ctx context.Context, format string, v ...interface{}) {
	logger := l.logger
	if ctx != nil {
		if ctxLogger := log.FromContext(ctx); ctxLogger != log.Get() {
			logger = ctxLogger
		}
	}
	logger.Warn().Str("component", "go-redis").Msgf(format, v...)
}
