package utils

import (
	"context"
	"runtime"

	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.Must(zap.NewProduction()))
}

type loggerKey struct{}

// WithLogger attaches a logger to ctx, GetLogger prefers it over the global one.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

func GetLogger(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok && logger != nil {
			return logger
		}
	}
	return zap.L()
}

func GetPanicInfo() string {
	buf := make([]byte, 16384)
	l := runtime.Stack(buf, false)
	return string(buf[:l])
}
