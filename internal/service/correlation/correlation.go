// Package correlation propagates the per-request correlation token that ties
// together the inbound request, every outbound Spine call and every log line,
// including work that continues on another goroutine after the handler
// returns. The token travels as an explicit context value, never as ambient
// process state.
package correlation

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const HeaderName = "X-Correlation-ID"

type ctxKey int

const (
	tokenKey ctxKey = iota
	loggerKey
)

// EnsureToken returns the incoming token verbatim when the caller supplied
// one, otherwise mints a fresh 32-hex-character token.
func EnsureToken(incoming string) string {
	if incoming != "" {
		return incoming
	}
	return NewToken()
}

// NewToken mints a random 32-hex-character correlation token.
func NewToken() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// WithToken binds the token into ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// Token reads the bound token, or "" when none is bound.
func Token(ctx context.Context) string {
	if t, ok := ctx.Value(tokenKey).(string); ok {
		return t
	}
	return ""
}

// WithLogger binds a request-scoped logger (already carrying the token field)
// into ctx.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// Logger returns the request-scoped logger, or a no-op logger when none is
// bound so callers never need a nil check.
func Logger(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// Detach captures the correlation token and logger from ctx onto a fresh
// context that does not inherit the caller's cancellation. The asynchronous
// submit/poll continuation outlives the handler's own context, yet must keep
// logging and sending the same token.
func Detach(ctx context.Context) context.Context {
	detached := context.Background()
	if t := Token(ctx); t != "" {
		detached = WithToken(detached, t)
	}
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		detached = WithLogger(detached, l)
	}
	return detached
}
