package correlation

import (
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// Middleware ensures every request carries a correlation token: the inbound
// X-Correlation-ID is reused when present, otherwise a fresh token is minted.
// The token is echoed on the response, bound into the request context and
// stamped onto a request-scoped logger. The binding ends with the request;
// continuations that must outlive it go through Detach.
func Middleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := EnsureToken(r.Header.Get(HeaderName))
			w.Header().Set(HeaderName, url.QueryEscape(token))

			ctx := WithToken(r.Context(), token)
			ctx = WithLogger(ctx, logger.With(zap.String("correlationId", token)))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
