package correlation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var tokenShape = regexp.MustCompile(`^[0-9A-F]{32}$`)

func TestNewToken(t *testing.T) {
	first := NewToken()
	second := NewToken()

	assert.Regexp(t, tokenShape, first)
	assert.Regexp(t, tokenShape, second)
	assert.NotEqual(t, first, second)
}

func TestEnsureToken(t *testing.T) {
	t.Run("reuses the incoming token verbatim", func(t *testing.T) {
		assert.Equal(t, "caller-chosen-token", EnsureToken("caller-chosen-token"))
	})

	t.Run("mints when absent", func(t *testing.T) {
		assert.Regexp(t, tokenShape, EnsureToken(""))
	})
}

func TestDetach(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	logger := zap.NewNop()
	ctx := WithLogger(WithToken(parent, "ABC123"), logger)

	detached := Detach(ctx)
	cancel()

	assert.NoError(t, detached.Err(), "detached context ignores the parent's cancellation")
	assert.Equal(t, "ABC123", Token(detached))
	assert.Same(t, logger, Logger(detached))
}

func TestLoggerFallback(t *testing.T) {
	assert.NotNil(t, Logger(context.Background()))
}

func TestMiddleware(t *testing.T) {
	t.Run("echoes the incoming token and binds it", func(t *testing.T) {
		var seen string
		handler := Middleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = Token(r.Context())
		}))

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(HeaderName, "AB12CD34")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, r)

		assert.Equal(t, "AB12CD34", seen)
		assert.Equal(t, "AB12CD34", recorder.Header().Get(HeaderName))
	})

	t.Run("mints a token when none arrives", func(t *testing.T) {
		var seen string
		handler := Middleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = Token(r.Context())
		}))

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Regexp(t, tokenShape, seen)
		assert.Equal(t, seen, recorder.Header().Get(HeaderName))
	})

	t.Run("escapes hostile tokens on the response", func(t *testing.T) {
		handler := Middleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(HeaderName, "bad token&value")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, r)

		assert.Equal(t, "bad+token%26value", recorder.Header().Get(HeaderName))
	})
}
