package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"ustat-be/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// swapGlobal installs l as the package logger for the duration of the test.
func swapGlobal(t *testing.T, l *zap.Logger) {
	t.Helper()
	prev := global
	global = l
	t.Cleanup(func() { global = prev })
}

func TestInit(t *testing.T) {
	swapGlobal(t, nil)

	t.Run("Production", func(t *testing.T) {
		Init("production")
		assert.NotNil(t, global)
	})

	t.Run("Development", func(t *testing.T) {
		Init("development")
		assert.NotNil(t, global)
	})

	t.Run("LevelOverride", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "warn")

		Init("production")

		require.NotNil(t, global)
		assert.False(t, global.Core().Enabled(zapcore.InfoLevel))
	})
}

func TestLInitializesLazily(t *testing.T) {
	swapGlobal(t, nil)
	t.Setenv("APP_ENV", "test")

	assert.NotNil(t, L())
	assert.NotNil(t, global)
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-77f")

	assert.Equal(t, "req-77f", RequestIDFrom(ctx))
	assert.Empty(t, RequestIDFrom(context.Background()))
}

func TestFromCtx(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	swapGlobal(t, zap.New(core))

	t.Run("TagsRequestID", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "req-77f")

		FromCtx(ctx).Info("order submitted")

		logs := observed.TakeAll()
		require.Len(t, logs, 1)
		assert.Equal(t, "req-77f", logs[0].ContextMap()["request_id"])
	})

	t.Run("PlainWithoutID", func(t *testing.T) {
		FromCtx(context.Background()).Info("order submitted")

		logs := observed.TakeAll()
		require.Len(t, logs, 1)
		_, tagged := logs[0].ContextMap()["request_id"]
		assert.False(t, tagged)
	})
}

func TestSyncDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, Sync)
}

func TestRequestIDMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, RequestIDFrom(r.Context()))
	})
	handler := RequestIDMiddleware(next)

	t.Run("GeneratesWhenMissing", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/orders", nil))

		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("ReusesClientID", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/orders", nil)
		r.Header.Set("X-Request-ID", "client-supplied-1")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		assert.Equal(t, "client-supplied-1", w.Header().Get("X-Request-ID"))
	})
}

func TestLoggingMiddleware(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	swapGlobal(t, zap.New(core))

	before := metrics.HTTPRequests.Load()

	handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/orders/7", nil))

	logs := observed.TakeAll()
	require.Len(t, logs, 1)
	assert.Equal(t, "incoming request", logs[0].Message)
	assert.Equal(t, "/orders/7", logs[0].ContextMap()["path"])
	assert.Equal(t, before+1, metrics.HTTPRequests.Load())
}
