package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(mark("first"), mark("second"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"first", "second", "handler"}, order)
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
	}{
		{"reuses incoming", "req-abc"},
		{"generates when missing", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = RequestIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.NotEmpty(t, seen)
			assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
			if tt.incoming != "" {
				assert.Equal(t, tt.incoming, seen)
			} else {
				assert.Len(t, seen, 36)
			}
		})
	}
}

func TestRecovery_Panic(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)

	h := Recovery(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("something went wrong")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/webhook/fillout", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "something went wrong", body["error"])

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "panic recovered", logs.All()[0].Message)
}

func TestRecovery_NoPanic(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)

	h := Recovery(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, logs.Len())
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	h := Chain(RequestID(), Logger(zap.New(core)))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)

	fields := entry.ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/api/health", fields["path"])
	assert.Equal(t, int64(http.StatusBadGateway), fields["status"])
	assert.Equal(t, "req-1", fields["request_id"])
}
