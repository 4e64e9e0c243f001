package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fillout-webhook/internal/config"
	"fillout-webhook/internal/metrics"
	"fillout-webhook/internal/services/store"
	"fillout-webhook/internal/services/supabase"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	rest, err := OpenStore(ctx, &config.Config{StoreBackend: config.BackendREST, SupabaseURL: "https://p.supabase.co", SupabaseKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &supabase.Store{}, rest)

	mem, err := OpenStore(ctx, &config.Config{StoreBackend: config.BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &store.Memory{}, mem)

	_, err = OpenStore(ctx, &config.Config{StoreBackend: "mysql"})
	assert.ErrorIs(t, err, config.ErrInvalidBackend)
}

func TestNew_MemoryBackend(t *testing.T) {
	cfg := &config.Config{
		StoreBackend:   config.BackendMemory,
		EventVariant:   "extended",
		DefaultCountry: "USA",
	}

	a, err := New(context.Background(), cfg, metrics.New())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	rec := httptest.NewRecorder()
	a.Webhook.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/webhook/fillout",
		strings.NewReader(`{"submission":{"data":{"schoolName":"Lincoln Elementary","city":"Austin"}}}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"country":"USA"`)
	assert.Contains(t, rec.Body.String(), `"trees_planted":0`)
	assert.Contains(t, rec.Body.String(), `"pickup":false`)

	rec = httptest.NewRecorder()
	a.Health.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
