package container_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/serroba/link-clicks/internal/container"
	"github.com/serroba/link-clicks/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryOptions() *container.Options {
	return &container.Options{
		Port:            8888,
		IDLength:        10,
		Storage:         container.StorageMemory,
		AppendTimeoutMs: 2000,
		WriteRateLimit:  60,
		LogFormat:       "console",
	}
}

func newMemoryServer(t *testing.T) *chi.Mux {
	t.Helper()

	injector := do.New()
	do.ProvideValue(injector, memoryOptions())
	container.ServerPackages(injector)

	_ = do.MustInvoke[huma.API](injector)

	group := do.MustInvoke[*messaging.ConsumerGroup](injector)
	require.NoError(t, group.Start(context.Background()))
	assert.Equal(t, 3, group.Len())

	t.Cleanup(func() { assert.NoError(t, injector.Shutdown()) })

	return do.MustInvoke[*chi.Mux](injector)
}

func send(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestOptions_Validate(t *testing.T) {
	t.Run("accepts every storage backend", func(t *testing.T) {
		for _, storage := range []string{container.StoragePostgres, container.StorageRedis, container.StorageMemory} {
			opts := memoryOptions()
			opts.Storage = storage

			assert.NoError(t, opts.Validate(), storage)
		}
	})

	t.Run("rejects unknown storage", func(t *testing.T) {
		opts := memoryOptions()
		opts.Storage = "sqlite"

		assert.Error(t, opts.Validate())
	})

	t.Run("rejects short ids", func(t *testing.T) {
		opts := memoryOptions()
		opts.IDLength = 2

		assert.Error(t, opts.Validate())
	})

	t.Run("keeps events in process only for memory storage", func(t *testing.T) {
		opts := memoryOptions()
		assert.True(t, opts.InProcessEvents())

		opts.Storage = container.StorageRedis
		assert.False(t, opts.InProcessEvents())
	})
}

func TestServerPackages_Memory(t *testing.T) {
	router := newMemoryServer(t)

	rec := send(t, router, http.MethodPost, "/users", `{"id":"owner-1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = send(t, router, http.MethodPost, "/links",
		`{"userId":"owner-1","originalUrl":"https://example.com/landing","targetParamName":"src"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var link struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &link))
	assert.Len(t, link.ID, 10)

	for _, src := range []string{"email", "email", "ads"} {
		rec = send(t, router, http.MethodGet, "/r/"+link.ID+"?src="+src, "")
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "https://example.com/landing", rec.Header().Get("Location"))
	}

	rec = send(t, router, http.MethodGet, "/links/"+link.ID+"/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats struct {
		ClickStats map[string]int `json:"clickStats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, map[string]int{"email": 2, "ads": 1}, stats.ClickStats)

	rec = send(t, router, http.MethodGet, "/r/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = send(t, router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestServerPackages_WriteRateLimit(t *testing.T) {
	injector := do.New()
	opts := memoryOptions()
	opts.WriteRateLimit = 1
	do.ProvideValue(injector, opts)
	container.ServerPackages(injector)

	_ = do.MustInvoke[huma.API](injector)
	router := do.MustInvoke[*chi.Mux](injector)

	t.Cleanup(func() { _ = injector.Shutdown() })

	assert.Equal(t, http.StatusCreated, send(t, router, http.MethodPost, "/users", `{}`).Code)
	assert.Equal(t, http.StatusTooManyRequests, send(t, router, http.MethodPost, "/users", `{}`).Code)
	assert.Equal(t, http.StatusOK, send(t, router, http.MethodGet, "/links", "").Code)
}
