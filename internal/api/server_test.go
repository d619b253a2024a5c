package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/insight-sphere/internal/config"
	apperrors "github.com/insight-sphere/internal/errors"
	"github.com/insight-sphere/internal/gateway"
	"github.com/insight-sphere/internal/logging"
	"github.com/insight-sphere/internal/market"
	"github.com/insight-sphere/internal/storage"
	"github.com/insight-sphere/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	market.MockProvider
	globalErr error
	assetsErr error
	panicking bool
}

func (p *stubProvider) Global(ctx context.Context) (*types.GlobalSnapshot, error) {
	if p.panicking {
		panic("boom")
	}
	if p.globalErr != nil {
		return nil, p.globalErr
	}
	return p.MockProvider.Global(ctx)
}

func (p *stubProvider) TopAssets(ctx context.Context) (types.AssetList, error) {
	if p.assetsErr != nil {
		return nil, p.assetsErr
	}
	return p.MockProvider.TopAssets(ctx)
}

func testConfig() *ServerConfig {
	return &ServerConfig{Host: "127.0.0.1", Port: "0", RequestsPerSecond: 100, Burst: 100}
}

func newTestServer(provider market.Provider, cache CacheStatusSource) *Server {
	return NewServer(testConfig(), provider, cache, logging.Discard())
}

func do(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope[T any](t *testing.T, rec *httptest.ResponseRecorder) types.Envelope[T] {
	t.Helper()
	var env types.Envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestHandleRoot(t *testing.T) {
	s := newTestServer(&stubProvider{}, nil)
	rec := do(t, s, http.MethodGet, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	var health types.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, ServiceName, health.Service)
	assert.Equal(t, "running", health.Status)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(&stubProvider{}, nil)
	rec := do(t, s, http.MethodGet, "/api/health")

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope[map[string]interface{}](t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "mock", env.Data["provider"])
	assert.Equal(t, false, env.Data["cache_enabled"])
}

func TestHandleGlobal(t *testing.T) {
	s := newTestServer(&stubProvider{}, nil)
	rec := do(t, s, http.MethodGet, "/api/global")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	env := decodeEnvelope[types.GlobalSnapshot](t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, 42.3, env.Data.BitcoinDominance.Value)
	assert.Equal(t, 745.0, env.Data.Markets.Value)
}

func TestHandleTopCryptos(t *testing.T) {
	s := newTestServer(&stubProvider{}, nil)
	rec := do(t, s, http.MethodGet, "/api/top-cryptos")

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope[types.AssetList](t, rec)
	require.Len(t, env.Data, 10)
	assert.Equal(t, "BTC", env.Data[0].Symbol)
	assert.Equal(t, 10, env.Data[9].Rank)
}

func TestMarketFailures(t *testing.T) {
	tests := []struct {
		name        string
		provider    *stubProvider
		path        string
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "upstream failure",
			provider:    &stubProvider{globalErr: apperrors.NewProviderError("coingecko", errors.New("503"))},
			path:        "/api/global",
			wantStatus:  http.StatusBadGateway,
			wantMessage: "upstream request to coingecko failed",
		},
		{
			name:        "upstream timeout",
			provider:    &stubProvider{assetsErr: apperrors.NewProviderTimeoutError("coingecko", context.DeadlineExceeded)},
			path:        "/api/top-cryptos",
			wantStatus:  http.StatusGatewayTimeout,
			wantMessage: "upstream request to coingecko timed out",
		},
		{
			name:        "unexpected failure",
			provider:    &stubProvider{assetsErr: errors.New("nil map")},
			path:        "/api/top-cryptos",
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "failed to fetch top cryptocurrency data",
		},
		{
			name:        "handler panic",
			provider:    &stubProvider{panicking: true},
			path:        "/api/global",
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestServer(tt.provider, nil), http.MethodGet, tt.path)

			assert.Equal(t, tt.wantStatus, rec.Code)
			env := decodeEnvelope[json.RawMessage](t, rec)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantMessage, env.Message)
		})
	}
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	s := newTestServer(&stubProvider{}, nil)

	rec := do(t, s, http.MethodGet, "/api/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, decodeEnvelope[json.RawMessage](t, rec).Success)

	rec = do(t, s, http.MethodPost, "/api/global")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(&stubProvider{}, nil)
	rec := do(t, s, http.MethodOptions, "/api/global")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestID(t *testing.T) {
	s := newTestServer(&stubProvider{}, nil)

	rec := do(t, s, http.MethodGet, "/")
	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, id)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get(RequestIDHeader))
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RequestsPerSecond = 1
	cfg.Burst = 2
	s := NewServer(cfg, &stubProvider{}, nil, logging.Discard())

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/").Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/").Code)

	rec := do(t, s, http.MethodGet, "/")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate limit exceeded, please try again later", decodeEnvelope[json.RawMessage](t, rec).Message)
}

func TestRateLimiter_PerClientAndPrune(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))

	now = now.Add(time.Hour)
	assert.Equal(t, 2, rl.Prune(10*time.Minute))
	assert.True(t, rl.Allow("10.0.0.1"))
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:4321"
	assert.Equal(t, "192.0.2.1", clientKey(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", clientKey(req))
}

func TestHandleCacheStatus(t *testing.T) {
	t.Run("no cache", func(t *testing.T) {
		rec := do(t, newTestServer(&stubProvider{}, nil), http.MethodGet, "/api/cache-status")
		require.Equal(t, http.StatusOK, rec.Code)
		env := decodeEnvelope[types.CacheStatus](t, rec)
		assert.Zero(t, env.Data.CacheCount)
		assert.NotNil(t, env.Data.CacheDetails)
	})

	t.Run("redis cache", func(t *testing.T) {
		mr := miniredis.RunT(t)
		redisCache, err := storage.NewRedisCache(&config.RedisConfig{Host: mr.Host(), Port: mr.Port(), MaxConnections: 2})
		require.NoError(t, err)
		defer redisCache.Close()

		cache := storage.NewCacheService(redisCache, 55*time.Second)
		provider := market.NewCachedProvider(&stubProvider{}, cache, logging.Discard())
		s := newTestServer(provider, cache)

		require.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/global").Code)
		require.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/top-cryptos").Code)

		env := decodeEnvelope[types.CacheStatus](t, do(t, s, http.MethodGet, "/api/cache-status"))
		assert.Equal(t, 2, env.Data.CacheCount)
		assert.Contains(t, env.Data.CacheDetails, market.CacheKeyGlobal)
		assert.Contains(t, env.Data.CacheDetails, market.CacheKeyTopAssets)
		assert.InDelta(t, 55, env.Data.CacheDetails[market.CacheKeyGlobal].ExpiresInSeconds, 1)
	})
}

// The dashboard gateway must be able to consume what the server produces.
func TestGatewayAgainstServer(t *testing.T) {
	s := newTestServer(&stubProvider{}, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	client, err := gateway.NewClient(&gateway.ClientConfig{BaseURL: ts.URL + "/api", Logger: logging.Discard()})
	require.NoError(t, err)

	global, err := client.FetchGlobal(context.Background())
	require.NoError(t, err)
	other, clamped := global.OtherDominance()
	assert.InDelta(t, 39.0, other, 1e-9)
	assert.False(t, clamped)

	assets, err := client.FetchTopAssets(context.Background())
	require.NoError(t, err)
	assert.Len(t, assets, 10)

	failing := newTestServer(&stubProvider{globalErr: apperrors.NewProviderError("coingecko", nil)}, nil)
	fts := httptest.NewServer(failing.Handler())
	defer fts.Close()

	client, err = gateway.NewClient(&gateway.ClientConfig{BaseURL: fts.URL + "/api", Logger: logging.Discard()})
	require.NoError(t, err)

	_, err = client.FetchGlobal(context.Background())
	fe, ok := apperrors.AsFetchError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindTransport, fe.Kind)
	assert.Equal(t, "upstream request to coingecko failed", fe.Message)
}
