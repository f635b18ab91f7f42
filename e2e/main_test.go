package e2e

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-court-booking/internal/api/middleware"
	"github.com/sanosuguru/go-court-booking/internal/config"
	"github.com/sanosuguru/go-court-booking/internal/infrastructure/memory"
	"github.com/sanosuguru/go-court-booking/internal/pkg/metrics"
	"github.com/sanosuguru/go-court-booking/internal/server"
)

const testJWTSecret = "e2e-secret"

// TestServer はE2Eテスト用のサーバー
// ストアはテストごとに作り直すため、テスト間で状態は共有されない
type TestServer struct {
	*server.Server
	Store *memory.Store
}

// NewTestServer はインメモリストアで全ルートを組み立てたサーバーを作成
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	cfg := &config.Config{
		Env:     "test",
		Storage: config.StorageConfig{Backend: config.BackendMemory},
		Auth:    config.AuthConfig{JWTSecret: testJWTSecret},
		Availability: config.AvailabilityConfig{
			PublicFallback: "optimistic",
			AdminFallback:  "pessimistic",
			CacheTTL:       30 * time.Second,
		},
		Booking: config.BookingConfig{LockTTL: 10 * time.Second},
		Worker:  config.WorkerConfig{CacheWarmInterval: time.Minute, CacheWarmDays: 7},
	}

	store := memory.NewStore()
	reg := prometheus.NewRegistry()
	s, err := server.New(cfg, server.Options{
		Metrics:     metrics.NewWithRegistry(reg),
		Gatherer:    reg,
		MemoryStore: store,
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return &TestServer{Server: s, Store: store}
}

// Request はHTTPリクエストを実行
func (s *TestServer) Request(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

// adminHeaders は指定ロールの管理者トークンを付けたヘッダーを返す
func adminHeaders(t *testing.T, role string) map[string]string {
	t.Helper()
	token, err := middleware.IssueAdminToken(testJWTSecret, "e2e-admin", role, time.Hour)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
