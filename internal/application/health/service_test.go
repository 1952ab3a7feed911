package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"coinfolio-backend/internal/infrastructure/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectHealth_WithNilRedis(t *testing.T) {
	ctx := context.Background()
	result := CollectHealth(ctx, nil, nil, "")
	assert.Equal(t, "issue", result.Status)
	assert.Equal(t, "disconnected", result.Dependencies["database"].Status)
	assert.Equal(t, "disconnected", result.Dependencies["redis"].Status)
	assert.Equal(t, "disabled", result.Dependencies["priceFeed"].Status)
	assert.NotNil(t, result.Runtime)
	assert.NotNil(t, result.Traffic)
	assert.Equal(t, 0, result.Traffic.TotalRequests)
}

func TestCollectHealth_WithMiniredis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	ctx := context.Background()

	// No keys set: should get status "connected" for Redis, traffic zeros
	result := CollectHealth(ctx, rdb, nil, "")
	assert.Equal(t, "connected", result.Dependencies["redis"].Status)
	assert.Equal(t, "disconnected", result.Dependencies["database"].Status)
	assert.Equal(t, 0, result.Traffic.TotalRequests)
	assert.Equal(t, "100", result.Traffic.SuccessRate)
	assert.True(t, mr.Exists("health:global:start_time"))

	// Set traffic keys (same as middleware)
	require.NoError(t, rdb.Set(ctx, "health:global:req_total", "10", 0).Err())
	require.NoError(t, rdb.Set(ctx, "health:global:req_errors", "2", 0).Err())
	require.NoError(t, rdb.Set(ctx, "health:global:res_time_total", "150.5", 0).Err())
	require.NoError(t, rdb.Set(ctx, "health:global:res_count", "10", 0).Err())
	require.NoError(t, rdb.Set(ctx, "health:global:start_time", "1000000", 0).Err())

	result2 := CollectHealth(ctx, rdb, nil, "")
	assert.Equal(t, 10, result2.Traffic.TotalRequests)
	assert.Equal(t, 2, result2.Traffic.FailedCount)
	assert.Equal(t, 8, result2.Traffic.SuccessCount)
	assert.Equal(t, "80.0", result2.Traffic.SuccessRate)
	assert.Equal(t, "15.05", result2.Traffic.AvgResponseTime)
}

func TestCollectHealth_AllConnected(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	db, err := database.Open("sqlite::memory:")
	require.NoError(t, err)

	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ping", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer feed.Close()

	result := CollectHealth(context.Background(), rdb, &GormPinger{DB: db}, feed.URL)
	assert.Equal(t, "ok", result.Status)
	assert.Equal(t, "connected", result.Dependencies["database"].Status)
	assert.Equal(t, "reachable", result.Dependencies["priceFeed"].Status)
	assert.NotNil(t, result.Dependencies["priceFeed"].PingMs)
}

func TestCollectHealth_PriceFeedUnreachable(t *testing.T) {
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := feed.URL
	feed.Close()

	result := CollectHealth(context.Background(), nil, nil, url)
	assert.Equal(t, "unreachable", result.Dependencies["priceFeed"].Status)
	assert.Nil(t, result.Dependencies["priceFeed"].PingMs)
}

func TestRenderDashboardHTML(t *testing.T) {
	html := RenderDashboardHTML(CollectHealth(context.Background(), nil, nil, ""))
	assert.Contains(t, html, "Coinfolio · API Status")
	assert.Contains(t, html, "pill-feed")
	assert.Contains(t, html, "/health/errors")
	assert.Contains(t, html, "/health/json")
	assert.Contains(t, html, "pill-db")
	assert.Contains(t, html, "pill-redis")
	assert.Contains(t, html, "Portfolio API degraded")
}

func TestRenderDashboardHTML_HealthyAndEscaped(t *testing.T) {
	ping := int64(4)
	html := RenderDashboardHTML(CollectResult{
		Status: "ok",
		Traffic: TrafficInfo{
			TotalRequests: 3,
			SuccessRate:   "100",
			LastRequest:   map[string]interface{}{"method": "GET", "path": "/api/v1/reports?q=<script>", "ip": "10.0.0.1"},
		},
		Dependencies: map[string]DepStatus{
			"database":  {Status: "connected", PingMs: &ping},
			"redis":     {Status: "connected", PingMs: &ping},
			"priceFeed": {Status: "unreachable"},
		},
	})
	assert.Contains(t, html, "Portfolio API healthy")
	assert.Contains(t, html, "4 ms")
	assert.Contains(t, html, "unreachable")
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}
