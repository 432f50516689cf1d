package health

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"sitestock-backend/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHealthApp(t *testing.T, adminKey string) (*fiber.App, *redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	h := &Handlers{Rdb: rdb, HealthAdminKey: adminKey}
	app := fiber.New()
	app.Get("/health/json", h.JSON)
	app.Get("/health/reset", h.Reset)
	return app, rdb, mr
}

func getHealth(t *testing.T, app *fiber.App, path string) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp, body
}

func TestHealthJSON(t *testing.T) {
	app, _, mr := setupHealthApp(t, "")
	require.NoError(t, mr.Set(middleware.KeyReqTotal, "10"))
	require.NoError(t, mr.Set(middleware.KeyReqErrors, "2"))

	resp, body := getHealth(t, app, "/health/json")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])

	deps := body["dependencies"].(map[string]interface{})
	redisDep := deps["redis"].(map[string]interface{})
	assert.Equal(t, "connected", redisDep["status"])
	dbDep := deps["database"].(map[string]interface{})
	assert.Equal(t, "disconnected", dbDep["status"])

	traffic := body["traffic"].(map[string]interface{})
	assert.Equal(t, float64(10), traffic["totalRequests"])
	assert.Equal(t, float64(8), traffic["successCount"])
	assert.Equal(t, "80.0", traffic["successRate"])
}

func TestHealthJSON_RedisDown(t *testing.T) {
	app, _, mr := setupHealthApp(t, "")
	mr.Close()

	resp, body := getHealth(t, app, "/health/json")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "degraded", body["status"])
	deps := body["dependencies"].(map[string]interface{})
	assert.Equal(t, "error", deps["redis"].(map[string]interface{})["status"])
}

func TestHealthReset(t *testing.T) {
	app, _, mr := setupHealthApp(t, "adminkey")
	require.NoError(t, mr.Set(middleware.KeyReqTotal, "10"))

	resp, _ := getHealth(t, app, "/health/reset")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = getHealth(t, app, "/health/reset?key=wrong")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, body := getHealth(t, app, "/health/reset?key=adminkey")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", body["status"])
	assert.False(t, mr.Exists(middleware.KeyReqTotal))
	assert.True(t, mr.Exists(middleware.KeyStartTime))
}

// An empty admin key disables the reset endpoint entirely.
func TestHealthReset_DisabledWithoutKey(t *testing.T) {
	app, _, _ := setupHealthApp(t, "")
	resp, _ := getHealth(t, app, "/health/reset?key=")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
