package server

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"autocatalog-backend/internal/audit"
	"autocatalog-backend/internal/auth"
	"autocatalog-backend/internal/catalog"
	"autocatalog-backend/internal/config"
	"autocatalog-backend/internal/models"
	"autocatalog-backend/internal/orders"
	"autocatalog-backend/internal/repository"
	"autocatalog-backend/internal/seed"
	"autocatalog-backend/internal/sessionstore"
	"autocatalog-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const adminPassword = "integration-pass"

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Env:             "development",
		SessionSecret:   strings.Repeat("k", 40),
		SessionTTL:      time.Hour,
		CORSOrigins:     "http://localhost:5173",
		UploadDir:       t.TempDir(),
		UploadURLPrefix: "/uploads",
		AdminUsername:   "admin",
		AdminPassword:   adminPassword,
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *fiber.App {
	t.Helper()
	testutil.OpenDB(t)
	_, err := seed.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword)
	require.NoError(t, err)

	return New(Options{
		Config:   cfg,
		Logger:   zap.NewNop(),
		Sessions: sessionstore.New(cfg, nil),
	})
}

func login(t *testing.T, app *fiber.App) []*http.Cookie {
	t.Helper()
	resp := testutil.Request(t, app, "POST", "/api/auth/login", map[string]string{
		"username": "admin", "password": adminPassword,
	})
	require.Equal(t, 200, resp.StatusCode)
	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func TestAdminRoutesRejectAnonymousBeforeWriting(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	ctx := context.Background()

	order := models.Order{Phone: "+992900000000"}
	require.NoError(t, repository.Orders.Create(ctx, &order))
	brand := models.Brand{Name: "Bosch"}
	require.NoError(t, repository.Brands.Create(ctx, &brand))

	requests := []struct {
		method, path string
		body         any
	}{
		{"POST", "/api/admin/brands", map[string]string{"name": "Hella"}},
		{"PUT", "/api/admin/brands/" + brand.ID, map[string]string{"name": "Renamed"}},
		{"DELETE", "/api/admin/brands/" + brand.ID, nil},
		{"POST", "/api/admin/brands/" + brand.ID + "/move", map[string]string{"direction": "up"}},
		{"POST", "/api/admin/products", map[string]any{"name": "X", "price": 1}},
		{"PATCH", "/api/admin/orders/" + order.ID + "/status", map[string]string{"status": "completed"}},
		{"DELETE", "/api/admin/orders/" + order.ID, nil},
		{"GET", "/api/admin/orders", nil},
		{"GET", "/api/admin/no-such-route", nil},
		{"GET", "/api/uploads", nil},
		{"POST", "/api/upload", nil},
	}
	for _, r := range requests {
		resp := testutil.Request(t, app, r.method, r.path, r.body)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "%s %s", r.method, r.path)
	}

	brands, err := repository.Brands.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), brands)
	products, err := repository.Products.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, products)

	stored, err := repository.Orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusNew, stored.Status)

	b, err := repository.Brands.Get(ctx, brand.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bosch", b.Name)
}

func TestLoginMeLogout(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	resp := testutil.Request(t, app, "POST", "/api/auth/login", map[string]string{"username": "admin", "password": "nope"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, resp.Cookies())

	cookies := login(t, app)

	var me auth.UserResponse
	resp = testutil.Request(t, app, "GET", "/api/auth/me", nil, cookies...)
	require.Equal(t, 200, resp.StatusCode)
	testutil.Decode(t, resp, &me)
	user, err := repository.UserByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, user.ID, me.ID)

	resp = testutil.Request(t, app, "POST", "/api/auth/logout", nil, cookies...)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp = testutil.Request(t, app, "GET", "/api/auth/me", nil, cookies...)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestOrderScenario(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	resp := testutil.Request(t, app, "POST", "/api/orders", `{"phone":"+992900000000","productIds":["p1","p2"]}`)
	require.Equal(t, 200, resp.StatusCode)
	var created orders.OrderResponse
	testutil.Decode(t, resp, &created)
	assert.Equal(t, models.OrderStatusNew, created.Status)

	resp = testutil.Request(t, app, "POST", "/api/orders", `{"productIds":["p1"]}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	cookies := login(t, app)

	resp = testutil.Request(t, app, "PATCH", "/api/admin/orders/"+created.ID+"/status", map[string]string{"status": "completed"}, cookies...)
	require.Equal(t, 200, resp.StatusCode)

	var list []orders.AdminOrderResponse
	resp = testutil.Request(t, app, "GET", "/api/admin/orders", nil, cookies...)
	require.Equal(t, 200, resp.StatusCode)
	testutil.Decode(t, resp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, models.OrderStatusCompleted, list[0].Status)

	var logs []audit.AuditLogResponse
	testutil.Decode(t, testutil.Request(t, app, "GET", "/api/admin/audit-logs?entityType=order", nil, cookies...), &logs)
	require.Len(t, logs, 1)
	assert.Equal(t, "admin", logs[0].UserName)
	assert.Equal(t, models.AuditActionStatus, logs[0].Action)
}

func TestAdminCRUDThroughServer(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	cookies := login(t, app)

	var names []string
	for _, n := range []string{"A", "B", "C"} {
		resp := testutil.Request(t, app, "POST", "/api/admin/brands", map[string]string{"name": n}, cookies...)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	}

	var brands []catalog.BrandResponse
	testutil.Decode(t, testutil.Request(t, app, "GET", "/api/brands", nil), &brands)
	require.Len(t, brands, 3)

	resp := testutil.Request(t, app, "POST", "/api/admin/brands/"+brands[1].ID+"/move", map[string]string{"direction": "up"}, cookies...)
	require.Equal(t, 200, resp.StatusCode)

	brands = nil
	testutil.Decode(t, testutil.Request(t, app, "GET", "/api/brands", nil), &brands)
	for _, b := range brands {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"B", "A", "C"}, names)
}

func TestPublicRoutes(t *testing.T) {
	cfg := testConfig(t)
	app := newTestApp(t, cfg)

	resp := testutil.Request(t, app, "GET", "/api/health", nil)
	assert.Equal(t, 200, resp.StatusCode)

	// fixed product paths are not captured by /:id
	var found []catalog.ProductResponse
	resp = testutil.Request(t, app, "GET", "/api/products/search?q=a", nil)
	require.Equal(t, 200, resp.StatusCode)
	testutil.Decode(t, resp, &found)
	assert.Empty(t, found)

	resp = testutil.Request(t, app, "GET", "/api/products/bestsellers", nil)
	assert.Equal(t, 200, resp.StatusCode)

	resp = testutil.Request(t, app, "GET", "/api/products/unknown-id", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = testutil.Request(t, app, "GET", "/api/nothing-here", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = testutil.Request(t, app, "GET", "/api/i18n?lang=en", nil)
	assert.Equal(t, 200, resp.StatusCode)

	require.NoError(t, os.WriteFile(filepath.Join(cfg.UploadDir, "logo.png"), []byte("png"), 0o644))
	resp = testutil.Request(t, app, "GET", "/uploads/logo.png", nil)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestWebDirFallback(t *testing.T) {
	cfg := testConfig(t)
	cfg.WebDir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cfg.WebDir, "index.html"), []byte("<html>app</html>"), 0o644))
	app := newTestApp(t, cfg)

	resp := testutil.Request(t, app, "GET", "/admin/products", nil)
	assert.Equal(t, 200, resp.StatusCode)

	resp = testutil.Request(t, app, "GET", "/api/missing", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
