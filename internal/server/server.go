// Package server assembles the Fiber application and its route table.
package server

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"autocatalog-backend/internal/audit"
	"autocatalog-backend/internal/auth"
	"autocatalog-backend/internal/catalog"
	"autocatalog-backend/internal/config"
	"autocatalog-backend/internal/content"
	"autocatalog-backend/internal/database"
	"autocatalog-backend/internal/httpx"
	"autocatalog-backend/internal/i18n"
	"autocatalog-backend/internal/logger"
	"autocatalog-backend/internal/media"
	"autocatalog-backend/internal/models"
	"autocatalog-backend/internal/orders"
	"autocatalog-backend/internal/sessionstore"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"
)

// BodyLimit leaves room for multipart overhead above the upload cap so an
// oversized file reaches the upload handler and gets a JSON 413.
const BodyLimit = media.MaxUploadSize + 2<<20

type Options struct {
	Config   *config.Config
	Logger   *zap.Logger
	Sessions *session.Store

	// Downloader is used by the remote image import. Nil means a client
	// with a 30 second timeout.
	Downloader *media.Downloader
}

func New(opts Options) *fiber.App {
	cfg := opts.Config
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	dl := opts.Downloader
	if dl == nil {
		dl = media.NewDownloader(30 * time.Second)
	}
	store := media.NewStore(cfg.UploadDir, cfg.UploadURLPrefix)

	app := fiber.New(fiber.Config{
		AppName:               "autocatalog-backend",
		ErrorHandler:          httpx.ErrorHandler,
		BodyLimit:             BodyLimit,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          60 * time.Second,
		DisableStartupMessage: true,
	})

	app.Use(requestid.New())
	app.Use(logger.Middleware(log, httpx.ErrorHandler))
	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.IsDevelopment()}))

	origins := cfg.AllowedOrigins()
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowCredentials: origins != "*",
	}))
	app.Use(sessionstore.EncryptCookies(cfg.SessionSecret))

	sessions := opts.Sessions
	requireAdmin := []fiber.Handler{
		auth.RequireSession(sessions),
		auth.RequireRole(models.RoleAdmin),
	}
	withAdmin := func(h fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, requireAdmin...), h)
	}

	api := app.Group("/api")

	api.Get("/health", HealthHandler())

	// Auth
	api.Post("/auth/login", auth.LoginHandler(sessions))
	api.Post("/auth/logout", auth.LogoutHandler(sessions))
	api.Get("/auth/me", auth.RequireSession(sessions), auth.MeHandler())

	// Catalog. Fixed product paths come before /:id.
	api.Get("/brands", catalog.ListBrandsHandler())
	api.Get("/brands/:id", catalog.GetBrandHandler())
	api.Get("/categories", catalog.ListCategoriesHandler())
	api.Get("/categories/:id", catalog.GetCategoryHandler())
	api.Get("/products", catalog.ListProductsHandler())
	api.Get("/products/search", catalog.SearchProductsHandler())
	api.Get("/products/bestsellers", catalog.ListBestsellersHandler())
	api.Get("/products/discounted", catalog.ListDiscountedHandler())
	api.Get("/products/by-ids", catalog.ProductsByIDsHandler())
	api.Get("/products/:id", catalog.GetProductHandler())

	// Content
	api.Get("/banners/:type", content.ListBannersByTypeHandler())
	api.Get("/news", content.ListNewsHandler())
	api.Get("/news/:id", content.GetNewsHandler())
	api.Get("/services", content.ListServicesHandler())
	api.Get("/services/icons", content.ListServiceIconsHandler())

	// Leads
	api.Post("/orders", orders.CreateOrderHandler())

	// i18n
	api.Get("/i18n", i18n.NegotiatedMessagesHandler())
	api.Get("/i18n/:lang", i18n.LanguageMessagesHandler())

	// Uploads
	api.Post("/upload", withAdmin(media.UploadHandler(store))...)
	api.Post("/upload/remote", withAdmin(media.RemoteUploadHandler(store, dl))...)
	api.Get("/upload/presets", withAdmin(media.PresetsHandler())...)
	api.Get("/uploads", withAdmin(media.ListUploadsHandler(store))...)
	api.Delete("/uploads/:name", withAdmin(media.DeleteUploadHandler(store))...)

	// Admin
	admin := api.Group("/admin", requireAdmin...)

	admin.Post("/brands", catalog.CreateBrandHandler())
	admin.Put("/brands/reorder", catalog.ReorderBrandsHandler())
	admin.Put("/brands/:id", catalog.UpdateBrandHandler())
	admin.Delete("/brands/:id", catalog.DeleteBrandHandler())
	admin.Post("/brands/:id/move", catalog.MoveBrandHandler())

	admin.Post("/categories", catalog.CreateCategoryHandler())
	admin.Put("/categories/reorder", catalog.ReorderCategoriesHandler())
	admin.Put("/categories/:id", catalog.UpdateCategoryHandler())
	admin.Delete("/categories/:id", catalog.DeleteCategoryHandler())
	admin.Post("/categories/:id/move", catalog.MoveCategoryHandler())

	admin.Post("/products", catalog.CreateProductHandler())
	admin.Put("/products/:id", catalog.UpdateProductHandler())
	admin.Delete("/products/:id", catalog.DeleteProductHandler())

	admin.Get("/banners", content.ListAllBannersHandler())
	admin.Post("/banners", content.CreateBannerHandler())
	admin.Put("/banners/reorder", content.ReorderBannersHandler())
	admin.Put("/banners/:id", content.UpdateBannerHandler())
	admin.Delete("/banners/:id", content.DeleteBannerHandler())
	admin.Post("/banners/:id/move", content.MoveBannerHandler())

	admin.Post("/news", content.CreateNewsHandler())
	admin.Put("/news/:id", content.UpdateNewsHandler())
	admin.Delete("/news/:id", content.DeleteNewsHandler())

	admin.Post("/services", content.CreateServiceHandler())
	admin.Put("/services/reorder", content.ReorderServicesHandler())
	admin.Put("/services/:id", content.UpdateServiceHandler())
	admin.Delete("/services/:id", content.DeleteServiceHandler())
	admin.Post("/services/:id/move", content.MoveServiceHandler())

	admin.Get("/orders", orders.ListOrdersHandler())
	admin.Get("/orders/export", orders.ExportOrdersHandler())
	admin.Get("/orders/:id", orders.GetOrderHandler())
	admin.Patch("/orders/:id/status", orders.UpdateOrderStatusHandler())
	admin.Delete("/orders/:id", orders.DeleteOrderHandler())

	admin.Get("/audit-logs", audit.ListAuditLogsHandler())

	api.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "not found")
	})

	app.Static(cfg.UploadURLPrefix, cfg.UploadDir, fiber.Static{MaxAge: 86400})

	if cfg.WebDir != "" {
		mountWeb(app, cfg.WebDir, log)
	}
	return app
}

// mountWeb serves the storefront and admin bundle. Unknown paths get
// index.html so client side routes survive a reload.
func mountWeb(app *fiber.App, dir string, log *zap.Logger) {
	index := filepath.Join(dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		log.Warn("WEB_DIR has no index.html, bundle not served", zap.String("dir", dir), zap.Error(err))
		return
	}

	app.Static("/", dir)
	app.Get("/*", func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api/") {
			return fiber.ErrNotFound
		}
		return c.SendFile(index)
	})
}

// GET /api/health
func HealthHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := database.Ping(); err != nil {
			zap.L().Error("health check failed", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":   "unavailable",
				"database": "down",
			})
		}
		return c.JSON(fiber.Map{
			"status":   "ok",
			"database": "up",
		})
	}
}
