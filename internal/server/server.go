// Package server wires the HTTP routes of the scanner backend.
package server

import (
	"strings"

	"trackii-backend/internal/audit"
	"trackii-backend/internal/auth"
	"trackii-backend/internal/config"
	"trackii-backend/internal/models"
	"trackii-backend/internal/scanner"
	"trackii-backend/internal/store"
	"trackii-backend/internal/tracking"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func New(cfg *config.Config, db *gorm.DB, logger *zap.Logger) *fiber.App {
	engine := tracking.NewEngine(store.New(db), logger.Named("tracking"), tracking.Options{
		AllowRemoteOrderCreation: cfg.AllowRemoteOrderCreation,
	})

	app := fiber.New(fiber.Config{
		AppName:               "trackii",
		ErrorHandler:          scanner.ErrorHandler(logger),
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(scanner.RequestLogger(logger.Named("http")))
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins(cfg),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,OPTIONS",
	}))

	api := app.Group("/api")
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg.JWTSecret))

	protected.Get("/auth/me", auth.MeHandler(db))

	// Handheld scanners
	scan := protected.Group("/scanner")
	scan.Get("/part/:partNumber", scanner.PartLookupHandler(engine))
	scan.Get("/error-categories", scanner.ErrorCategoriesHandler(engine))
	scan.Get("/error-categories/:categoryId/codes", scanner.ErrorCodesHandler(engine))
	scan.Get("/work-orders/:woNumber/context", scanner.WorkOrderContextHandler(engine))
	scan.Get("/work-orders/:woNumber/unit", scanner.UnitHandler(engine))

	scan.Post("/register", auth.RequireDevice(), scanner.RegisterScanHandler(engine))
	scan.Post("/scrap", auth.RequireDevice(), scanner.ScrapHandler(engine))
	scan.Post("/rework", auth.RequireDevice(), scanner.ReworkHandler(engine))

	// Supervisors
	protected.Get("/scan-events", auth.RequireRole(models.RoleSupervisor), audit.ListScanEventsHandler(db))

	return app
}

func allowOrigins(cfg *config.Config) string {
	origins := cfg.CORSOriginList()
	if len(origins) == 0 {
		return "*"
	}
	return strings.Join(origins, ",")
}
