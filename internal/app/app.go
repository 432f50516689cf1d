package app

import (
	"sitestock-backend/internal/auth"
	"sitestock-backend/internal/catalog"
	"sitestock-backend/internal/config"
	"sitestock-backend/internal/database"
	"sitestock-backend/internal/health"
	"sitestock-backend/internal/ledger"
	"sitestock-backend/internal/middleware"
	"sitestock-backend/internal/reporting"
	"sitestock-backend/internal/reservation"
	"sitestock-backend/internal/warehouse"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app with all global middleware and route
// registration. Returns the DB and Redis handles for startup checks.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	// CORS (before session)
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	// Session (Redis); need Redis client for health marker too
	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	// --- Routes (no auth) ---
	healthHandlers := &health.Handlers{
		Rdb:            rdb,
		DB:             db,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/health/json", healthHandlers.JSON)
	app.Get("/health/reset", healthHandlers.Reset)

	var userFinder auth.UserFinder
	if db != nil {
		userFinder = &auth.GormUserFinder{DB: db}
	}
	authHandlers := &auth.Handlers{
		UserFinder: userFinder,
		Rdb:        rdb,
		Config:     sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", authHandlers.Login)
	authGroup.Get("/me", authHandlers.Me)
	authGroup.Delete("/logout", authHandlers.Logout)

	// --- Protected modules (auth required) ---
	if db != nil {
		// Catalog module
		catalogService := &catalog.Service{DB: db}
		catalogHandlers := &catalog.Handlers{Service: catalogService}
		catalogGroup := app.Group("/api/v1/catalog", middleware.RequireAuth())
		catalogGroup.Post("/create-item", catalogHandlers.CreateItem)
		catalogGroup.Patch("/update-item/:id", catalogHandlers.UpdateItem)
		catalogGroup.Patch("/deactivate-item/:id", catalogHandlers.DeactivateItem)
		catalogGroup.Get("/view-item/:id", catalogHandlers.ViewItem)
		catalogGroup.Get("/list-items", catalogHandlers.ListItems)
		catalogGroup.Post("/create-category", catalogHandlers.CreateCategory)
		catalogGroup.Get("/list-categories", catalogHandlers.ListCategories)
		catalogGroup.Get("/list-units", catalogHandlers.ListUnits)
		catalogGroup.Post("/bulk-create-items", catalogHandlers.BulkCreateItems)

		// Warehouse registry module
		warehouseService := &warehouse.Service{DB: db}
		warehouseHandlers := &warehouse.Handlers{Service: warehouseService}
		warehouseGroup := app.Group("/api/v1/warehouses", middleware.RequireAuth())
		warehouseGroup.Post("/create-warehouse", warehouseHandlers.CreateWarehouse)
		warehouseGroup.Patch("/update-warehouse/:id", warehouseHandlers.UpdateWarehouse)
		warehouseGroup.Patch("/deactivate-warehouse/:id", warehouseHandlers.DeactivateWarehouse)
		warehouseGroup.Get("/view-warehouse/:id", warehouseHandlers.ViewWarehouse)
		warehouseGroup.Get("/list-warehouses", warehouseHandlers.ListWarehouses)
		warehouseGroup.Post("/bulk-create-warehouses", warehouseHandlers.BulkCreateWarehouses)

		// Stock ledger module
		ledgerService := &ledger.Service{DB: db}
		ledgerHandlers := &ledger.Handlers{Service: ledgerService}
		ledgerGroup := app.Group("/api/v1/ledger", middleware.RequireAuth())
		ledgerGroup.Post("/record-ingress", ledgerHandlers.RecordIngress)
		ledgerGroup.Post("/record-egress", ledgerHandlers.RecordEgress)
		ledgerGroup.Post("/record-transfer", ledgerHandlers.RecordTransfer)
		ledgerGroup.Post("/record-adjustment", ledgerHandlers.RecordAdjustment)
		ledgerGroup.Get("/view-balance/:item_id", ledgerHandlers.ViewBalance)
		ledgerGroup.Get("/view-available/:item_id", ledgerHandlers.ViewAvailable)
		ledgerGroup.Get("/view-history/:item_id", ledgerHandlers.ViewHistory)
		ledgerGroup.Get("/verify-balance/:item_id/:warehouse_id", ledgerHandlers.VerifyBalance)

		// Reservation module
		reservationService := &reservation.Service{DB: db}
		reservationHandlers := &reservation.Handlers{Service: reservationService}
		reservationGroup := app.Group("/api/v1/reservations", middleware.RequireAuth())
		reservationGroup.Post("/create-reservation", reservationHandlers.CreateReservation)
		reservationGroup.Patch("/release-reservation/:id", reservationHandlers.ReleaseReservation)
		reservationGroup.Patch("/confirm-reservation/:id", reservationHandlers.ConfirmReservation)
		reservationGroup.Get("/view-reservation/:id", reservationHandlers.ViewReservation)
		reservationGroup.Get("/list-item-reservations/:item_id", reservationHandlers.ListItemReservations)
		reservationGroup.Get("/list-project-reservations/:project_id", reservationHandlers.ListProjectReservations)

		// Reporting module (reads only)
		reportingService := &reporting.Service{DB: db}
		reportingHandlers := &reporting.Handlers{Service: reportingService}
		reportsGroup := app.Group("/api/v1/reports", middleware.RequireAuth())
		reportsGroup.Get("/low-stock", reportingHandlers.LowStock)
		reportsGroup.Get("/valuation", reportingHandlers.Valuation)
		reportsGroup.Get("/project-usage/:project_id", reportingHandlers.ProjectUsage)
	}

	return app, db, rdb, nil
}
