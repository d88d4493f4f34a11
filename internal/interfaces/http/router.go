package http

import (
	nethttp "net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/production"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Feed        *inventory.FeedUseCase
	Stock       *inventory.StockQueryUseCase
	Adjustments *inventory.AdjustmentUseCase
	Movements   *inventory.MovementUseCase
	Production  *production.UseCase
	Products    *usecase.ProductUseCase
	Warehouses  *usecase.WarehouseUseCase

	Idempotency    cache.IdempotencyStore // nil = sin idempotencia
	IdempotencyTTL time.Duration
	Observer       HTTPObserver     // nil = sin métricas HTTP
	MetricsHandler nethttp.Handler // nil = sin /metrics
	JWTSecret      string
	Logger         *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	app.Use(RequestLogger(log, deps.Observer))

	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	idem := func(c *fiber.Ctx) error { return c.Next() }
	if deps.Idempotency != nil {
		idem = IdempotencyMiddleware(deps.Idempotency, deps.IdempotencyTTL, log)
	}

	// Catálogo
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.Products, log)
	products.Get("/", RequireRole(ReadRoles...), productHandler.List)
	products.Post("/", RequireRole(CatalogWriteRoles...), productHandler.Create)
	products.Get("/:id", RequireRole(ReadRoles...), productHandler.GetByID)

	warehouses := api.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.Warehouses, log)
	warehouses.Get("/", RequireRole(ReadRoles...), warehouseHandler.List)
	warehouses.Post("/", RequireRole(CatalogWriteRoles...), warehouseHandler.Create)
	warehouses.Get("/:id", RequireRole(ReadRoles...), warehouseHandler.GetByID)

	// Inventario
	inv := api.Group("/inventory")
	invHandler := NewInventoryHandler(deps.Feed, deps.Stock, deps.Adjustments, deps.Movements, log)
	inv.Get("/live-feed", RequireRole(ReadRoles...), invHandler.LiveFeed)
	inv.Get("/stock", RequireRole(ReadRoles...), invHandler.Stock)
	inv.Get("/adjustments", RequireRole(ReadRoles...), invHandler.ListAdjustments)
	inv.Post("/adjustments", RequireRole(ScanRoles...), idem, invHandler.CreateAdjustment)
	inv.Delete("/adjustments/:id", RequireRole(ScanRoles...), invHandler.DeleteAdjustment)
	inv.Get("/movements", RequireRole(MovementReadRoles...), invHandler.ListMovements)
	inv.Get("/movements/:id", RequireRole(MovementReadRoles...), invHandler.GetMovement)
	inv.Post("/movements", RequireRole(ManagementRoles...), idem, invHandler.RegisterMovement)

	// Producción; /pick antes de /:id
	prod := api.Group("/production")
	prodHandler := NewProductionHandler(deps.Production, log)
	prod.Get("/", RequireRole(FloorRoles...), prodHandler.List)
	prod.Post("/", RequireRole(ManagementRoles...), idem, prodHandler.Create)
	prod.Post("/pick", RequireRole(FloorRoles...), idem, prodHandler.Pick)
	prod.Get("/:id", RequireRole(FloorRoles...), prodHandler.Get)
	prod.Get("/:id/picking-sheet", RequireRole(FloorRoles...), prodHandler.PickingSheet)
	prod.Post("/:id/complete", RequireRole(ManagementRoles...), idem, prodHandler.Complete)
	prod.Post("/:id/cancel", RequireRole(ManagementRoles...), prodHandler.Cancel)
}
