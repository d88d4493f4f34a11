package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/stock-ledger/docs"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/production"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/stock-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

// @title                       Stock Ledger API
// @version                     1.0
// @description                 Libro mayor de stock multiempresa: ajustes, movimientos, feed en vivo y órdenes de producción.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
// @description                 Bearer <token JWT>
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Ledger.Store).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var (
		txRunner inventory.TxRunner
		repos    inventory.TxRepos
	)
	switch cfg.Ledger.Store {
	case "memory":
		store := memory.NewStore()
		seedDemo(store)
		txRunner, repos = store, store.Repos()
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner, repos = postgres.NewTxRunner(pool, cfg.Ledger.TxTimeout), postgres.Repos(pool)
	}

	var idem cache.IdempotencyStore = cache.NewMemoryIdempotencyStore()
	if cfg.Redis.Enabled() {
		redisStore, err := cache.NewRedisIdempotencyStore(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr()).Msg("conexión a Redis")
		}
		idem = redisStore
	}
	defer idem.Close()

	prom := metrics.New()
	ledger := inventory.NewStockLedger(inventory.NewEventRecorder(), prom)

	feedUC := inventory.NewFeedUseCase(repos.Adjustments, repos.Movements, prom, inventory.FeedConfig{
		DefaultLimit: cfg.Ledger.FeedDefaultLimit,
		MaxLimit:     cfg.Ledger.FeedMaxLimit,
		Location:     cfg.App.Location(),
	})
	stockUC := inventory.NewStockQueryUseCase(repos.Stock, repos.Warehouses)
	adjustmentUC := inventory.NewAdjustmentUseCase(txRunner, ledger, repos.Adjustments, log.Component("inventory"))
	movementUC := inventory.NewMovementUseCase(txRunner, ledger, repos.Movements)
	productionUC := production.NewUseCase(production.Deps{
		TxRunner:   txRunner,
		Ledger:     ledger,
		Orders:     repos.Orders,
		Products:   repos.Products,
		Warehouses: repos.Warehouses,
		Sheets:     infrapdf.NewPickingSheetGenerator(),
		Metrics:    prom,
		Logger:     log.Component("production"),
	}, production.Config{LegacyAdjustments: cfg.Ledger.ProductionLegacyAdjustments})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Stock Ledger API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Feed:           feedUC,
		Stock:          stockUC,
		Adjustments:    adjustmentUC,
		Movements:      movementUC,
		Production:     productionUC,
		Products:       usecase.NewProductUseCase(repos.Products),
		Warehouses:     usecase.NewWarehouseUseCase(repos.Warehouses),
		Idempotency:    idem,
		IdempotencyTTL: cfg.Ledger.IdempotencyTTL,
		Observer:       prom,
		MetricsHandler: prom.Handler(),
		JWTSecret:      cfg.JWT.Secret,
		Logger:         log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
