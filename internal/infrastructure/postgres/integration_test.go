//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/production"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

const companyID int64 = 1

// newTestDB levanta PostgreSQL en un contenedor, aplica las migraciones y devuelve el pool.
func newTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ledger_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "no se pudo iniciar PostgreSQL")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	dbCfg := config.DBConfig{DatabaseURL: dsn}

	migrationURL, err := postgres.MigrationURL(dbCfg)
	require.NoError(t, err)
	mg, err := postgres.NewMigrator(migrationURL, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, mg.Up())
	require.NoError(t, mg.Close())

	pool, err := postgres.NewPool(ctx, dbCfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func insertID(t *testing.T, pool *pgxpool.Pool, query string, args ...any) int64 {
	t.Helper()
	var id int64
	require.NoError(t, pool.QueryRow(context.Background(), query, args...).Scan(&id))
	return id
}

func addProduct(t *testing.T, pool *pgxpool.Pool, sku, name string, cost int64) int64 {
	return insertID(t, pool, `INSERT INTO products (company_id, sku, name, cost) VALUES ($1, $2, $3, $4) RETURNING id`,
		companyID, sku, name, decimal.NewFromInt(cost))
}

func addWarehouse(t *testing.T, pool *pgxpool.Pool, name string, capacity int64) int64 {
	return insertID(t, pool, `INSERT INTO warehouses (company_id, name, capacity_limit) VALUES ($1, $2, $3) RETURNING id`,
		companyID, name, capacity)
}

func setStock(t *testing.T, pool *pgxpool.Pool, productID, warehouseID, qty int64) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO stock (product_id, warehouse_id, quantity) VALUES ($1, $2, $3)
		 ON CONFLICT (product_id, warehouse_id) DO UPDATE SET quantity = EXCLUDED.quantity`,
		productID, warehouseID, qty)
	require.NoError(t, err)
}

func stockOf(t *testing.T, pool *pgxpool.Pool, productID, warehouseID int64) int64 {
	t.Helper()
	var qty int64
	err := pool.QueryRow(context.Background(),
		`SELECT COALESCE((SELECT quantity FROM stock WHERE product_id = $1 AND warehouse_id = $2), 0)`,
		productID, warehouseID).Scan(&qty)
	require.NoError(t, err)
	return qty
}

func countRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()
	var n int
	require.NoError(t, pool.QueryRow(context.Background(), `SELECT count(*) FROM `+table).Scan(&n))
	return n
}

func TestIntegracion(t *testing.T) {
	pool := newTestDB(t)
	runner := postgres.NewTxRunner(pool, 5*time.Second)
	ledger := inventory.NewStockLedger(inventory.NewEventRecorder(), nil)
	actor := entity.Actor{UserID: 10, CompanyID: companyID, Role: entity.RoleInventoryManager}
	_, err := pool.Exec(context.Background(), `INSERT INTO users (id, company_id, name) VALUES (10, $1, 'Ana')`, companyID)
	require.NoError(t, err)

	adjust := func(productID, warehouseID, delta int64) error {
		return runner.Run(context.Background(), func(ctx context.Context, repos inventory.TxRepos) error {
			_, err := ledger.Adjust(ctx, repos, inventory.AdjustInput{
				ProductID: productID, WarehouseID: warehouseID, Delta: delta,
				Reason: "prueba", CreatedBy: actor.UserID,
				Streams: []entity.EventStream{entity.StreamMovement},
			})
			return err
		})
	}

	// ── Libro mayor ──────────────────────────────────────────────────────────

	t.Run("sobreventa concurrente no deja stock negativo", func(t *testing.T) {
		p := addProduct(t, pool, "RACE-1", "Azúcar", 10)
		w := addWarehouse(t, pool, "Carrera", 0)
		setStock(t, pool, p, w, 5)

		var wg sync.WaitGroup
		var mu sync.Mutex
		var ok, insufficient int
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := adjust(p, w, -1)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					ok++
				case errors.Is(err, domain.ErrInsufficientStock):
					insufficient++
				default:
					t.Errorf("error inesperado: %v", err)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 5, ok)
		assert.Equal(t, 5, insufficient)
		assert.Equal(t, int64(0), stockOf(t, pool, p, w))
	})

	t.Run("capacidad concurrente entre productos distintos", func(t *testing.T) {
		w := addWarehouse(t, pool, "Capacidad", 10)
		products := make([]int64, 8)
		for i := range products {
			products[i] = addProduct(t, pool, "CAP-"+string(rune('A'+i)), "Capacidad", 1)
		}

		var wg sync.WaitGroup
		var mu sync.Mutex
		var ok int
		for _, p := range products {
			wg.Add(1)
			go func(p int64) {
				defer wg.Done()
				err := adjust(p, w, 2)
				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					ok++
				} else if !errors.Is(err, domain.ErrCapacityExceeded) {
					t.Errorf("error inesperado: %v", err)
				}
			}(p)
		}
		wg.Wait()

		assert.Equal(t, 5, ok)
		total, err := postgres.NewStockRepository(pool).SumByWarehouse(context.Background(), w)
		require.NoError(t, err)
		assert.Equal(t, int64(10), total)
	})

	t.Run("crea el registro en la primera entrada", func(t *testing.T) {
		p := addProduct(t, pool, "NEW-1", "Sal", 0)
		w := addWarehouse(t, pool, "Nueva", 0)

		require.NoError(t, adjust(p, w, 4))
		assert.Equal(t, int64(4), stockOf(t, pool, p, w))

		err := adjust(p, w, -5)
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		assert.Equal(t, int64(4), stockOf(t, pool, p, w))
	})

	t.Run("ajuste con costo unitario y listado con referencias", func(t *testing.T) {
		p := addProduct(t, pool, "ADJ-1", "Aceite", 100)
		w := addWarehouse(t, pool, "Ajustes", 0)
		setStock(t, pool, p, w, 10)
		uc := inventory.NewAdjustmentUseCase(runner, ledger, postgres.NewAdjustmentRepository(pool), logger.Nop())

		cost := decimal.NewFromInt(200)
		resp, err := uc.Create(context.Background(), actor, dto.CreateAdjustmentRequest{
			ProductID: dto.FlexInt(p), WarehouseID: dto.FlexInt(w), Type: entity.EventTypeIncrease,
			Quantity: 10, Reason: "compra", UnitCost: &cost,
		})
		require.NoError(t, err)
		assert.Contains(t, resp.ReferenceNumber, inventory.ReferencePrefix)

		product, err := postgres.NewProductRepository(pool).GetByID(context.Background(), p)
		require.NoError(t, err)
		assert.True(t, product.Cost.Equal(decimal.NewFromInt(150)), "costo %s", product.Cost)

		list, err := uc.List(context.Background(), actor, p, w, dto.PageRequest{})
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.NotNil(t, list[0].Product)
		assert.Equal(t, "Aceite", list[0].Product.Name)
		require.NotNil(t, list[0].User)
		assert.Equal(t, "Ana", list[0].User.Name)

		require.NoError(t, uc.Delete(context.Background(), actor, resp.ID))
		assert.Equal(t, int64(20), stockOf(t, pool, p, w), "borrar un ajuste no revierte el stock")
	})

	t.Run("feed deduplica el flujo legado", func(t *testing.T) {
		before := countRows(t, pool, "stock_movements")
		p := addProduct(t, pool, "FEED-1", "Cacao", 0)
		w := addWarehouse(t, pool, "Feed", 0)
		err := runner.Run(context.Background(), func(ctx context.Context, repos inventory.TxRepos) error {
			_, err := ledger.Adjust(ctx, repos, inventory.AdjustInput{
				ProductID: p, WarehouseID: w, Delta: 7, Reason: "doble", CreatedBy: actor.UserID,
				Streams: []entity.EventStream{entity.StreamAdjustment, entity.StreamMovement},
			})
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, before+1, countRows(t, pool, "stock_movements"))

		feedUC := inventory.NewFeedUseCase(postgres.NewAdjustmentRepository(pool), postgres.NewMovementRepository(pool), nil,
			inventory.FeedConfig{DefaultLimit: 100, MaxLimit: 500, Location: time.UTC})
		feed, err := feedUC.LiveFeed(context.Background(), actor, 500)
		require.NoError(t, err)

		var matches int
		for _, e := range feed.Entries {
			if e.ProductID == p {
				matches++
				assert.Equal(t, entity.StreamMovement, e.Source)
			}
		}
		assert.Equal(t, 1, matches)
	})

	// ── Producción ───────────────────────────────────────────────────────────

	newProduction := func(legacy bool) *production.UseCase {
		repos := postgres.Repos(pool)
		return production.NewUseCase(production.Deps{
			TxRunner:   runner,
			Ledger:     ledger,
			Orders:     repos.Orders,
			Products:   repos.Products,
			Warehouses: repos.Warehouses,
			Logger:     logger.Nop(),
		}, production.Config{LegacyAdjustments: legacy})
	}

	t.Run("completación atómica", func(t *testing.T) {
		pan := addProduct(t, pool, "PAN-1", "Pan", 0)
		harina := addProduct(t, pool, "HAR-1", "Harina", 2)
		levadura := addProduct(t, pool, "LEV-1", "Levadura", 1)
		w := addWarehouse(t, pool, "Planta", 0)
		bundleID := insertID(t, pool, `INSERT INTO bundles (company_id, sku, name) VALUES ($1, 'PAN-1', 'Pan') RETURNING id`, companyID)
		_, err := pool.Exec(context.Background(),
			`INSERT INTO bundle_items (bundle_id, product_id, quantity) VALUES ($1, $2, 2), ($1, $3, 1)`, bundleID, harina, levadura)
		require.NoError(t, err)
		setStock(t, pool, harina, w, 4)
		setStock(t, pool, levadura, w, 1)

		uc := newProduction(true)
		ctx := context.Background()
		order, err := uc.Create(ctx, actor, dto.CreateProductionOrderRequest{
			ProductID: dto.FlexInt(pan), WarehouseID: dto.FlexInt(w), QuantityGoal: 2,
		})
		require.NoError(t, err)
		require.Len(t, order.Items, 2)

		_, err = uc.PickIngredient(ctx, actor, dto.PickIngredientRequest{OrderID: dto.FlexInt(order.ID), ProductID: dto.FlexInt(harina), Quantity: 4})
		require.NoError(t, err)
		_, err = uc.PickIngredient(ctx, actor, dto.PickIngredientRequest{OrderID: dto.FlexInt(order.ID), ProductID: dto.FlexInt(levadura), Quantity: 2})
		require.NoError(t, err)

		_, err = uc.Complete(ctx, actor, order.ID)
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		assert.Equal(t, int64(4), stockOf(t, pool, harina, w))
		assert.Equal(t, int64(0), stockOf(t, pool, pan, w))

		setStock(t, pool, levadura, w, 2)
		done, err := uc.Complete(ctx, actor, order.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.ProductionStatusCompleted, done.Status)
		assert.Equal(t, int64(0), stockOf(t, pool, harina, w))
		assert.Equal(t, int64(0), stockOf(t, pool, levadura, w))
		assert.Equal(t, int64(2), stockOf(t, pool, pan, w))

		_, err = uc.Complete(ctx, actor, order.ID)
		assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)

		stored, err := uc.Get(ctx, actor, order.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), stored.QuantityProduced)
	})

	t.Run("alistamiento concurrente acumula sin perder incrementos", func(t *testing.T) {
		p := addProduct(t, pool, "PICK-1", "Mezcla", 0)
		ingrediente := addProduct(t, pool, "PICK-2", "Mantequilla", 0)
		w := addWarehouse(t, pool, "Alistamiento", 0)
		uc := newProduction(false)
		order, err := uc.Create(context.Background(), actor, dto.CreateProductionOrderRequest{
			ProductID: dto.FlexInt(p), WarehouseID: dto.FlexInt(w), QuantityGoal: 1,
		})
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := uc.PickIngredient(context.Background(), actor, dto.PickIngredientRequest{
					OrderID: dto.FlexInt(order.ID), ProductID: dto.FlexInt(ingrediente), Quantity: 3,
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		stored, err := uc.Get(context.Background(), actor, order.ID)
		require.NoError(t, err)
		require.Len(t, stored.Items, 1)
		assert.Equal(t, int64(30), stored.Items[0].QuantityPicked)
	})

	t.Run("lista de materiales por nombre ambiguo", func(t *testing.T) {
		repo := postgres.NewBundleRepository(pool)
		ctx := context.Background()
		_, err := pool.Exec(ctx, `INSERT INTO bundles (company_id, sku, name) VALUES ($1, 'X1', 'Torta'), ($1, 'X2', 'Torta')`, companyID)
		require.NoError(t, err)

		b, err := repo.FindForProduct(ctx, companyID, "NO-EXISTE", "Torta")
		require.NoError(t, err)
		assert.Nil(t, b)

		b, err = repo.FindForProduct(ctx, companyID, "X2", "Torta")
		require.NoError(t, err)
		require.NotNil(t, b)
		assert.Equal(t, "X2", b.SKU)
	})

	t.Run("listado de órdenes por alcance", func(t *testing.T) {
		repo := postgres.NewProductionOrderRepository(pool)
		all, err := repo.List(context.Background(), repository.TenantScope{AllCompanies: true}, "", 0, 0)
		require.NoError(t, err)
		own, err := repo.List(context.Background(), repository.CompanyScope(companyID), "", 0, 0)
		require.NoError(t, err)
		other, err := repo.List(context.Background(), repository.CompanyScope(99), "", 0, 0)
		require.NoError(t, err)

		assert.Equal(t, len(all), len(own))
		assert.Empty(t, other)
	})
}
