package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

const companyID int64 = 1

type fixture struct {
	store       *memory.Store
	ledger      *inventory.StockLedger
	actor       entity.Actor
	productID   int64
	warehouseID int64
}

// newFixture crea una empresa con un producto y una bodega de la capacidad dada (0 = sin límite).
func newFixture(t *testing.T, capacity int64) *fixture {
	t.Helper()
	store := memory.NewStore()
	productID := store.AddProduct(entity.Product{CompanyID: companyID, SKU: "SKU-1", Name: "Harina", Cost: decimal.NewFromInt(100)})
	warehouseID := store.AddWarehouse(entity.Warehouse{CompanyID: companyID, Name: "Central", CapacityLimit: capacity})
	store.AddUser(10, "Ana")
	return &fixture{
		store:       store,
		ledger:      inventory.NewStockLedger(inventory.NewEventRecorder(), nil),
		actor:       entity.Actor{UserID: 10, CompanyID: companyID, Role: entity.RoleInventoryManager},
		productID:   productID,
		warehouseID: warehouseID,
	}
}

func (f *fixture) adjustmentUseCase() *inventory.AdjustmentUseCase {
	return inventory.NewAdjustmentUseCase(f.store, f.ledger, f.store.Repos().Adjustments, logger.Nop())
}

func (f *fixture) movementUseCase() *inventory.MovementUseCase {
	return inventory.NewMovementUseCase(f.store, f.ledger, f.store.Repos().Movements)
}

func (f *fixture) feedUseCase() *inventory.FeedUseCase {
	repos := f.store.Repos()
	return inventory.NewFeedUseCase(repos.Adjustments, repos.Movements, nil, inventory.FeedConfig{DefaultLimit: 100, MaxLimit: 500})
}
