package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRepos agrupa los repositorios atados a una misma transacción.
type TxRepos struct {
	Stock       repository.StockRepository
	Warehouses  repository.WarehouseRepository
	Products    repository.ProductRepository
	Adjustments repository.AdjustmentRepository
	Movements   repository.MovementRepository
	Orders      repository.ProductionOrderRepository
	Bundles     repository.BundleRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error (o el contexto vence) se hace Rollback completo; si no, Commit.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos TxRepos) error) error
}

// Metrics recibe los eventos observables del libro mayor.
type Metrics interface {
	StockAdjusted(stream entity.EventStream, eventType string, quantity int64)
	AdjustRejected(reason string)
	ProductionCompleted(orderID int64, ingredients int)
	FeedServed(entries int, elapsed time.Duration)
}

// NopMetrics descarta todas las métricas.
type NopMetrics struct{}

func (NopMetrics) StockAdjusted(entity.EventStream, string, int64) {}
func (NopMetrics) AdjustRejected(string) {}
func (NopMetrics) ProductionCompleted(int64, int) {}
func (NopMetrics) FeedServed(int, time.Duration) {}
