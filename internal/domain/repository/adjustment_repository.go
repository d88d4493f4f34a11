package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// EventFilter filtra listados de eventos de stock. Cero en ProductID/WarehouseID significa sin filtro.
type EventFilter struct {
	Scope       TenantScope
	ProductID   int64
	WarehouseID int64
	Type        string
	Limit       int
	Offset      int
}

// AdjustmentRepository define el puerto del flujo de ajustes (inmutable salvo borrado duro).
type AdjustmentRepository interface {
	Create(ctx context.Context, adj *entity.AdjustmentEvent) error
	GetByID(ctx context.Context, id int64) (*entity.AdjustmentEvent, error)
	Delete(ctx context.Context, id int64) error
	// List devuelve los ajustes más recientes primero, con producto, bodega y usuario resueltos.
	List(ctx context.Context, filter EventFilter) ([]entity.AdjustmentView, error)
	// SumQuantitySince suma las magnitudes de los tipos dados desde since (0 si no hay filas).
	SumQuantitySince(ctx context.Context, scope TenantScope, types []string, since time.Time) (int64, error)
}
