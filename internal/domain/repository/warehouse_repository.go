package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// WarehouseRepository define el puerto de persistencia de bodegas (DIP).
type WarehouseRepository interface {
	Create(ctx context.Context, w *entity.Warehouse) error
	GetByID(ctx context.Context, id int64) (*entity.Warehouse, error)
	// GetForUpdate bloquea la fila de la bodega; serializa los incrementos que validan capacidad.
	GetForUpdate(ctx context.Context, id int64) (*entity.Warehouse, error)
	List(ctx context.Context, scope TenantScope, limit, offset int) ([]*entity.Warehouse, error)
}
