package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockRepository define el puerto del libro mayor de stock por producto+bodega.
// Los métodos de escritura deben usarse dentro de una transacción (TxRunner).
type StockRepository interface {
	// GetForUpdate obtiene el registro y bloquea la fila (SELECT FOR UPDATE). Devuelve nil, nil si no existe.
	GetForUpdate(ctx context.Context, productID, warehouseID int64) (*entity.StockRecord, error)
	// CreateEmpty crea el registro con cantidad 0 si no existe (no falla si ya existe).
	CreateEmpty(ctx context.Context, productID, warehouseID int64) error
	// UpdateQuantity fija la cantidad del registro ya bloqueado.
	UpdateQuantity(ctx context.Context, id, quantity int64) error
	// SumByWarehouse suma las cantidades de todos los registros de la bodega.
	SumByWarehouse(ctx context.Context, warehouseID int64) (int64, error)
	ListByWarehouse(ctx context.Context, warehouseID int64) ([]*entity.StockRecord, error)
}
