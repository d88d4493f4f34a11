package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ProductionOrderRepository define el puerto de persistencia de órdenes de producción y sus ítems.
type ProductionOrderRepository interface {
	// Create persiste la orden y sus ítems; asigna los IDs.
	Create(ctx context.Context, order *entity.ProductionOrder) error
	// GetByID obtiene la orden con sus ítems. Devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id int64) (*entity.ProductionOrder, error)
	// GetForUpdate igual que GetByID pero bloquea la fila de la orden.
	GetForUpdate(ctx context.Context, id int64) (*entity.ProductionOrder, error)
	// List ordena por fecha de creación descendente; status vacío = todos.
	List(ctx context.Context, scope TenantScope, status string, limit, offset int) ([]*entity.ProductionOrder, error)
	// AddPicked suma quantity al ítem (orderID, productID) en una sola escritura; si no existe lo crea
	// con QuantityRequired = 0.
	AddPicked(ctx context.Context, orderID, productID, quantity int64) (*entity.ProductionOrderItem, error)
	UpdateStatus(ctx context.Context, id int64, status string, quantityProduced int64) error
}
