package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	// Create inserta el producto y asigna ID y fechas. SKU repetido en la empresa: domain.ErrDuplicate.
	Create(ctx context.Context, p *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	UpdateCost(ctx context.Context, productID int64, cost decimal.Decimal) error
	List(ctx context.Context, scope TenantScope, limit, offset int) ([]*entity.Product, error)
}
