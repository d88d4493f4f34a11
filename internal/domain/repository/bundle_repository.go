package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// BundleRepository resuelve la lista de materiales de un producto terminado.
type BundleRepository interface {
	// FindForProduct busca por SKU exacto y, si no hay, por nombre exacto dentro de la empresa.
	// Devuelve nil, nil si no hay coincidencia o si el nombre coincide con más de un bundle.
	FindForProduct(ctx context.Context, companyID int64, sku, name string) (*entity.Bundle, error)
}
