package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del catálogo (multi-bodega).
// Cost es promedio ponderado calculado desde entradas; el stock se maneja por bodega en StockRecord.
type Product struct {
	ID        int64
	CompanyID int64
	SKU       string // código único por empresa
	Name      string
	Cost      decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}
