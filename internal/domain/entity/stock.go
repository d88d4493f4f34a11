package entity

import "time"

// Estados de un registro de stock.
const (
	StockStatusActive   = "ACTIVE"
	StockStatusInactive = "INACTIVE"
)

// StockRecord es la cantidad actual de un producto en una bodega (única por producto+bodega).
// Es la única fuente de verdad de "cuánto hay"; los eventos de ajuste/movimiento son auditoría.
type StockRecord struct {
	ID             int64
	ProductID      int64
	WarehouseID    int64
	Quantity       int64 // nunca negativa
	Status         string
	LocationID     *int64
	BestBeforeDate *time.Time
	UpdatedAt      time.Time
}
