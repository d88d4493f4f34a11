package entity

import "time"

// Warehouse representa una bodega donde se almacena inventario (multi-bodega).
// CapacityLimit es la cantidad total máxima que puede contener; <= 0 significa sin límite.
type Warehouse struct {
	ID            int64
	CompanyID     int64
	Name          string
	Address       string
	CapacityLimit int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasCapacityLimit indica si la bodega tiene un límite de capacidad configurado.
func (w *Warehouse) HasCapacityLimit() bool {
	return w.CapacityLimit > 0
}
