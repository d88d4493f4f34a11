package entity

import "time"

// Estados de una orden de producción.
const (
	ProductionStatusPending    = "PENDING"
	ProductionStatusInProgress = "IN_PROGRESS"
	ProductionStatusCompleted  = "COMPLETED"
	ProductionStatusCancelled  = "CANCELLED"
)

// ProductionOrder pide consumir ingredientes y producir un producto terminado en una cantidad dada.
// Es dueña de sus ítems (se borran con la orden).
type ProductionOrder struct {
	ID               int64
	CompanyID        int64
	ProductID        int64 // producto terminado
	WarehouseID      int64 // donde se produce
	QuantityGoal     int64
	QuantityProduced int64
	Status           string
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Items            []ProductionOrderItem
}

// ProductionOrderItem es un ingrediente de la orden.
// QuantityPicked acumula los alistamientos y no está limitado por QuantityRequired.
type ProductionOrderItem struct {
	ID                int64
	ProductionOrderID int64
	ProductID         int64
	QuantityRequired  int64
	QuantityPicked    int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsTerminal indica si la orden ya no admite cambios.
func (o *ProductionOrder) IsTerminal() bool {
	return o.Status == ProductionStatusCompleted || o.Status == ProductionStatusCancelled
}

// ValidProductionStatus indica si s es un estado conocido.
func ValidProductionStatus(s string) bool {
	switch s {
	case ProductionStatusPending, ProductionStatusInProgress, ProductionStatusCompleted, ProductionStatusCancelled:
		return true
	}
	return false
}
