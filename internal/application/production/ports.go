package production

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// PickingLine una línea de la hoja de alistamiento.
type PickingLine struct {
	ProductID int64
	SKU       string
	Name      string
	Required  int64
	Picked    int64
}

// Pending unidades que faltan por alistar (0 si ya se alistó de más).
func (l PickingLine) Pending() int64 {
	if l.Picked >= l.Required {
		return 0
	}
	return l.Required - l.Picked
}

// PickingSheet datos de la hoja de alistamiento de una orden.
type PickingSheet struct {
	Order       *entity.ProductionOrder
	Product     *entity.Product
	Warehouse   *entity.Warehouse
	Lines       []PickingLine
	GeneratedAt time.Time
}

// PickingSheetGenerator genera la representación PDF de la hoja de alistamiento.
type PickingSheetGenerator interface {
	GeneratePickingSheet(ctx context.Context, sheet *PickingSheet) ([]byte, error)
}
