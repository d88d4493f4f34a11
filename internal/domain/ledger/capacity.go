package ledger

import (
	"fmt"
	"math"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// CheckCapacity decide si agregar increase unidades a una bodega que ya ocupa occupied
// excede su límite. Función pura: no lee ni escribe estado.
// Un límite <= 0 significa bodega sin límite.
func CheckCapacity(wh *entity.Warehouse, occupied, increase int64) error {
	if increase < 0 {
		return domain.ErrInvalidInput
	}
	if !wh.HasCapacityLimit() {
		return nil
	}
	if increase > wh.CapacityLimit-occupied {
		return fmt.Errorf("%w: bodega %q, ocupado %d + entrada %d > límite %d",
			domain.ErrCapacityExceeded, wh.Name, occupied, increase, wh.CapacityLimit)
	}
	return nil
}

// ApplyDelta calcula la nueva cantidad de un registro de stock, o ErrInsufficientStock si
// quedaría negativa. Una entrada que no cabe en int64 es ErrInvalidInput.
func ApplyDelta(current, delta int64) (int64, error) {
	if delta > 0 && current > math.MaxInt64-delta {
		return current, fmt.Errorf("%w: cantidad %d + %d fuera de rango", domain.ErrInvalidInput, current, delta)
	}
	next := current + delta
	if next < 0 {
		return current, fmt.Errorf("%w: disponible %d, solicitado %d", domain.ErrInsufficientStock, current, -delta)
	}
	return next, nil
}
