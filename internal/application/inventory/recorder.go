package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ReferencePrefix prefijo de los números de referencia autogenerados para ajustes.
const ReferencePrefix = "ADJ-"

// EventRecorder agrega un registro inmutable al flujo elegido por el llamador.
// No valida reglas de negocio (ya las validó el libro mayor), sólo la presencia de los campos.
type EventRecorder struct {
	clock func() time.Time
}

// NewEventRecorder construye el recorder con el reloj del sistema.
func NewEventRecorder() *EventRecorder {
	return &EventRecorder{clock: time.Now}
}

// Record persiste un evento en stream usando los repositorios de la transacción en curso.
func (r *EventRecorder) Record(ctx context.Context, repos TxRepos, stream entity.EventStream, f entity.EventFields) (*entity.RecordedEvent, error) {
	if f.ProductID <= 0 || f.WarehouseID <= 0 || f.Quantity <= 0 || f.Type == "" {
		return nil, fmt.Errorf("%w: evento sin producto, bodega, tipo o cantidad", domain.ErrInvalidInput)
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = r.clock()
	}

	switch stream {
	case entity.StreamAdjustment:
		if f.Type != entity.EventTypeIncrease && f.Type != entity.EventTypeDecrease {
			return nil, fmt.Errorf("%w: tipo de ajuste %q", domain.ErrInvalidInput, f.Type)
		}
		ref := f.ReferenceNumber
		if ref == "" {
			ref = ReferencePrefix + uuid.New().String()
		}
		adj := &entity.AdjustmentEvent{
			CompanyID:       f.CompanyID,
			ProductID:       f.ProductID,
			WarehouseID:     f.WarehouseID,
			Type:            f.Type,
			Quantity:        f.Quantity,
			Reason:          f.Reason,
			Notes:           f.Notes,
			Status:          entity.AdjustmentStatusCompleted,
			CreatedBy:       f.CreatedBy,
			CreatedAt:       f.CreatedAt,
			ReferenceNumber: ref,
		}
		if err := repos.Adjustments.Create(ctx, adj); err != nil {
			return nil, fmt.Errorf("record adjustment: %w", err)
		}
		return &entity.RecordedEvent{Stream: stream, Adjustment: adj}, nil

	case entity.StreamMovement:
		if !entity.IsInboundType(f.Type) && !entity.IsOutboundType(f.Type) {
			return nil, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, f.Type)
		}
		mov := &entity.MovementEvent{
			CompanyID:    f.CompanyID,
			ProductID:    f.ProductID,
			WarehouseID:  f.WarehouseID,
			Type:         f.Type,
			Quantity:     f.Quantity,
			Reason:       f.Reason,
			Notes:        f.Notes,
			ToLocationID: f.ToLocationID,
			CreatedBy:    f.CreatedBy,
			CreatedAt:    f.CreatedAt,
		}
		if err := repos.Movements.Create(ctx, mov); err != nil {
			return nil, fmt.Errorf("record movement: %w", err)
		}
		return &entity.RecordedEvent{Stream: stream, Movement: mov}, nil
	}
	return nil, fmt.Errorf("%w: flujo %q", domain.ErrInvalidInput, stream)
}
