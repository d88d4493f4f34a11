package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// MovementUseCase registra movimientos estructurados de forma transaccional
// (INBOUND, RECEIVE, RETURN, INCREASE suman; OUTBOUND, SHIPMENT, PICK, DECREASE restan)
// con bloqueo de fila (SELECT FOR UPDATE) y Commit/Rollback. Los movimientos no se editan ni se borran.
type MovementUseCase struct {
	txRunner  TxRunner
	ledger    *StockLedger
	movements repository.MovementRepository
}

// NewMovementUseCase construye el caso de uso.
func NewMovementUseCase(txRunner TxRunner, ledger *StockLedger, movements repository.MovementRepository) *MovementUseCase {
	return &MovementUseCase{txRunner: txRunner, ledger: ledger, movements: movements}
}

// Register valida el movimiento, aplica su signo al libro mayor y lo registra en el flujo Movement.
// UnitCost sólo se admite en entradas y recalcula el costo promedio ponderado del producto.
func (uc *MovementUseCase) Register(ctx context.Context, actor entity.Actor, in dto.RegisterMovementRequest) (*dto.MovementResponse, error) {
	productID, warehouseID, qty := in.ProductID.Int64(), in.WarehouseID.Int64(), in.Quantity.Int64()
	if productID <= 0 || warehouseID <= 0 {
		return nil, domain.ErrInvalidReference
	}
	if qty <= 0 {
		return nil, fmt.Errorf("%w: la cantidad debe ser un entero positivo", domain.ErrInvalidInput)
	}
	var delta int64
	switch {
	case entity.IsInboundType(in.Type):
		delta = qty
	case entity.IsOutboundType(in.Type):
		delta = -qty
	default:
		return nil, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, in.Type)
	}
	if in.UnitCost != nil && (delta < 0 || in.UnitCost.IsNegative()) {
		return nil, fmt.Errorf("%w: costo unitario sólo en entradas y no negativo", domain.ErrInvalidInput)
	}

	var created *entity.MovementEvent
	var result *AdjustResult
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos TxRepos) error {
		if err := ensureOwnership(ctx, repos, actor, productID, warehouseID); err != nil {
			return err
		}
		res, err := uc.ledger.Adjust(ctx, repos, AdjustInput{
			ProductID:    productID,
			WarehouseID:  warehouseID,
			Delta:        delta,
			Type:         in.Type,
			Reason:       in.Reason,
			Notes:        in.Notes,
			CreatedBy:    actor.UserID,
			ToLocationID: in.ToLocationID,
			UnitCost:     in.UnitCost,
			Streams:      []entity.EventStream{entity.StreamMovement},
		})
		if err != nil {
			return err
		}
		result = res
		created = res.Events[0].Movement
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.ledger.Committed(result)
	out := dto.NewMovementResponse(entity.MovementView{MovementEvent: *created})
	return &out, nil
}

// List lista movimientos visibles para el actor; movementType vacío = todos.
func (uc *MovementUseCase) List(ctx context.Context, actor entity.Actor, productID, warehouseID int64, movementType string, page dto.PageRequest) ([]dto.MovementResponse, error) {
	page.DefaultPage()
	views, err := uc.movements.List(ctx, repository.EventFilter{
		Scope:       scopeOf(actor),
		ProductID:   productID,
		WarehouseID: warehouseID,
		Type:        movementType,
		Limit:       page.Limit,
		Offset:      page.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(views))
	for _, v := range views {
		out = append(out, dto.NewMovementResponse(v))
	}
	return out, nil
}

// Get obtiene un movimiento visible para el actor.
func (uc *MovementUseCase) Get(ctx context.Context, actor entity.Actor, id int64) (*dto.MovementResponse, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidReference
	}
	v, err := uc.movements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil || !actor.Owns(v.CompanyID) {
		return nil, domain.ErrNotFound
	}
	out := dto.NewMovementResponse(*v)
	return &out, nil
}
