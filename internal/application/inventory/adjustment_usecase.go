package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// AdjustmentUseCase ajustes manuales de stock (flujo Adjustment).
type AdjustmentUseCase struct {
	txRunner    TxRunner
	ledger      *StockLedger
	adjustments repository.AdjustmentRepository
	log         *logger.Logger
}

// NewAdjustmentUseCase construye el caso de uso. adjustments se usa para lecturas fuera de transacción.
func NewAdjustmentUseCase(txRunner TxRunner, ledger *StockLedger, adjustments repository.AdjustmentRepository, log *logger.Logger) *AdjustmentUseCase {
	return &AdjustmentUseCase{txRunner: txRunner, ledger: ledger, adjustments: adjustments, log: log}
}

// Create aplica el ajuste al libro mayor y lo registra a nombre del actor, todo en una transacción.
func (uc *AdjustmentUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateAdjustmentRequest) (*dto.AdjustmentResponse, error) {
	productID, warehouseID, qty := in.ProductID.Int64(), in.WarehouseID.Int64(), in.Quantity.Int64()
	if productID <= 0 || warehouseID <= 0 {
		return nil, domain.ErrInvalidReference
	}
	if qty <= 0 {
		return nil, fmt.Errorf("%w: la cantidad debe ser un entero positivo", domain.ErrInvalidInput)
	}
	var delta int64
	switch in.Type {
	case entity.EventTypeIncrease:
		delta = qty
	case entity.EventTypeDecrease:
		delta = -qty
	default:
		return nil, fmt.Errorf("%w: tipo de ajuste %q", domain.ErrInvalidInput, in.Type)
	}
	if in.UnitCost != nil && (delta < 0 || in.UnitCost.IsNegative()) {
		return nil, fmt.Errorf("%w: costo unitario sólo en entradas y no negativo", domain.ErrInvalidInput)
	}

	var created *entity.AdjustmentEvent
	var result *AdjustResult
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos TxRepos) error {
		if err := ensureOwnership(ctx, repos, actor, productID, warehouseID); err != nil {
			return err
		}
		res, err := uc.ledger.Adjust(ctx, repos, AdjustInput{
			ProductID:       productID,
			WarehouseID:     warehouseID,
			Delta:           delta,
			Reason:          in.Reason,
			Notes:           in.Notes,
			CreatedBy:       actor.UserID,
			ReferenceNumber: in.ReferenceNumber,
			UnitCost:        in.UnitCost,
			Streams:         []entity.EventStream{entity.StreamAdjustment},
		})
		if err != nil {
			return err
		}
		result = res
		created = res.Events[0].Adjustment
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.ledger.Committed(result)
	out := dto.NewAdjustmentResponse(created)
	return &out, nil
}

// List lista los ajustes visibles para el actor, más recientes primero.
func (uc *AdjustmentUseCase) List(ctx context.Context, actor entity.Actor, productID, warehouseID int64, page dto.PageRequest) ([]dto.AdjustmentResponse, error) {
	page.DefaultPage()
	views, err := uc.adjustments.List(ctx, repository.EventFilter{
		Scope:       scopeOf(actor),
		ProductID:   productID,
		WarehouseID: warehouseID,
		Limit:       page.Limit,
		Offset:      page.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.AdjustmentResponse, 0, len(views))
	for _, v := range views {
		out = append(out, dto.NewAdjustmentViewResponse(v))
	}
	return out, nil
}

// Delete borra el ajuste. No revierte el stock que el ajuste cambió.
func (uc *AdjustmentUseCase) Delete(ctx context.Context, actor entity.Actor, id int64) error {
	if id <= 0 {
		return domain.ErrInvalidReference
	}
	adj, err := uc.adjustments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if adj == nil || !actor.Owns(adj.CompanyID) {
		return domain.ErrNotFound
	}
	if err := uc.adjustments.Delete(ctx, id); err != nil {
		return err
	}
	uc.log.Warn().
		Int64("adjustment_id", id).
		Int64("product_id", adj.ProductID).
		Int64("warehouse_id", adj.WarehouseID).
		Str("type", adj.Type).
		Int64("quantity", adj.Quantity).
		Int64("deleted_by", actor.UserID).
		Msg("ajuste eliminado; el stock no se revierte")
	return nil
}

// ensureOwnership valida que producto y bodega existan, pertenezcan al tenant del actor y a la
// misma empresa entre sí. Un recurso de otra empresa se reporta como inexistente.
func ensureOwnership(ctx context.Context, repos TxRepos, actor entity.Actor, productID, warehouseID int64) error {
	product, err := repos.Products.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}
	if product == nil || !actor.Owns(product.CompanyID) {
		return domain.ErrProductNotFound
	}
	wh, err := repos.Warehouses.GetByID(ctx, warehouseID)
	if err != nil {
		return fmt.Errorf("get warehouse: %w", err)
	}
	if wh == nil || !actor.Owns(wh.CompanyID) || wh.CompanyID != product.CompanyID {
		return domain.ErrWarehouseNotFound
	}
	return nil
}

func scopeOf(actor entity.Actor) repository.TenantScope {
	if actor.CrossTenant() {
		return repository.TenantScope{AllCompanies: true}
	}
	return repository.CompanyScope(actor.CompanyID)
}
