package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// StockQueryUseCase lectura del libro mayor por bodega.
type StockQueryUseCase struct {
	stock      repository.StockRepository
	warehouses repository.WarehouseRepository
}

// NewStockQueryUseCase construye el caso de uso.
func NewStockQueryUseCase(stock repository.StockRepository, warehouses repository.WarehouseRepository) *StockQueryUseCase {
	return &StockQueryUseCase{stock: stock, warehouses: warehouses}
}

// ListByWarehouse devuelve los registros de stock de la bodega, ordenados por producto.
func (uc *StockQueryUseCase) ListByWarehouse(ctx context.Context, actor entity.Actor, warehouseID int64) ([]dto.StockResponse, error) {
	if warehouseID <= 0 {
		return nil, domain.ErrInvalidReference
	}
	wh, err := uc.warehouses.GetByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil || !actor.Owns(wh.CompanyID) {
		return nil, domain.ErrWarehouseNotFound
	}
	records, err := uc.stock.ListByWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockResponse, 0, len(records))
	for _, r := range records {
		out = append(out, dto.NewStockResponse(r))
	}
	return out, nil
}
