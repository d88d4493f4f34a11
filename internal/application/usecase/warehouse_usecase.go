package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// WarehouseUseCase alta y consulta de bodegas.
type WarehouseUseCase struct {
	repo repository.WarehouseRepository
}

// NewWarehouseUseCase construye el caso de uso.
func NewWarehouseUseCase(repo repository.WarehouseRepository) *WarehouseUseCase {
	return &WarehouseUseCase{repo: repo}
}

// Create crea una bodega en la empresa del actor. CapacityLimit 0 = sin límite.
func (uc *WarehouseUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name es requerido", domain.ErrInvalidInput)
	}
	if in.CapacityLimit < 0 {
		return nil, fmt.Errorf("%w: capacityLimit no puede ser negativo", domain.ErrInvalidInput)
	}
	warehouse := &entity.Warehouse{
		CompanyID:     actor.CompanyID,
		Name:          name,
		Address:       strings.TrimSpace(in.Address),
		CapacityLimit: in.CapacityLimit.Int64(),
	}
	if err := uc.repo.Create(ctx, warehouse); err != nil {
		return nil, err
	}
	out := dto.NewWarehouseResponse(warehouse)
	return &out, nil
}

// GetByID obtiene una bodega visible para el actor.
func (uc *WarehouseUseCase) GetByID(ctx context.Context, actor entity.Actor, id int64) (*dto.WarehouseResponse, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidReference
	}
	warehouse, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil || !actor.Owns(warehouse.CompanyID) {
		return nil, domain.ErrWarehouseNotFound
	}
	out := dto.NewWarehouseResponse(warehouse)
	return &out, nil
}

// List lista bodegas por empresa con paginación.
func (uc *WarehouseUseCase) List(ctx context.Context, actor entity.Actor, page dto.PageRequest) ([]dto.WarehouseResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, scopeOf(actor), page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.WarehouseResponse, 0, len(list))
	for _, w := range list {
		items = append(items, dto.NewWarehouseResponse(w))
	}
	return items, nil
}
