// Package usecase contiene el catálogo mínimo que alimenta el libro mayor: productos y bodegas.
package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ProductUseCase alta y consulta de productos. Cost y stock se manejan vía ajustes y movimientos.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create crea un producto en la empresa del actor. Cost inicia en 0.
func (uc *ProductUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	sku, name := strings.TrimSpace(in.SKU), strings.TrimSpace(in.Name)
	if sku == "" || name == "" {
		return nil, fmt.Errorf("%w: sku y name son requeridos", domain.ErrInvalidInput)
	}
	product := &entity.Product{CompanyID: actor.CompanyID, SKU: sku, Name: name, Cost: decimal.Zero}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	out := dto.NewProductResponse(product)
	return &out, nil
}

// GetByID obtiene un producto visible para el actor.
func (uc *ProductUseCase) GetByID(ctx context.Context, actor entity.Actor, id int64) (*dto.ProductResponse, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidReference
	}
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil || !actor.Owns(product.CompanyID) {
		return nil, domain.ErrProductNotFound
	}
	out := dto.NewProductResponse(product)
	return &out, nil
}

// List lista productos por empresa con paginación.
func (uc *ProductUseCase) List(ctx context.Context, actor entity.Actor, page dto.PageRequest) ([]dto.ProductResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, scopeOf(actor), page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, dto.NewProductResponse(p))
	}
	return items, nil
}

func scopeOf(actor entity.Actor) repository.TenantScope {
	if actor.CrossTenant() {
		return repository.TenantScope{AllCompanies: true}
	}
	return repository.CompanyScope(actor.CompanyID)
}
