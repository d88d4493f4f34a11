package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// CreateProductRequest body para POST /api/products. El costo lo calculan las entradas.
type CreateProductRequest struct {
	SKU  string `json:"sku"`
	Name string `json:"name"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID        int64           `json:"id"`
	CompanyID int64           `json:"companyId"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Cost      decimal.Decimal `json:"cost"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// CreateWarehouseRequest body para POST /api/warehouses. capacityLimit 0 = sin límite.
type CreateWarehouseRequest struct {
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	CapacityLimit FlexInt `json:"capacityLimit"`
}

// WarehouseResponse salida de una bodega.
type WarehouseResponse struct {
	ID            int64     `json:"id"`
	CompanyID     int64     `json:"companyId"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	CapacityLimit int64     `json:"capacityLimit"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NewProductResponse mapea un producto.
func NewProductResponse(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		CompanyID: p.CompanyID,
		SKU:       p.SKU,
		Name:      p.Name,
		Cost:      p.Cost,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// NewWarehouseResponse mapea una bodega.
func NewWarehouseResponse(w *entity.Warehouse) WarehouseResponse {
	return WarehouseResponse{
		ID:            w.ID,
		CompanyID:     w.CompanyID,
		Name:          w.Name,
		Address:       w.Address,
		CapacityLimit: w.CapacityLimit,
		CreatedAt:     w.CreatedAt,
		UpdatedAt:     w.UpdatedAt,
	}
}
