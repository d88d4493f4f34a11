package dto

import (
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// CreateProductionOrderRequest body para POST /api/production.
type CreateProductionOrderRequest struct {
	ProductID    FlexInt `json:"productId"`
	WarehouseID  FlexInt `json:"warehouseId"`
	QuantityGoal FlexInt `json:"quantityGoal"`
	Notes        string  `json:"notes"`
}

// PickIngredientRequest body para POST /api/production/pick.
type PickIngredientRequest struct {
	OrderID   FlexInt `json:"orderId"`
	ProductID FlexInt `json:"productId"`
	Quantity  FlexInt `json:"quantity"`
}

// ProductionOrderItemResponse ingrediente de una orden.
type ProductionOrderItemResponse struct {
	ID                int64     `json:"id"`
	ProductionOrderID int64     `json:"productionOrderId"`
	ProductID         int64     `json:"productId"`
	QuantityRequired  int64     `json:"quantityRequired"`
	QuantityPicked    int64     `json:"quantityPicked"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// ProductionOrderResponse salida de una orden de producción.
type ProductionOrderResponse struct {
	ID               int64                         `json:"id"`
	CompanyID        int64                         `json:"companyId"`
	ProductID        int64                         `json:"productId"`
	WarehouseID      int64                         `json:"warehouseId"`
	QuantityGoal     int64                         `json:"quantityGoal"`
	QuantityProduced int64                         `json:"quantityProduced"`
	Status           string                        `json:"status"`
	Notes            string                        `json:"notes"`
	CreatedAt        time.Time                     `json:"createdAt"`
	UpdatedAt        time.Time                     `json:"updatedAt"`
	Items            []ProductionOrderItemResponse `json:"items"`
}

// NewProductionOrderResponse mapea una orden con sus ítems.
func NewProductionOrderResponse(o *entity.ProductionOrder) ProductionOrderResponse {
	out := ProductionOrderResponse{
		ID:               o.ID,
		CompanyID:        o.CompanyID,
		ProductID:        o.ProductID,
		WarehouseID:      o.WarehouseID,
		QuantityGoal:     o.QuantityGoal,
		QuantityProduced: o.QuantityProduced,
		Status:           o.Status,
		Notes:            o.Notes,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
		Items:            make([]ProductionOrderItemResponse, 0, len(o.Items)),
	}
	for i := range o.Items {
		out.Items = append(out.Items, NewProductionOrderItemResponse(&o.Items[i]))
	}
	return out
}

// NewProductionOrderItemResponse mapea un ingrediente.
func NewProductionOrderItemResponse(it *entity.ProductionOrderItem) ProductionOrderItemResponse {
	return ProductionOrderItemResponse{
		ID:                it.ID,
		ProductionOrderID: it.ProductionOrderID,
		ProductID:         it.ProductID,
		QuantityRequired:  it.QuantityRequired,
		QuantityPicked:    it.QuantityPicked,
		CreatedAt:         it.CreatedAt,
		UpdatedAt:         it.UpdatedAt,
	}
}
