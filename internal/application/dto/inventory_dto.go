package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// CreateAdjustmentRequest body para POST /api/inventory/adjustments.
type CreateAdjustmentRequest struct {
	ProductID       FlexInt          `json:"productId"`
	WarehouseID     FlexInt          `json:"warehouseId"`
	Type            string           `json:"type"` // INCREASE | DECREASE
	Quantity        FlexInt          `json:"quantity"`
	Reason          string           `json:"reason"`
	Notes           string           `json:"notes"`
	ReferenceNumber string           `json:"referenceNumber,omitempty"`
	UnitCost        *decimal.Decimal `json:"unitCost,omitempty"`
}

// RegisterMovementRequest body para POST /api/inventory/movements.
type RegisterMovementRequest struct {
	ProductID    FlexInt          `json:"productId"`
	WarehouseID  FlexInt          `json:"warehouseId"`
	Type         string           `json:"type"`
	Quantity     FlexInt          `json:"quantity"`
	Reason       string           `json:"reason"`
	Notes        string           `json:"notes"`
	ToLocationID *int64           `json:"toLocationId,omitempty"`
	UnitCost     *decimal.Decimal `json:"unitCost,omitempty"` // sólo entradas
}

// ProductRef resumen de producto embebido en respuestas.
type ProductRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	SKU  string `json:"sku"`
}

// WarehouseRef resumen de bodega embebido en respuestas.
type WarehouseRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UserRef resumen de usuario embebido en respuestas.
type UserRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// AdjustmentResponse salida de un ajuste.
type AdjustmentResponse struct {
	ID              int64         `json:"id"`
	CompanyID       int64         `json:"companyId"`
	ProductID       int64         `json:"productId"`
	WarehouseID     int64         `json:"warehouseId"`
	Type            string        `json:"type"`
	Quantity        int64         `json:"quantity"`
	Reason          string        `json:"reason"`
	Notes           string        `json:"notes"`
	Status          string        `json:"status"`
	CreatedBy       int64         `json:"createdBy"`
	CreatedAt       time.Time     `json:"createdAt"`
	ReferenceNumber string        `json:"referenceNumber"`
	Product         *ProductRef   `json:"product,omitempty"`
	Warehouse       *WarehouseRef `json:"warehouse,omitempty"`
	User            *UserRef      `json:"user,omitempty"`
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID           int64         `json:"id"`
	CompanyID    int64         `json:"companyId"`
	ProductID    int64         `json:"productId"`
	WarehouseID  int64         `json:"warehouseId"`
	Type         string        `json:"type"`
	Quantity     int64         `json:"quantity"`
	Reason       string        `json:"reason"`
	Notes        string        `json:"notes"`
	ToLocationID *int64        `json:"toLocationId"`
	CreatedBy    int64         `json:"createdBy"`
	CreatedAt    time.Time     `json:"createdAt"`
	Product      *ProductRef   `json:"product,omitempty"`
	Warehouse    *WarehouseRef `json:"warehouse,omitempty"`
}

// StockResponse salida de un registro de stock.
type StockResponse struct {
	ID             int64      `json:"id"`
	ProductID      int64      `json:"productId"`
	WarehouseID    int64      `json:"warehouseId"`
	Quantity       int64      `json:"quantity"`
	Status         string     `json:"status"`
	LocationID     *int64     `json:"locationId"`
	BestBeforeDate *time.Time `json:"bestBeforeDate"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// FeedEntry entrada del feed en vivo. user es null en movimientos.
type FeedEntry struct {
	ID          string        `json:"id"`
	Source      string        `json:"source"`
	Type        string        `json:"type"`
	ProductID   int64         `json:"productId"`
	WarehouseID int64         `json:"warehouseId"`
	Quantity    int64         `json:"quantity"`
	Reason      string        `json:"reason"`
	Notes       string        `json:"notes"`
	CreatedAt   time.Time     `json:"createdAt"`
	User        *UserRef      `json:"user"`
	Product     *ProductRef   `json:"product,omitempty"`
	Warehouse   *WarehouseRef `json:"warehouse,omitempty"`
}

// FeedStats totales del día.
type FeedStats struct {
	TotalIn  int64 `json:"totalIn"`
	TotalOut int64 `json:"totalOut"`
}

// LiveFeedResponse respuesta de GET /api/inventory/live-feed.
type LiveFeedResponse struct {
	Success bool        `json:"success"`
	Data    []FeedEntry `json:"data"`
	Stats   FeedStats   `json:"stats"`
}

// NewLiveFeedResponse mapea el feed reconciliado a su forma JSON.
func NewLiveFeedResponse(feed *entity.Feed) LiveFeedResponse {
	out := LiveFeedResponse{
		Success: true,
		Data:    make([]FeedEntry, 0, len(feed.Entries)),
		Stats:   FeedStats{TotalIn: feed.Stats.TotalIn, TotalOut: feed.Stats.TotalOut},
	}
	for _, e := range feed.Entries {
		out.Data = append(out.Data, FeedEntry{
			ID:          e.ID,
			Source:      string(e.Source),
			Type:        e.Type,
			ProductID:   e.ProductID,
			WarehouseID: e.WarehouseID,
			Quantity:    e.Quantity,
			Reason:      e.Reason,
			Notes:       e.Notes,
			CreatedAt:   e.CreatedAt,
			User:        userRef(e.User),
			Product:     productRef(e.Product),
			Warehouse:   warehouseRef(e.Warehouse),
		})
	}
	return out
}

// NewAdjustmentResponse mapea un ajuste recién creado.
func NewAdjustmentResponse(a *entity.AdjustmentEvent) AdjustmentResponse {
	return AdjustmentResponse{
		ID:              a.ID,
		CompanyID:       a.CompanyID,
		ProductID:       a.ProductID,
		WarehouseID:     a.WarehouseID,
		Type:            a.Type,
		Quantity:        a.Quantity,
		Reason:          a.Reason,
		Notes:           a.Notes,
		Status:          a.Status,
		CreatedBy:       a.CreatedBy,
		CreatedAt:       a.CreatedAt,
		ReferenceNumber: a.ReferenceNumber,
	}
}

// NewAdjustmentViewResponse mapea un ajuste con referencias resueltas.
func NewAdjustmentViewResponse(v entity.AdjustmentView) AdjustmentResponse {
	out := NewAdjustmentResponse(&v.AdjustmentEvent)
	out.Product = productRef(v.Product)
	out.Warehouse = warehouseRef(v.Warehouse)
	out.User = userRef(v.User)
	return out
}

// NewMovementResponse mapea un movimiento.
func NewMovementResponse(v entity.MovementView) MovementResponse {
	return MovementResponse{
		ID:           v.ID,
		CompanyID:    v.CompanyID,
		ProductID:    v.ProductID,
		WarehouseID:  v.WarehouseID,
		Type:         v.Type,
		Quantity:     v.Quantity,
		Reason:       v.Reason,
		Notes:        v.Notes,
		ToLocationID: v.ToLocationID,
		CreatedBy:    v.CreatedBy,
		CreatedAt:    v.CreatedAt,
		Product:      productRef(v.Product),
		Warehouse:    warehouseRef(v.Warehouse),
	}
}

// NewStockResponse mapea un registro de stock.
func NewStockResponse(s *entity.StockRecord) StockResponse {
	return StockResponse{
		ID:             s.ID,
		ProductID:      s.ProductID,
		WarehouseID:    s.WarehouseID,
		Quantity:       s.Quantity,
		Status:         s.Status,
		LocationID:     s.LocationID,
		BestBeforeDate: s.BestBeforeDate,
		UpdatedAt:      s.UpdatedAt,
	}
}

func productRef(p *entity.ProductRef) *ProductRef {
	if p == nil {
		return nil
	}
	return &ProductRef{ID: p.ID, Name: p.Name, SKU: p.SKU}
}

func warehouseRef(w *entity.WarehouseRef) *WarehouseRef {
	if w == nil {
		return nil
	}
	return &WarehouseRef{ID: w.ID, Name: w.Name}
}

func userRef(u *entity.UserRef) *UserRef {
	if u == nil {
		return nil
	}
	return &UserRef{ID: u.ID, Name: u.Name}
}
