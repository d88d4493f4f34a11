package inventory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
)

// StockLedger es el único camino para cambiar la cantidad de un StockRecord.
// Cada cambio queda acompañado de al menos un evento en la misma transacción.
type StockLedger struct {
	recorder *EventRecorder
	metrics  Metrics
	clock    func() time.Time
}

// NewStockLedger construye el libro mayor. metrics puede ser nil.
func NewStockLedger(recorder *EventRecorder, metrics Metrics) *StockLedger {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &StockLedger{recorder: recorder, metrics: metrics, clock: time.Now}
}

// AdjustInput describe un cambio de stock con signo y la metadata de sus eventos.
type AdjustInput struct {
	ProductID   int64
	WarehouseID int64
	Delta       int64  // > 0 entrada, < 0 salida
	Type        string // tipo del evento; vacío = INCREASE/DECREASE según el signo
	Reason      string
	Notes       string
	CreatedBy   int64
	// ReferenceNumber sólo aplica al flujo de ajustes; vacío = autogenerado.
	ReferenceNumber string
	ToLocationID    *int64
	// UnitCost, en una entrada, recalcula el costo promedio ponderado del producto.
	UnitCost *decimal.Decimal
	// Streams flujos donde se registra el cambio (al menos uno).
	Streams []entity.EventStream
}

// AdjustResult es el registro resultante y los eventos escritos, en el orden de Streams.
type AdjustResult struct {
	Stock  *entity.StockRecord
	Events []*entity.RecordedEvent
	// Quantity magnitud del cambio aplicado.
	Quantity int64
}

// ValidateCapacity bloquea la bodega y decide si caben increase unidades más.
// Debe llamarse dentro de la transacción de la escritura que protege.
func (l *StockLedger) ValidateCapacity(ctx context.Context, repos TxRepos, warehouseID, increase int64) error {
	if warehouseID <= 0 {
		return domain.ErrInvalidReference
	}
	wh, err := repos.Warehouses.GetForUpdate(ctx, warehouseID)
	if err != nil {
		return fmt.Errorf("lock warehouse: %w", err)
	}
	if wh == nil {
		return domain.ErrWarehouseNotFound
	}
	if !wh.HasCapacityLimit() {
		return ledger.CheckCapacity(wh, 0, increase)
	}
	occupied, err := repos.Stock.SumByWarehouse(ctx, warehouseID)
	if err != nil {
		return fmt.Errorf("sum warehouse stock: %w", err)
	}
	return ledger.CheckCapacity(wh, occupied, increase)
}

// Adjust aplica Delta al registro (producto, bodega) y registra el cambio en cada flujo pedido.
// Falla con ErrProductNotFound, ErrWarehouseNotFound, ErrInsufficientStock o ErrCapacityExceeded
// sin dejar cambios propios; el llamador debe descartar la transacción ante cualquier error.
// Las métricas de unidades no se emiten aquí: el llamador llama Committed tras el commit.
func (l *StockLedger) Adjust(ctx context.Context, repos TxRepos, in AdjustInput) (*AdjustResult, error) {
	res, err := l.adjust(ctx, repos, in)
	if err != nil {
		l.metrics.AdjustRejected(rejectReason(err))
		return nil, err
	}
	return res, nil
}

// Committed publica las métricas de resultados cuya transacción ya confirmó.
func (l *StockLedger) Committed(results ...*AdjustResult) {
	for _, res := range results {
		if res == nil {
			continue
		}
		for _, ev := range res.Events {
			l.metrics.StockAdjusted(ev.Stream, eventType(ev), res.Quantity)
		}
	}
}

func (l *StockLedger) adjust(ctx context.Context, repos TxRepos, in AdjustInput) (*AdjustResult, error) {
	if in.ProductID <= 0 || in.WarehouseID <= 0 {
		return nil, domain.ErrInvalidReference
	}
	if in.Delta == 0 || in.Delta == math.MinInt64 || len(in.Streams) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.Type != "" {
		if (in.Delta > 0 && !entity.IsInboundType(in.Type)) || (in.Delta < 0 && !entity.IsOutboundType(in.Type)) {
			return nil, fmt.Errorf("%w: tipo %q no corresponde al signo de la cantidad", domain.ErrInvalidInput, in.Type)
		}
	}

	product, err := repos.Products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}

	// Bodega antes que stock: mismo orden de bloqueo en todos los caminos.
	if in.Delta > 0 {
		if err := l.ValidateCapacity(ctx, repos, in.WarehouseID, in.Delta); err != nil {
			return nil, err
		}
	} else {
		wh, err := repos.Warehouses.GetByID(ctx, in.WarehouseID)
		if err != nil {
			return nil, fmt.Errorf("get warehouse: %w", err)
		}
		if wh == nil {
			return nil, domain.ErrWarehouseNotFound
		}
	}

	stock, err := repos.Stock.GetForUpdate(ctx, in.ProductID, in.WarehouseID)
	if err != nil {
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	if stock == nil {
		if in.Delta < 0 {
			return nil, fmt.Errorf("%w: sin registro de stock para el producto %d", domain.ErrInsufficientStock, in.ProductID)
		}
		if err := repos.Stock.CreateEmpty(ctx, in.ProductID, in.WarehouseID); err != nil {
			return nil, fmt.Errorf("create stock: %w", err)
		}
		if stock, err = repos.Stock.GetForUpdate(ctx, in.ProductID, in.WarehouseID); err != nil {
			return nil, fmt.Errorf("get stock for update: %w", err)
		}
		if stock == nil {
			return nil, fmt.Errorf("stock %d/%d no visible tras crearlo", in.ProductID, in.WarehouseID)
		}
	}

	next, err := ledger.ApplyDelta(stock.Quantity, in.Delta)
	if err != nil {
		return nil, err
	}

	if in.Delta > 0 && in.UnitCost != nil {
		newCost := ledger.AverageCost(stock.Quantity, product.Cost, in.Delta, *in.UnitCost)
		if err := repos.Products.UpdateCost(ctx, product.ID, newCost); err != nil {
			return nil, fmt.Errorf("update cost: %w", err)
		}
	}

	if err := repos.Stock.UpdateQuantity(ctx, stock.ID, next); err != nil {
		return nil, fmt.Errorf("update stock: %w", err)
	}
	stock.Quantity = next
	now := l.clock()
	stock.UpdatedAt = now

	fields := entity.EventFields{
		CompanyID:       product.CompanyID,
		ProductID:       in.ProductID,
		WarehouseID:     in.WarehouseID,
		Type:            in.Type,
		Quantity:        abs(in.Delta),
		Reason:          in.Reason,
		Notes:           in.Notes,
		CreatedBy:       in.CreatedBy,
		ReferenceNumber: in.ReferenceNumber,
		ToLocationID:    in.ToLocationID,
		CreatedAt:       now,
	}
	if fields.ToLocationID == nil {
		fields.ToLocationID = stock.LocationID
	}
	if fields.Type == "" {
		fields.Type = entity.EventTypeIncrease
		if in.Delta < 0 {
			fields.Type = entity.EventTypeDecrease
		}
	}

	events := make([]*entity.RecordedEvent, 0, len(in.Streams))
	for _, stream := range in.Streams {
		f := fields
		if stream == entity.StreamAdjustment {
			// El flujo de ajustes sólo conoce INCREASE/DECREASE.
			f.Type = entity.EventTypeIncrease
			if in.Delta < 0 {
				f.Type = entity.EventTypeDecrease
			}
		}
		ev, err := l.recorder.Record(ctx, repos, stream, f)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	return &AdjustResult{Stock: stock, Events: events, Quantity: abs(in.Delta)}, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrWarehouseNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidReference):
		return "invalid_input"
	}
	return "store_error"
}

func eventType(ev *entity.RecordedEvent) string {
	if ev.Adjustment != nil {
		return ev.Adjustment.Type
	}
	if ev.Movement != nil {
		return ev.Movement.Type
	}
	return ""
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
