// Package production contiene el ciclo de vida de las órdenes de producción: expansión de la
// lista de materiales, alistamiento de ingredientes y completación atómica contra el libro mayor.
package production

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Motivos con los que la completación registra sus eventos.
const (
	ConsumedReasonFormat = "Consumed for Production Order #%d"
	ProducedReasonFormat = "Produced from Production Order #%d"
)

// Config opciones del motor de producción.
type Config struct {
	// LegacyAdjustments registra cada paso de la completación también en el flujo de ajustes.
	LegacyAdjustments bool
}

// Deps dependencias de lectura fuera de transacción y puertos de salida.
type Deps struct {
	TxRunner   inventory.TxRunner
	Ledger     *inventory.StockLedger
	Orders     repository.ProductionOrderRepository
	Products   repository.ProductRepository
	Warehouses repository.WarehouseRepository
	Sheets     PickingSheetGenerator
	Metrics    inventory.Metrics
	Logger     *logger.Logger
}

// UseCase casos de uso de órdenes de producción.
type UseCase struct {
	txRunner   inventory.TxRunner
	ledger     *inventory.StockLedger
	orders     repository.ProductionOrderRepository
	products   repository.ProductRepository
	warehouses repository.WarehouseRepository
	sheets     PickingSheetGenerator
	metrics    inventory.Metrics
	log        *logger.Logger
	cfg        Config
	clock      func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(deps Deps, cfg Config) *UseCase {
	metrics := deps.Metrics
	if metrics == nil {
		metrics = inventory.NopMetrics{}
	}
	return &UseCase{
		txRunner:   deps.TxRunner,
		ledger:     deps.Ledger,
		orders:     deps.Orders,
		products:   deps.Products,
		warehouses: deps.Warehouses,
		sheets:     deps.Sheets,
		metrics:    metrics,
		log:        deps.Logger,
		cfg:        cfg,
		clock:      time.Now,
	}
}

// List lista las órdenes visibles para el actor, más recientes primero. status vacío = todas.
func (uc *UseCase) List(ctx context.Context, actor entity.Actor, status string, page dto.PageRequest) ([]*entity.ProductionOrder, error) {
	if status != "" && !entity.ValidProductionStatus(status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, status)
	}
	page.DefaultPage()
	scope := repository.CompanyScope(actor.CompanyID)
	if actor.CrossTenant() {
		scope = repository.TenantScope{AllCompanies: true}
	}
	return uc.orders.List(ctx, scope, status, page.Limit, page.Offset)
}

// Get obtiene una orden con sus ítems.
func (uc *UseCase) Get(ctx context.Context, actor entity.Actor, id int64) (*entity.ProductionOrder, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidReference
	}
	order, err := uc.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil || !actor.Owns(order.CompanyID) {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

// Create crea la orden en PENDING y, si el producto tiene lista de materiales (por SKU o nombre),
// un ítem por componente con QuantityRequired = cantidad del componente × QuantityGoal.
func (uc *UseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateProductionOrderRequest) (*entity.ProductionOrder, error) {
	productID, warehouseID, goal := in.ProductID.Int64(), in.WarehouseID.Int64(), in.QuantityGoal.Int64()
	if productID <= 0 || warehouseID <= 0 {
		return nil, domain.ErrInvalidReference
	}
	if goal <= 0 {
		return nil, fmt.Errorf("%w: la cantidad a producir debe ser un entero positivo", domain.ErrInvalidInput)
	}

	var order *entity.ProductionOrder
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos inventory.TxRepos) error {
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
		if wh == nil || wh.CompanyID != product.CompanyID {
			return domain.ErrWarehouseNotFound
		}

		order = &entity.ProductionOrder{
			CompanyID:    product.CompanyID,
			ProductID:    productID,
			WarehouseID:  warehouseID,
			QuantityGoal: goal,
			Status:       entity.ProductionStatusPending,
			Notes:        in.Notes,
			CreatedAt:    uc.clock(),
		}

		bundle, err := repos.Bundles.FindForProduct(ctx, product.CompanyID, product.SKU, product.Name)
		if err != nil {
			return fmt.Errorf("find bundle: %w", err)
		}
		if bundle != nil {
			order.Items = expandBundle(bundle, goal)
		}
		return repos.Orders.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Int64("order_id", order.ID).
		Int64("product_id", productID).
		Int64("quantity_goal", goal).
		Int("items", len(order.Items)).
		Msg("orden de producción creada")
	return order, nil
}

// expandBundle genera un ítem por componente; un componente repetido en la lista de materiales
// se suma en un solo ítem, en el orden de su primera aparición.
func expandBundle(b *entity.Bundle, goal int64) []entity.ProductionOrderItem {
	items := make([]entity.ProductionOrderItem, 0, len(b.Items))
	at := make(map[int64]int, len(b.Items))
	for _, bi := range b.Items {
		if i, ok := at[bi.ProductID]; ok {
			items[i].QuantityRequired += bi.Quantity * goal
			continue
		}
		at[bi.ProductID] = len(items)
		items = append(items, entity.ProductionOrderItem{
			ProductID:        bi.ProductID,
			QuantityRequired: bi.Quantity * goal,
		})
	}
	return items
}

// PickIngredient suma quantity al ítem (orden, producto); si no existe lo crea con QuantityRequired = 0.
// No toca el libro mayor.
func (uc *UseCase) PickIngredient(ctx context.Context, actor entity.Actor, in dto.PickIngredientRequest) (*entity.ProductionOrderItem, error) {
	orderID, productID, qty := in.OrderID.Int64(), in.ProductID.Int64(), in.Quantity.Int64()
	if orderID <= 0 || productID <= 0 {
		return nil, domain.ErrInvalidReference
	}
	if qty < 0 {
		return nil, fmt.Errorf("%w: la cantidad alistada no puede ser negativa", domain.ErrInvalidInput)
	}

	var item *entity.ProductionOrderItem
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos inventory.TxRepos) error {
		// El bloqueo de la orden serializa el alistamiento con la completación.
		order, err := repos.Orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return fmt.Errorf("get order: %w", err)
		}
		if order == nil || !actor.Owns(order.CompanyID) {
			return domain.ErrOrderNotFound
		}
		if order.IsTerminal() {
			return fmt.Errorf("%w: estado %s", domain.ErrOrderClosed, order.Status)
		}
		product, err := repos.Products.GetByID(ctx, productID)
		if err != nil {
			return fmt.Errorf("get product: %w", err)
		}
		if product == nil || product.CompanyID != order.CompanyID {
			return domain.ErrProductNotFound
		}
		item, err = repos.Orders.AddPicked(ctx, orderID, productID, qty)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Complete consume los ingredientes alistados y produce QuantityGoal del producto terminado en una
// sola transacción. Cualquier falla (stock insuficiente, capacidad) deja todo como estaba.
func (uc *UseCase) Complete(ctx context.Context, actor entity.Actor, id int64) (*entity.ProductionOrder, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidReference
	}
	streams := []entity.EventStream{entity.StreamMovement}
	if uc.cfg.LegacyAdjustments {
		streams = []entity.EventStream{entity.StreamAdjustment, entity.StreamMovement}
	}

	var order *entity.ProductionOrder
	var consumed int
	var applied []*inventory.AdjustResult
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos inventory.TxRepos) error {
		consumed, applied = 0, nil
		var err error
		order, err = repos.Orders.GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("get order: %w", err)
		}
		if order == nil || !actor.Owns(order.CompanyID) {
			return domain.ErrOrderNotFound
		}
		switch order.Status {
		case entity.ProductionStatusCompleted:
			return domain.ErrAlreadyCompleted
		case entity.ProductionStatusCancelled:
			return fmt.Errorf("%w: estado %s", domain.ErrOrderNotCompletable, order.Status)
		}

		// Orden de bloqueo: orden → bodega → ingredientes por producto ascendente.
		wh, err := repos.Warehouses.GetForUpdate(ctx, order.WarehouseID)
		if err != nil {
			return fmt.Errorf("lock warehouse: %w", err)
		}
		if wh == nil {
			return domain.ErrWarehouseNotFound
		}

		items := append([]entity.ProductionOrderItem(nil), order.Items...)
		sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

		// 1. Consumo de ingredientes
		totalCost := decimal.Zero
		for _, it := range items {
			if it.QuantityPicked <= 0 {
				continue
			}
			ingredient, err := repos.Products.GetByID(ctx, it.ProductID)
			if err != nil {
				return fmt.Errorf("get ingredient: %w", err)
			}
			if ingredient == nil {
				return fmt.Errorf("%w: ingrediente %d", domain.ErrProductNotFound, it.ProductID)
			}
			res, err := uc.ledger.Adjust(ctx, repos, inventory.AdjustInput{
				ProductID:   it.ProductID,
				WarehouseID: order.WarehouseID,
				Delta:       -it.QuantityPicked,
				Reason:      fmt.Sprintf(ConsumedReasonFormat, order.ID),
				CreatedBy:   actor.UserID,
				Streams:     streams,
			})
			if err != nil {
				return fmt.Errorf("consumir ingrediente %d: %w", it.ProductID, err)
			}
			applied = append(applied, res)
			totalCost = totalCost.Add(ingredient.Cost.Mul(decimal.NewFromInt(it.QuantityPicked)))
			consumed++
		}

		// 2. Capacidad para el producto terminado completo
		if err := uc.ledger.ValidateCapacity(ctx, repos, order.WarehouseID, order.QuantityGoal); err != nil {
			return err
		}

		// 3. Entrada del producto terminado; su costo unitario sale de los ingredientes consumidos.
		var unitCost *decimal.Decimal
		if totalCost.IsPositive() {
			c := ledger.UnitCostOf(totalCost, order.QuantityGoal)
			unitCost = &c
		}
		res, err := uc.ledger.Adjust(ctx, repos, inventory.AdjustInput{
			ProductID:   order.ProductID,
			WarehouseID: order.WarehouseID,
			Delta:       order.QuantityGoal,
			Reason:      fmt.Sprintf(ProducedReasonFormat, order.ID),
			CreatedBy:   actor.UserID,
			UnitCost:    unitCost,
			Streams:     streams,
		})
		if err != nil {
			return fmt.Errorf("producir %d: %w", order.ProductID, err)
		}
		applied = append(applied, res)

		// 4. Cierre
		if err := repos.Orders.UpdateStatus(ctx, order.ID, entity.ProductionStatusCompleted, order.QuantityGoal); err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		order.Status = entity.ProductionStatusCompleted
		order.QuantityProduced = order.QuantityGoal
		order.UpdatedAt = uc.clock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.ledger.Committed(applied...)
	uc.metrics.ProductionCompleted(order.ID, consumed)
	uc.log.Info().
		Int64("order_id", order.ID).
		Int64("product_id", order.ProductID).
		Int64("quantity_produced", order.QuantityProduced).
		Int("ingredients_consumed", consumed).
		Int64("completed_by", actor.UserID).
		Msg("orden de producción completada")
	return order, nil
}

// Cancel pasa una orden PENDING o IN_PROGRESS a CANCELLED. No toca el libro mayor.
func (uc *UseCase) Cancel(ctx context.Context, actor entity.Actor, id int64) (*entity.ProductionOrder, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidReference
	}
	var order *entity.ProductionOrder
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos inventory.TxRepos) error {
		var err error
		order, err = repos.Orders.GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("get order: %w", err)
		}
		if order == nil || !actor.Owns(order.CompanyID) {
			return domain.ErrOrderNotFound
		}
		if order.IsTerminal() {
			return fmt.Errorf("%w: estado %s", domain.ErrOrderClosed, order.Status)
		}
		if err := repos.Orders.UpdateStatus(ctx, order.ID, entity.ProductionStatusCancelled, order.QuantityProduced); err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		order.Status = entity.ProductionStatusCancelled
		order.UpdatedAt = uc.clock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("order_id", order.ID).Int64("cancelled_by", actor.UserID).Msg("orden de producción cancelada")
	return order, nil
}

// PickingSheet genera el PDF de la hoja de alistamiento de la orden.
func (uc *UseCase) PickingSheet(ctx context.Context, actor entity.Actor, id int64) ([]byte, error) {
	order, err := uc.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	product, err := uc.products.GetByID(ctx, order.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	wh, err := uc.warehouses.GetByID(ctx, order.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.ErrWarehouseNotFound
	}

	sheet := &PickingSheet{Order: order, Product: product, Warehouse: wh, GeneratedAt: uc.clock()}
	for _, it := range order.Items {
		line := PickingLine{ProductID: it.ProductID, Required: it.QuantityRequired, Picked: it.QuantityPicked}
		if p, err := uc.products.GetByID(ctx, it.ProductID); err != nil {
			return nil, err
		} else if p != nil {
			line.SKU, line.Name = p.SKU, p.Name
		}
		sheet.Lines = append(sheet.Lines, line)
	}
	return uc.sheets.GeneratePickingSheet(ctx, sheet)
}
