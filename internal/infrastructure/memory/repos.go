package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.StockRepository           = (*StockRepo)(nil)
	_ repository.WarehouseRepository       = (*WarehouseRepo)(nil)
	_ repository.ProductRepository         = (*ProductRepo)(nil)
	_ repository.AdjustmentRepository      = (*AdjustmentRepo)(nil)
	_ repository.MovementRepository        = (*MovementRepo)(nil)
	_ repository.ProductionOrderRepository = (*ProductionOrderRepo)(nil)
	_ repository.BundleRepository          = (*BundleRepo)(nil)
)

func inScope(scope repository.TenantScope, companyID int64) bool {
	return scope.AllCompanies || scope.CompanyID == companyID
}

func page[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// ── Stock ────────────────────────────────────────────────────────────────────

// StockRepo libro mayor de stock en memoria.
type StockRepo struct{ v view }

func (r *StockRepo) GetForUpdate(_ context.Context, productID, warehouseID int64) (*entity.StockRecord, error) {
	var out *entity.StockRecord
	err := r.v.do(func(st *state) error {
		if rec, ok := st.stock[stockKey{productID, warehouseID}]; ok {
			c := *rec
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *StockRepo) CreateEmpty(_ context.Context, productID, warehouseID int64) error {
	return r.v.do(func(st *state) error {
		k := stockKey{productID, warehouseID}
		if _, ok := st.stock[k]; ok {
			return nil
		}
		st.stock[k] = &entity.StockRecord{
			ID: st.nextID(), ProductID: productID, WarehouseID: warehouseID,
			Status: entity.StockStatusActive, UpdatedAt: time.Now(),
		}
		return nil
	})
}

func (r *StockRepo) UpdateQuantity(_ context.Context, id, quantity int64) error {
	if quantity < 0 {
		return domain.ErrInsufficientStock
	}
	return r.v.do(func(st *state) error {
		for _, rec := range st.stock {
			if rec.ID == id {
				rec.Quantity = quantity
				rec.UpdatedAt = time.Now()
				return nil
			}
		}
		return domain.ErrNotFound
	})
}

func (r *StockRepo) SumByWarehouse(_ context.Context, warehouseID int64) (int64, error) {
	var total int64
	err := r.v.do(func(st *state) error {
		for k, rec := range st.stock {
			if k.warehouseID == warehouseID {
				total += rec.Quantity
			}
		}
		return nil
	})
	return total, err
}

func (r *StockRepo) ListByWarehouse(_ context.Context, warehouseID int64) ([]*entity.StockRecord, error) {
	var out []*entity.StockRecord
	err := r.v.do(func(st *state) error {
		for k, rec := range st.stock {
			if k.warehouseID == warehouseID {
				c := *rec
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, err
}

// ── Catálogo ─────────────────────────────────────────────────────────────────

// WarehouseRepo bodegas en memoria.
type WarehouseRepo struct{ v view }

func (r *WarehouseRepo) GetByID(_ context.Context, id int64) (*entity.Warehouse, error) {
	var out *entity.Warehouse
	err := r.v.do(func(st *state) error {
		if w, ok := st.warehouses[id]; ok {
			c := *w
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *WarehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	return r.v.do(func(st *state) error {
		now := time.Now()
		w.ID = st.nextID()
		w.CreatedAt, w.UpdatedAt = now, now
		c := *w
		st.warehouses[w.ID] = &c
		return nil
	})
}

func (r *WarehouseRepo) List(_ context.Context, scope repository.TenantScope, limit, offset int) ([]*entity.Warehouse, error) {
	var out []*entity.Warehouse
	err := r.v.do(func(st *state) error {
		for _, w := range st.warehouses {
			if inScope(scope, w.CompanyID) {
				c := *w
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, limit, offset), err
}

// GetForUpdate equivale a GetByID: la transacción ya tiene acceso exclusivo.
func (r *WarehouseRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Warehouse, error) {
	return r.GetByID(ctx, id)
}

// ProductRepo productos en memoria.
type ProductRepo struct{ v view }

func (r *ProductRepo) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.do(func(st *state) error {
		if p, ok := st.products[id]; ok {
			c := *p
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.v.do(func(st *state) error {
		for _, existing := range st.products {
			if existing.CompanyID == p.CompanyID && existing.SKU == p.SKU {
				return domain.ErrDuplicate
			}
		}
		now := time.Now()
		p.ID = st.nextID()
		p.CreatedAt, p.UpdatedAt = now, now
		c := *p
		st.products[p.ID] = &c
		return nil
	})
}

func (r *ProductRepo) List(_ context.Context, scope repository.TenantScope, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.v.do(func(st *state) error {
		for _, p := range st.products {
			if inScope(scope, p.CompanyID) {
				c := *p
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, limit, offset), err
}

func (r *ProductRepo) UpdateCost(_ context.Context, productID int64, cost decimal.Decimal) error {
	return r.v.do(func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return domain.ErrProductNotFound
		}
		p.Cost = cost
		p.UpdatedAt = time.Now()
		return nil
	})
}

// BundleRepo listas de materiales en memoria.
type BundleRepo struct{ v view }

func (r *BundleRepo) FindForProduct(_ context.Context, companyID int64, sku, name string) (*entity.Bundle, error) {
	var out *entity.Bundle
	err := r.v.do(func(st *state) error {
		ids := make([]int64, 0, len(st.bundles))
		for id := range st.bundles {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		var byName []*entity.Bundle
		for _, id := range ids {
			b := st.bundles[id]
			if b.CompanyID != companyID {
				continue
			}
			if sku != "" && b.SKU == sku {
				out = copyBundle(b)
				return nil
			}
			if name != "" && b.Name == name {
				byName = append(byName, b)
			}
		}
		if len(byName) == 1 {
			out = copyBundle(byName[0])
		}
		return nil
	})
	return out, err
}

func copyBundle(b *entity.Bundle) *entity.Bundle {
	c := *b
	c.Items = append([]entity.BundleItem(nil), b.Items...)
	return &c
}

// ── Eventos ──────────────────────────────────────────────────────────────────

func (st *state) productRef(id int64) *entity.ProductRef {
	if p, ok := st.products[id]; ok {
		return &entity.ProductRef{ID: p.ID, Name: p.Name, SKU: p.SKU}
	}
	return nil
}

func (st *state) warehouseRef(id int64) *entity.WarehouseRef {
	if w, ok := st.warehouses[id]; ok {
		return &entity.WarehouseRef{ID: w.ID, Name: w.Name}
	}
	return nil
}

func (st *state) userRef(id int64) *entity.UserRef {
	if id == 0 {
		return nil
	}
	return &entity.UserRef{ID: id, Name: st.users[id]}
}

func matches(f repository.EventFilter, companyID, productID, warehouseID int64, typ string) bool {
	if !inScope(f.Scope, companyID) {
		return false
	}
	if f.ProductID != 0 && f.ProductID != productID {
		return false
	}
	if f.WarehouseID != 0 && f.WarehouseID != warehouseID {
		return false
	}
	return f.Type == "" || f.Type == typ
}

func containsType(types []string, t string) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}

// AdjustmentRepo flujo de ajustes en memoria.
type AdjustmentRepo struct{ v view }

func (r *AdjustmentRepo) Create(_ context.Context, adj *entity.AdjustmentEvent) error {
	return r.v.do(func(st *state) error {
		adj.ID = st.nextID()
		if adj.CreatedAt.IsZero() {
			adj.CreatedAt = time.Now()
		}
		c := *adj
		st.adjustments[c.ID] = &c
		return nil
	})
}

func (r *AdjustmentRepo) GetByID(_ context.Context, id int64) (*entity.AdjustmentEvent, error) {
	var out *entity.AdjustmentEvent
	err := r.v.do(func(st *state) error {
		if a, ok := st.adjustments[id]; ok {
			c := *a
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *AdjustmentRepo) Delete(_ context.Context, id int64) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.adjustments[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.adjustments, id)
		return nil
	})
}

func (r *AdjustmentRepo) List(_ context.Context, f repository.EventFilter) ([]entity.AdjustmentView, error) {
	var out []entity.AdjustmentView
	err := r.v.do(func(st *state) error {
		for _, a := range st.adjustments {
			if !matches(f, a.CompanyID, a.ProductID, a.WarehouseID, a.Type) {
				continue
			}
			out = append(out, entity.AdjustmentView{
				AdjustmentEvent: *a,
				Product:         st.productRef(a.ProductID),
				Warehouse:       st.warehouseRef(a.WarehouseID),
				User:            st.userRef(a.CreatedBy),
			})
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return page(out, f.Limit, f.Offset), err
}

func (r *AdjustmentRepo) SumQuantitySince(_ context.Context, scope repository.TenantScope, types []string, since time.Time) (int64, error) {
	var total int64
	err := r.v.do(func(st *state) error {
		for _, a := range st.adjustments {
			if inScope(scope, a.CompanyID) && containsType(types, a.Type) && !a.CreatedAt.Before(since) {
				total += a.Quantity
			}
		}
		return nil
	})
	return total, err
}

// MovementRepo flujo de movimientos en memoria.
type MovementRepo struct{ v view }

func (r *MovementRepo) Create(_ context.Context, mov *entity.MovementEvent) error {
	return r.v.do(func(st *state) error {
		mov.ID = st.nextID()
		if mov.CreatedAt.IsZero() {
			mov.CreatedAt = time.Now()
		}
		c := *mov
		st.movements[c.ID] = &c
		return nil
	})
}

func (r *MovementRepo) GetByID(_ context.Context, id int64) (*entity.MovementView, error) {
	var out *entity.MovementView
	err := r.v.do(func(st *state) error {
		if m, ok := st.movements[id]; ok {
			out = &entity.MovementView{
				MovementEvent: *m,
				Product:       st.productRef(m.ProductID),
				Warehouse:     st.warehouseRef(m.WarehouseID),
			}
		}
		return nil
	})
	return out, err
}

func (r *MovementRepo) List(_ context.Context, f repository.EventFilter) ([]entity.MovementView, error) {
	var out []entity.MovementView
	err := r.v.do(func(st *state) error {
		for _, m := range st.movements {
			if !matches(f, m.CompanyID, m.ProductID, m.WarehouseID, m.Type) {
				continue
			}
			out = append(out, entity.MovementView{
				MovementEvent: *m,
				Product:       st.productRef(m.ProductID),
				Warehouse:     st.warehouseRef(m.WarehouseID),
			})
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return page(out, f.Limit, f.Offset), err
}

func (r *MovementRepo) SumQuantitySince(_ context.Context, scope repository.TenantScope, types []string, since time.Time) (int64, error) {
	var total int64
	err := r.v.do(func(st *state) error {
		for _, m := range st.movements {
			if inScope(scope, m.CompanyID) && containsType(types, m.Type) && !m.CreatedAt.Before(since) {
				total += m.Quantity
			}
		}
		return nil
	})
	return total, err
}

// ── Producción ───────────────────────────────────────────────────────────────

// ProductionOrderRepo órdenes de producción en memoria.
type ProductionOrderRepo struct{ v view }

func (r *ProductionOrderRepo) Create(_ context.Context, order *entity.ProductionOrder) error {
	return r.v.do(func(st *state) error {
		now := time.Now()
		order.ID = st.nextID()
		if order.CreatedAt.IsZero() {
			order.CreatedAt = now
		}
		order.UpdatedAt = order.CreatedAt
		for i := range order.Items {
			order.Items[i].ID = st.nextID()
			order.Items[i].ProductionOrderID = order.ID
			order.Items[i].CreatedAt = order.CreatedAt
			order.Items[i].UpdatedAt = order.CreatedAt
		}
		st.orders[order.ID] = cloneOrder(order)
		return nil
	})
}

func (r *ProductionOrderRepo) GetByID(_ context.Context, id int64) (*entity.ProductionOrder, error) {
	var out *entity.ProductionOrder
	err := r.v.do(func(st *state) error {
		if o, ok := st.orders[id]; ok {
			out = cloneOrder(o)
		}
		return nil
	})
	return out, err
}

// GetForUpdate equivale a GetByID: la transacción ya tiene acceso exclusivo.
func (r *ProductionOrderRepo) GetForUpdate(ctx context.Context, id int64) (*entity.ProductionOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductionOrderRepo) List(_ context.Context, scope repository.TenantScope, status string, limit, offset int) ([]*entity.ProductionOrder, error) {
	var out []*entity.ProductionOrder
	err := r.v.do(func(st *state) error {
		for _, o := range st.orders {
			if !inScope(scope, o.CompanyID) || (status != "" && o.Status != status) {
				continue
			}
			out = append(out, cloneOrder(o))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return page(out, limit, offset), err
}

func (r *ProductionOrderRepo) AddPicked(_ context.Context, orderID, productID, quantity int64) (*entity.ProductionOrderItem, error) {
	var out *entity.ProductionOrderItem
	err := r.v.do(func(st *state) error {
		o, ok := st.orders[orderID]
		if !ok {
			return domain.ErrOrderNotFound
		}
		now := time.Now()
		for i := range o.Items {
			if o.Items[i].ProductID == productID {
				o.Items[i].QuantityPicked += quantity
				o.Items[i].UpdatedAt = now
				c := o.Items[i]
				out = &c
				return nil
			}
		}
		item := entity.ProductionOrderItem{
			ID: st.nextID(), ProductionOrderID: orderID, ProductID: productID,
			QuantityPicked: quantity, CreatedAt: now, UpdatedAt: now,
		}
		o.Items = append(o.Items, item)
		out = &item
		return nil
	})
	return out, err
}

func (r *ProductionOrderRepo) UpdateStatus(_ context.Context, id int64, status string, quantityProduced int64) error {
	return r.v.do(func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return domain.ErrOrderNotFound
		}
		o.Status = status
		o.QuantityProduced = quantityProduced
		o.UpdatedAt = time.Now()
		return nil
	})
}
