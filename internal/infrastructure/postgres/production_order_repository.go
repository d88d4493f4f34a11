package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ProductionOrderRepository = (*ProductionOrderRepo)(nil)

// ProductionOrderRepo órdenes de producción y sus ítems sobre PostgreSQL.
type ProductionOrderRepo struct {
	q Querier
}

// NewProductionOrderRepository construye el adaptador de órdenes de producción.
func NewProductionOrderRepository(q Querier) *ProductionOrderRepo {
	return &ProductionOrderRepo{q: q}
}

const (
	orderColumns = `id, company_id, product_id, warehouse_id, quantity_goal, quantity_produced, status, notes, created_at, updated_at`
	itemColumns  = `id, production_order_id, product_id, quantity_required, quantity_picked, created_at, updated_at`
)

func scanOrder(row pgx.Row) (*entity.ProductionOrder, error) {
	var o entity.ProductionOrder
	err := row.Scan(&o.ID, &o.CompanyID, &o.ProductID, &o.WarehouseID, &o.QuantityGoal, &o.QuantityProduced,
		&o.Status, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func scanItem(row pgx.Row) (*entity.ProductionOrderItem, error) {
	var it entity.ProductionOrderItem
	err := row.Scan(&it.ID, &it.ProductionOrderID, &it.ProductID, &it.QuantityRequired, &it.QuantityPicked, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Create inserta la orden y sus ítems. Debe correr dentro de una transacción.
func (r *ProductionOrderRepo) Create(ctx context.Context, order *entity.ProductionOrder) error {
	query := `
		INSERT INTO production_orders (company_id, product_id, warehouse_id, quantity_goal, quantity_produced, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING id, updated_at`
	err := r.q.QueryRow(ctx, query,
		order.CompanyID, order.ProductID, order.WarehouseID, order.QuantityGoal, order.QuantityProduced,
		order.Status, order.Notes, order.CreatedAt,
	).Scan(&order.ID, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert production order: %w", err)
	}

	itemQuery := `
		INSERT INTO production_order_items (production_order_id, product_id, quantity_required, quantity_picked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id`
	for i := range order.Items {
		it := &order.Items[i]
		it.ProductionOrderID = order.ID
		it.CreatedAt, it.UpdatedAt = order.CreatedAt, order.CreatedAt
		if err := r.q.QueryRow(ctx, itemQuery, order.ID, it.ProductID, it.QuantityRequired, it.QuantityPicked, order.CreatedAt).Scan(&it.ID); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: ingrediente %d repetido en la lista de materiales", domain.ErrDuplicate, it.ProductID)
			}
			return fmt.Errorf("insert production order item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la orden con sus ítems.
func (r *ProductionOrderRepo) GetByID(ctx context.Context, id int64) (*entity.ProductionOrder, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM production_orders WHERE id = $1`, id)
}

// GetForUpdate obtiene la orden bloqueando su fila.
func (r *ProductionOrderRepo) GetForUpdate(ctx context.Context, id int64) (*entity.ProductionOrder, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM production_orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *ProductionOrderRepo) get(ctx context.Context, query string, id int64) (*entity.ProductionOrder, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get production order: %w", err)
	}
	if o.Items, err = r.items(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *ProductionOrderRepo) items(ctx context.Context, orderID int64) ([]entity.ProductionOrderItem, error) {
	rows, err := r.q.Query(ctx, `SELECT `+itemColumns+` FROM production_order_items WHERE production_order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list production order items: %w", err)
	}
	defer rows.Close()

	var list []entity.ProductionOrderItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan production order item: %w", err)
		}
		list = append(list, *it)
	}
	return list, rows.Err()
}

// List ordena por fecha de creación descendente; los ítems se cargan por orden.
func (r *ProductionOrderRepo) List(ctx context.Context, scope repository.TenantScope, status string, limit, offset int) ([]*entity.ProductionOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM production_orders
		WHERE ($1::bigint IS NULL OR company_id = $1)
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, scopeArg(scope), nullIfEmpty(status), limitArg(limit), max(offset, 0))
	if err != nil {
		return nil, fmt.Errorf("list production orders: %w", err)
	}
	var list []*entity.ProductionOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan production order: %w", err)
		}
		list = append(list, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list production orders: %w", err)
	}

	// Con tx la conexión no admite dos result sets abiertos; los ítems se leen después.
	for _, o := range list {
		if o.Items, err = r.items(ctx, o.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// AddPicked suma quantity al ítem con un único upsert atómico.
func (r *ProductionOrderRepo) AddPicked(ctx context.Context, orderID, productID, quantity int64) (*entity.ProductionOrderItem, error) {
	query := `
		INSERT INTO production_order_items (production_order_id, product_id, quantity_required, quantity_picked, created_at, updated_at)
		VALUES ($1, $2, 0, $3, now(), now())
		ON CONFLICT (production_order_id, product_id)
		DO UPDATE SET quantity_picked = production_order_items.quantity_picked + EXCLUDED.quantity_picked,
		              updated_at = now()
		RETURNING ` + itemColumns
	it, err := scanItem(r.q.QueryRow(ctx, query, orderID, productID, quantity))
	if err != nil {
		return nil, fmt.Errorf("add picked: %w", err)
	}
	return it, nil
}

// UpdateStatus cambia el estado y la cantidad producida de la orden.
func (r *ProductionOrderRepo) UpdateStatus(ctx context.Context, id int64, status string, quantityProduced int64) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE production_orders SET status = $2, quantity_produced = $3, updated_at = now() WHERE id = $1`,
		id, status, quantityProduced)
	if err != nil {
		return fmt.Errorf("update production order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}
