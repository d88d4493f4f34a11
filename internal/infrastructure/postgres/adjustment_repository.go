package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.AdjustmentRepository = (*AdjustmentRepo)(nil)

// AdjustmentRepo flujo de ajustes sobre la tabla inventory_adjustments.
type AdjustmentRepo struct {
	q Querier
}

// NewAdjustmentRepository construye el adaptador del flujo de ajustes.
func NewAdjustmentRepository(q Querier) *AdjustmentRepo {
	return &AdjustmentRepo{q: q}
}

// Create inserta el ajuste y asigna su ID.
func (r *AdjustmentRepo) Create(ctx context.Context, adj *entity.AdjustmentEvent) error {
	query := `
		INSERT INTO inventory_adjustments
			(company_id, product_id, warehouse_id, type, quantity, reason, notes, status, created_by, reference_number, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		adj.CompanyID, adj.ProductID, adj.WarehouseID, adj.Type, adj.Quantity, adj.Reason, adj.Notes,
		adj.Status, adj.CreatedBy, adj.ReferenceNumber, adj.CreatedAt,
	).Scan(&adj.ID)
	if err != nil {
		return fmt.Errorf("insert adjustment: %w", err)
	}
	return nil
}

// GetByID obtiene un ajuste. Devuelve nil, nil si no existe.
func (r *AdjustmentRepo) GetByID(ctx context.Context, id int64) (*entity.AdjustmentEvent, error) {
	query := `
		SELECT id, company_id, product_id, warehouse_id, type, quantity, reason, notes, status, created_by, reference_number, created_at
		FROM inventory_adjustments WHERE id = $1`
	var a entity.AdjustmentEvent
	err := r.q.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.CompanyID, &a.ProductID, &a.WarehouseID, &a.Type, &a.Quantity, &a.Reason, &a.Notes,
		&a.Status, &a.CreatedBy, &a.ReferenceNumber, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get adjustment: %w", err)
	}
	return &a, nil
}

// Delete borra el ajuste (borrado duro).
func (r *AdjustmentRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM inventory_adjustments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete adjustment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List devuelve los ajustes más recientes primero con producto, bodega y usuario resueltos.
func (r *AdjustmentRepo) List(ctx context.Context, f repository.EventFilter) ([]entity.AdjustmentView, error) {
	query := `
		SELECT a.id, a.company_id, a.product_id, a.warehouse_id, a.type, a.quantity, a.reason, a.notes,
		       a.status, a.created_by, a.reference_number, a.created_at,
		       p.id, p.name, p.sku, w.id, w.name, u.id, u.name
		FROM inventory_adjustments a
		LEFT JOIN products p ON p.id = a.product_id
		LEFT JOIN warehouses w ON w.id = a.warehouse_id
		LEFT JOIN users u ON u.id = a.created_by
		WHERE ($1::bigint IS NULL OR a.company_id = $1)
		  AND ($2::bigint IS NULL OR a.product_id = $2)
		  AND ($3::bigint IS NULL OR a.warehouse_id = $3)
		  AND ($4::text IS NULL OR a.type = $4)
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT $5 OFFSET $6`
	rows, err := r.q.Query(ctx, query,
		scopeArg(f.Scope), nullIfZero(f.ProductID), nullIfZero(f.WarehouseID), nullIfEmpty(f.Type),
		limitArg(f.Limit), max(f.Offset, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("list adjustments: %w", err)
	}
	defer rows.Close()

	var list []entity.AdjustmentView
	for rows.Next() {
		var v entity.AdjustmentView
		var refs refColumns
		if err := rows.Scan(
			&v.ID, &v.CompanyID, &v.ProductID, &v.WarehouseID, &v.Type, &v.Quantity, &v.Reason, &v.Notes,
			&v.Status, &v.CreatedBy, &v.ReferenceNumber, &v.CreatedAt,
			&refs.productID, &refs.productName, &refs.productSKU,
			&refs.warehouseID, &refs.warehouseName, &refs.userID, &refs.userName,
		); err != nil {
			return nil, fmt.Errorf("scan adjustment: %w", err)
		}
		v.Product, v.Warehouse, v.User = refs.product(), refs.warehouse(), refs.user()
		list = append(list, v)
	}
	return list, rows.Err()
}

// SumQuantitySince suma las magnitudes de los tipos dados desde since.
func (r *AdjustmentRepo) SumQuantitySince(ctx context.Context, scope repository.TenantScope, types []string, since time.Time) (int64, error) {
	return sumSince(ctx, r.q, "inventory_adjustments", scope, types, since)
}

// sumSince es la consulta de totales del día compartida por ambos flujos.
func sumSince(ctx context.Context, q Querier, table string, scope repository.TenantScope, types []string, since time.Time) (int64, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0)::bigint FROM ` + table + `
		WHERE ($1::bigint IS NULL OR company_id = $1)
		  AND type = ANY($2)
		  AND created_at >= $3`
	var total int64
	if err := q.QueryRow(ctx, query, scopeArg(scope), types, since).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum %s: %w", table, err)
	}
	return total, nil
}
