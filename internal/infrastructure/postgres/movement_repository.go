package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo flujo de movimientos (append-only) sobre stock_movements.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador del flujo de movimientos.
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementViewSelect = `
	SELECT m.id, m.company_id, m.product_id, m.warehouse_id, m.type, m.quantity, m.reason, m.notes,
	       m.to_location_id, m.created_by, m.created_at,
	       p.id, p.name, p.sku, w.id, w.name
	FROM stock_movements m
	LEFT JOIN products p ON p.id = m.product_id
	LEFT JOIN warehouses w ON w.id = m.warehouse_id`

func scanMovementView(row pgx.Row) (*entity.MovementView, error) {
	var v entity.MovementView
	var refs refColumns
	if err := row.Scan(
		&v.ID, &v.CompanyID, &v.ProductID, &v.WarehouseID, &v.Type, &v.Quantity, &v.Reason, &v.Notes,
		&v.ToLocationID, &v.CreatedBy, &v.CreatedAt,
		&refs.productID, &refs.productName, &refs.productSKU, &refs.warehouseID, &refs.warehouseName,
	); err != nil {
		return nil, err
	}
	v.Product, v.Warehouse = refs.product(), refs.warehouse()
	return &v, nil
}

// Create inserta el movimiento y asigna su ID.
func (r *MovementRepo) Create(ctx context.Context, mov *entity.MovementEvent) error {
	query := `
		INSERT INTO stock_movements
			(company_id, product_id, warehouse_id, type, quantity, reason, notes, to_location_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		mov.CompanyID, mov.ProductID, mov.WarehouseID, mov.Type, mov.Quantity, mov.Reason, mov.Notes,
		mov.ToLocationID, mov.CreatedBy, mov.CreatedAt,
	).Scan(&mov.ID)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento con sus referencias. Devuelve nil, nil si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, id int64) (*entity.MovementView, error) {
	v, err := scanMovementView(r.q.QueryRow(ctx, movementViewSelect+` WHERE m.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return v, nil
}

// List devuelve los movimientos más recientes primero.
func (r *MovementRepo) List(ctx context.Context, f repository.EventFilter) ([]entity.MovementView, error) {
	query := movementViewSelect + `
		WHERE ($1::bigint IS NULL OR m.company_id = $1)
		  AND ($2::bigint IS NULL OR m.product_id = $2)
		  AND ($3::bigint IS NULL OR m.warehouse_id = $3)
		  AND ($4::text IS NULL OR m.type = $4)
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT $5 OFFSET $6`
	rows, err := r.q.Query(ctx, query,
		scopeArg(f.Scope), nullIfZero(f.ProductID), nullIfZero(f.WarehouseID), nullIfEmpty(f.Type),
		limitArg(f.Limit), max(f.Offset, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var list []entity.MovementView
	for rows.Next() {
		v, err := scanMovementView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, *v)
	}
	return list, rows.Err()
}

// SumQuantitySince suma las magnitudes de los tipos dados desde since.
func (r *MovementRepo) SumQuantitySince(ctx context.Context, scope repository.TenantScope, types []string, since time.Time) (int64, error) {
	return sumSince(ctx, r.q, "stock_movements", scope, types, since)
}
