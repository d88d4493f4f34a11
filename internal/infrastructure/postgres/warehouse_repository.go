package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// WarehouseRepo implementación de WarehouseRepository sobre PostgreSQL.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador de bodegas.
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

const warehouseSelect = `
	SELECT id, company_id, name, address, capacity_limit, created_at, updated_at
	FROM warehouses WHERE id = $1`

// Create inserta una bodega.
func (r *WarehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	query := `
		INSERT INTO warehouses (company_id, name, address, capacity_limit)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query, w.CompanyID, w.Name, w.Address, w.CapacityLimit).Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create warehouse: %w", err)
	}
	return nil
}

// GetByID obtiene una bodega por ID.
func (r *WarehouseRepo) GetByID(ctx context.Context, id int64) (*entity.Warehouse, error) {
	return r.get(ctx, warehouseSelect, id)
}

// GetForUpdate obtiene la bodega bloqueando su fila.
func (r *WarehouseRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Warehouse, error) {
	return r.get(ctx, warehouseSelect+` FOR UPDATE`, id)
}

func (r *WarehouseRepo) get(ctx context.Context, query string, id int64) (*entity.Warehouse, error) {
	var w entity.Warehouse
	err := r.q.QueryRow(ctx, query, id).Scan(&w.ID, &w.CompanyID, &w.Name, &w.Address, &w.CapacityLimit, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return &w, nil
}

// List lista bodegas del alcance por ID ascendente.
func (r *WarehouseRepo) List(ctx context.Context, scope repository.TenantScope, limit, offset int) ([]*entity.Warehouse, error) {
	query := `
		SELECT id, company_id, name, address, capacity_limit, created_at, updated_at
		FROM warehouses
		WHERE ($1::bigint IS NULL OR company_id = $1)
		ORDER BY id
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, scopeArg(scope), limitArg(limit), max(offset, 0))
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	defer rows.Close()
	var out []*entity.Warehouse
	for rows.Next() {
		var w entity.Warehouse
		if err := rows.Scan(&w.ID, &w.CompanyID, &w.Name, &w.Address, &w.CapacityLimit, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		out = append(out, &w)
	}
	return out, rows.Err()
}
