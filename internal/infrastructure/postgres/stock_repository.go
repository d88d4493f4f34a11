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

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockColumns = `id, product_id, warehouse_id, quantity, status, location_id, best_before_date, updated_at`

func scanStock(row pgx.Row) (*entity.StockRecord, error) {
	var s entity.StockRecord
	err := row.Scan(&s.ID, &s.ProductID, &s.WarehouseID, &s.Quantity, &s.Status, &s.LocationID, &s.BestBeforeDate, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetForUpdate obtiene el registro y bloquea la fila (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, productID, warehouseID int64) (*entity.StockRecord, error) {
	query := `SELECT ` + stockColumns + ` FROM stock WHERE product_id = $1 AND warehouse_id = $2 FOR UPDATE`
	s, err := scanStock(r.q.QueryRow(ctx, query, productID, warehouseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return s, nil
}

// CreateEmpty crea el registro en 0. Si otra transacción lo creó primero no hace nada.
func (r *StockRepo) CreateEmpty(ctx context.Context, productID, warehouseID int64) error {
	query := `
		INSERT INTO stock (product_id, warehouse_id, quantity, status, updated_at)
		VALUES ($1, $2, 0, $3, now())
		ON CONFLICT (product_id, warehouse_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, query, productID, warehouseID, entity.StockStatusActive); err != nil {
		return fmt.Errorf("create stock: %w", err)
	}
	return nil
}

// UpdateQuantity fija la cantidad; el CHECK de la tabla rechaza negativos.
func (r *StockRepo) UpdateQuantity(ctx context.Context, id, quantity int64) error {
	tag, err := r.q.Exec(ctx, `UPDATE stock SET quantity = $2, updated_at = now() WHERE id = $1`, id, quantity)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInsufficientStock
		}
		return fmt.Errorf("update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SumByWarehouse suma el stock de la bodega (0 si no hay registros).
func (r *StockRepo) SumByWarehouse(ctx context.Context, warehouseID int64) (int64, error) {
	var total int64
	err := r.q.QueryRow(ctx, `SELECT COALESCE(SUM(quantity), 0)::bigint FROM stock WHERE warehouse_id = $1`, warehouseID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum stock: %w", err)
	}
	return total, nil
}

// ListByWarehouse lista los registros de la bodega por producto.
func (r *StockRepo) ListByWarehouse(ctx context.Context, warehouseID int64) ([]*entity.StockRecord, error) {
	rows, err := r.q.Query(ctx, `SELECT `+stockColumns+` FROM stock WHERE warehouse_id = $1 ORDER BY product_id`, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockRecord
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
