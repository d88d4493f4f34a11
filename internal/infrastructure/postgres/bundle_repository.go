package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.BundleRepository = (*BundleRepo)(nil)

// BundleRepo listas de materiales sobre bundles/bundle_items.
type BundleRepo struct {
	q Querier
}

// NewBundleRepository construye el adaptador de listas de materiales.
func NewBundleRepository(q Querier) *BundleRepo {
	return &BundleRepo{q: q}
}

// FindForProduct busca primero por SKU (el de menor ID si hay varios); por nombre sólo si hay
// exactamente un bundle con ese nombre.
func (r *BundleRepo) FindForProduct(ctx context.Context, companyID int64, sku, name string) (*entity.Bundle, error) {
	if sku != "" {
		b, err := r.findOne(ctx, `SELECT id, company_id, sku, name FROM bundles WHERE company_id = $1 AND sku = $2 ORDER BY id LIMIT 1`, companyID, sku)
		if err != nil || b != nil {
			return b, err
		}
	}
	if name == "" {
		return nil, nil
	}
	return r.findOne(ctx, `SELECT id, company_id, sku, name FROM bundles WHERE company_id = $1 AND name = $2 ORDER BY id LIMIT 2`, companyID, name)
}

// findOne devuelve el único bundle de la consulta o nil si hay cero o varios.
func (r *BundleRepo) findOne(ctx context.Context, query string, args ...any) (*entity.Bundle, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find bundle: %w", err)
	}
	var found []entity.Bundle
	for rows.Next() {
		var b entity.Bundle
		if err := rows.Scan(&b.ID, &b.CompanyID, &b.SKU, &b.Name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan bundle: %w", err)
		}
		found = append(found, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find bundle: %w", err)
	}
	if len(found) != 1 {
		return nil, nil
	}

	b := found[0]
	itemRows, err := r.q.Query(ctx, `SELECT product_id, quantity FROM bundle_items WHERE bundle_id = $1 ORDER BY id`, b.ID)
	if err != nil {
		return nil, fmt.Errorf("list bundle items: %w", err)
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var it entity.BundleItem
		if err := itemRows.Scan(&it.ProductID, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan bundle item: %w", err)
		}
		b.Items = append(b.Items, it)
	}
	return &b, itemRows.Err()
}
