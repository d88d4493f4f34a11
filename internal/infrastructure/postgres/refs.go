package postgres

import "github.com/jhoicas/stock-ledger/internal/domain/entity"

// Las referencias de los listados vienen de LEFT JOIN: columnas nulas = referencia ausente.
type refColumns struct {
	productID     *int64
	productName   *string
	productSKU    *string
	warehouseID   *int64
	warehouseName *string
	userID        *int64
	userName      *string
}

func (c *refColumns) product() *entity.ProductRef {
	if c.productID == nil {
		return nil
	}
	return &entity.ProductRef{ID: *c.productID, Name: deref(c.productName), SKU: deref(c.productSKU)}
}

func (c *refColumns) warehouse() *entity.WarehouseRef {
	if c.warehouseID == nil {
		return nil
	}
	return &entity.WarehouseRef{ID: *c.warehouseID, Name: deref(c.warehouseName)}
}

func (c *refColumns) user() *entity.UserRef {
	if c.userID == nil {
		return nil
	}
	return &entity.UserRef{ID: *c.userID, Name: deref(c.userName)}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
