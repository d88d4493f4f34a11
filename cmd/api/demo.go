package main

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

// seedDemo carga un catálogo mínimo para la empresa 1 cuando se usa el almacén en memoria.
// El catálogo no se administra por la API.
func seedDemo(store *memory.Store) {
	const company int64 = 1
	store.AddProduct(entity.Product{CompanyID: company, SKU: "PAN-01", Name: "Pan", Cost: decimal.Zero})
	harina := store.AddProduct(entity.Product{CompanyID: company, SKU: "HAR-01", Name: "Harina", Cost: decimal.NewFromInt(2)})
	levadura := store.AddProduct(entity.Product{CompanyID: company, SKU: "LEV-01", Name: "Levadura", Cost: decimal.NewFromInt(1)})
	store.AddWarehouse(entity.Warehouse{CompanyID: company, Name: "Bodega principal", CapacityLimit: 10000})
	store.AddBundle(entity.Bundle{CompanyID: company, SKU: "PAN-01", Name: "Pan", Items: []entity.BundleItem{
		{ProductID: harina, Quantity: 2},
		{ProductID: levadura, Quantity: 1},
	}})
}
