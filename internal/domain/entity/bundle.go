package entity

// Bundle es una lista de materiales (BOM): componentes y cantidades para producir UNA unidad
// del producto terminado. Se asocia al producto por SKU o por nombre, no por llave foránea.
type Bundle struct {
	ID        int64
	CompanyID int64
	SKU       string
	Name      string
	Items     []BundleItem
}

// BundleItem es una línea de la lista de materiales.
type BundleItem struct {
	ProductID int64
	Quantity  int64
}
