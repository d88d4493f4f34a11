package entity

import "time"

// ProductRef resumen del producto incluido en cada entrada del feed.
type ProductRef struct {
	ID   int64
	Name string
	SKU  string
}

// WarehouseRef resumen de la bodega incluido en cada entrada del feed.
type WarehouseRef struct {
	ID   int64
	Name string
}

// UserRef resumen del usuario que creó un ajuste.
type UserRef struct {
	ID   int64
	Name string
}

// AdjustmentView es un ajuste con sus referencias resueltas (lectura para el feed).
type AdjustmentView struct {
	AdjustmentEvent
	Product   *ProductRef
	Warehouse *WarehouseRef
	User      *UserRef
}

// MovementView es un movimiento con sus referencias resueltas (lectura para el feed).
type MovementView struct {
	MovementEvent
	Product   *ProductRef
	Warehouse *WarehouseRef
}

// FeedEntry es la forma común de ambos flujos en el feed unificado.
// ID lleva prefijo del flujo ("adj-", "mov-") para ser único entre flujos.
type FeedEntry struct {
	ID          string
	Source      EventStream
	Type        string
	ProductID   int64
	WarehouseID int64
	Quantity    int64
	Reason      string
	Notes       string
	CreatedAt   time.Time
	User        *UserRef
	Product     *ProductRef
	Warehouse   *WarehouseRef
}

// FeedStats totales del día (no limitados por el tamaño del feed ni deduplicados).
type FeedStats struct {
	TotalIn  int64
	TotalOut int64
}

// Feed es el resultado del reconciliador.
type Feed struct {
	Entries []FeedEntry
	Stats   FeedStats
}
