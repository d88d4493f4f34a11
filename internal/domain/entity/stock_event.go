package entity

import "time"

// EventStream identifica uno de los dos flujos de eventos de stock.
type EventStream string

const (
	StreamAdjustment EventStream = "adjustment" // ajustes manuales atribuibles a un usuario
	StreamMovement   EventStream = "movement"   // movimientos estructurados generados por el sistema
)

// Tipos de evento. INCREASE/DECREASE existen en ambos flujos; el resto sólo en movimientos.
const (
	EventTypeIncrease = "INCREASE"
	EventTypeDecrease = "DECREASE"
	EventTypeInbound  = "INBOUND"
	EventTypeOutbound = "OUTBOUND"
	EventTypeReceive  = "RECEIVE"
	EventTypeShipment = "SHIPMENT"
	EventTypePick     = "PICK"
	EventTypeReturn   = "RETURN"
)

// Estados de un ajuste.
const (
	AdjustmentStatusCompleted = "COMPLETED"
)

var (
	inboundTypes  = map[string]bool{EventTypeIncrease: true, EventTypeInbound: true, EventTypeReceive: true, EventTypeReturn: true}
	outboundTypes = map[string]bool{EventTypeDecrease: true, EventTypeOutbound: true, EventTypeShipment: true, EventTypePick: true}
)

// InboundTypes devuelve los tipos que suman al total de entradas del día.
func InboundTypes() []string {
	return []string{EventTypeIncrease, EventTypeInbound, EventTypeReceive, EventTypeReturn}
}

// OutboundTypes devuelve los tipos que suman al total de salidas del día.
func OutboundTypes() []string {
	return []string{EventTypeDecrease, EventTypeOutbound, EventTypeShipment, EventTypePick}
}

// IsInboundType indica si el tipo aumenta stock.
func IsInboundType(t string) bool { return inboundTypes[t] }

// IsOutboundType indica si el tipo disminuye stock.
func IsOutboundType(t string) bool { return outboundTypes[t] }

// AdjustmentEvent es un cambio de cantidad de una sola línea, manual o de sistema, con actor y motivo.
// Inmutable; sólo admite borrado duro (que no revierte el stock).
type AdjustmentEvent struct {
	ID              int64
	CompanyID       int64
	ProductID       int64
	WarehouseID     int64
	Type            string // INCREASE | DECREASE
	Quantity        int64  // magnitud positiva
	Reason          string
	Notes           string
	Status          string
	CreatedBy       int64
	CreatedAt       time.Time
	ReferenceNumber string
}

// MovementEvent es un cambio de cantidad estructurado (append-only).
type MovementEvent struct {
	ID           int64
	CompanyID    int64
	ProductID    int64
	WarehouseID  int64
	Type         string
	Quantity     int64 // magnitud positiva; el sentido lo da Type
	Reason       string
	Notes        string
	ToLocationID *int64
	CreatedBy    int64
	CreatedAt    time.Time
}

// EventFields son los campos semánticos comunes que recibe el recorder.
// CreatedBy y ReferenceNumber sólo aplican a ajustes; ToLocationID sólo a movimientos.
type EventFields struct {
	CompanyID       int64
	ProductID       int64
	WarehouseID     int64
	Type            string
	Quantity        int64
	Reason          string
	Notes           string
	CreatedBy       int64
	ReferenceNumber string
	ToLocationID    *int64
	CreatedAt       time.Time
}

// RecordedEvent es el resultado de Record: exactamente uno de los punteros no es nil.
type RecordedEvent struct {
	Stream     EventStream
	Adjustment *AdjustmentEvent
	Movement   *MovementEvent
}
