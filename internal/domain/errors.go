package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrProductNotFound   = errors.New("producto no encontrado")
	ErrWarehouseNotFound = errors.New("bodega no encontrada")
	ErrOrderNotFound     = errors.New("orden de producción no encontrada")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrInvalidReference  = errors.New("id de orden o de producto inválido")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")

	// Libro mayor de stock
	ErrInsufficientStock = errors.New("stock disponible insuficiente para la salida")
	ErrCapacityExceeded  = errors.New("capacidad de la bodega excedida")

	// Ciclo de vida de órdenes de producción
	ErrAlreadyCompleted    = errors.New("la orden ya fue completada")
	ErrOrderNotCompletable = errors.New("la orden no está en un estado completable")
	ErrOrderClosed         = errors.New("la orden está cerrada")
)
