// Package cache guarda las respuestas de escrituras idempotentes (cabecera Idempotency-Key).
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotReserved indica que la clave no estaba reservada por quien intenta completarla.
var ErrNotReserved = errors.New("clave de idempotencia no reservada")

// StoredResponse es la respuesta HTTP guardada para repetirla ante reintentos.
type StoredResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

// Entry estado de una clave: Pending mientras la primera petición se ejecuta.
type Entry struct {
	Pending  bool
	Response *StoredResponse
}

// IdempotencyStore reserva claves y guarda la respuesta de la primera ejecución.
type IdempotencyStore interface {
	// Reserve marca la clave como en curso. Devuelve false si ya existía (en curso o completada).
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Complete reemplaza la reserva con la respuesta final.
	Complete(ctx context.Context, key string, resp StoredResponse, ttl time.Duration) error
	// Release libera la reserva para permitir el reintento (p. ej. tras un 5xx).
	Release(ctx context.Context, key string) error
	// Get devuelve el estado de la clave o nil si no existe.
	Get(ctx context.Context, key string) (*Entry, error)
	Close() error
}
