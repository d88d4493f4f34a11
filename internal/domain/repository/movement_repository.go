package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// MovementRepository define el puerto del flujo de movimientos (append-only).
type MovementRepository interface {
	Create(ctx context.Context, mov *entity.MovementEvent) error
	GetByID(ctx context.Context, id int64) (*entity.MovementView, error)
	// List devuelve los movimientos más recientes primero, con producto y bodega resueltos.
	List(ctx context.Context, filter EventFilter) ([]entity.MovementView, error)
	SumQuantitySince(ctx context.Context, scope TenantScope, types []string, since time.Time) (int64, error)
}
