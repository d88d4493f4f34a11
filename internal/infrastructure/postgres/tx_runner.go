package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL READ COMMITTED;
// la serialización la dan los SELECT ... FOR UPDATE de los repos.
type TxRunner struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewTxRunner construye el runner. timeout <= 0 deja sólo el plazo del contexto recibido.
func NewTxRunner(pool *pgxpool.Pool, timeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, timeout: timeout}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.TxRepos) error) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	// Rollback tras Commit no hace nada; usa un contexto propio por si ctx ya venció.
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	if err := fn(ctx, Repos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Repos arma los repositorios sobre q (pool para lecturas sueltas, tx dentro de Run).
func Repos(q Querier) inventory.TxRepos {
	return inventory.TxRepos{
		Stock:       NewStockRepository(q),
		Warehouses:  NewWarehouseRepository(q),
		Products:    NewProductRepository(q),
		Adjustments: NewAdjustmentRepository(q),
		Movements:   NewMovementRepository(q),
		Orders:      NewProductionOrderRepository(q),
		Bundles:     NewBundleRepository(q),
	}
}
