package inventory

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// FeedConfig límites y zona horaria del feed en vivo.
type FeedConfig struct {
	DefaultLimit int
	MaxLimit     int
	Location     *time.Location // inicio de "hoy" para las estadísticas; nil = hora local del servidor
}

// FeedUseCase construye el feed unificado de ajustes y movimientos.
//
// Seis consultas en paralelo (errgroup):
//  1. últimos N ajustes y últimos N movimientos
//  2. sumas de hoy: movimientos de entrada/salida y ajustes INCREASE/DECREASE
type FeedUseCase struct {
	adjustments repository.AdjustmentRepository
	movements   repository.MovementRepository
	metrics     Metrics
	cfg         FeedConfig
	clock       func() time.Time
}

// NewFeedUseCase construye el caso de uso. metrics puede ser nil.
func NewFeedUseCase(adjustments repository.AdjustmentRepository, movements repository.MovementRepository, metrics Metrics, cfg FeedConfig) *FeedUseCase {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 100
	}
	if cfg.MaxLimit < cfg.DefaultLimit {
		cfg.MaxLimit = cfg.DefaultLimit
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &FeedUseCase{adjustments: adjustments, movements: movements, metrics: metrics, cfg: cfg, clock: time.Now}
}

// LiveFeed devuelve hasta limit entradas deduplicadas (más recientes primero) y los totales del día.
// Los totales no dependen de limit ni de la deduplicación.
func (uc *FeedUseCase) LiveFeed(ctx context.Context, actor entity.Actor, limit int) (*entity.Feed, error) {
	start := time.Now()
	limit = uc.normalizeLimit(limit)
	scope := scopeOf(actor)

	now := uc.clock().In(uc.cfg.Location)
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var adjustments []entity.AdjustmentView
	var movements []entity.MovementView
	var movIn, movOut, adjIn, adjOut int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		adjustments, err = uc.adjustments.List(gctx, repository.EventFilter{Scope: scope, Limit: limit})
		if err != nil {
			return fmt.Errorf("feed: ajustes recientes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		movements, err = uc.movements.List(gctx, repository.EventFilter{Scope: scope, Limit: limit})
		if err != nil {
			return fmt.Errorf("feed: movimientos recientes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		movIn, err = uc.movements.SumQuantitySince(gctx, scope, entity.InboundTypes(), todayStart)
		if err != nil {
			return fmt.Errorf("feed: entradas de hoy: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		movOut, err = uc.movements.SumQuantitySince(gctx, scope, entity.OutboundTypes(), todayStart)
		if err != nil {
			return fmt.Errorf("feed: salidas de hoy: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		adjIn, err = uc.adjustments.SumQuantitySince(gctx, scope, []string{entity.EventTypeIncrease}, todayStart)
		if err != nil {
			return fmt.Errorf("feed: ajustes de entrada de hoy: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		adjOut, err = uc.adjustments.SumQuantitySince(gctx, scope, []string{entity.EventTypeDecrease}, todayStart)
		if err != nil {
			return fmt.Errorf("feed: ajustes de salida de hoy: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Las sumas de ambos flujos se acumulan sin deduplicar.
	feed := &entity.Feed{
		Entries: ledger.Reconcile(adjustments, movements, limit),
		Stats: entity.FeedStats{
			TotalIn:  nonNegative(movIn + adjIn),
			TotalOut: nonNegative(movOut + adjOut),
		},
	}
	uc.metrics.FeedServed(len(feed.Entries), time.Since(start))
	return feed, nil
}

func (uc *FeedUseCase) normalizeLimit(limit int) int {
	if limit <= 0 {
		return uc.cfg.DefaultLimit
	}
	if limit > uc.cfg.MaxLimit {
		return uc.cfg.MaxLimit
	}
	return limit
}

func nonNegative(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}
