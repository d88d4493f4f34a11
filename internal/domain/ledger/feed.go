package ledger

import (
	"sort"
	"strconv"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Prefijos de id sintético por flujo (ids únicos entre ambos flujos).
const (
	AdjustmentIDPrefix = "adj-"
	MovementIDPrefix   = "mov-"
)

// dedupKey es la llave (producto, |cantidad|, minuto UTC) con la que un movimiento oculta un ajuste.
type dedupKey struct {
	productID int64
	quantity  int64
	minute    int64
}

func keyOf(productID, quantity int64, at time.Time) dedupKey {
	if quantity < 0 {
		quantity = -quantity
	}
	return dedupKey{
		productID: productID,
		quantity:  quantity,
		minute:    at.UTC().Truncate(time.Minute).Unix(),
	}
}

// NormalizeAdjustment convierte un ajuste a la forma común del feed.
func NormalizeAdjustment(a entity.AdjustmentView) entity.FeedEntry {
	return entity.FeedEntry{
		ID:          AdjustmentIDPrefix + strconv.FormatInt(a.ID, 10),
		Source:      entity.StreamAdjustment,
		Type:        a.Type,
		ProductID:   a.ProductID,
		WarehouseID: a.WarehouseID,
		Quantity:    a.Quantity,
		Reason:      a.Reason,
		Notes:       a.Notes,
		CreatedAt:   a.CreatedAt,
		User:        a.User,
		Product:     a.Product,
		Warehouse:   a.Warehouse,
	}
}

// NormalizeMovement convierte un movimiento a la forma común del feed. Los movimientos no llevan usuario.
func NormalizeMovement(m entity.MovementView) entity.FeedEntry {
	return entity.FeedEntry{
		ID:          MovementIDPrefix + strconv.FormatInt(m.ID, 10),
		Source:      entity.StreamMovement,
		Type:        m.Type,
		ProductID:   m.ProductID,
		WarehouseID: m.WarehouseID,
		Quantity:    m.Quantity,
		Reason:      m.Reason,
		Notes:       m.Notes,
		CreatedAt:   m.CreatedAt,
		Product:     m.Product,
		Warehouse:   m.Warehouse,
	}
}

// Reconcile une ambos flujos en un solo feed:
//  1. descarta cada ajuste que tenga un movimiento con el mismo producto, la misma magnitud y el mismo minuto;
//  2. ordena por fecha descendente (ante empate, movimientos primero);
//  3. trunca a limit (limit <= 0 = sin truncar).
//
// Dos eventos no relacionados con igual producto, magnitud y minuto también se deduplican; es una
// tolerancia conocida del feed.
func Reconcile(adjustments []entity.AdjustmentView, movements []entity.MovementView, limit int) []entity.FeedEntry {
	shadowed := make(map[dedupKey]struct{}, len(movements))
	entries := make([]entity.FeedEntry, 0, len(movements)+len(adjustments))
	for _, m := range movements {
		shadowed[keyOf(m.ProductID, m.Quantity, m.CreatedAt)] = struct{}{}
		entries = append(entries, NormalizeMovement(m))
	}
	for _, a := range adjustments {
		if _, ok := shadowed[keyOf(a.ProductID, a.Quantity, a.CreatedAt)]; ok {
			continue
		}
		entries = append(entries, NormalizeAdjustment(a))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
