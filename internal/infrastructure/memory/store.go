// Package memory implementa los puertos de persistencia en memoria. Las transacciones se
// serializan con un único mutex y trabajan sobre una copia del estado que sólo se publica en Commit.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

var _ inventory.TxRunner = (*Store)(nil)

type stockKey struct {
	productID   int64
	warehouseID int64
}

type state struct {
	seq         int64
	products    map[int64]*entity.Product
	warehouses  map[int64]*entity.Warehouse
	users       map[int64]string
	stock       map[stockKey]*entity.StockRecord
	adjustments map[int64]*entity.AdjustmentEvent
	movements   map[int64]*entity.MovementEvent
	orders      map[int64]*entity.ProductionOrder
	bundles     map[int64]*entity.Bundle
}

func newState() *state {
	return &state{
		products:    map[int64]*entity.Product{},
		warehouses:  map[int64]*entity.Warehouse{},
		users:       map[int64]string{},
		stock:       map[stockKey]*entity.StockRecord{},
		adjustments: map[int64]*entity.AdjustmentEvent{},
		movements:   map[int64]*entity.MovementEvent{},
		orders:      map[int64]*entity.ProductionOrder{},
		bundles:     map[int64]*entity.Bundle{},
	}
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

// clone copia profunda; los repos sólo guardan copias, nunca punteros del llamador.
func (s *state) clone() *state {
	c := newState()
	c.seq = s.seq
	for k, v := range s.products {
		p := *v
		c.products[k] = &p
	}
	for k, v := range s.warehouses {
		w := *v
		c.warehouses[k] = &w
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.stock {
		r := *v
		c.stock[k] = &r
	}
	for k, v := range s.adjustments {
		a := *v
		c.adjustments[k] = &a
	}
	for k, v := range s.movements {
		m := *v
		c.movements[k] = &m
	}
	for k, v := range s.orders {
		c.orders[k] = cloneOrder(v)
	}
	for k, v := range s.bundles {
		b := *v
		b.Items = append([]entity.BundleItem(nil), v.Items...)
		c.bundles[k] = &b
	}
	return c
}

func cloneOrder(o *entity.ProductionOrder) *entity.ProductionOrder {
	c := *o
	c.Items = append([]entity.ProductionOrderItem(nil), o.Items...)
	return &c
}

// Store es el almacén en memoria. Implementa inventory.TxRunner.
type Store struct {
	mu   sync.Mutex
	data *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{data: newState()}
}

// Run ejecuta fn con acceso exclusivo sobre una copia del estado; la copia reemplaza al estado
// sólo si fn termina sin error y el contexto sigue vigente.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.TxRepos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	tx := s.data.clone()
	if err := fn(ctx, reposFor(view{tx: tx})); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	s.data = tx
	return nil
}

// Repos devuelve repositorios fuera de transacción (cada llamada toma el lock).
func (s *Store) Repos() inventory.TxRepos {
	return reposFor(view{store: s})
}

// view apunta al estado de una transacción abierta o al almacén compartido.
type view struct {
	store *Store
	tx    *state
}

func (v view) do(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.data)
}

func reposFor(v view) inventory.TxRepos {
	return inventory.TxRepos{
		Stock:       &StockRepo{v: v},
		Warehouses:  &WarehouseRepo{v: v},
		Products:    &ProductRepo{v: v},
		Adjustments: &AdjustmentRepo{v: v},
		Movements:   &MovementRepo{v: v},
		Orders:      &ProductionOrderRepo{v: v},
		Bundles:     &BundleRepo{v: v},
	}
}

// ── Semilla ──────────────────────────────────────────────────────────────────
// Catálogo, bodegas y usuarios quedan fuera del libro mayor; se cargan directamente.

// AddProduct registra un producto y devuelve su ID (asignado si venía en 0).
func (s *Store) AddProduct(p entity.Product) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.data.nextID()
	}
	s.data.products[p.ID] = &p
	return p.ID
}

// AddWarehouse registra una bodega y devuelve su ID.
func (s *Store) AddWarehouse(w entity.Warehouse) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w.ID == 0 {
		w.ID = s.data.nextID()
	}
	s.data.warehouses[w.ID] = &w
	return w.ID
}

// AddUser registra el nombre de un usuario para resolver UserRef en los listados.
func (s *Store) AddUser(id int64, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.users[id] = name
}

// AddBundle registra una lista de materiales y devuelve su ID.
func (s *Store) AddBundle(b entity.Bundle) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == 0 {
		b.ID = s.data.nextID()
	}
	b.Items = append([]entity.BundleItem(nil), b.Items...)
	s.data.bundles[b.ID] = &b
	return b.ID
}

// SetStock fija la cantidad de un registro de stock, creándolo si hace falta.
func (s *Store) SetStock(productID, warehouseID, quantity int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := stockKey{productID, warehouseID}
	rec, ok := s.data.stock[k]
	if !ok {
		rec = &entity.StockRecord{ID: s.data.nextID(), ProductID: productID, WarehouseID: warehouseID, Status: entity.StockStatusActive}
		s.data.stock[k] = rec
	}
	rec.Quantity = quantity
	rec.UpdatedAt = time.Now()
}

// StockOf devuelve la cantidad actual (0 si no hay registro) y si el registro existe.
func (s *Store) StockOf(productID, warehouseID int64) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.data.stock[stockKey{productID, warehouseID}]
	if !ok {
		return 0, false
	}
	return rec.Quantity, true
}
