package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

func (f *fixture) adjust(t *testing.T, in inventory.AdjustInput) (*inventory.AdjustResult, error) {
	t.Helper()
	var res *inventory.AdjustResult
	err := f.store.Run(context.Background(), func(ctx context.Context, repos inventory.TxRepos) error {
		var err error
		res, err = f.ledger.Adjust(ctx, repos, in)
		return err
	})
	return res, err
}

func (f *fixture) countEvents(t *testing.T) (adjustments, movements int) {
	t.Helper()
	repos := f.store.Repos()
	all := repository.EventFilter{Scope: repository.TenantScope{AllCompanies: true}}
	adjs, err := repos.Adjustments.List(context.Background(), all)
	require.NoError(t, err)
	movs, err := repos.Movements.List(context.Background(), all)
	require.NoError(t, err)
	return len(adjs), len(movs)
}

// ── Adjust ───────────────────────────────────────────────────────────────────

func TestAdjust_EntradaCreaRegistroAusente(t *testing.T) {
	f := newFixture(t, 0)

	res, err := f.adjust(t, inventory.AdjustInput{
		ProductID: f.productID, WarehouseID: f.warehouseID, Delta: 8,
		Reason: "recepción", Streams: []entity.EventStream{entity.StreamMovement},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(8), res.Stock.Quantity)
	assert.Equal(t, entity.StockStatusActive, res.Stock.Status)

	require.Len(t, res.Events, 1)
	mov := res.Events[0].Movement
	require.NotNil(t, mov)
	assert.Equal(t, entity.EventTypeIncrease, mov.Type)
	assert.Equal(t, int64(8), mov.Quantity)
	assert.Equal(t, companyID, mov.CompanyID)

	qty, ok := f.store.StockOf(f.productID, f.warehouseID)
	assert.True(t, ok)
	assert.Equal(t, int64(8), qty)
}

func TestAdjust_SalidaSinRegistroEsStockInsuficiente(t *testing.T) {
	f := newFixture(t, 0)

	_, err := f.adjust(t, inventory.AdjustInput{
		ProductID: f.productID, WarehouseID: f.warehouseID, Delta: -1,
		Streams: []entity.EventStream{entity.StreamAdjustment},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, exists := f.store.StockOf(f.productID, f.warehouseID)
	assert.False(t, exists, "una salida fallida no crea el registro")
}

func TestAdjust_SalidaMayorAlDisponibleNoCambiaNada(t *testing.T) {
	f := newFixture(t, 0)
	f.store.SetStock(f.productID, f.warehouseID, 3)

	_, err := f.adjust(t, inventory.AdjustInput{
		ProductID: f.productID, WarehouseID: f.warehouseID, Delta: -4,
		Streams: []entity.EventStream{entity.StreamAdjustment, entity.StreamMovement},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	qty, _ := f.store.StockOf(f.productID, f.warehouseID)
	assert.Equal(t, int64(3), qty)
	adjs, movs := f.countEvents(t)
	assert.Zero(t, adjs)
	assert.Zero(t, movs)
}

func TestAdjust_CapacidadExcedida(t *testing.T) {
	f := newFixture(t, 10)
	other := f.store.AddProduct(entity.Product{CompanyID: companyID, SKU: "SKU-2", Name: "Azúcar"})
	f.store.SetStock(other, f.warehouseID, 7)

	_, err := f.adjust(t, inventory.AdjustInput{
		ProductID: f.productID, WarehouseID: f.warehouseID, Delta: 4,
		Streams: []entity.EventStream{entity.StreamMovement},
	})
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
	_, exists := f.store.StockOf(f.productID, f.warehouseID)
	assert.False(t, exists)

	res, err := f.adjust(t, inventory.AdjustInput{
		ProductID: f.productID, WarehouseID: f.warehouseID, Delta: 3,
		Streams: []entity.EventStream{entity.StreamMovement},
	})
	require.NoError(t, err, "justo en el límite se permite")
	assert.Equal(t, int64(3), res.Stock.Quantity)
}

func TestAdjust_SalidaNoValidaCapacidad(t *testing.T) {
	f := newFixture(t, 5)
	f.store.SetStock(f.productID, f.warehouseID, 9) // ya excedida por carga administrativa

	res, err := f.adjust(t, inventory.AdjustInput{
		ProductID: f.productID, WarehouseID: f.warehouseID, Delta: -2,
		Streams: []entity.EventStream{entity.StreamMovement},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.Stock.Quantity)
}

func TestAdjust_ReferenciasInvalidas(t *testing.T) {
	f := newFixture(t, 0)
	streams := []entity.EventStream{entity.StreamMovement}

	_, err := f.adjust(t, inventory.AdjustInput{ProductID: 0, WarehouseID: f.warehouseID, Delta: 1, Streams: streams})
	assert.ErrorIs(t, err, domain.ErrInvalidReference)

	_, err = f.adjust(t, inventory.AdjustInput{ProductID: 999, WarehouseID: f.warehouseID, Delta: 1, Streams: streams})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = f.adjust(t, inventory.AdjustInput{ProductID: f.productID, WarehouseID: 999, Delta: 1, Streams: streams})
	assert.ErrorIs(t, err, domain.ErrWarehouseNotFound)

	_, err = f.adjust(t, inventory.AdjustInput{ProductID: f.productID, WarehouseID: f.warehouseID, Delta: 0, Streams: streams})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.adjust(t, inventory.AdjustInput{ProductID: f.productID, WarehouseID: f.warehouseID, Delta: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin flujo no hay evento")
}

func TestAdjust_TipoDebeCoincidirConSigno(t *testing.T) {
	f := newFixture(t, 0)
	_, err := f.adjust(t, inventory.AdjustInput{
		ProductID: f.productID, WarehouseID: f.warehouseID, Delta: 5, Type: entity.EventTypeShipment,
		Streams: []entity.EventStream{entity.StreamMovement},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAdjust_AmbosFlujos(t *testing.T) {
	f := newFixture(t, 0)

	res, err := f.adjust(t, inventory.AdjustInput{
		ProductID: f.productID, WarehouseID: f.warehouseID, Delta: 2, Type: entity.EventTypeReceive, CreatedBy: 10,
		Streams: []entity.EventStream{entity.StreamAdjustment, entity.StreamMovement},
	})
	require.NoError(t, err)
	require.Len(t, res.Events, 2)

	adj := res.Events[0].Adjustment
	require.NotNil(t, adj)
	assert.Equal(t, entity.EventTypeIncrease, adj.Type, "el flujo de ajustes sólo conoce INCREASE/DECREASE")
	assert.Equal(t, int64(10), adj.CreatedBy)

	mov := res.Events[1].Movement
	require.NotNil(t, mov)
	assert.Equal(t, entity.EventTypeReceive, mov.Type)
	assert.Equal(t, adj.CreatedAt, mov.CreatedAt)
}

func TestAdjust_CostoPromedioPonderado(t *testing.T) {
	f := newFixture(t, 0)
	f.store.SetStock(f.productID, f.warehouseID, 10) // 10 u a $100

	cost := decimal.NewFromInt(200)
	_, err := f.adjust(t, inventory.AdjustInput{
		ProductID: f.productID, WarehouseID: f.warehouseID, Delta: 10, UnitCost: &cost,
		Streams: []entity.EventStream{entity.StreamMovement},
	})
	require.NoError(t, err)

	p, err := f.store.Repos().Products.GetByID(context.Background(), f.productID)
	require.NoError(t, err)
	assert.True(t, p.Cost.Equal(decimal.NewFromInt(150)), "costo esperado 150, obtenido %s", p.Cost)
}

// ── Propiedades ──────────────────────────────────────────────────────────────

// Dos salidas concurrentes de 5 sobre un stock de 5: exactamente una gana.
func TestAdjust_CarreraDeSobreventa(t *testing.T) {
	f := newFixture(t, 0)
	f.store.SetStock(f.productID, f.warehouseID, 5)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.adjust(t, inventory.AdjustInput{
				ProductID: f.productID, WarehouseID: f.warehouseID, Delta: -5,
				Streams: []entity.EventStream{entity.StreamAdjustment},
			})
		}(i)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			insufficient++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insufficient)

	qty, _ := f.store.StockOf(f.productID, f.warehouseID)
	assert.Equal(t, int64(0), qty)
}

func TestAdjust_NuncaNegativo(t *testing.T) {
	f := newFixture(t, 0)
	deltas := []int64{5, -3, -3, 4, -6, -1, 2, -2, -1}
	var expected int64
	for _, d := range deltas {
		_, err := f.adjust(t, inventory.AdjustInput{
			ProductID: f.productID, WarehouseID: f.warehouseID, Delta: d,
			Streams: []entity.EventStream{entity.StreamMovement},
		})
		if expected+d < 0 {
			assert.ErrorIs(t, err, domain.ErrInsufficientStock, "delta %d sobre %d", d, expected)
		} else {
			require.NoError(t, err)
			expected += d
		}
		qty, _ := f.store.StockOf(f.productID, f.warehouseID)
		assert.Equal(t, expected, qty)
		assert.GreaterOrEqual(t, qty, int64(0))
	}
}

func TestAdjust_MonotoniaDeCapacidad(t *testing.T) {
	f := newFixture(t, 20)
	var total int64
	for _, d := range []int64{7, 7, 7, 6, 1, 1} {
		_, err := f.adjust(t, inventory.AdjustInput{
			ProductID: f.productID, WarehouseID: f.warehouseID, Delta: d,
			Streams: []entity.EventStream{entity.StreamMovement},
		})
		if total+d > 20 {
			assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
		} else {
			require.NoError(t, err)
			total += d
		}
	}
	qty, _ := f.store.StockOf(f.productID, f.warehouseID)
	assert.Equal(t, int64(20), qty)
}

// ── ValidateCapacity ─────────────────────────────────────────────────────────

func TestValidateCapacity(t *testing.T) {
	f := newFixture(t, 10)
	f.store.SetStock(f.productID, f.warehouseID, 4)

	check := func(warehouseID, increase int64) error {
		return f.store.Run(context.Background(), func(ctx context.Context, repos inventory.TxRepos) error {
			return f.ledger.ValidateCapacity(ctx, repos, warehouseID, increase)
		})
	}
	assert.NoError(t, check(f.warehouseID, 6))
	assert.ErrorIs(t, check(f.warehouseID, 7), domain.ErrCapacityExceeded)
	assert.ErrorIs(t, check(999, 1), domain.ErrWarehouseNotFound)
	assert.ErrorIs(t, check(f.warehouseID, -1), domain.ErrInvalidInput)
}

// unitCounter cuenta las unidades que el libro mayor reporta.
type unitCounter struct {
	inventory.NopMetrics
	units    int64
	rejected int
}

func (m *unitCounter) StockAdjusted(_ entity.EventStream, _ string, quantity int64) { m.units += quantity }
func (m *unitCounter) AdjustRejected(string)                                      { m.rejected++ }

func TestAdjust_UnidadesSeReportanAlConfirmar(t *testing.T) {
	f := newFixture(t, 0)
	counter := &unitCounter{}
	f.ledger = inventory.NewStockLedger(inventory.NewEventRecorder(), counter)
	boom := errors.New("falla posterior")

	err := f.store.Run(context.Background(), func(ctx context.Context, repos inventory.TxRepos) error {
		if _, err := f.ledger.Adjust(ctx, repos, inventory.AdjustInput{
			ProductID: f.productID, WarehouseID: f.warehouseID, Delta: 5,
			Streams: []entity.EventStream{entity.StreamMovement},
		}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, counter.units, "la transacción descartada no reporta unidades")

	res, err := f.adjust(t, inventory.AdjustInput{
		ProductID: f.productID, WarehouseID: f.warehouseID, Delta: 5,
		Streams: []entity.EventStream{entity.StreamAdjustment, entity.StreamMovement},
	})
	require.NoError(t, err)
	assert.Zero(t, counter.units)
	f.ledger.Committed(res)
	assert.Equal(t, int64(10), counter.units, "una vez por flujo")

	_, err = f.adjust(t, inventory.AdjustInput{
		ProductID: f.productID, WarehouseID: f.warehouseID, Delta: -50,
		Streams: []entity.EventStream{entity.StreamMovement},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 1, counter.rejected)
}
