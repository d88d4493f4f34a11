package inventory_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func (f *fixture) record(stream entity.EventStream, fields entity.EventFields) (*entity.RecordedEvent, error) {
	rec := inventory.NewEventRecorder()
	var out *entity.RecordedEvent
	err := f.store.Run(context.Background(), func(ctx context.Context, repos inventory.TxRepos) error {
		var err error
		out, err = rec.Record(ctx, repos, stream, fields)
		return err
	})
	return out, err
}

func TestRecord_AjusteConReferenciaAutogenerada(t *testing.T) {
	f := newFixture(t, 0)

	ev, err := f.record(entity.StreamAdjustment, entity.EventFields{
		CompanyID: companyID, ProductID: f.productID, WarehouseID: f.warehouseID,
		Type: entity.EventTypeDecrease, Quantity: 2, Reason: "merma", CreatedBy: 10,
	})
	require.NoError(t, err)
	require.NotNil(t, ev.Adjustment)
	assert.Nil(t, ev.Movement)
	assert.True(t, strings.HasPrefix(ev.Adjustment.ReferenceNumber, inventory.ReferencePrefix))
	assert.Equal(t, entity.AdjustmentStatusCompleted, ev.Adjustment.Status)
	assert.NotZero(t, ev.Adjustment.ID)
	assert.False(t, ev.Adjustment.CreatedAt.IsZero())
}

func TestRecord_ConservaReferenciaDada(t *testing.T) {
	f := newFixture(t, 0)
	ev, err := f.record(entity.StreamAdjustment, entity.EventFields{
		ProductID: f.productID, WarehouseID: f.warehouseID, Type: entity.EventTypeIncrease, Quantity: 1,
		ReferenceNumber: "CONTEO-2026-03",
	})
	require.NoError(t, err)
	assert.Equal(t, "CONTEO-2026-03", ev.Adjustment.ReferenceNumber)
}

func TestRecord_MovimientoConUbicacionDestino(t *testing.T) {
	f := newFixture(t, 0)
	loc := int64(44)
	ev, err := f.record(entity.StreamMovement, entity.EventFields{
		ProductID: f.productID, WarehouseID: f.warehouseID, Type: entity.EventTypePick, Quantity: 3, ToLocationID: &loc,
	})
	require.NoError(t, err)
	require.NotNil(t, ev.Movement)
	require.NotNil(t, ev.Movement.ToLocationID)
	assert.Equal(t, int64(44), *ev.Movement.ToLocationID)
}

func TestRecord_CamposObligatorios(t *testing.T) {
	f := newFixture(t, 0)
	base := entity.EventFields{ProductID: f.productID, WarehouseID: f.warehouseID, Type: entity.EventTypeIncrease, Quantity: 1}

	cases := []struct {
		name   string
		stream entity.EventStream
		mutate func(*entity.EventFields)
	}{
		{"sin producto", entity.StreamMovement, func(e *entity.EventFields) { e.ProductID = 0 }},
		{"cantidad cero", entity.StreamMovement, func(e *entity.EventFields) { e.Quantity = 0 }},
		{"sin tipo", entity.StreamMovement, func(e *entity.EventFields) { e.Type = "" }},
		{"tipo ajeno al ajuste", entity.StreamAdjustment, func(e *entity.EventFields) { e.Type = entity.EventTypePick }},
		{"tipo desconocido", entity.StreamMovement, func(e *entity.EventFields) { e.Type = "TRANSFER" }},
		{"flujo desconocido", entity.EventStream("ledger"), func(e *entity.EventFields) {}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fields := base
			tc.mutate(&fields)
			_, err := f.record(tc.stream, fields)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}
