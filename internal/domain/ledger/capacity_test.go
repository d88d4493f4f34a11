package ledger_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
)

func TestCheckCapacity(t *testing.T) {
	wh := &entity.Warehouse{ID: 1, Name: "Central", CapacityLimit: 100}

	cases := []struct {
		name     string
		occupied int64
		increase int64
		wantErr  error
	}{
		{"justo en el límite", 90, 10, nil},
		{"excede por una unidad", 90, 11, domain.ErrCapacityExceeded},
		{"bodega vacía", 0, 100, nil},
		{"entrada cero", 100, 0, nil},
		{"entrada negativa", 0, -1, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ledger.CheckCapacity(wh, tc.occupied, tc.increase)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestCheckCapacity_SinLimite(t *testing.T) {
	wh := &entity.Warehouse{ID: 1, CapacityLimit: 0}
	assert.NoError(t, ledger.CheckCapacity(wh, 1_000_000, 1_000_000))
}

func TestCheckCapacity_EntradaEnormeNoDesborda(t *testing.T) {
	wh := &entity.Warehouse{ID: 1, Name: "Central", CapacityLimit: 100}

	assert.ErrorIs(t, ledger.CheckCapacity(wh, 50, math.MaxInt64-10), domain.ErrCapacityExceeded)
	assert.ErrorIs(t, ledger.CheckCapacity(wh, 50, math.MaxInt64), domain.ErrCapacityExceeded)
	assert.ErrorIs(t, ledger.CheckCapacity(wh, 120, 1), domain.ErrCapacityExceeded, "ocupación previa sobre el límite")
}

func TestApplyDelta(t *testing.T) {
	next, err := ledger.ApplyDelta(5, -5)
	require.NoError(t, err)
	assert.Equal(t, int64(0), next)

	next, err = ledger.ApplyDelta(5, -6)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(5), next, "la cantidad no cambia si la salida falla")

	next, err = ledger.ApplyDelta(0, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), next)
}

func TestApplyDelta_EntradaFueraDeRango(t *testing.T) {
	next, err := ledger.ApplyDelta(5, math.MaxInt64-4)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, int64(5), next)

	next, err = ledger.ApplyDelta(5, math.MaxInt64-5)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), next)
}
