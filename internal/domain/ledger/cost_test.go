package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAverageCost(t *testing.T) {
	cases := []struct {
		name         string
		onHand       int64
		cost         string
		incoming     int64
		incomingCost string
		want         string
	}{
		{"10 a $100 + 10 a $200", 10, "100", 10, "200", "150"},
		{"sin existencias fija el costo de la entrada", 0, "0", 5, "12.5", "12.5"},
		{"entrada nula conserva el costo", 8, "40", 0, "999", "40"},
		{"redondeo a cuatro decimales", 2, "1", 1, "0", "0.6667"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ledger.AverageCost(tc.onHand, dec(tc.cost), tc.incoming, dec(tc.incomingCost))
			assert.True(t, got.Equal(dec(tc.want)), "esperado %s, obtenido %s", tc.want, got)
		})
	}
}

func TestUnitCostOf(t *testing.T) {
	assert.True(t, ledger.UnitCostOf(decimal.NewFromInt(100), 4).Equal(decimal.NewFromInt(25)))
	assert.True(t, ledger.UnitCostOf(decimal.NewFromInt(10), 3).Equal(dec("3.3333")))
	assert.True(t, ledger.UnitCostOf(decimal.NewFromInt(100), 0).IsZero())
}
