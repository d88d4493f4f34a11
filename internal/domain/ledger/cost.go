package ledger

import "github.com/shopspring/decimal"

// CostScale decimales con que se guarda products.cost (NUMERIC(18,4)).
const CostScale = 4

// AverageCost es el costo promedio ponderado tras recibir incoming unidades a incomingCost
// sobre onHand unidades valoradas a cost. Existencias negativas o nulas no ponderan: la entrada
// fija el costo. El resultado se redondea a CostScale.
func AverageCost(onHand int64, cost decimal.Decimal, incoming int64, incomingCost decimal.Decimal) decimal.Decimal {
	if incoming <= 0 {
		return cost.Round(CostScale)
	}
	if onHand <= 0 {
		return incomingCost.Round(CostScale)
	}
	held := decimal.NewFromInt(onHand)
	in := decimal.NewFromInt(incoming)
	value := held.Mul(cost).Add(in.Mul(incomingCost))
	return value.Div(held.Add(in)).Round(CostScale)
}

// UnitCostOf reparte un costo total entre quantity unidades (0 si quantity <= 0).
func UnitCostOf(total decimal.Decimal, quantity int64) decimal.Decimal {
	if quantity <= 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(quantity)).Round(CostScale)
}
