package inventory

import "github.com/shopspring/decimal"

// =============================================================================
// COST LOT - A batch of stock with a fixed unit cost
// =============================================================================

// CostLot is a batch of stock created by a purchase, production, or positive
// adjustment. FIFO consumes lots front to back, LIFO back to front; the
// weighted-average strategy collapses all lots into one after every inbound.
type CostLot struct {
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
}

func (l CostLot) Value() decimal.Decimal { return l.Quantity.Mul(l.UnitCost) }

// LotQueue is an ordered sequence of lots, oldest first.
// All operations are value-semantics: callers get a new queue back and the
// original is untouched, which is what makes strategy failure atomic.
type LotQueue []CostLot

// Push appends a new lot to the back of the queue.
func (q LotQueue) Push(lot CostLot) LotQueue {
	out := q.Clone()
	return append(out, lot)
}

func (q LotQueue) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, lot := range q {
		total = total.Add(lot.Quantity)
	}
	return total
}

func (q LotQueue) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, lot := range q {
		total = total.Add(lot.Value())
	}
	return total
}

// AverageUnitCost returns value-weighted mean cost across remaining lots,
// or zero for an empty queue.
func (q LotQueue) AverageUnitCost() decimal.Decimal {
	qty := q.TotalQuantity()
	if qty.IsZero() || qty.IsNegative() {
		return decimal.Zero
	}
	return q.TotalValue().Div(qty)
}

func (q LotQueue) Clone() LotQueue {
	out := make(LotQueue, len(q))
	copy(out, q)
	return out
}
