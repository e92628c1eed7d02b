/*
costing.go - Pluggable costing strategies

PURPOSE:
  Determines the cost attributed to a consumption event. The three
  strategies differ only in which lots they draw down:

  FIFO:             Oldest lots first. Partially consumed lots keep their
                    remainder at the same unit cost.
  LIFO:             Newest lots first, symmetric to FIFO.
  WEIGHTED_AVERAGE: Unit cost is the value-weighted mean of remaining
                    stock. All lots collapse into a single averaged lot
                    after every inbound event, so per-lot history is not
                    retained (matching recompute-on-purchase semantics).

PURITY:
  ResolveCost and Absorb are pure functions of the lot queue. On failure
  the original queue is returned unchanged, which gives the aggregator
  its atomicity guarantee: a rejected consumption leaves no trace.

EDGE CASES:
  Consuming more than the total remaining quantity across all lots fails
  with InsufficientStock rather than silently producing a zero-cost
  remainder.

SEE ALSO:
  - lot.go: LotQueue semantics
  - aggregator.go: Where strategies are driven from
*/
package inventory

import "github.com/shopspring/decimal"

// =============================================================================
// COSTING METHOD
// =============================================================================

type CostingMethod string

const (
	CostingFIFO            CostingMethod = "FIFO"
	CostingLIFO            CostingMethod = "LIFO"
	CostingWeightedAverage CostingMethod = "WEIGHTED_AVERAGE"
)

// Valid reports whether the method is one of the supported strategies.
func (m CostingMethod) Valid() bool {
	switch m {
	case CostingFIFO, CostingLIFO, CostingWeightedAverage:
		return true
	}
	return false
}

// =============================================================================
// COSTING STRATEGY
// =============================================================================

// CostingStrategy resolves the cost of stock leaving the lot queue and
// absorbs stock entering it. Implementations are stateless.
type CostingStrategy interface {
	Method() CostingMethod

	// ResolveCost consumes quantity from the queue, returning the total
	// cost attributed and the updated queue. Fails with InsufficientStock
	// when quantity exceeds the queue total; the returned queue is then
	// the unchanged input.
	ResolveCost(quantity decimal.Decimal, lots LotQueue) (decimal.Decimal, LotQueue, error)

	// Absorb merges an inbound lot into the queue.
	Absorb(lot CostLot, lots LotQueue) LotQueue
}

// StrategyFor returns the strategy for a costing method.
func StrategyFor(method CostingMethod) (CostingStrategy, error) {
	switch method {
	case CostingFIFO:
		return fifoStrategy{}, nil
	case CostingLIFO:
		return lifoStrategy{}, nil
	case CostingWeightedAverage:
		return weightedAverageStrategy{}, nil
	default:
		return nil, &InvalidCostingMethodError{Method: method}
	}
}

// =============================================================================
// FIFO
// =============================================================================

type fifoStrategy struct{}

func (fifoStrategy) Method() CostingMethod { return CostingFIFO }

func (fifoStrategy) ResolveCost(quantity decimal.Decimal, lots LotQueue) (decimal.Decimal, LotQueue, error) {
	return drainLots(quantity, lots, false)
}

func (fifoStrategy) Absorb(lot CostLot, lots LotQueue) LotQueue {
	return lots.Push(lot)
}

// =============================================================================
// LIFO
// =============================================================================

type lifoStrategy struct{}

func (lifoStrategy) Method() CostingMethod { return CostingLIFO }

func (lifoStrategy) ResolveCost(quantity decimal.Decimal, lots LotQueue) (decimal.Decimal, LotQueue, error) {
	return drainLots(quantity, lots, true)
}

func (lifoStrategy) Absorb(lot CostLot, lots LotQueue) LotQueue {
	return lots.Push(lot)
}

// drainLots consumes quantity from the queue, front-to-back or back-to-front.
// Checks the total up front so a shortfall never partially drains the queue.
func drainLots(quantity decimal.Decimal, lots LotQueue, newestFirst bool) (decimal.Decimal, LotQueue, error) {
	available := lots.TotalQuantity()
	if quantity.GreaterThan(available) {
		return decimal.Zero, lots, &InsufficientStockError{
			Available: available,
			Requested: quantity,
			Shortfall: quantity.Sub(available),
		}
	}

	remaining := quantity
	cost := decimal.Zero
	out := lots.Clone()

	next := func() int {
		if newestFirst {
			return len(out) - 1
		}
		return 0
	}

	for remaining.IsPositive() {
		i := next()
		lot := out[i]

		if lot.Quantity.GreaterThan(remaining) {
			cost = cost.Add(remaining.Mul(lot.UnitCost))
			out[i].Quantity = lot.Quantity.Sub(remaining)
			remaining = decimal.Zero
			break
		}

		cost = cost.Add(lot.Value())
		remaining = remaining.Sub(lot.Quantity)
		if newestFirst {
			out = out[:i]
		} else {
			out = out[1:]
		}
	}

	return cost, out, nil
}

// =============================================================================
// WEIGHTED AVERAGE
// =============================================================================

type weightedAverageStrategy struct{}

func (weightedAverageStrategy) Method() CostingMethod { return CostingWeightedAverage }

func (weightedAverageStrategy) ResolveCost(quantity decimal.Decimal, lots LotQueue) (decimal.Decimal, LotQueue, error) {
	available := lots.TotalQuantity()
	if quantity.GreaterThan(available) {
		return decimal.Zero, lots, &InsufficientStockError{
			Available: available,
			Requested: quantity,
			Shortfall: quantity.Sub(available),
		}
	}

	avg := lots.AverageUnitCost()
	cost := quantity.Mul(avg)

	left := available.Sub(quantity)
	if left.IsZero() {
		return cost, LotQueue{}, nil
	}
	return cost, LotQueue{{Quantity: left, UnitCost: avg}}, nil
}

// Absorb collapses the queue into a single lot at the new weighted average:
// ((prevQty * prevCost) + (inQty * inCost)) / (prevQty + inQty)
func (weightedAverageStrategy) Absorb(lot CostLot, lots LotQueue) LotQueue {
	totalQty := lots.TotalQuantity().Add(lot.Quantity)
	if totalQty.IsZero() || totalQty.IsNegative() {
		return LotQueue{}
	}
	totalValue := lots.TotalValue().Add(lot.Value())
	return LotQueue{{Quantity: totalQty, UnitCost: totalValue.Div(totalQty)}}
}
