/*
aggregator.go - Ledger replay and state derivation

PURPOSE:
  Folds an ordered sequence of ledger events for one item type into a
  final inventory state, attributing a cost to every consumption along
  the way. This is the engine's source of truth: quantity-on-hand and
  stock value are always derived by replay, never read from a stored
  running total.

REPLAY CONTRACT:
  - Events are processed strictly in chronological order (date ascending,
    creation order on ties). Replay sorts defensively.
  - Purchase / production / positive adjustment push a cost lot via the
    active strategy's Absorb.
  - Consumption / wastage / negative adjustment draw lots down via the
    strategy's ResolveCost.
  - An invalid event aborts the replay with the event left unapplied.

NEGATIVE STOCK:
  The policy is configurable, default reject:

  RejectNegative: A consumption that would drive quantity-on-hand below
                  zero fails with InsufficientStock and the state up to
                  that event is discarded by the caller.
  AllowNegative:  The event applies; the covered portion is priced from
                  the lots, the uncovered remainder at the item's
                  reference cost, and a warning is recorded on the state.
                  Inbound stock recorded after a negative excursion
                  covers the deficit before forming a new lot, so the lot
                  queue always holds max(quantity-on-hand, 0) units and a
                  later excursion below zero warns again.

  A negative quantity-on-hand under the reject policy indicates a data or
  ordering error and is flagged, not silently clamped.

SEE ALSO:
  - costing.go: Strategy implementations
  - event.go: Event ordering
*/
package inventory

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// NEGATIVE STOCK POLICY
// =============================================================================

type NegativeStockPolicy string

const (
	// RejectNegative fails consumption that exceeds available stock. Default.
	RejectNegative NegativeStockPolicy = "reject"

	// AllowNegative applies the consumption and records a warning. The
	// uncovered remainder is priced at the aggregator's reference cost.
	AllowNegative NegativeStockPolicy = "allow"
)

// =============================================================================
// AGGREGATOR
// =============================================================================

// Aggregator replays ledger events for a single item type.
type Aggregator struct {
	Strategy CostingStrategy

	// Policy for consumption exceeding available stock. Empty means reject.
	Policy NegativeStockPolicy

	// ReferenceCost prices uncovered consumption under AllowNegative and
	// positive adjustments that carry no unit cost. Typically the item
	// type's current reference cost per unit.
	ReferenceCost decimal.Decimal
}

// NewAggregator builds an aggregator for the given costing method with the
// default reject policy.
func NewAggregator(method CostingMethod) (*Aggregator, error) {
	strategy, err := StrategyFor(method)
	if err != nil {
		return nil, err
	}
	return &Aggregator{Strategy: strategy, Policy: RejectNegative}, nil
}

// ConsumptionCost is the cost attributed to one outbound event during replay.
type ConsumptionCost struct {
	EventID  EventID
	Date     Date
	Type     EventType
	Quantity decimal.Decimal
	Cost     decimal.Decimal
}

// UnitCost returns the effective per-unit cost of the consumption.
func (c ConsumptionCost) UnitCost() decimal.Decimal {
	if c.Quantity.IsZero() {
		return decimal.Zero
	}
	return c.Cost.Div(c.Quantity)
}

// Warning records a non-fatal anomaly observed during replay.
type Warning struct {
	EventID EventID
	Date    Date
	Message string
}

// State is the derived inventory state for one item type after replay.
type State struct {
	ItemTypeID     ItemTypeID
	QuantityOnHand decimal.Decimal
	Lots           LotQueue
	Warnings       []Warning

	// Running totals over the replayed ledger
	TotalPurchased decimal.Decimal
	TotalProduced  decimal.Decimal
	TotalConsumed  decimal.Decimal
	TotalWasted    decimal.Decimal
}

// TotalValue is the monetary value of remaining stock.
func (s *State) TotalValue() decimal.Decimal { return s.Lots.TotalValue() }

// AverageUnitCost is the value-weighted mean cost of remaining stock.
func (s *State) AverageUnitCost() decimal.Decimal { return s.Lots.AverageUnitCost() }

// Replay folds events into a final state plus per-outbound-event costs.
// The input slice is not mutated; events are sorted by (date, seq) first.
func (a *Aggregator) Replay(itemTypeID ItemTypeID, events []LedgerEvent) (*State, []ConsumptionCost, error) {
	state := &State{ItemTypeID: itemTypeID}
	var costs []ConsumptionCost

	for _, ev := range SortEvents(events) {
		cost, err := a.apply(state, ev)
		if err != nil {
			return nil, nil, err
		}
		if cost != nil {
			costs = append(costs, *cost)
		}
	}
	return state, costs, nil
}

// apply processes a single event against the state. Outbound events return
// the attributed cost. Application is all-or-nothing: on error the state
// is unchanged.
func (a *Aggregator) apply(state *State, ev LedgerEvent) (*ConsumptionCost, error) {
	switch ev.Type {
	case EventPurchase, EventProduction:
		return nil, a.applyInbound(state, ev)
	case EventConsumption, EventWastage:
		return a.applyOutbound(state, ev, ev.Quantity.Value)
	case EventAdjustment:
		return a.applyAdjustment(state, ev)
	default:
		return nil, &InvalidQuantityError{
			ItemTypeID: ev.ItemTypeID, EventType: ev.Type,
			Value: ev.Quantity.Value, Reason: "unrecognized event type",
		}
	}
}

func (a *Aggregator) applyInbound(state *State, ev LedgerEvent) error {
	if !ev.Quantity.IsPositive() {
		return &InvalidQuantityError{
			ItemTypeID: ev.ItemTypeID, EventType: ev.Type,
			Value: ev.Quantity.Value, Reason: "quantity must be positive",
		}
	}

	unitCost := ev.UnitCost
	if ev.Type == EventProduction {
		if ev.CostComponents == nil {
			return &InvalidQuantityError{
				ItemTypeID: ev.ItemTypeID, EventType: ev.Type,
				Value: ev.Quantity.Value, Reason: "production event missing cost components",
			}
		}
		unitCost = ev.CostComponents.Total().Div(ev.Quantity.Value)
	}

	a.absorb(state, ev.Quantity.Value, unitCost)

	switch ev.Type {
	case EventPurchase:
		state.TotalPurchased = state.TotalPurchased.Add(ev.Quantity.Value)
	case EventProduction:
		state.TotalProduced = state.TotalProduced.Add(ev.Quantity.Value)
	}
	return nil
}

// absorb adds inbound stock. Units consumed while the balance was negative
// are already spent, so a restock covers that deficit before the remainder
// forms a lot; the lot queue holds max(quantity-on-hand, 0) units.
func (a *Aggregator) absorb(state *State, quantity, unitCost decimal.Decimal) {
	lotQty := quantity
	if deficit := state.QuantityOnHand.Neg(); deficit.IsPositive() {
		lotQty = quantity.Sub(deficit)
	}
	if lotQty.IsPositive() {
		state.Lots = a.Strategy.Absorb(CostLot{Quantity: lotQty, UnitCost: unitCost}, state.Lots)
	}
	state.QuantityOnHand = state.QuantityOnHand.Add(quantity)
}

func (a *Aggregator) applyOutbound(state *State, ev LedgerEvent, quantity decimal.Decimal) (*ConsumptionCost, error) {
	if !quantity.IsPositive() {
		return nil, &InvalidQuantityError{
			ItemTypeID: ev.ItemTypeID, EventType: ev.Type,
			Value: quantity, Reason: "quantity must be positive",
		}
	}

	available := state.Lots.TotalQuantity()
	covered := quantity
	uncovered := decimal.Zero

	if quantity.GreaterThan(available) {
		if a.policy() == RejectNegative {
			return nil, &InsufficientStockError{
				ItemTypeID: ev.ItemTypeID,
				Available:  available,
				Requested:  quantity,
				Shortfall:  quantity.Sub(available),
			}
		}
		covered = available
		uncovered = quantity.Sub(available)
	}

	cost := decimal.Zero
	if covered.IsPositive() {
		resolved, lots, err := a.Strategy.ResolveCost(covered, state.Lots)
		if err != nil {
			return nil, err
		}
		cost = resolved
		state.Lots = lots
	}

	if uncovered.IsPositive() {
		cost = cost.Add(uncovered.Mul(a.ReferenceCost))
		state.Warnings = append(state.Warnings, Warning{
			EventID: ev.ID,
			Date:    ev.Date,
			Message: "consumption exceeded available stock by " + uncovered.String(),
		})
	}

	state.QuantityOnHand = state.QuantityOnHand.Sub(quantity)

	switch ev.Type {
	case EventWastage:
		state.TotalWasted = state.TotalWasted.Add(quantity)
	case EventConsumption:
		state.TotalConsumed = state.TotalConsumed.Add(quantity)
	}

	return &ConsumptionCost{
		EventID:  ev.ID,
		Date:     ev.Date,
		Type:     ev.Type,
		Quantity: quantity,
		Cost:     cost,
	}, nil
}

func (a *Aggregator) applyAdjustment(state *State, ev LedgerEvent) (*ConsumptionCost, error) {
	qty := ev.Quantity.Value
	if qty.IsZero() {
		return nil, &InvalidQuantityError{
			ItemTypeID: ev.ItemTypeID, EventType: ev.Type,
			Value: qty, Reason: "adjustment quantity must be nonzero",
		}
	}

	if qty.IsPositive() {
		unitCost := ev.UnitCost
		if unitCost.IsZero() {
			unitCost = a.ReferenceCost
		}
		a.absorb(state, qty, unitCost)
		return nil, nil
	}

	return a.applyOutbound(state, ev, qty.Neg())
}

func (a *Aggregator) policy() NegativeStockPolicy {
	if a.Policy == "" {
		return RejectNegative
	}
	return a.Policy
}
