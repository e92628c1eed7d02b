/*
event.go - Ledger events: the unit of stock movement

PURPOSE:
  Every change to inventory is an event: a purchase, an in-house production
  run, a consumption by the herd, a manual adjustment, or wastage. Events
  are dated, carry a quantity and cost information, and are replayed in
  chronological order to derive inventory state.

ORDERING:
  Events sort by (Date ascending, Seq ascending). Seq is the creation
  order assigned by the store, which breaks ties between events on the
  same day. Costing depends on this ordering being stable.

MUTABILITY:
  Events are immutable once recorded except through explicit edit/delete,
  both of which are audit-significant and leave an audit entry. There is
  no in-place mutation anywhere in the engine: edits go through the
  recording service, which re-derives state by replay.

COST FIELDS:
  Purchase:    UnitCost is the supplier price per unit.
  Production:  Costs are itemized per component (seed, fertilizer, labor,
               machinery, other); unit cost = total components / quantity.
  Consumption: Carries no cost on entry; the costing strategy attributes
               cost during replay.
  Adjustment:  Signed quantity. Positive adjustments enter stock at
               UnitCost (or the reference cost when zero); negative
               adjustments leave stock through the costing strategy.
  Wastage:     Behaves like consumption (stock leaves at resolved cost)
               but is reported separately and excluded from herd
               consumption trends.

SEE ALSO:
  - aggregator.go: Replays events into state
  - store.go: Persistence interfaces for events
*/
package inventory

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// EVENT TYPES
// =============================================================================

type EventType string

const (
	EventPurchase    EventType = "PURCHASE"
	EventProduction  EventType = "PRODUCTION"
	EventConsumption EventType = "CONSUMPTION"
	EventAdjustment  EventType = "ADJUSTMENT"
	EventWastage     EventType = "WASTAGE"
)

// Inbound reports whether the event type adds stock.
func (t EventType) Inbound() bool {
	return t == EventPurchase || t == EventProduction
}

// =============================================================================
// PRODUCTION COST COMPONENTS
// =============================================================================

// CostComponents itemizes the cost of an in-house production run.
type CostComponents struct {
	Seed       decimal.Decimal `json:"seed"`
	Fertilizer decimal.Decimal `json:"fertilizer"`
	Labor      decimal.Decimal `json:"labor"`
	Machinery  decimal.Decimal `json:"machinery"`
	Other      decimal.Decimal `json:"other"`
}

func (c CostComponents) Total() decimal.Decimal {
	return c.Seed.Add(c.Fertilizer).Add(c.Labor).Add(c.Machinery).Add(c.Other)
}

func (c CostComponents) IsZero() bool { return c.Total().IsZero() }

// =============================================================================
// LEDGER EVENT
// =============================================================================

type LedgerEvent struct {
	ID         EventID
	ItemTypeID ItemTypeID
	Type       EventType
	Date       Date

	// Seq is the creation order assigned by the store. It breaks ties
	// between events on the same date.
	Seq int64

	// Quantity moved. Positive magnitude for all types except Adjustment,
	// which is signed.
	Quantity Quantity

	// UnitCost applies to Purchase and positive Adjustment events.
	UnitCost decimal.Decimal

	// CostComponents applies to Production events only.
	CostComponents *CostComponents

	// Provenance
	ReferenceID string            // domain record this event came from
	Note        string
	Metadata    map[string]string // supplier, invoice, consumed-by, location...

	CreatedBy string
	CreatedAt time.Time
}

// TotalCost returns the monetary value the event brings into stock.
// Zero for outbound events, whose cost is attributed during replay.
func (e LedgerEvent) TotalCost() decimal.Decimal {
	switch e.Type {
	case EventPurchase:
		return e.Quantity.Value.Mul(e.UnitCost)
	case EventProduction:
		if e.CostComponents != nil {
			return e.CostComponents.Total()
		}
		return e.Quantity.Value.Mul(e.UnitCost)
	case EventAdjustment:
		if e.Quantity.IsPositive() {
			return e.Quantity.Value.Mul(e.UnitCost)
		}
	}
	return decimal.Zero
}

// SortEvents orders events by (Date, Seq) without mutating the input.
func SortEvents(events []LedgerEvent) []LedgerEvent {
	sorted := make([]LedgerEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return eventLess(sorted[i], sorted[j])
	})
	return sorted
}

func eventLess(a, b LedgerEvent) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	return a.Seq < b.Seq
}
