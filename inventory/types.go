/*
Package inventory provides the core feed-inventory valuation engine.

PURPOSE:
  This package contains the types and algorithms for valuing consumable
  stock from a ledger of purchase, production, and consumption events.
  Quantity-on-hand, cost attribution, stock health, and consumption trends
  are all derived by replaying the event log - there is no stored running
  total that can drift out of sync.

KEY CONCEPTS IN THIS FILE (types.go):
  - Quantity: A stock amount with a unit (e.g., 500 kg, 20 bags)
  - ItemTypeID / EventID: Type-safe identifiers
  - Decimal helpers for monetary values

DESIGN PRINCIPLES:
  1. Derivation: Inventory state is always replayed from events
  2. Precision: Uses decimal.Decimal to avoid floating-point errors
  3. Purity: Costing strategies and evaluators are pure functions
  4. Auditability: Every stock movement is traceable to an event

SEE ALSO:
  - event.go: Ledger event definitions
  - costing.go: FIFO / LIFO / weighted-average strategies
  - aggregator.go: Event replay and state derivation
*/
package inventory

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// QUANTITY - Stock amount with a unit of measure
// =============================================================================

type Quantity struct {
	Value decimal.Decimal
	Unit  Unit
}

// Unit is the unit of measure for an item type. Free-form in storage;
// the constants below cover the common farm units.
type Unit string

const (
	UnitKilogram Unit = "kg"
	UnitBag      Unit = "bag"
	UnitBale     Unit = "bale"
	UnitLiter    Unit = "liter"
	UnitTon      Unit = "ton"
)

func NewQuantity(value float64, unit Unit) Quantity {
	return Quantity{Value: decimal.NewFromFloat(value), Unit: unit}
}

func NewQuantityFromInt(value int, unit Unit) Quantity {
	return Quantity{Value: decimal.NewFromInt(int64(value)), Unit: unit}
}

func NewQuantityFromDecimal(value decimal.Decimal, unit Unit) Quantity {
	return Quantity{Value: value, Unit: unit}
}

// MustParseDecimal parses a decimal string, returning zero on failure.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (q Quantity) Zero() Quantity                     { return Quantity{Value: decimal.Zero, Unit: q.Unit} }
func (q Quantity) Add(b Quantity) Quantity            { return Quantity{Value: q.Value.Add(b.Value), Unit: q.Unit} }
func (q Quantity) Sub(b Quantity) Quantity            { return Quantity{Value: q.Value.Sub(b.Value), Unit: q.Unit} }
func (q Quantity) Mul(s decimal.Decimal) Quantity     { return Quantity{Value: q.Value.Mul(s), Unit: q.Unit} }
func (q Quantity) Neg() Quantity                      { return Quantity{Value: q.Value.Neg(), Unit: q.Unit} }
func (q Quantity) IsNegative() bool                   { return q.Value.IsNegative() }
func (q Quantity) IsZero() bool                       { return q.Value.IsZero() }
func (q Quantity) IsPositive() bool                   { return q.Value.IsPositive() }
func (q Quantity) GreaterThan(b Quantity) bool        { return q.Value.GreaterThan(b.Value) }
func (q Quantity) LessThan(b Quantity) bool           { return q.Value.LessThan(b.Value) }

func (q Quantity) String() string { return q.Value.String() + " " + string(q.Unit) }

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ItemTypeID string
type EventID string
