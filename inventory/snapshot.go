package inventory

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// VALUATION SNAPSHOT - Frozen derived state for cheap reads
// =============================================================================

// ValuationSnapshot freezes the derived state of one item type at a date.
// The ledger replay remains the source of truth; snapshots are a read
// cache for dashboards and are never an input to costing.
type ValuationSnapshot struct {
	ID         string
	ItemTypeID ItemTypeID
	TakenAt    Date

	QuantityOnHand  decimal.Decimal
	TotalValue      decimal.Decimal
	AverageUnitCost decimal.Decimal
	Status          StockStatus

	Reason SnapshotReason
}

type SnapshotReason string

const (
	SnapshotScheduled SnapshotReason = "scheduled"
	SnapshotOnEvent   SnapshotReason = "event_applied"
	SnapshotManual    SnapshotReason = "manual"
)

// SnapshotFromState freezes a replayed state.
func SnapshotFromState(id string, state *State, minStockLevel decimal.Decimal, takenAt Date, reason SnapshotReason) ValuationSnapshot {
	return ValuationSnapshot{
		ID:              id,
		ItemTypeID:      state.ItemTypeID,
		TakenAt:         takenAt,
		QuantityOnHand:  state.QuantityOnHand,
		TotalValue:      state.TotalValue(),
		AverageUnitCost: state.AverageUnitCost(),
		Status:          EvaluateStock(state.QuantityOnHand, minStockLevel),
		Reason:          reason,
	}
}

// =============================================================================
// SNAPSHOT STORE
// =============================================================================

type SnapshotStore interface {
	Save(ctx context.Context, snapshot ValuationSnapshot) error

	// Latest returns the most recent snapshot for the item type,
	// or nil when none exists.
	Latest(ctx context.Context, itemTypeID ItemTypeID) (*ValuationSnapshot, error)
}
