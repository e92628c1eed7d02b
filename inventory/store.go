/*
store.go - Persistence interfaces for the event ledger

PURPOSE:
  Defines the boundary between the engine and the database. The store
  returns events ordered by (date, seq) so replay observes the
  chronological invariant; seq is assigned by the store at append time.

MUTABILITY CONTRACT:
  Unlike a classic append-only ledger, ledger events here may be edited
  or deleted - but only through the explicit Amend/Remove operations,
  and every such mutation is audit-significant: the recording service
  pairs it with an AuditLog entry inside the same transaction.

CONCURRENCY:
  Writers must be serialized per item type (the recording service uses
  WithTx for this). Reads may run concurrently but each read takes a
  single Load per item type so replay sees a consistent snapshot of the
  event list.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite
  - inventory/store: in-memory, for tests and the demo CLI
*/
package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// EVENT STORE
// =============================================================================

// EventStore persists ledger events.
type EventStore interface {
	// Append persists one event, assigning its Seq. Fails with
	// ErrDuplicateEvent if the ID already exists.
	Append(ctx context.Context, ev LedgerEvent) error

	// AppendBatch persists multiple events atomically.
	AppendBatch(ctx context.Context, evs []LedgerEvent) error

	// Load returns all events for an item type ordered by (date, seq).
	Load(ctx context.Context, itemTypeID ItemTypeID) ([]LedgerEvent, error)

	// LoadRange returns events with date in [from, to], ordered by (date, seq).
	LoadRange(ctx context.Context, itemTypeID ItemTypeID, from, to Date) ([]LedgerEvent, error)

	// LoadAll returns every event in the store ordered by (date, seq).
	// Used by the dashboard for cross-item aggregation.
	LoadAll(ctx context.Context) ([]LedgerEvent, error)

	// Get returns one event by ID, or ErrEventNotFound.
	Get(ctx context.Context, id EventID) (*LedgerEvent, error)

	// Amend replaces an existing event in place. Audit-significant:
	// callers must pair it with an audit entry.
	Amend(ctx context.Context, ev LedgerEvent) error

	// Remove deletes an event. Audit-significant, like Amend.
	Remove(ctx context.Context, id EventID) error

	// HasEvents reports whether any event references the item type.
	// Backs the catalog's referential invariant.
	HasEvents(ctx context.Context, itemTypeID ItemTypeID) (bool, error)
}

// =============================================================================
// AUDIT LOG - Who moved what stock, when, against what balance
// =============================================================================

type AuditAction string

const (
	AuditApplied AuditAction = "applied"
	AuditAmended AuditAction = "amended"
	AuditRemoved AuditAction = "removed"
)

// AuditEntry records one ledger mutation with the balances around it.
type AuditEntry struct {
	ID         string
	ItemTypeID ItemTypeID
	EventID    EventID
	EventType  EventType
	Action     AuditAction
	Date       Date

	// Signed stock delta and its valuation
	Quantity   decimal.Decimal
	UnitValue  decimal.Decimal
	TotalValue decimal.Decimal

	// Balance before and after the mutation
	PreviousBalance decimal.Decimal
	NewBalance      decimal.Decimal

	Note      string
	Actor     string
	CreatedAt time.Time
}

// AuditLog stores audit entries. Append-only.
type AuditLog interface {
	Record(ctx context.Context, entry AuditEntry) error
	Entries(ctx context.Context, itemTypeID ItemTypeID) ([]AuditEntry, error)
}
