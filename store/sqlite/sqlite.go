/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements all persistence interfaces using SQLite. In production, the
  same patterns apply to PostgreSQL - only minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  inventory.EventStore:    The stock ledger
  inventory.AuditLog:      Audit trail of applied/amended/removed events
  inventory.SnapshotStore: Cached valuation snapshots
  finance.Journal:         Expense records
  fodder.Catalog:          Item type definitions
  fodder.TxRecorder:       Transactional unit-of-work over the above

SEQUENCE ASSIGNMENT:
  ledger_events uses an AUTOINCREMENT rowid as the event sequence. Replay
  order is (event_date ASC, seq ASC); the sequence breaks ties between
  events entered on the same day and never reorders history.

DECIMALS:
  Quantities and money travel as TEXT in their decimal string form. REAL
  columns would reintroduce the float drift the decimal type exists to
  prevent.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  st, err := sqlite.New("./data/feedstock.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

  svc := fodder.NewService(st.Catalog(), st, st, logger)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - inventory/store.go: Interface definitions
  - inventory/store/memory.go: In-memory implementation for testing
  - fodder/store.go: Recorder composition
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/dairyops/feedstock/finance"
	"github.com/dairyops/feedstock/fodder"
	"github.com/dairyops/feedstock/inventory"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Item type catalog
	CREATE TABLE IF NOT EXISTS item_types (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		category TEXT NOT NULL,
		unit TEXT NOT NULL,
		costing_method TEXT NOT NULL,
		produced_in_house BOOLEAN DEFAULT FALSE,
		cost_per_unit TEXT NOT NULL,
		min_stock_level TEXT NOT NULL,
		nutrient_info TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_item_types_category
		ON item_types(category);

	-- Stock ledger. seq is the store-assigned creation order; replay
	-- sorts by (event_date, seq).
	CREATE TABLE IF NOT EXISTS ledger_events (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		item_type_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		event_date TEXT NOT NULL,
		quantity TEXT NOT NULL,
		quantity_unit TEXT,
		unit_cost TEXT NOT NULL,
		cost_components_json TEXT,
		reference_id TEXT,
		note TEXT,
		metadata_json TEXT,
		created_by TEXT,
		created_at TEXT NOT NULL
	);

	-- Replay hot path
	CREATE INDEX IF NOT EXISTS idx_ledger_events_item_date
		ON ledger_events(item_type_id, event_date, seq);
	CREATE INDEX IF NOT EXISTS idx_ledger_events_type
		ON ledger_events(event_type);

	-- Audit trail
	CREATE TABLE IF NOT EXISTS audit_log (
		id TEXT PRIMARY KEY,
		item_type_id TEXT NOT NULL,
		event_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		action TEXT NOT NULL,
		event_date TEXT NOT NULL,
		quantity TEXT NOT NULL,
		unit_value TEXT NOT NULL,
		total_value TEXT NOT NULL,
		previous_balance TEXT NOT NULL,
		new_balance TEXT NOT NULL,
		note TEXT,
		actor TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audit_log_item
		ON audit_log(item_type_id, created_at);

	-- Valuation snapshots (read cache, never an input to costing)
	CREATE TABLE IF NOT EXISTS valuation_snapshots (
		id TEXT PRIMARY KEY,
		item_type_id TEXT NOT NULL,
		taken_at TEXT NOT NULL,
		quantity_on_hand TEXT NOT NULL,
		total_value TEXT NOT NULL,
		average_unit_cost TEXT NOT NULL,
		status TEXT NOT NULL,
		reason TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_item_taken
		ON valuation_snapshots(item_type_id, taken_at DESC, created_at DESC);

	-- Expense journal
	CREATE TABLE IF NOT EXISTS expense_records (
		id TEXT PRIMARY KEY,
		expense_date TEXT NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL,
		amount TEXT NOT NULL,
		related_module TEXT,
		related_record_id TEXT,
		supplier TEXT,
		notes TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_expenses_date
		ON expense_records(expense_date);
	CREATE INDEX IF NOT EXISTS idx_expenses_category
		ON expense_records(category);
	`

	_, err := s.db.Exec(schema)
	return err
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// EVENT STORE (inventory.EventStore interface)
// =============================================================================

const eventColumns = `seq, id, item_type_id, event_type, event_date, quantity, quantity_unit,
	unit_cost, cost_components_json, reference_id, note, metadata_json, created_by, created_at`

// Append adds an event to the ledger and assigns its sequence.
func (s *Store) Append(ctx context.Context, ev inventory.LedgerEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.appendEvent(ctx, s.db, ev)
}

func (s *Store) appendEvent(ctx context.Context, db dbtx, ev inventory.LedgerEvent) error {
	var componentsJSON any
	if ev.CostComponents != nil {
		b, err := json.Marshal(componentsFromEvent(*ev.CostComponents))
		if err != nil {
			return fmt.Errorf("failed to encode cost components: %w", err)
		}
		componentsJSON = string(b)
	}
	metadataJSON, _ := json.Marshal(ev.Metadata)

	query := `
		INSERT INTO ledger_events
		(id, item_type_id, event_type, event_date, quantity, quantity_unit,
		 unit_cost, cost_components_json, reference_id, note, metadata_json, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	createdAt := ev.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := db.ExecContext(ctx, query,
		string(ev.ID),
		string(ev.ItemTypeID),
		string(ev.Type),
		ev.Date.String(),
		ev.Quantity.Value.String(),
		string(ev.Quantity.Unit),
		ev.UnitCost.String(),
		componentsJSON,
		nullString(ev.ReferenceID),
		nullString(ev.Note),
		string(metadataJSON),
		nullString(ev.CreatedBy),
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: %s", inventory.ErrDuplicateEvent, ev.ID)
		}
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

// AppendBatch adds multiple events atomically.
func (s *Store) AppendBatch(ctx context.Context, evs []inventory.LedgerEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[inventory.EventID]bool, len(evs))
	for _, ev := range evs {
		if seen[ev.ID] {
			return fmt.Errorf("%w: %s", inventory.ErrDuplicateEvent, ev.ID)
		}
		seen[ev.ID] = true
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	for _, ev := range evs {
		if err := s.appendEvent(ctx, sqlTx, ev); err != nil {
			return err
		}
	}
	return sqlTx.Commit()
}

// Load returns all events for an item type in replay order.
func (s *Store) Load(ctx context.Context, itemTypeID inventory.ItemTypeID) ([]inventory.LedgerEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loadEvents(ctx, s.db, itemTypeID)
}

func (s *Store) loadEvents(ctx context.Context, db dbtx, itemTypeID inventory.ItemTypeID) ([]inventory.LedgerEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM ledger_events
		WHERE item_type_id = ?
		ORDER BY event_date ASC, seq ASC
	`
	return s.queryEvents(ctx, db, query, string(itemTypeID))
}

// LoadRange returns events in a date range, both boundaries inclusive.
func (s *Store) LoadRange(ctx context.Context, itemTypeID inventory.ItemTypeID, from, to inventory.Date) ([]inventory.LedgerEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT ` + eventColumns + `
		FROM ledger_events
		WHERE item_type_id = ? AND event_date >= ? AND event_date <= ?
		ORDER BY event_date ASC, seq ASC
	`
	return s.queryEvents(ctx, s.db, query, string(itemTypeID), from.String(), to.String())
}

// LoadAll returns every event across item types in replay order.
func (s *Store) LoadAll(ctx context.Context) ([]inventory.LedgerEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT ` + eventColumns + `
		FROM ledger_events
		ORDER BY event_date ASC, seq ASC
	`
	return s.queryEvents(ctx, s.db, query)
}

// Get returns a single event by ID.
func (s *Store) Get(ctx context.Context, id inventory.EventID) (*inventory.LedgerEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getEvent(ctx, s.db, id)
}

func (s *Store) getEvent(ctx context.Context, db dbtx, id inventory.EventID) (*inventory.LedgerEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM ledger_events WHERE id = ?`
	evs, err := s.queryEvents(ctx, db, query, string(id))
	if err != nil {
		return nil, err
	}
	if len(evs) == 0 {
		return nil, fmt.Errorf("%w: %s", inventory.ErrEventNotFound, id)
	}
	return &evs[0], nil
}

// Amend replaces a stored event in place, keeping its sequence.
func (s *Store) Amend(ctx context.Context, ev inventory.LedgerEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.amendEvent(ctx, s.db, ev)
}

func (s *Store) amendEvent(ctx context.Context, db dbtx, ev inventory.LedgerEvent) error {
	var componentsJSON any
	if ev.CostComponents != nil {
		b, err := json.Marshal(componentsFromEvent(*ev.CostComponents))
		if err != nil {
			return fmt.Errorf("failed to encode cost components: %w", err)
		}
		componentsJSON = string(b)
	}
	metadataJSON, _ := json.Marshal(ev.Metadata)

	query := `
		UPDATE ledger_events SET
			event_type = ?, event_date = ?, quantity = ?, quantity_unit = ?,
			unit_cost = ?, cost_components_json = ?, reference_id = ?,
			note = ?, metadata_json = ?
		WHERE id = ?
	`
	res, err := db.ExecContext(ctx, query,
		string(ev.Type),
		ev.Date.String(),
		ev.Quantity.Value.String(),
		string(ev.Quantity.Unit),
		ev.UnitCost.String(),
		componentsJSON,
		nullString(ev.ReferenceID),
		nullString(ev.Note),
		string(metadataJSON),
		string(ev.ID),
	)
	if err != nil {
		return fmt.Errorf("failed to amend event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", inventory.ErrEventNotFound, ev.ID)
	}
	return nil
}

// Remove deletes a stored event.
func (s *Store) Remove(ctx context.Context, id inventory.EventID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.removeEvent(ctx, s.db, id)
}

func (s *Store) removeEvent(ctx context.Context, db dbtx, id inventory.EventID) error {
	res, err := db.ExecContext(ctx, "DELETE FROM ledger_events WHERE id = ?", string(id))
	if err != nil {
		return fmt.Errorf("failed to remove event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", inventory.ErrEventNotFound, id)
	}
	return nil
}

// HasEvents reports whether any events reference the item type.
func (s *Store) HasEvents(ctx context.Context, itemTypeID inventory.ItemTypeID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM ledger_events WHERE item_type_id = ?",
		string(itemTypeID),
	).Scan(&count)
	return count > 0, err
}

func (s *Store) queryEvents(ctx context.Context, db dbtx, query string, args ...any) ([]inventory.LedgerEvent, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []inventory.LedgerEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// componentsJSON is the stored form of inventory.CostComponents.
type componentsJSON struct {
	Seed       string `json:"seed,omitempty"`
	Fertilizer string `json:"fertilizer,omitempty"`
	Labor      string `json:"labor,omitempty"`
	Machinery  string `json:"machinery,omitempty"`
	Other      string `json:"other,omitempty"`
}

func componentsFromEvent(c inventory.CostComponents) componentsJSON {
	return componentsJSON{
		Seed:       c.Seed.String(),
		Fertilizer: c.Fertilizer.String(),
		Labor:      c.Labor.String(),
		Machinery:  c.Machinery.String(),
		Other:      c.Other.String(),
	}
}

func (cj componentsJSON) toEvent() inventory.CostComponents {
	return inventory.CostComponents{
		Seed:       parseDecimal(cj.Seed),
		Fertilizer: parseDecimal(cj.Fertilizer),
		Labor:      parseDecimal(cj.Labor),
		Machinery:  parseDecimal(cj.Machinery),
		Other:      parseDecimal(cj.Other),
	}
}

func scanEvent(rows *sql.Rows) (inventory.LedgerEvent, error) {
	var (
		ev             inventory.LedgerEvent
		id             string
		itemTypeID     string
		eventType      string
		eventDate      string
		quantity       string
		quantityUnit   sql.NullString
		unitCost       string
		components     sql.NullString
		referenceID    sql.NullString
		note           sql.NullString
		metadataJSON   sql.NullString
		createdBy      sql.NullString
		createdAt      string
	)

	err := rows.Scan(
		&ev.Seq, &id, &itemTypeID, &eventType, &eventDate, &quantity, &quantityUnit,
		&unitCost, &components, &referenceID, &note, &metadataJSON, &createdBy, &createdAt,
	)
	if err != nil {
		return ev, fmt.Errorf("failed to scan event: %w", err)
	}

	ev.ID = inventory.EventID(id)
	ev.ItemTypeID = inventory.ItemTypeID(itemTypeID)
	ev.Type = inventory.EventType(eventType)
	ev.Date, _ = inventory.ParseDate(eventDate)
	ev.Quantity = inventory.Quantity{
		Value: parseDecimal(quantity),
		Unit:  inventory.Unit(quantityUnit.String),
	}
	ev.UnitCost = parseDecimal(unitCost)
	ev.ReferenceID = referenceID.String
	ev.Note = note.String
	ev.CreatedBy = createdBy.String
	ev.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	if components.Valid && components.String != "" {
		var cj componentsJSON
		if err := json.Unmarshal([]byte(components.String), &cj); err == nil {
			cc := cj.toEvent()
			ev.CostComponents = &cc
		}
	}
	if metadataJSON.Valid && metadataJSON.String != "" {
		json.Unmarshal([]byte(metadataJSON.String), &ev.Metadata)
	}

	return ev, nil
}

// =============================================================================
// TRANSACTIONAL RECORDER (fodder.TxRecorder interface)
// =============================================================================

// WithTx executes fn within a database transaction. Event, audit and
// expense writes through the recorder fn receives commit together.
func (s *Store) WithTx(ctx context.Context, fn func(fodder.Recorder) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txRecorder{tx: sqlTx, parent: s}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// txRecorder is the transaction-bound view of the store.
type txRecorder struct {
	tx     *sql.Tx
	parent *Store
}

func (t *txRecorder) Append(ctx context.Context, ev inventory.LedgerEvent) error {
	return t.parent.appendEvent(ctx, t.tx, ev)
}

func (t *txRecorder) AppendBatch(ctx context.Context, evs []inventory.LedgerEvent) error {
	for _, ev := range evs {
		if err := t.parent.appendEvent(ctx, t.tx, ev); err != nil {
			return err
		}
	}
	return nil
}

func (t *txRecorder) Load(ctx context.Context, itemTypeID inventory.ItemTypeID) ([]inventory.LedgerEvent, error) {
	return t.parent.loadEvents(ctx, t.tx, itemTypeID)
}

func (t *txRecorder) LoadRange(ctx context.Context, itemTypeID inventory.ItemTypeID, from, to inventory.Date) ([]inventory.LedgerEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM ledger_events
		WHERE item_type_id = ? AND event_date >= ? AND event_date <= ?
		ORDER BY event_date ASC, seq ASC
	`
	return t.parent.queryEvents(ctx, t.tx, query, string(itemTypeID), from.String(), to.String())
}

func (t *txRecorder) LoadAll(ctx context.Context) ([]inventory.LedgerEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM ledger_events
		ORDER BY event_date ASC, seq ASC
	`
	return t.parent.queryEvents(ctx, t.tx, query)
}

func (t *txRecorder) Get(ctx context.Context, id inventory.EventID) (*inventory.LedgerEvent, error) {
	return t.parent.getEvent(ctx, t.tx, id)
}

func (t *txRecorder) Amend(ctx context.Context, ev inventory.LedgerEvent) error {
	return t.parent.amendEvent(ctx, t.tx, ev)
}

func (t *txRecorder) Remove(ctx context.Context, id inventory.EventID) error {
	return t.parent.removeEvent(ctx, t.tx, id)
}

func (t *txRecorder) HasEvents(ctx context.Context, itemTypeID inventory.ItemTypeID) (bool, error) {
	var count int
	err := t.tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM ledger_events WHERE item_type_id = ?",
		string(itemTypeID),
	).Scan(&count)
	return count > 0, err
}

func (t *txRecorder) Record(ctx context.Context, entry inventory.AuditEntry) error {
	return t.parent.recordAudit(ctx, t.tx, entry)
}

func (t *txRecorder) Entries(ctx context.Context, itemTypeID inventory.ItemTypeID) ([]inventory.AuditEntry, error) {
	return t.parent.queryAuditEntries(ctx, t.tx, itemTypeID)
}

func (t *txRecorder) RecordExpense(ctx context.Context, rec finance.ExpenseRecord) error {
	return t.parent.recordExpense(ctx, t.tx, rec)
}

func (t *txRecorder) Expenses(ctx context.Context, from, to inventory.Date) ([]finance.ExpenseRecord, error) {
	return t.parent.queryExpenses(ctx, t.tx, from, to)
}

func (t *txRecorder) TotalByCategory(ctx context.Context, from, to inventory.Date) (map[string]decimal.Decimal, error) {
	return t.parent.totalByCategory(ctx, t.tx, from, to)
}

// =============================================================================
// AUDIT LOG (inventory.AuditLog interface)
// =============================================================================

// Record appends an audit entry.
func (s *Store) Record(ctx context.Context, entry inventory.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.recordAudit(ctx, s.db, entry)
}

func (s *Store) recordAudit(ctx context.Context, db dbtx, entry inventory.AuditEntry) error {
	query := `
		INSERT INTO audit_log
		(id, item_type_id, event_id, event_type, action, event_date, quantity,
		 unit_value, total_value, previous_balance, new_balance, note, actor, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := db.ExecContext(ctx, query,
		entry.ID,
		string(entry.ItemTypeID),
		string(entry.EventID),
		string(entry.EventType),
		string(entry.Action),
		entry.Date.String(),
		entry.Quantity.String(),
		entry.UnitValue.String(),
		entry.TotalValue.String(),
		entry.PreviousBalance.String(),
		entry.NewBalance.String(),
		nullString(entry.Note),
		nullString(entry.Actor),
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

// Entries returns the audit trail for an item type, oldest first.
func (s *Store) Entries(ctx context.Context, itemTypeID inventory.ItemTypeID) ([]inventory.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryAuditEntries(ctx, s.db, itemTypeID)
}

func (s *Store) queryAuditEntries(ctx context.Context, db dbtx, itemTypeID inventory.ItemTypeID) ([]inventory.AuditEntry, error) {
	query := `
		SELECT id, item_type_id, event_id, event_type, action, event_date, quantity,
		       unit_value, total_value, previous_balance, new_balance, note, actor, created_at
		FROM audit_log
		WHERE item_type_id = ?
		ORDER BY rowid ASC
	`

	rows, err := db.QueryContext(ctx, query, string(itemTypeID))
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var entries []inventory.AuditEntry
	for rows.Next() {
		var (
			e                                                  inventory.AuditEntry
			itemID, eventID, eventType, action, eventDate      string
			quantity, unitValue, totalValue, prevBal, newBal   string
			note, actor                                        sql.NullString
			createdAt                                          string
		)
		if err := rows.Scan(&e.ID, &itemID, &eventID, &eventType, &action, &eventDate,
			&quantity, &unitValue, &totalValue, &prevBal, &newBal, &note, &actor, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		e.ItemTypeID = inventory.ItemTypeID(itemID)
		e.EventID = inventory.EventID(eventID)
		e.EventType = inventory.EventType(eventType)
		e.Action = inventory.AuditAction(action)
		e.Date, _ = inventory.ParseDate(eventDate)
		e.Quantity = parseDecimal(quantity)
		e.UnitValue = parseDecimal(unitValue)
		e.TotalValue = parseDecimal(totalValue)
		e.PreviousBalance = parseDecimal(prevBal)
		e.NewBalance = parseDecimal(newBal)
		e.Note = note.String
		e.Actor = actor.String
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// SNAPSHOT STORE (inventory.SnapshotStore interface)
// =============================================================================

// Save stores a valuation snapshot.
func (s *Store) Save(ctx context.Context, snap inventory.ValuationSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO valuation_snapshots
		(id, item_type_id, taken_at, quantity_on_hand, total_value, average_unit_cost, status, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		snap.ID,
		string(snap.ItemTypeID),
		snap.TakenAt.String(),
		snap.QuantityOnHand.String(),
		snap.TotalValue.String(),
		snap.AverageUnitCost.String(),
		string(snap.Status),
		string(snap.Reason),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Latest returns the most recent snapshot for the item type, or nil.
func (s *Store) Latest(ctx context.Context, itemTypeID inventory.ItemTypeID) (*inventory.ValuationSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, item_type_id, taken_at, quantity_on_hand, total_value, average_unit_cost, status, reason
		FROM valuation_snapshots
		WHERE item_type_id = ?
		ORDER BY taken_at DESC, created_at DESC
		LIMIT 1
	`

	var (
		snap                               inventory.ValuationSnapshot
		itemID, takenAt, qoh, total        string
		avg, status, reason                string
	)
	err := s.db.QueryRowContext(ctx, query, string(itemTypeID)).Scan(
		&snap.ID, &itemID, &takenAt, &qoh, &total, &avg, &status, &reason,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	snap.ItemTypeID = inventory.ItemTypeID(itemID)
	snap.TakenAt, _ = inventory.ParseDate(takenAt)
	snap.QuantityOnHand = parseDecimal(qoh)
	snap.TotalValue = parseDecimal(total)
	snap.AverageUnitCost = parseDecimal(avg)
	snap.Status = inventory.StockStatus(status)
	snap.Reason = inventory.SnapshotReason(reason)
	return &snap, nil
}

// =============================================================================
// EXPENSE JOURNAL (finance.Journal interface)
// =============================================================================

// RecordExpense appends an expense record.
func (s *Store) RecordExpense(ctx context.Context, rec finance.ExpenseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.recordExpense(ctx, s.db, rec)
}

func (s *Store) recordExpense(ctx context.Context, db dbtx, rec finance.ExpenseRecord) error {
	query := `
		INSERT INTO expense_records
		(id, expense_date, category, description, amount, related_module, related_record_id, supplier, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := db.ExecContext(ctx, query,
		rec.ID,
		rec.Date.String(),
		rec.Category,
		rec.Description,
		rec.Amount.String(),
		nullString(rec.RelatedModule),
		nullString(rec.RelatedRecordID),
		nullString(rec.Supplier),
		nullString(rec.Notes),
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record expense: %w", err)
	}
	return nil
}

// Expenses returns expense records in a date range, oldest first.
func (s *Store) Expenses(ctx context.Context, from, to inventory.Date) ([]finance.ExpenseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryExpenses(ctx, s.db, from, to)
}

func (s *Store) queryExpenses(ctx context.Context, db dbtx, from, to inventory.Date) ([]finance.ExpenseRecord, error) {
	query := `
		SELECT id, expense_date, category, description, amount,
		       related_module, related_record_id, supplier, notes, created_at
		FROM expense_records
		WHERE expense_date >= ? AND expense_date <= ?
		ORDER BY expense_date ASC, created_at ASC
	`

	rows, err := db.QueryContext(ctx, query, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var records []finance.ExpenseRecord
	for rows.Next() {
		var (
			r                                  finance.ExpenseRecord
			date, amount, createdAt            string
			module, recordID, supplier, notes  sql.NullString
		)
		if err := rows.Scan(&r.ID, &date, &r.Category, &r.Description, &amount,
			&module, &recordID, &supplier, &notes, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		r.Date, _ = inventory.ParseDate(date)
		r.Amount = parseDecimal(amount)
		r.RelatedModule = module.String
		r.RelatedRecordID = recordID.String
		r.Supplier = supplier.String
		r.Notes = notes.String
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, r)
	}
	return records, rows.Err()
}

// TotalByCategory sums expense amounts per category in a date range.
func (s *Store) TotalByCategory(ctx context.Context, from, to inventory.Date) (map[string]decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.totalByCategory(ctx, s.db, from, to)
}

func (s *Store) totalByCategory(ctx context.Context, db dbtx, from, to inventory.Date) (map[string]decimal.Decimal, error) {
	records, err := s.queryExpenses(ctx, db, from, to)
	if err != nil {
		return nil, err
	}
	// Summed in Go: amounts are stored as decimal text, and SQLite SUM
	// would coerce them to floats.
	totals := make(map[string]decimal.Decimal)
	for _, r := range records {
		totals[r.Category] = totals[r.Category].Add(r.Amount)
	}
	return totals, nil
}

// =============================================================================
// ITEM TYPE CATALOG (fodder.Catalog interface)
// =============================================================================

const itemTypeColumns = `id, name, category, unit, costing_method, produced_in_house,
	cost_per_unit, min_stock_level, nutrient_info, created_at, updated_at`

// Catalog returns the fodder.Catalog view of the store. The event store's
// Get claims the method name on Store itself.
func (s *Store) Catalog() fodder.Catalog { return catalogView{s} }

type catalogView struct{ s *Store }

func (c catalogView) Get(ctx context.Context, id inventory.ItemTypeID) (*fodder.ItemType, error) {
	return c.s.GetItemType(ctx, id)
}

func (c catalogView) GetByName(ctx context.Context, name string) (*fodder.ItemType, error) {
	return c.s.GetItemTypeByName(ctx, name)
}

func (c catalogView) List(ctx context.Context) ([]fodder.ItemType, error) {
	return c.s.ListItemTypes(ctx)
}

func (c catalogView) Save(ctx context.Context, it fodder.ItemType) error {
	return c.s.SaveItemType(ctx, it)
}

func (c catalogView) Delete(ctx context.Context, id inventory.ItemTypeID) error {
	return c.s.DeleteItemType(ctx, id)
}

// GetItemType returns an item type by ID, or ErrUnknownItemType.
func (s *Store) GetItemType(ctx context.Context, id inventory.ItemTypeID) (*fodder.ItemType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + itemTypeColumns + ` FROM item_types WHERE id = ?`
	return s.queryItemType(ctx, query, string(id))
}

// GetItemTypeByName returns an item type by its unique name.
func (s *Store) GetItemTypeByName(ctx context.Context, name string) (*fodder.ItemType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + itemTypeColumns + ` FROM item_types WHERE name = ? COLLATE NOCASE`
	return s.queryItemType(ctx, query, name)
}

func (s *Store) queryItemType(ctx context.Context, query string, arg any) (*fodder.ItemType, error) {
	row := s.db.QueryRowContext(ctx, query, arg)
	it, err := scanItemType(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %v", inventory.ErrUnknownItemType, arg)
	}
	if err != nil {
		return nil, err
	}
	return it, nil
}

// ListItemTypes returns all item types ordered by name.
func (s *Store) ListItemTypes(ctx context.Context) ([]fodder.ItemType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+itemTypeColumns+` FROM item_types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []fodder.ItemType
	for rows.Next() {
		it, err := scanItemType(rows.Scan)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// SaveItemType creates or updates an item type.
func (s *Store) SaveItemType(ctx context.Context, it fodder.ItemType) error {
	if err := it.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO item_types
		(id, name, category, unit, costing_method, produced_in_house,
		 cost_per_unit, min_stock_level, nutrient_info, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			unit = excluded.unit,
			costing_method = excluded.costing_method,
			produced_in_house = excluded.produced_in_house,
			cost_per_unit = excluded.cost_per_unit,
			min_stock_level = excluded.min_stock_level,
			nutrient_info = excluded.nutrient_info,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, query,
		string(it.ID), it.Name, string(it.Category), string(it.Unit),
		string(it.CostingMethod), it.ProducedInHouse,
		it.CurrentCostPerUnit.String(), it.MinStockLevel.String(),
		nullString(it.NutrientInfo), now, now,
	)
	return err
}

// DeleteItemType removes a catalog entry. Referential protection against
// ledger history lives in the service layer.
func (s *Store) DeleteItemType(ctx context.Context, id inventory.ItemTypeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM item_types WHERE id = ?", string(id))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", inventory.ErrUnknownItemType, id)
	}
	return nil
}

func scanItemType(scan func(...any) error) (*fodder.ItemType, error) {
	var (
		it                        fodder.ItemType
		id, category, unit        string
		method                    string
		cost, minLevel            string
		nutrient                  sql.NullString
		createdAt, updatedAt      string
	)
	err := scan(&id, &it.Name, &category, &unit, &method, &it.ProducedInHouse,
		&cost, &minLevel, &nutrient, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	it.ID = inventory.ItemTypeID(id)
	it.Category = fodder.Category(category)
	it.Unit = inventory.Unit(unit)
	it.CostingMethod = inventory.CostingMethod(method)
	it.CurrentCostPerUnit = parseDecimal(cost)
	it.MinStockLevel = parseDecimal(minLevel)
	it.NutrientInfo = nutrient.String
	it.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	it.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &it, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"ledger_events", "audit_log", "valuation_snapshots", "expense_records", "item_types"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func parseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
