package fodder

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dairyops/feedstock/finance"
	"github.com/dairyops/feedstock/inventory"
	"github.com/dairyops/feedstock/inventory/store"
)

// =============================================================================
// RECORDER - Unit-of-work over events, audit and expenses
// =============================================================================

// Recorder groups the three write targets of a recording operation: the
// ledger itself, its audit trail, and the expense journal.
type Recorder interface {
	inventory.EventStore
	inventory.AuditLog
	finance.Journal
}

// TxRecorder adds a transaction boundary. Everything fn writes through the
// recorder it receives is committed together or not at all.
type TxRecorder interface {
	Recorder

	WithTx(ctx context.Context, fn func(Recorder) error) error
}

// =============================================================================
// MEMORY RECORDER
// =============================================================================

// MemoryRecorder backs a Recorder with the in-memory stores. WithTx only
// serializes access; memory writes are not rolled back, so callers must
// finish all validation before the first write. The service follows that
// discipline, and the sqlite recorder provides real rollback.
type MemoryRecorder struct {
	*store.Memory
	*store.MemoryAudit
	*finance.MemoryJournal

	mu sync.Mutex
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{
		Memory:        store.NewMemory(),
		MemoryAudit:   store.NewMemoryAudit(),
		MemoryJournal: finance.NewMemoryJournal(),
	}
}

func (r *MemoryRecorder) WithTx(ctx context.Context, fn func(Recorder) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r)
}

// =============================================================================
// MEMORY CATALOG
// =============================================================================

// MemoryCatalog is an in-memory Catalog keyed by item type ID.
type MemoryCatalog struct {
	mu    sync.RWMutex
	items map[inventory.ItemTypeID]ItemType
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{items: make(map[inventory.ItemTypeID]ItemType)}
}

func (c *MemoryCatalog) Get(_ context.Context, id inventory.ItemTypeID) (*ItemType, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, ok := c.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", inventory.ErrUnknownItemType, id)
	}
	return &it, nil
}

func (c *MemoryCatalog) GetByName(_ context.Context, name string) (*ItemType, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, it := range c.items {
		if strings.EqualFold(it.Name, name) {
			found := it
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: name %q", inventory.ErrUnknownItemType, name)
}

func (c *MemoryCatalog) List(_ context.Context) ([]ItemType, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]ItemType, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (c *MemoryCatalog) Save(_ context.Context, it ItemType) error {
	if err := it.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := c.items[it.ID]; ok {
		it.CreatedAt = existing.CreatedAt
	} else {
		it.CreatedAt = now
	}
	it.UpdatedAt = now
	c.items[it.ID] = it
	return nil
}

func (c *MemoryCatalog) Delete(_ context.Context, id inventory.ItemTypeID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[id]; !ok {
		return fmt.Errorf("%w: %s", inventory.ErrUnknownItemType, id)
	}
	delete(c.items, id)
	return nil
}
