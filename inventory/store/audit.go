package store

import (
	"context"
	"sync"

	"github.com/dairyops/feedstock/inventory"
)

// =============================================================================
// MEMORY AUDIT LOG
// =============================================================================

type MemoryAudit struct {
	mu      sync.RWMutex
	entries map[inventory.ItemTypeID][]inventory.AuditEntry
}

func NewMemoryAudit() *MemoryAudit {
	return &MemoryAudit{entries: make(map[inventory.ItemTypeID][]inventory.AuditEntry)}
}

func (m *MemoryAudit) Record(_ context.Context, entry inventory.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.ItemTypeID] = append(m.entries[entry.ItemTypeID], entry)
	return nil
}

func (m *MemoryAudit) Entries(_ context.Context, itemTypeID inventory.ItemTypeID) ([]inventory.AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]inventory.AuditEntry, len(m.entries[itemTypeID]))
	copy(result, m.entries[itemTypeID])
	return result, nil
}

// =============================================================================
// MEMORY SNAPSHOT STORE
// =============================================================================

type MemorySnapshots struct {
	mu        sync.RWMutex
	snapshots map[inventory.ItemTypeID][]inventory.ValuationSnapshot
}

func NewMemorySnapshots() *MemorySnapshots {
	return &MemorySnapshots{snapshots: make(map[inventory.ItemTypeID][]inventory.ValuationSnapshot)}
}

func (m *MemorySnapshots) Save(_ context.Context, snapshot inventory.ValuationSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snapshot.ItemTypeID] = append(m.snapshots[snapshot.ItemTypeID], snapshot)
	return nil
}

func (m *MemorySnapshots) Latest(_ context.Context, itemTypeID inventory.ItemTypeID) (*inventory.ValuationSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snaps := m.snapshots[itemTypeID]
	if len(snaps) == 0 {
		return nil, nil
	}
	latest := snaps[0]
	for _, s := range snaps[1:] {
		if s.TakenAt.AfterOrEqual(latest.TakenAt) {
			latest = s
		}
	}
	return &latest, nil
}
