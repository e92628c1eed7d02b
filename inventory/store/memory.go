// Package store provides in-memory implementations of the inventory
// persistence interfaces, for tests and the demo CLI.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/dairyops/feedstock/inventory"
)

// =============================================================================
// MEMORY EVENT STORE
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	events  map[inventory.ItemTypeID][]inventory.LedgerEvent
	byID    map[inventory.EventID]inventory.ItemTypeID
	nextSeq int64
}

func NewMemory() *Memory {
	return &Memory{
		events: make(map[inventory.ItemTypeID][]inventory.LedgerEvent),
		byID:   make(map[inventory.EventID]inventory.ItemTypeID),
	}
}

func (m *Memory) Append(_ context.Context, ev inventory.LedgerEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendLocked(ev)
}

func (m *Memory) AppendBatch(_ context.Context, evs []inventory.LedgerEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Check all IDs first so the batch is all-or-nothing.
	for _, ev := range evs {
		if _, exists := m.byID[ev.ID]; exists {
			return inventory.ErrDuplicateEvent
		}
	}
	for _, ev := range evs {
		if err := m.appendLocked(ev); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) appendLocked(ev inventory.LedgerEvent) error {
	if _, exists := m.byID[ev.ID]; exists {
		return inventory.ErrDuplicateEvent
	}
	m.nextSeq++
	ev.Seq = m.nextSeq

	evs := m.events[ev.ItemTypeID]
	// Insert in (date, seq) order so Load never needs to re-sort.
	i := sort.Search(len(evs), func(i int) bool {
		return evs[i].Date.After(ev.Date)
	})
	evs = append(evs, inventory.LedgerEvent{})
	copy(evs[i+1:], evs[i:])
	evs[i] = ev
	m.events[ev.ItemTypeID] = evs
	m.byID[ev.ID] = ev.ItemTypeID
	return nil
}

func (m *Memory) Load(_ context.Context, itemTypeID inventory.ItemTypeID) ([]inventory.LedgerEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]inventory.LedgerEvent, len(m.events[itemTypeID]))
	copy(result, m.events[itemTypeID])
	return result, nil
}

func (m *Memory) LoadRange(_ context.Context, itemTypeID inventory.ItemTypeID, from, to inventory.Date) ([]inventory.LedgerEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []inventory.LedgerEvent
	for _, ev := range m.events[itemTypeID] {
		if ev.Date.AfterOrEqual(from) && ev.Date.BeforeOrEqual(to) {
			result = append(result, ev)
		}
	}
	return result, nil
}

func (m *Memory) LoadAll(_ context.Context) ([]inventory.LedgerEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []inventory.LedgerEvent
	for _, evs := range m.events {
		result = append(result, evs...)
	}
	return inventory.SortEvents(result), nil
}

func (m *Memory) Amend(_ context.Context, ev inventory.LedgerEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.amendLocked(ev)
}

func (m *Memory) amendLocked(ev inventory.LedgerEvent) error {
	itemID, exists := m.byID[ev.ID]
	if !exists {
		return inventory.ErrEventNotFound
	}

	evs := m.events[itemID]
	for i, existing := range evs {
		if existing.ID == ev.ID {
			ev.Seq = existing.Seq
			if itemID == ev.ItemTypeID {
				evs[i] = ev
				m.events[itemID] = sortedCopy(evs)
				return nil
			}
			// Item type changed: move the event between ledgers.
			m.events[itemID] = append(evs[:i:i], evs[i+1:]...)
			m.events[ev.ItemTypeID] = sortedCopy(append(m.events[ev.ItemTypeID], ev))
			m.byID[ev.ID] = ev.ItemTypeID
			return nil
		}
	}
	return inventory.ErrEventNotFound
}

func (m *Memory) Remove(_ context.Context, id inventory.EventID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removeLocked(id)
}

func (m *Memory) removeLocked(id inventory.EventID) error {
	itemID, exists := m.byID[id]
	if !exists {
		return inventory.ErrEventNotFound
	}
	evs := m.events[itemID]
	for i, existing := range evs {
		if existing.ID == id {
			m.events[itemID] = append(evs[:i:i], evs[i+1:]...)
			delete(m.byID, id)
			return nil
		}
	}
	return inventory.ErrEventNotFound
}

func (m *Memory) HasEvents(_ context.Context, itemTypeID inventory.ItemTypeID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events[itemTypeID]) > 0, nil
}


func (m *Memory) Get(_ context.Context, id inventory.EventID) (*inventory.LedgerEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	itemID, exists := m.byID[id]
	if !exists {
		return nil, inventory.ErrEventNotFound
	}
	for _, ev := range m.events[itemID] {
		if ev.ID == id {
			found := ev
			return &found, nil
		}
	}
	return nil, inventory.ErrEventNotFound
}

func sortedCopy(evs []inventory.LedgerEvent) []inventory.LedgerEvent {
	return inventory.SortEvents(evs)
}
