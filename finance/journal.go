package finance

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/dairyops/feedstock/inventory"
)

// =============================================================================
// JOURNAL - Expense persistence
// =============================================================================

type Journal interface {
	// RecordExpense appends an expense entry.
	RecordExpense(ctx context.Context, rec ExpenseRecord) error

	// Expenses returns entries with date in [from, to].
	Expenses(ctx context.Context, from, to inventory.Date) ([]ExpenseRecord, error)

	// TotalByCategory aggregates spend per category over [from, to].
	TotalByCategory(ctx context.Context, from, to inventory.Date) (map[string]decimal.Decimal, error)
}

// =============================================================================
// MEMORY JOURNAL
// =============================================================================

type MemoryJournal struct {
	mu      sync.RWMutex
	records []ExpenseRecord
}

func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

func (j *MemoryJournal) RecordExpense(_ context.Context, rec ExpenseRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, rec)
	return nil
}

func (j *MemoryJournal) Expenses(_ context.Context, from, to inventory.Date) ([]ExpenseRecord, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var result []ExpenseRecord
	for _, rec := range j.records {
		if rec.Date.AfterOrEqual(from) && rec.Date.BeforeOrEqual(to) {
			result = append(result, rec)
		}
	}
	return result, nil
}

func (j *MemoryJournal) TotalByCategory(ctx context.Context, from, to inventory.Date) (map[string]decimal.Decimal, error) {
	records, err := j.Expenses(ctx, from, to)
	if err != nil {
		return nil, err
	}
	totals := make(map[string]decimal.Decimal)
	for _, rec := range records {
		totals[rec.Category] = totals[rec.Category].Add(rec.Amount)
	}
	return totals, nil
}
