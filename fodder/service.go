/*
Recording service.

PURPOSE:
  The single write path for feed stock. Every record goes through the same
  pipeline: validate the record, load the item's ledger, replay with the
  candidate event to prove it applies cleanly, then persist the event
  together with its audit entry and any expense inside one transaction.

TRANSACTIONAL DISCIPLINE:
  All validation happens before the first write inside WithTx. A rejected
  consumption therefore leaves no event, no audit entry and no expense
  behind, on the sqlite recorder and the memory recorder alike.

SIDE EFFECTS AFTER COMMIT:
  - Weighted-average items get their catalog reference cost realigned to
    the replayed average after every inbound event.
  - A valuation snapshot is saved for the dashboard's fast path.
  Both are best-effort: a failure there is logged, not surfaced, since the
  ledger itself is already durable and replay remains the source of truth.
*/
package fodder

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dairyops/feedstock/finance"
	"github.com/dairyops/feedstock/inventory"
)

// Service records stock movements against the catalog and the ledger.
type Service struct {
	catalog   Catalog
	recorder  TxRecorder
	snapshots inventory.SnapshotStore
	logger    *zap.Logger

	// Policy applies to every replay the service runs. RejectNegative
	// unless configured otherwise.
	Policy inventory.NegativeStockPolicy
}

func NewService(catalog Catalog, recorder TxRecorder, snapshots inventory.SnapshotStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		catalog:   catalog,
		recorder:  recorder,
		snapshots: snapshots,
		logger:    logger,
		Policy:    inventory.RejectNegative,
	}
}

// =============================================================================
// RECORDING OPERATIONS
// =============================================================================

// RecordPurchase appends a purchase and books the matching feed expense.
func (s *Service) RecordPurchase(ctx context.Context, rec PurchaseRecord) (*inventory.LedgerEvent, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	item, err := s.catalog.Get(ctx, rec.ItemTypeID)
	if err != nil {
		return nil, err
	}

	ev := rec.ToEvent()
	expense := finance.ExpenseForPurchase(uuid.NewString(), ev, item.Name)
	return s.applyEvent(ctx, item, ev, &expense)
}

// RecordProduction appends an in-house production run. Only item types
// flagged ProducedInHouse accept production; the unit cost is derived
// from the entered cost components.
func (s *Service) RecordProduction(ctx context.Context, rec ProductionRecord) (*inventory.LedgerEvent, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	item, err := s.catalog.Get(ctx, rec.ItemTypeID)
	if err != nil {
		return nil, err
	}
	if !item.ProducedInHouse {
		return nil, fmt.Errorf("%w: %s", inventory.ErrNotProducible, item.Name)
	}

	ev := rec.ToEvent()
	expense := finance.ExpenseForProduction(uuid.NewString(), ev, item.Name)
	return s.applyEvent(ctx, item, ev, &expense)
}

// RecordConsumption appends a feeding entry.
func (s *Service) RecordConsumption(ctx context.Context, rec ConsumptionRecord) (*inventory.LedgerEvent, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	item, err := s.catalog.Get(ctx, rec.ItemTypeID)
	if err != nil {
		return nil, err
	}
	return s.applyEvent(ctx, item, rec.ToEvent(), nil)
}

// RecordWastage appends a spoilage/loss entry.
func (s *Service) RecordWastage(ctx context.Context, rec WastageRecord) (*inventory.LedgerEvent, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	item, err := s.catalog.Get(ctx, rec.ItemTypeID)
	if err != nil {
		return nil, err
	}
	return s.applyEvent(ctx, item, rec.ToEvent(), nil)
}

// RecordAdjustment appends a signed stock correction.
func (s *Service) RecordAdjustment(ctx context.Context, rec AdjustmentRecord) (*inventory.LedgerEvent, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	item, err := s.catalog.Get(ctx, rec.ItemTypeID)
	if err != nil {
		return nil, err
	}
	return s.applyEvent(ctx, item, rec.ToEvent(), nil)
}

// applyEvent is the shared write path. It proves the candidate event
// replays cleanly on top of the existing ledger, then persists event,
// audit entry and optional expense in one transaction.
func (s *Service) applyEvent(ctx context.Context, item *ItemType, ev inventory.LedgerEvent, expense *finance.ExpenseRecord) (*inventory.LedgerEvent, error) {
	agg, err := item.Aggregator(s.Policy)
	if err != nil {
		return nil, err
	}
	ev.Quantity.Unit = item.Unit

	var after *inventory.State
	err = s.recorder.WithTx(ctx, func(r Recorder) error {
		events, err := r.Load(ctx, item.ID)
		if err != nil {
			return err
		}

		before, _, err := agg.Replay(item.ID, events)
		if err != nil {
			return err
		}

		// The store assigns the real Seq at append. For the trial replay
		// the candidate must still sort after existing same-day events.
		trial := ev
		for _, e := range events {
			if e.Seq >= trial.Seq {
				trial.Seq = e.Seq + 1
			}
		}
		candidate := append(append([]inventory.LedgerEvent{}, events...), trial)
		state, costs, err := agg.Replay(item.ID, candidate)
		if err != nil {
			return err
		}

		if err := r.Append(ctx, ev); err != nil {
			return err
		}
		if err := r.Record(ctx, s.auditFor(ev, inventory.AuditApplied, costs, before, state)); err != nil {
			return err
		}
		if expense != nil {
			if err := r.RecordExpense(ctx, *expense); err != nil {
				return err
			}
		}

		after = state
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterApply(ctx, item, ev, after)

	s.logger.Info("ledger event recorded",
		zap.String("item_type", string(item.ID)),
		zap.String("event", string(ev.ID)),
		zap.String("type", string(ev.Type)),
		zap.String("quantity", ev.Quantity.String()),
		zap.String("balance", after.QuantityOnHand.String()),
	)
	return &ev, nil
}

// =============================================================================
// EVENT CORRECTIONS
// =============================================================================

// AmendEvent replaces a stored event in place. The full ledger must still
// replay cleanly with the amendment, otherwise nothing changes.
func (s *Service) AmendEvent(ctx context.Context, ev inventory.LedgerEvent, actor string) error {
	item, err := s.catalog.Get(ctx, ev.ItemTypeID)
	if err != nil {
		return err
	}
	agg, err := item.Aggregator(s.Policy)
	if err != nil {
		return err
	}

	var after *inventory.State
	err = s.recorder.WithTx(ctx, func(r Recorder) error {
		existing, err := r.Get(ctx, ev.ID)
		if err != nil {
			return err
		}
		if existing.ItemTypeID != ev.ItemTypeID {
			return fmt.Errorf("%w: event %s belongs to %s", inventory.ErrEventNotFound, ev.ID, existing.ItemTypeID)
		}

		events, err := r.Load(ctx, item.ID)
		if err != nil {
			return err
		}
		before, _, err := agg.Replay(item.ID, events)
		if err != nil {
			return err
		}

		amended := substituteEvent(events, ev)
		state, costs, err := agg.Replay(item.ID, amended)
		if err != nil {
			return err
		}

		if err := r.Amend(ctx, ev); err != nil {
			return err
		}
		entry := s.auditFor(ev, inventory.AuditAmended, costs, before, state)
		entry.Actor = actor
		if err := r.Record(ctx, entry); err != nil {
			return err
		}

		after = state
		return nil
	})
	if err != nil {
		return err
	}

	s.afterApply(ctx, item, ev, after)
	s.logger.Info("ledger event amended",
		zap.String("item_type", string(item.ID)),
		zap.String("event", string(ev.ID)),
	)
	return nil
}

// RemoveEvent deletes a stored event. The remaining ledger must replay
// cleanly without it; removing a purchase that later consumption depends
// on is rejected.
func (s *Service) RemoveEvent(ctx context.Context, id inventory.EventID, actor string) error {
	// The sqlite recorder's catalog shares the store lock WithTx holds, so
	// the catalog lookup must happen before the transaction begins.
	existing, err := s.recorder.Get(ctx, id)
	if err != nil {
		return err
	}
	item, err := s.catalog.Get(ctx, existing.ItemTypeID)
	if err != nil {
		return err
	}
	agg, err := item.Aggregator(s.Policy)
	if err != nil {
		return err
	}

	var (
		after *inventory.State
		ev    inventory.LedgerEvent
	)
	err = s.recorder.WithTx(ctx, func(r Recorder) error {
		current, err := r.Get(ctx, id)
		if err != nil {
			return err
		}
		ev = *current

		events, err := r.Load(ctx, item.ID)
		if err != nil {
			return err
		}
		before, _, err := agg.Replay(item.ID, events)
		if err != nil {
			return err
		}

		remaining := make([]inventory.LedgerEvent, 0, len(events))
		for _, e := range events {
			if e.ID != id {
				remaining = append(remaining, e)
			}
		}
		state, _, err := agg.Replay(item.ID, remaining)
		if err != nil {
			return err
		}

		if err := r.Remove(ctx, id); err != nil {
			return err
		}
		entry := s.auditFor(ev, inventory.AuditRemoved, nil, before, state)
		entry.Actor = actor
		if err := r.Record(ctx, entry); err != nil {
			return err
		}

		after = state
		return nil
	})
	if err != nil {
		return err
	}

	s.afterApply(ctx, item, ev, after)
	s.logger.Info("ledger event removed",
		zap.String("item_type", string(item.ID)),
		zap.String("event", string(id)),
	)
	return nil
}

// =============================================================================
// QUERIES
// =============================================================================

// StateOf replays the item's full ledger and returns the derived state.
func (s *Service) StateOf(ctx context.Context, id inventory.ItemTypeID) (*inventory.State, error) {
	item, err := s.catalog.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	agg, err := item.Aggregator(s.Policy)
	if err != nil {
		return nil, err
	}
	events, err := s.recorder.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	state, _, err := agg.Replay(id, events)
	return state, err
}

// ConsumptionCosts replays the item's ledger and returns the per-event
// outbound costing it produced.
func (s *Service) ConsumptionCosts(ctx context.Context, id inventory.ItemTypeID) ([]inventory.ConsumptionCost, error) {
	item, err := s.catalog.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	agg, err := item.Aggregator(s.Policy)
	if err != nil {
		return nil, err
	}
	events, err := s.recorder.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	_, costs, err := agg.Replay(id, events)
	return costs, err
}

// =============================================================================
// CATALOG MANAGEMENT
// =============================================================================

func (s *Service) GetItemType(ctx context.Context, id inventory.ItemTypeID) (*ItemType, error) {
	return s.catalog.Get(ctx, id)
}

func (s *Service) ListItemTypes(ctx context.Context) ([]ItemType, error) {
	return s.catalog.List(ctx)
}

func (s *Service) SaveItemType(ctx context.Context, it ItemType) error {
	if err := it.Validate(); err != nil {
		return err
	}
	if err := s.catalog.Save(ctx, it); err != nil {
		return err
	}
	s.logger.Info("item type saved", zap.String("item_type", string(it.ID)), zap.String("name", it.Name))
	return nil
}

// DeleteItemType removes a catalog entry. Item types with ledger history
// are protected; remove or reassign their events first.
func (s *Service) DeleteItemType(ctx context.Context, id inventory.ItemTypeID) error {
	has, err := s.recorder.HasEvents(ctx, id)
	if err != nil {
		return err
	}
	if has {
		return fmt.Errorf("%w: %s", inventory.ErrItemTypeInUse, id)
	}
	if err := s.catalog.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("item type deleted", zap.String("item_type", string(id)))
	return nil
}

// =============================================================================
// INTERNAL
// =============================================================================

// auditFor builds the audit entry for a ledger change. For outbound events
// the unit and total values come from the replayed costing rather than the
// event itself, which carries no cost of its own.
func (s *Service) auditFor(ev inventory.LedgerEvent, action inventory.AuditAction, costs []inventory.ConsumptionCost, before, after *inventory.State) inventory.AuditEntry {
	unitValue := ev.UnitCost
	totalValue := ev.TotalCost()
	for _, c := range costs {
		if c.EventID == ev.ID {
			unitValue = c.UnitCost()
			totalValue = c.Cost
		}
	}
	return inventory.AuditEntry{
		ID:              uuid.NewString(),
		ItemTypeID:      ev.ItemTypeID,
		EventID:         ev.ID,
		EventType:       ev.Type,
		Action:          action,
		Date:            ev.Date,
		Quantity:        ev.Quantity.Value,
		UnitValue:       unitValue,
		TotalValue:      totalValue,
		PreviousBalance: before.QuantityOnHand,
		NewBalance:      after.QuantityOnHand,
		Note:            ev.Note,
		Actor:           ev.CreatedBy,
		CreatedAt:       ev.CreatedAt,
	}
}

// afterApply runs the post-commit side effects. Failures here are logged
// and swallowed; replay remains authoritative.
func (s *Service) afterApply(ctx context.Context, item *ItemType, ev inventory.LedgerEvent, state *inventory.State) {
	// Outbound events leave the weighted average untouched, so only inbound
	// events and adjustments can move the catalog's reference cost.
	realigns := ev.Type.Inbound() || ev.Type == inventory.EventAdjustment
	if item.CostingMethod == inventory.CostingWeightedAverage && realigns && state.QuantityOnHand.IsPositive() {
		avg := state.AverageUnitCost()
		if !avg.Equal(item.CurrentCostPerUnit) {
			updated := *item
			updated.CurrentCostPerUnit = avg
			if err := s.catalog.Save(ctx, updated); err != nil {
				s.logger.Warn("reference cost update failed",
					zap.String("item_type", string(item.ID)), zap.Error(err))
			} else {
				item.CurrentCostPerUnit = avg
			}
		}
	}

	if s.snapshots != nil {
		snap := inventory.SnapshotFromState(uuid.NewString(), state, item.MinStockLevel, ev.Date, inventory.SnapshotOnEvent)
		if err := s.snapshots.Save(ctx, snap); err != nil {
			s.logger.Warn("valuation snapshot failed",
				zap.String("item_type", string(item.ID)), zap.Error(err))
		}
	}
}

func substituteEvent(events []inventory.LedgerEvent, ev inventory.LedgerEvent) []inventory.LedgerEvent {
	out := make([]inventory.LedgerEvent, 0, len(events))
	for _, e := range events {
		if e.ID == ev.ID {
			amended := ev
			amended.Seq = e.Seq
			out = append(out, amended)
			continue
		}
		out = append(out, e)
	}
	return out
}
