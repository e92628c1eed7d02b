/*
Package dashboard is the read facade over the catalog and the ledger.

PURPOSE:
  Assembles everything the stock screens show: per-item summaries with
  health and runway badges, the low-stock list, farm-wide valuation
  totals, recent activity, and the chart series.

DERIVED ON READ:
  Every figure here comes from replaying the ledger at read time. The
  valuation snapshots the recording service saves are a cache for callers
  that want a cheap last-known value; this package never treats them as
  authoritative.

SEE ALSO:
  - charts.go: Time-series builders for the dashboard charts
*/
package dashboard

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dairyops/feedstock/fodder"
	"github.com/dairyops/feedstock/inventory"
)

// DefaultTrendWindowDays is the consumption window used when the caller
// does not choose one.
const DefaultTrendWindowDays = 30

const recentEventLimit = 10

// Service builds dashboard views.
type Service struct {
	catalog fodder.Catalog
	events  inventory.EventStore
	logger  *zap.Logger

	// Policy mirrors the recording service so both sides replay the
	// ledger identically.
	Policy inventory.NegativeStockPolicy

	// WindowDays sizes the consumption-trend window.
	WindowDays int
}

func NewService(catalog fodder.Catalog, events inventory.EventStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		catalog:    catalog,
		events:     events,
		logger:     logger,
		Policy:     inventory.RejectNegative,
		WindowDays: DefaultTrendWindowDays,
	}
}

// =============================================================================
// ITEM SUMMARY
// =============================================================================

// ItemSummary is one row of the stock screen.
type ItemSummary struct {
	Item fodder.ItemType

	QuantityOnHand  decimal.Decimal
	TotalValue      decimal.Decimal
	AverageUnitCost decimal.Decimal

	Status inventory.StockStatus
	Badge  inventory.StockBadge

	Trend    inventory.Trend
	DaysLeft inventory.DaysRemaining
	Runway   inventory.RunwayBadge

	Warnings []inventory.Warning
}

// Summarize replays one item's ledger as of the given date and classifies
// its stock health and runway.
func (s *Service) Summarize(ctx context.Context, id inventory.ItemTypeID, asOf inventory.Date) (*ItemSummary, error) {
	item, err := s.catalog.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, *item, asOf)
}

func (s *Service) summarize(ctx context.Context, item fodder.ItemType, asOf inventory.Date) (*ItemSummary, error) {
	agg, err := item.Aggregator(s.Policy)
	if err != nil {
		return nil, err
	}
	events, err := s.events.Load(ctx, item.ID)
	if err != nil {
		return nil, err
	}

	// Replay only up to asOf so historical views stay consistent.
	visible := make([]inventory.LedgerEvent, 0, len(events))
	for _, ev := range events {
		if ev.Date.BeforeOrEqual(asOf) {
			visible = append(visible, ev)
		}
	}
	state, _, err := agg.Replay(item.ID, visible)
	if err != nil {
		return nil, err
	}

	trend := inventory.EstimateTrend(visible, s.windowDays(), asOf)
	daysLeft := trend.DaysRemaining(state.QuantityOnHand)

	return &ItemSummary{
		Item:            item,
		QuantityOnHand:  state.QuantityOnHand,
		TotalValue:      state.TotalValue(),
		AverageUnitCost: state.AverageUnitCost(),
		Status:          inventory.EvaluateStock(state.QuantityOnHand, item.MinStockLevel),
		Badge:           inventory.ClassifyStock(state.QuantityOnHand, item.MinStockLevel),
		Trend:           trend,
		DaysLeft:        daysLeft,
		Runway:          inventory.ClassifyRunway(daysLeft),
		Warnings:        state.Warnings,
	}, nil
}

// =============================================================================
// OVERVIEW
// =============================================================================

// Overview is the farm-wide stock dashboard.
type Overview struct {
	AsOf inventory.Date

	Summaries []ItemSummary
	LowStock  []ItemSummary

	TotalInventoryValue decimal.Decimal

	RecentEvents []inventory.LedgerEvent

	ValueByCategory []SeriesPoint
}

// BuildOverview assembles the full dashboard as of the given date.
func (s *Service) BuildOverview(ctx context.Context, asOf inventory.Date) (*Overview, error) {
	items, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}

	ov := &Overview{AsOf: asOf, TotalInventoryValue: decimal.Zero}
	byCategory := map[fodder.Category]decimal.Decimal{}
	for _, item := range items {
		summary, err := s.summarize(ctx, item, asOf)
		if err != nil {
			return nil, err
		}
		ov.Summaries = append(ov.Summaries, *summary)
		ov.TotalInventoryValue = ov.TotalInventoryValue.Add(summary.TotalValue)
		byCategory[item.Category] = byCategory[item.Category].Add(summary.TotalValue)
		if summary.Badge != inventory.BadgeAdequate {
			ov.LowStock = append(ov.LowStock, *summary)
		}
	}

	for _, cat := range fodder.Categories() {
		if v, ok := byCategory[cat]; ok {
			ov.ValueByCategory = append(ov.ValueByCategory, SeriesPoint{Label: string(cat), Value: v})
		}
	}

	recent, err := s.recentEvents(ctx, asOf)
	if err != nil {
		return nil, err
	}
	ov.RecentEvents = recent

	s.logger.Debug("overview built",
		zap.Int("items", len(ov.Summaries)),
		zap.Int("low_stock", len(ov.LowStock)),
		zap.String("total_value", ov.TotalInventoryValue.String()),
	)
	return ov, nil
}

func (s *Service) recentEvents(ctx context.Context, asOf inventory.Date) ([]inventory.LedgerEvent, error) {
	all, err := s.events.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	visible := make([]inventory.LedgerEvent, 0, len(all))
	for _, ev := range all {
		if ev.Date.BeforeOrEqual(asOf) {
			visible = append(visible, ev)
		}
	}
	// Newest first.
	sort.SliceStable(visible, func(i, j int) bool {
		if !visible[i].Date.Equal(visible[j].Date) {
			return visible[i].Date.After(visible[j].Date)
		}
		return visible[i].Seq > visible[j].Seq
	})
	if len(visible) > recentEventLimit {
		visible = visible[:recentEventLimit]
	}
	return visible, nil
}

func (s *Service) windowDays() int {
	if s.WindowDays > 0 {
		return s.WindowDays
	}
	return DefaultTrendWindowDays
}
