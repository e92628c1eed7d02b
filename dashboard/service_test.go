/*
Dashboard read-facade tests.

Drives the dashboard through the real recording service so its figures
are checked against what the ledger actually holds, not fabricated
event slices.
*/
package dashboard_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dairyops/feedstock/dashboard"
	"github.com/dairyops/feedstock/fodder"
	"github.com/dairyops/feedstock/inventory"
	"github.com/dairyops/feedstock/inventory/store"
)

type testFixture struct {
	dashboard *dashboard.Service
	service   *fodder.Service
	catalog   *fodder.MemoryCatalog
	ctx       context.Context
}

func newTestDashboard(t *testing.T, items ...fodder.ItemType) *testFixture {
	t.Helper()
	f := &testFixture{
		catalog: fodder.NewMemoryCatalog(),
		ctx:     context.Background(),
	}
	recorder := fodder.NewMemoryRecorder()
	for _, it := range items {
		require.NoError(t, f.catalog.Save(f.ctx, it))
	}
	f.service = fodder.NewService(f.catalog, recorder, store.NewMemorySnapshots(), nil)
	f.dashboard = dashboard.NewService(f.catalog, recorder, nil)
	return f
}

func dec(s string) decimal.Decimal { return inventory.MustParseDecimal(s) }

func date(y int, m time.Month, d int) inventory.Date { return inventory.NewDate(y, m, d) }

func item(id, name string, cat fodder.Category, minStock string) fodder.ItemType {
	return fodder.ItemType{
		ID:            inventory.ItemTypeID(id),
		Name:          name,
		Category:      cat,
		Unit:          inventory.UnitKilogram,
		CostingMethod: inventory.CostingFIFO,
		MinStockLevel: dec(minStock),
	}
}

func (f *testFixture) purchase(t *testing.T, id string, dt inventory.Date, qty, unitCost string) {
	t.Helper()
	_, err := f.service.RecordPurchase(f.ctx, fodder.PurchaseRecord{
		ItemTypeID: inventory.ItemTypeID(id),
		Date:       dt,
		Quantity:   dec(qty),
		UnitCost:   dec(unitCost),
	})
	require.NoError(t, err)
}

func (f *testFixture) consume(t *testing.T, id string, dt inventory.Date, qty string) {
	t.Helper()
	_, err := f.service.RecordConsumption(f.ctx, fodder.ConsumptionRecord{
		ItemTypeID: inventory.ItemTypeID(id),
		Date:       dt,
		Quantity:   dec(qty),
		Scope:      fodder.ConsumedByWholeHerd,
	})
	require.NoError(t, err)
}

// =============================================================================
// ITEM SUMMARY
// =============================================================================

func TestSummarize_HealthAndRunway(t *testing.T) {
	f := newTestDashboard(t, item("wheat-straw", "Wheat Straw", fodder.CategoryDry, "500"))
	asOf := date(2026, time.June, 30)

	f.purchase(t, "wheat-straw", date(2026, time.June, 1), "1000", "5")
	// 30 units a day over the window.
	f.consume(t, "wheat-straw", date(2026, time.June, 10), "300")
	f.consume(t, "wheat-straw", date(2026, time.June, 20), "600")

	sum, err := f.dashboard.Summarize(f.ctx, "wheat-straw", asOf)
	require.NoError(t, err)

	assert.True(t, sum.QuantityOnHand.Equal(dec("100")))
	assert.True(t, sum.TotalValue.Equal(dec("500")))
	assert.Equal(t, inventory.StatusBelowMinimum, sum.Status)
	assert.Equal(t, inventory.BadgeLowStock, sum.Badge)

	// 100 on hand at 30/day -> about 3.3 days.
	assert.Equal(t, inventory.RunwayCritical, sum.Runway)
	assert.Equal(t, "3.3", sum.DaysLeft.String())
}

func TestSummarize_NoConsumptionHasNARunway(t *testing.T) {
	f := newTestDashboard(t, item("dry-hay", "Dry Hay", fodder.CategoryDry, "10"))
	f.purchase(t, "dry-hay", date(2026, time.June, 1), "50", "180")

	sum, err := f.dashboard.Summarize(f.ctx, "dry-hay", date(2026, time.June, 30))
	require.NoError(t, err)

	assert.Equal(t, inventory.BadgeAdequate, sum.Badge)
	assert.Equal(t, inventory.RunwayUnknown, sum.Runway)
	assert.Equal(t, "N/A", sum.DaysLeft.String())
}

func TestSummarize_AsOfHidesLaterEvents(t *testing.T) {
	f := newTestDashboard(t, item("wheat-straw", "Wheat Straw", fodder.CategoryDry, "0"))
	f.purchase(t, "wheat-straw", date(2026, time.June, 1), "100", "5")
	f.purchase(t, "wheat-straw", date(2026, time.June, 20), "400", "5")

	sum, err := f.dashboard.Summarize(f.ctx, "wheat-straw", date(2026, time.June, 10))
	require.NoError(t, err)
	assert.True(t, sum.QuantityOnHand.Equal(dec("100")), "the June 20 purchase is not visible on June 10")
}

// =============================================================================
// OVERVIEW
// =============================================================================

func TestBuildOverview(t *testing.T) {
	f := newTestDashboard(t,
		item("wheat-straw", "Wheat Straw", fodder.CategoryDry, "500"),
		item("green-maize", "Green Maize", fodder.CategoryGreen, "100"),
		item("mineral-mix", "Mineral Mix", fodder.CategorySupplement, "5"),
	)
	asOf := date(2026, time.June, 30)

	f.purchase(t, "wheat-straw", date(2026, time.June, 1), "400", "5")   // 2000, below min
	f.purchase(t, "green-maize", date(2026, time.June, 1), "500", "3")   // 1500, adequate
	f.purchase(t, "mineral-mix", date(2026, time.June, 1), "20", "250")  // 5000, adequate

	ov, err := f.dashboard.BuildOverview(f.ctx, asOf)
	require.NoError(t, err)

	assert.Len(t, ov.Summaries, 3)
	assert.True(t, ov.TotalInventoryValue.Equal(dec("8500")))

	require.Len(t, ov.LowStock, 1)
	assert.Equal(t, inventory.ItemTypeID("wheat-straw"), ov.LowStock[0].Item.ID)

	// Category totals come out in display order, empty categories omitted.
	require.Len(t, ov.ValueByCategory, 3)
	assert.Equal(t, string(fodder.CategoryGreen), ov.ValueByCategory[0].Label)
	assert.True(t, ov.ValueByCategory[0].Value.Equal(dec("1500")))
	assert.Equal(t, string(fodder.CategoryDry), ov.ValueByCategory[1].Label)
	assert.Equal(t, string(fodder.CategorySupplement), ov.ValueByCategory[2].Label)

	assert.Len(t, ov.RecentEvents, 3)
}

func TestBuildOverview_RecentEventsNewestFirstAndCapped(t *testing.T) {
	f := newTestDashboard(t, item("wheat-straw", "Wheat Straw", fodder.CategoryDry, "0"))
	f.purchase(t, "wheat-straw", date(2026, time.June, 1), "5000", "5")
	for d := 2; d <= 15; d++ {
		f.consume(t, "wheat-straw", date(2026, time.June, d), "10")
	}

	ov, err := f.dashboard.BuildOverview(f.ctx, date(2026, time.June, 30))
	require.NoError(t, err)

	require.Len(t, ov.RecentEvents, 10)
	assert.Equal(t, date(2026, time.June, 15), ov.RecentEvents[0].Date)
	assert.Equal(t, date(2026, time.June, 6), ov.RecentEvents[9].Date)
}

// =============================================================================
// CHART SERIES
// =============================================================================

func TestMonthlyConsumption_GapFreeSeries(t *testing.T) {
	f := newTestDashboard(t, item("wheat-straw", "Wheat Straw", fodder.CategoryDry, "0"))
	f.purchase(t, "wheat-straw", date(2026, time.January, 1), "10000", "5")
	f.consume(t, "wheat-straw", date(2026, time.February, 10), "300")
	f.consume(t, "wheat-straw", date(2026, time.February, 20), "200")
	f.consume(t, "wheat-straw", date(2026, time.May, 5), "400")

	points, err := f.dashboard.MonthlyConsumption(f.ctx, "wheat-straw", date(2026, time.June, 15))
	require.NoError(t, err)

	// Six trailing months, January through June, no gaps.
	require.Len(t, points, 6)
	labels := make([]string, len(points))
	for i, p := range points {
		labels[i] = p.Label
	}
	assert.Equal(t, []string{"Jan 2026", "Feb 2026", "Mar 2026", "Apr 2026", "May 2026", "Jun 2026"}, labels)

	assert.True(t, points[0].Value.IsZero())
	assert.True(t, points[1].Value.Equal(dec("500")))
	assert.True(t, points[2].Value.IsZero())
	assert.True(t, points[4].Value.Equal(dec("400")))
	assert.True(t, points[5].Value.IsZero())
}

func TestPurchasePriceTrend(t *testing.T) {
	f := newTestDashboard(t, item("wheat-straw", "Wheat Straw", fodder.CategoryDry, "0"))
	f.purchase(t, "wheat-straw", date(2026, time.April, 1), "100", "4.80")
	f.purchase(t, "wheat-straw", date(2026, time.May, 1), "100", "5.20")
	f.consume(t, "wheat-straw", date(2026, time.May, 10), "50")
	f.purchase(t, "wheat-straw", date(2026, time.July, 1), "100", "6.00")

	points, err := f.dashboard.PurchasePriceTrend(f.ctx, "wheat-straw", date(2026, time.June, 30))
	require.NoError(t, err)

	// Purchases only, in date order, nothing after asOf.
	require.Len(t, points, 2)
	assert.Equal(t, "2026-04-01", points[0].Label)
	assert.True(t, points[0].Value.Equal(dec("4.80")))
	assert.Equal(t, "2026-05-01", points[1].Label)
	assert.True(t, points[1].Value.Equal(dec("5.20")))
}
