/*
aggregator_test.go - Replay behavior

Covers the replay contract: chronological ordering with sequence
tie-breaks, the quantity-on-hand identity over the running totals,
production costing from components, signed adjustments, and both
negative-stock policies.
*/
package inventory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dairyops/feedstock/inventory"
)

// =============================================================================
// TEST INFRASTRUCTURE
// =============================================================================

const testItem = inventory.ItemTypeID("wheat-straw")

func date(y, m, day int) inventory.Date {
	return inventory.NewDate(y, time.Month(m), day)
}

func purchase(id string, dt inventory.Date, seq int64, qty, unitCost string) inventory.LedgerEvent {
	return inventory.LedgerEvent{
		ID:         inventory.EventID(id),
		ItemTypeID: testItem,
		Type:       inventory.EventPurchase,
		Date:       dt,
		Seq:        seq,
		Quantity:   inventory.NewQuantityFromDecimal(d(qty), inventory.UnitKilogram),
		UnitCost:   d(unitCost),
	}
}

func consumption(id string, dt inventory.Date, seq int64, qty string) inventory.LedgerEvent {
	return inventory.LedgerEvent{
		ID:         inventory.EventID(id),
		ItemTypeID: testItem,
		Type:       inventory.EventConsumption,
		Date:       dt,
		Seq:        seq,
		Quantity:   inventory.NewQuantityFromDecimal(d(qty), inventory.UnitKilogram),
	}
}

func wastage(id string, dt inventory.Date, seq int64, qty string) inventory.LedgerEvent {
	ev := consumption(id, dt, seq, qty)
	ev.Type = inventory.EventWastage
	return ev
}

func fifoAggregator(t *testing.T) *inventory.Aggregator {
	t.Helper()
	agg, err := inventory.NewAggregator(inventory.CostingFIFO)
	if err != nil {
		t.Fatalf("NewAggregator: %v", err)
	}
	return agg
}

// =============================================================================
// ORDERING
// =============================================================================

func TestReplay_SortsByDateThenSequence(t *testing.T) {
	// GIVEN: Events appended out of date order, plus two on the same day
	// WHEN:  Replaying
	// THEN:  The purchase dated earliest applies first, so the same-day
	//        consumption finds stock even though it was passed first

	agg := fifoAggregator(t)
	events := []inventory.LedgerEvent{
		consumption("c1", date(2026, 3, 10), 3, "50"),
		purchase("p2", date(2026, 3, 10), 2, "40", "6.00"),
		purchase("p1", date(2026, 3, 1), 1, "100", "5.00"),
	}

	state, costs, err := agg.Replay(testItem, events)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if !state.QuantityOnHand.Equal(d("90")) {
		t.Errorf("quantity on hand = %s, want 90", state.QuantityOnHand)
	}
	// FIFO: the 50 consumed comes wholly from the March 1 lot.
	if len(costs) != 1 || !costs[0].Cost.Equal(d("250")) {
		t.Errorf("costs = %+v, want one consumption costing 250", costs)
	}
}

func TestReplay_SameDaySequenceBreaksTies(t *testing.T) {
	// Two same-day events: the purchase has the lower sequence, so the
	// consumption that needs it succeeds.

	agg := fifoAggregator(t)
	events := []inventory.LedgerEvent{
		consumption("c1", date(2026, 3, 10), 2, "30"),
		purchase("p1", date(2026, 3, 10), 1, "30", "4.00"),
	}

	state, _, err := agg.Replay(testItem, events)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if !state.QuantityOnHand.IsZero() {
		t.Errorf("quantity on hand = %s, want 0", state.QuantityOnHand)
	}
}

// =============================================================================
// QUANTITY-ON-HAND IDENTITY
// =============================================================================

func TestReplay_QuantityIdentityHolds(t *testing.T) {
	// quantity_on_hand = purchased + produced - consumed - wasted + adjustments

	agg := fifoAggregator(t)
	adjustment := inventory.LedgerEvent{
		ID: "a1", ItemTypeID: testItem, Type: inventory.EventAdjustment,
		Date: date(2026, 4, 5), Seq: 5,
		Quantity: inventory.NewQuantityFromDecimal(d("-15"), inventory.UnitKilogram),
	}
	events := []inventory.LedgerEvent{
		purchase("p1", date(2026, 4, 1), 1, "200", "5.00"),
		purchase("p2", date(2026, 4, 2), 2, "100", "5.50"),
		consumption("c1", date(2026, 4, 3), 3, "80"),
		wastage("w1", date(2026, 4, 4), 4, "20"),
		adjustment,
	}

	state, _, err := agg.Replay(testItem, events)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}

	want := state.TotalPurchased.
		Add(state.TotalProduced).
		Sub(state.TotalConsumed).
		Sub(state.TotalWasted).
		Sub(d("15"))
	if !state.QuantityOnHand.Equal(want) {
		t.Errorf("quantity on hand = %s, identity gives %s", state.QuantityOnHand, want)
	}
	if !state.QuantityOnHand.Equal(d("185")) {
		t.Errorf("quantity on hand = %s, want 185", state.QuantityOnHand)
	}
	if !state.TotalWasted.Equal(d("20")) {
		t.Errorf("total wasted = %s, want 20", state.TotalWasted)
	}
	if !state.TotalConsumed.Equal(d("80")) {
		t.Errorf("total consumed = %s, want 80 (negative adjustment is not consumption)", state.TotalConsumed)
	}
}

// =============================================================================
// PRODUCTION
// =============================================================================

func TestReplay_ProductionUnitCostDerivedFromComponents(t *testing.T) {
	// GIVEN: A production run of 500 kg costing 1000+500+450+50 = 2000 total
	// THEN:  Stock is valued at 4.00/kg

	agg := fifoAggregator(t)
	components := inventory.CostComponents{
		Seed: d("1000"), Fertilizer: d("500"), Labor: d("450"), Machinery: d("50"),
	}
	events := []inventory.LedgerEvent{{
		ID: "pr1", ItemTypeID: testItem, Type: inventory.EventProduction,
		Date: date(2026, 5, 1), Seq: 1,
		Quantity:       inventory.NewQuantityFromDecimal(d("500"), inventory.UnitKilogram),
		CostComponents: &components,
	}}

	state, _, err := agg.Replay(testItem, events)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if !state.AverageUnitCost().Equal(d("4")) {
		t.Errorf("unit cost = %s, want 4", state.AverageUnitCost())
	}
	if !state.TotalValue().Equal(d("2000")) {
		t.Errorf("total value = %s, want 2000", state.TotalValue())
	}
	if !state.TotalProduced.Equal(d("500")) {
		t.Errorf("total produced = %s, want 500", state.TotalProduced)
	}
}

func TestReplay_ProductionWithoutComponentsRejected(t *testing.T) {
	agg := fifoAggregator(t)
	events := []inventory.LedgerEvent{{
		ID: "pr1", ItemTypeID: testItem, Type: inventory.EventProduction,
		Date: date(2026, 5, 1), Seq: 1,
		Quantity: inventory.NewQuantityFromDecimal(d("500"), inventory.UnitKilogram),
	}}

	_, _, err := agg.Replay(testItem, events)
	if !errors.Is(err, inventory.ErrInvalidQuantity) {
		t.Fatalf("err = %v, want ErrInvalidQuantity", err)
	}
}

// =============================================================================
// NEGATIVE STOCK POLICIES
// =============================================================================

func TestReplay_RejectNegative_ShortfallAbortsReplay(t *testing.T) {
	// GIVEN: 100 on hand, default reject policy
	// WHEN:  Consuming 120
	// THEN:  Replay fails with InsufficientStock

	agg := fifoAggregator(t)
	events := []inventory.LedgerEvent{
		purchase("p1", date(2026, 6, 1), 1, "100", "5.00"),
		consumption("c1", date(2026, 6, 2), 2, "120"),
	}

	_, _, err := agg.Replay(testItem, events)
	if !errors.Is(err, inventory.ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	var stockErr *inventory.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatal("error should carry shortfall details")
	}
	if !stockErr.Shortfall.Equal(d("20")) {
		t.Errorf("shortfall = %s, want 20", stockErr.Shortfall)
	}
}

func TestReplay_AllowNegative_UncoveredPricedAtReferenceCost(t *testing.T) {
	// GIVEN: 100 on hand at 5.00, allow policy with reference cost 6.00
	// WHEN:  Consuming 120
	// THEN:  Event applies, qoh goes to -20, cost is 100*5 + 20*6 = 620,
	//        and a warning is recorded

	agg := fifoAggregator(t)
	agg.Policy = inventory.AllowNegative
	agg.ReferenceCost = d("6.00")
	events := []inventory.LedgerEvent{
		purchase("p1", date(2026, 6, 1), 1, "100", "5.00"),
		consumption("c1", date(2026, 6, 2), 2, "120"),
	}

	state, costs, err := agg.Replay(testItem, events)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if !state.QuantityOnHand.Equal(d("-20")) {
		t.Errorf("quantity on hand = %s, want -20", state.QuantityOnHand)
	}
	if len(costs) != 1 || !costs[0].Cost.Equal(d("620")) {
		t.Errorf("costs = %+v, want one consumption costing 620", costs)
	}
	if len(state.Warnings) != 1 {
		t.Fatalf("warnings = %d, want 1", len(state.Warnings))
	}
	if state.Warnings[0].EventID != "c1" {
		t.Errorf("warning event = %s, want c1", state.Warnings[0].EventID)
	}
}

func TestReplay_AllowNegative_RestockCoversDeficitBeforeFormingLot(t *testing.T) {
	// GIVEN: A negative excursion of 20, then a restock of 100
	// THEN:  The restock covers the deficit first, so only 80 units enter
	//        the lot queue and the queue matches quantity-on-hand

	agg := fifoAggregator(t)
	agg.Policy = inventory.AllowNegative
	agg.ReferenceCost = d("6.00")
	events := []inventory.LedgerEvent{
		purchase("p1", date(2026, 6, 1), 1, "100", "5.00"),
		consumption("c1", date(2026, 6, 2), 2, "120"),
		purchase("p2", date(2026, 6, 3), 3, "100", "5.00"),
	}

	state, _, err := agg.Replay(testItem, events)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if !state.QuantityOnHand.Equal(d("80")) {
		t.Errorf("quantity on hand = %s, want 80", state.QuantityOnHand)
	}
	if !state.Lots.TotalQuantity().Equal(d("80")) {
		t.Errorf("lot quantity = %s, want 80", state.Lots.TotalQuantity())
	}
	if !state.Lots.TotalValue().Equal(d("400")) {
		t.Errorf("lot value = %s, want 400 (80 at 5.00)", state.Lots.TotalValue())
	}
}

func TestReplay_AllowNegative_SecondExcursionWarnsAgain(t *testing.T) {
	// GIVEN: Shortfall, restock, then a consumption that goes negative again
	// THEN:  Both excursions warn and the second is priced 80 from lots
	//        plus 20 at the reference cost, not from phantom stock

	agg := fifoAggregator(t)
	agg.Policy = inventory.AllowNegative
	agg.ReferenceCost = d("6.00")
	events := []inventory.LedgerEvent{
		purchase("p1", date(2026, 6, 1), 1, "100", "5.00"),
		consumption("c1", date(2026, 6, 2), 2, "120"),
		purchase("p2", date(2026, 6, 3), 3, "100", "5.00"),
		consumption("c2", date(2026, 6, 4), 4, "100"),
	}

	state, costs, err := agg.Replay(testItem, events)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if !state.QuantityOnHand.Equal(d("-20")) {
		t.Errorf("quantity on hand = %s, want -20", state.QuantityOnHand)
	}
	if !state.Lots.TotalQuantity().IsZero() {
		t.Errorf("lot quantity = %s, want 0", state.Lots.TotalQuantity())
	}
	if len(state.Warnings) != 2 {
		t.Fatalf("warnings = %d, want 2 (one per excursion)", len(state.Warnings))
	}
	if state.Warnings[1].EventID != "c2" {
		t.Errorf("second warning event = %s, want c2", state.Warnings[1].EventID)
	}
	if len(costs) != 2 || !costs[1].Cost.Equal(d("520")) {
		t.Errorf("costs = %+v, want second consumption costing 520 (80*5 + 20*6)", costs)
	}
}

// =============================================================================
// ADJUSTMENTS
// =============================================================================

func TestReplay_PositiveAdjustmentWithoutCostUsesReference(t *testing.T) {
	agg := fifoAggregator(t)
	agg.ReferenceCost = d("3.50")
	events := []inventory.LedgerEvent{{
		ID: "a1", ItemTypeID: testItem, Type: inventory.EventAdjustment,
		Date: date(2026, 7, 1), Seq: 1,
		Quantity: inventory.NewQuantityFromDecimal(d("40"), inventory.UnitKilogram),
	}}

	state, _, err := agg.Replay(testItem, events)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if !state.TotalValue().Equal(d("140")) {
		t.Errorf("total value = %s, want 140 (40 @ reference 3.50)", state.TotalValue())
	}
}

func TestReplay_ZeroAdjustmentRejected(t *testing.T) {
	agg := fifoAggregator(t)
	events := []inventory.LedgerEvent{{
		ID: "a1", ItemTypeID: testItem, Type: inventory.EventAdjustment,
		Date: date(2026, 7, 1), Seq: 1,
		Quantity: inventory.NewQuantityFromDecimal(d("0"), inventory.UnitKilogram),
	}}

	_, _, err := agg.Replay(testItem, events)
	if !errors.Is(err, inventory.ErrInvalidQuantity) {
		t.Fatalf("err = %v, want ErrInvalidQuantity", err)
	}
}
