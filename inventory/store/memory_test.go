package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dairyops/feedstock/inventory"
	"github.com/dairyops/feedstock/inventory/store"
)

const testItem = inventory.ItemTypeID("wheat-straw")

func event(id string, item inventory.ItemTypeID, dt inventory.Date, qty string) inventory.LedgerEvent {
	return inventory.LedgerEvent{
		ID:         inventory.EventID(id),
		ItemTypeID: item,
		Type:       inventory.EventPurchase,
		Date:       dt,
		Quantity:   inventory.NewQuantityFromDecimal(inventory.MustParseDecimal(qty), inventory.UnitKilogram),
		UnitCost:   decimal.NewFromInt(5),
	}
}

func day(d int) inventory.Date {
	return inventory.NewDate(2026, time.June, d)
}

func TestMemory_AppendAssignsMonotonicSeq(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := m.Append(ctx, event(id, testItem, day(10), "100")); err != nil {
			t.Fatalf("append %s: %v", id, err)
		}
	}

	evs, err := m.Load(ctx, testItem)
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 3 {
		t.Fatalf("loaded %d events, want 3", len(evs))
	}
	for i, ev := range evs {
		if ev.Seq != int64(i+1) {
			t.Errorf("event %s seq = %d, want %d", ev.ID, ev.Seq, i+1)
		}
	}
}

func TestMemory_LoadOrdersByDateThenSeq(t *testing.T) {
	// Appended out of date order; Load must return them replay-ready.
	m := store.NewMemory()
	ctx := context.Background()

	if err := m.Append(ctx, event("late", testItem, day(20), "10")); err != nil {
		t.Fatal(err)
	}
	if err := m.Append(ctx, event("early", testItem, day(5), "10")); err != nil {
		t.Fatal(err)
	}
	if err := m.Append(ctx, event("mid", testItem, day(12), "10")); err != nil {
		t.Fatal(err)
	}

	evs, _ := m.Load(ctx, testItem)
	got := []string{string(evs[0].ID), string(evs[1].ID), string(evs[2].ID)}
	want := []string{"early", "mid", "late"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestMemory_SameDayOrderedByAppendSeq(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	for _, id := range []string{"first", "second", "third"} {
		if err := m.Append(ctx, event(id, testItem, day(10), "10")); err != nil {
			t.Fatal(err)
		}
	}

	evs, _ := m.Load(ctx, testItem)
	for i, want := range []string{"first", "second", "third"} {
		if string(evs[i].ID) != want {
			t.Fatalf("position %d = %s, want %s", i, evs[i].ID, want)
		}
	}
}

func TestMemory_DuplicateIDRejected(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	if err := m.Append(ctx, event("dup", testItem, day(1), "10")); err != nil {
		t.Fatal(err)
	}
	err := m.Append(ctx, event("dup", testItem, day(2), "20"))
	if !errors.Is(err, inventory.ErrDuplicateEvent) {
		t.Fatalf("err = %v, want ErrDuplicateEvent", err)
	}
}

func TestMemory_AppendBatchAllOrNothing(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	if err := m.Append(ctx, event("taken", testItem, day(1), "10")); err != nil {
		t.Fatal(err)
	}

	batch := []inventory.LedgerEvent{
		event("fresh", testItem, day(2), "10"),
		event("taken", testItem, day(3), "10"),
	}
	if err := m.AppendBatch(ctx, batch); !errors.Is(err, inventory.ErrDuplicateEvent) {
		t.Fatalf("err = %v, want ErrDuplicateEvent", err)
	}

	// The valid half of the batch must not have landed.
	if _, err := m.Get(ctx, "fresh"); !errors.Is(err, inventory.ErrEventNotFound) {
		t.Fatalf("fresh event persisted despite batch failure: %v", err)
	}
}

func TestMemory_LoadRangeInclusiveBounds(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	for d, id := range map[int]string{4: "before", 5: "from", 10: "inside", 15: "to", 16: "after"} {
		if err := m.Append(ctx, event(id, testItem, day(d), "10")); err != nil {
			t.Fatal(err)
		}
	}

	evs, err := m.LoadRange(ctx, testItem, day(5), day(15))
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 3 {
		t.Fatalf("range returned %d events, want 3", len(evs))
	}
	for _, ev := range evs {
		if ev.ID == "before" || ev.ID == "after" {
			t.Errorf("event %s outside [from, to] was returned", ev.ID)
		}
	}
}

func TestMemory_AmendPreservesSeqAndResorts(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	if err := m.Append(ctx, event("a", testItem, day(10), "10")); err != nil {
		t.Fatal(err)
	}
	if err := m.Append(ctx, event("b", testItem, day(20), "10")); err != nil {
		t.Fatal(err)
	}

	// Move "b" before "a"; its original seq rides along.
	amended := event("b", testItem, day(5), "99")
	if err := m.Amend(ctx, amended); err != nil {
		t.Fatal(err)
	}

	evs, _ := m.Load(ctx, testItem)
	if string(evs[0].ID) != "b" {
		t.Fatalf("first event = %s, want b after re-dating", evs[0].ID)
	}
	if evs[0].Seq != 2 {
		t.Errorf("amended seq = %d, want original 2", evs[0].Seq)
	}
	if !evs[0].Quantity.Value.Equal(inventory.MustParseDecimal("99")) {
		t.Errorf("amended quantity = %s, want 99", evs[0].Quantity.Value)
	}
}

func TestMemory_AmendUnknownEvent(t *testing.T) {
	m := store.NewMemory()
	err := m.Amend(context.Background(), event("ghost", testItem, day(1), "10"))
	if !errors.Is(err, inventory.ErrEventNotFound) {
		t.Fatalf("err = %v, want ErrEventNotFound", err)
	}
}

func TestMemory_RemoveDeletesAndFreesID(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	if err := m.Append(ctx, event("x", testItem, day(1), "10")); err != nil {
		t.Fatal(err)
	}
	if err := m.Remove(ctx, "x"); err != nil {
		t.Fatal(err)
	}

	if _, err := m.Get(ctx, "x"); !errors.Is(err, inventory.ErrEventNotFound) {
		t.Fatalf("get after remove: %v, want ErrEventNotFound", err)
	}
	has, _ := m.HasEvents(ctx, testItem)
	if has {
		t.Error("HasEvents true after removing the only event")
	}

	// The ID is free to reuse once removed.
	if err := m.Append(ctx, event("x", testItem, day(2), "20")); err != nil {
		t.Fatalf("re-append after remove: %v", err)
	}
}

func TestMemory_LoadAllSpansItemTypes(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	if err := m.Append(ctx, event("straw", testItem, day(10), "10")); err != nil {
		t.Fatal(err)
	}
	if err := m.Append(ctx, event("hay", "dry-hay", day(5), "10")); err != nil {
		t.Fatal(err)
	}

	evs, err := m.LoadAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 2 {
		t.Fatalf("loaded %d events, want 2", len(evs))
	}
	if string(evs[0].ID) != "hay" {
		t.Errorf("first event = %s, want hay (earlier date) first", evs[0].ID)
	}
}
