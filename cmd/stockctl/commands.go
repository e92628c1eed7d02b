package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dairyops/feedstock/dashboard"
	"github.com/dairyops/feedstock/fodder"
	"github.com/dairyops/feedstock/inventory"
	"github.com/dairyops/feedstock/store/sqlite"
)

type app struct {
	store     *sqlite.Store
	service   *fodder.Service
	dashboard *dashboard.Service
	logger    *zap.Logger

	asOf   inventory.Date
	format string
}

func ctxBackground() context.Context { return context.Background() }

// =============================================================================
// OVERVIEW
// =============================================================================

func (a *app) runOverview() error {
	ov, err := a.dashboard.BuildOverview(ctxBackground(), a.asOf)
	if err != nil {
		return err
	}

	if a.format == "json" {
		return printJSON(overviewJSON(ov))
	}

	fmt.Printf("Stock overview as of %s\n\n", ov.AsOf)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ITEM\tON HAND\tVALUE\tSTOCK\tAVG/DAY\tDAYS LEFT\tRUNWAY")
	for _, s := range ov.Summaries {
		fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\t%s\t%s\t%s\n",
			s.Item.Name,
			s.QuantityOnHand, s.Item.Unit,
			s.TotalValue.StringFixed(2),
			s.Badge,
			s.Trend.AvgDaily.StringFixed(2),
			s.DaysLeft,
			s.Runway,
		)
	}
	w.Flush()

	fmt.Printf("\nTotal inventory value: %s\n", ov.TotalInventoryValue.StringFixed(2))
	if len(ov.LowStock) > 0 {
		fmt.Printf("\nNeeds attention (%d):\n", len(ov.LowStock))
		for _, s := range ov.LowStock {
			fmt.Printf("  - %s: %s %s on hand (min %s)\n",
				s.Item.Name, s.QuantityOnHand, s.Item.Unit, s.Item.MinStockLevel)
		}
	}
	if len(ov.ValueByCategory) > 0 {
		fmt.Println("\nValue by category:")
		for _, p := range ov.ValueByCategory {
			fmt.Printf("  %-12s %s\n", p.Label, p.Value.StringFixed(2))
		}
	}
	if len(ov.RecentEvents) > 0 {
		fmt.Println("\nRecent activity:")
		for _, ev := range ov.RecentEvents {
			fmt.Printf("  %s  %-12s %-12s %s\n", ev.Date, ev.Type, ev.ItemTypeID, ev.Quantity)
		}
	}
	return nil
}

// =============================================================================
// ITEM
// =============================================================================

func (a *app) runItem(id inventory.ItemTypeID) error {
	ctx := ctxBackground()

	summary, err := a.dashboard.Summarize(ctx, id, a.asOf)
	if err != nil {
		return err
	}
	consumption, err := a.dashboard.MonthlyConsumption(ctx, id, a.asOf)
	if err != nil {
		return err
	}
	prices, err := a.dashboard.PurchasePriceTrend(ctx, id, a.asOf)
	if err != nil {
		return err
	}
	audit, err := a.store.Entries(ctx, id)
	if err != nil {
		return err
	}

	if a.format == "json" {
		return printJSON(map[string]any{
			"summary":              summaryJSON(*summary),
			"monthly_consumption":  seriesJSON(consumption),
			"purchase_price_trend": seriesJSON(prices),
		})
	}

	it := summary.Item
	fmt.Printf("%s (%s, %s)\n", it.Name, it.Category, it.CostingMethod)
	fmt.Printf("  On hand:     %s %s  [%s]\n", summary.QuantityOnHand, it.Unit, summary.Badge)
	fmt.Printf("  Value:       %s (avg unit cost %s)\n",
		summary.TotalValue.StringFixed(2), summary.AverageUnitCost.StringFixed(2))
	fmt.Printf("  Min level:   %s %s\n", it.MinStockLevel, it.Unit)
	fmt.Printf("  Consumption: %s/day over last %d days\n",
		summary.Trend.AvgDaily.StringFixed(2), summary.Trend.WindowDays)
	fmt.Printf("  Runway:      %s days remaining  [%s]\n", summary.DaysLeft, summary.Runway)
	for _, warn := range summary.Warnings {
		fmt.Printf("  WARNING %s: %s\n", warn.Date, warn.Message)
	}

	if len(consumption) > 0 {
		fmt.Println("\nMonthly consumption:")
		for _, p := range consumption {
			fmt.Printf("  %-9s %s\n", p.Label, p.Value.StringFixed(1))
		}
	}
	if len(prices) > 0 {
		fmt.Println("\nPurchase prices:")
		for _, p := range prices {
			fmt.Printf("  %s  %s\n", p.Label, p.Value.StringFixed(2))
		}
	}
	if len(audit) > 0 {
		fmt.Println("\nAudit trail:")
		for _, e := range audit {
			fmt.Printf("  %s  %-8s %-12s qty %s  balance %s -> %s\n",
				e.Date, e.Action, e.EventType, e.Quantity, e.PreviousBalance, e.NewBalance)
		}
	}
	return nil
}

// =============================================================================
// SEED
// =============================================================================

func (a *app) runSeed(demo bool) error {
	ctx := ctxBackground()

	seeded, err := fodder.SeedCatalog(ctx, a.store.Catalog())
	if err != nil {
		return err
	}
	fmt.Printf("catalog: %d item types installed\n", seeded)

	if !demo {
		return nil
	}

	n, err := a.seedDemoLedger(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("demo ledger: %d events recorded\n", n)
	return nil
}

// seedDemoLedger records a few weeks of plausible activity so the
// dashboard has something to show.
func (a *app) seedDemoLedger(ctx context.Context) (int, error) {
	base := a.asOf.AddDays(-28)
	recorded := 0

	purchases := []fodder.PurchaseRecord{
		{ItemTypeID: "wheat-straw", Date: base, Quantity: dec("2000"), UnitCost: dec("3.80"),
			Supplier: "Mandi Traders", InvoiceNumber: "INV-1201", CreatedBy: "seed"},
		{ItemTypeID: "wheat-straw", Date: base.AddDays(14), Quantity: dec("1500"), UnitCost: dec("4.20"),
			Supplier: "Mandi Traders", InvoiceNumber: "INV-1288", CreatedBy: "seed"},
		{ItemTypeID: "cottonseed-cake", Date: base.AddDays(2), Quantity: dec("20"), UnitCost: dec("1450"),
			Supplier: "Oil Mill Co", CreatedBy: "seed"},
		{ItemTypeID: "mineral-mix", Date: base.AddDays(3), Quantity: dec("50"), UnitCost: dec("92.50"),
			Supplier: "VetCare Supplies", CreatedBy: "seed"},
	}
	for _, rec := range purchases {
		if _, err := a.service.RecordPurchase(ctx, rec); err != nil {
			return recorded, err
		}
		recorded++
	}

	production := fodder.ProductionRecord{
		ItemTypeID: "green-maize",
		Date:       base.AddDays(5),
		Quantity:   dec("3000"),
		Costs: inventory.CostComponents{
			Seed:       dec("1200"),
			Fertilizer: dec("1800"),
			Labor:      dec("2500"),
			Machinery:  dec("900"),
		},
		Location:  "North field",
		CreatedBy: "seed",
	}
	if _, err := a.service.RecordProduction(ctx, production); err != nil {
		return recorded, err
	}
	recorded++

	for day := 7; day <= 28; day++ {
		cons := fodder.ConsumptionRecord{
			ItemTypeID: "wheat-straw",
			Date:       base.AddDays(day),
			Quantity:   dec("80"),
			Scope:      fodder.ConsumedByWholeHerd,
			CreatedBy:  "seed",
		}
		if _, err := a.service.RecordConsumption(ctx, cons); err != nil {
			return recorded, err
		}
		recorded++
	}

	wastage := fodder.WastageRecord{
		ItemTypeID: "green-maize",
		Date:       base.AddDays(20),
		Quantity:   dec("150"),
		Reason:     "rain spoilage",
		CreatedBy:  "seed",
	}
	if _, err := a.service.RecordWastage(ctx, wastage); err != nil {
		return recorded, err
	}
	recorded++

	return recorded, nil
}

// =============================================================================
// RENDERING HELPERS
// =============================================================================

func dec(s string) decimal.Decimal { return inventory.MustParseDecimal(s) }

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func summaryJSON(s dashboard.ItemSummary) map[string]any {
	return map[string]any{
		"id":                string(s.Item.ID),
		"name":              s.Item.Name,
		"category":          string(s.Item.Category),
		"unit":              string(s.Item.Unit),
		"quantity_on_hand":  s.QuantityOnHand.String(),
		"total_value":       s.TotalValue.StringFixed(2),
		"average_unit_cost": s.AverageUnitCost.StringFixed(2),
		"status":            string(s.Status),
		"badge":             string(s.Badge),
		"avg_daily":         s.Trend.AvgDaily.StringFixed(2),
		"days_left":         s.DaysLeft.String(),
		"runway":            string(s.Runway),
	}
}

func overviewJSON(ov *dashboard.Overview) map[string]any {
	summaries := make([]map[string]any, 0, len(ov.Summaries))
	for _, s := range ov.Summaries {
		summaries = append(summaries, summaryJSON(s))
	}
	low := make([]string, 0, len(ov.LowStock))
	for _, s := range ov.LowStock {
		low = append(low, string(s.Item.ID))
	}
	return map[string]any{
		"as_of":             ov.AsOf.String(),
		"items":             summaries,
		"low_stock":         low,
		"total_value":       ov.TotalInventoryValue.StringFixed(2),
		"value_by_category": seriesJSON(ov.ValueByCategory),
	}
}

func seriesJSON(points []dashboard.SeriesPoint) []map[string]string {
	out := make([]map[string]string, 0, len(points))
	for _, p := range points {
		out = append(out, map[string]string{"label": p.Label, "value": p.Value.String()})
	}
	return out
}
