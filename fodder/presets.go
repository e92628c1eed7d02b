package fodder

import (
	"context"

	"github.com/dairyops/feedstock/inventory"
)

// DefaultCatalog returns the starter set of feed item types a new dairy
// installation begins with. IDs are stable slugs so seeding is idempotent.
func DefaultCatalog() []ItemType {
	return []ItemType{
		{
			ID:                 "green-maize",
			Name:               "Green Maize",
			Category:           CategoryGreen,
			Unit:               inventory.UnitKilogram,
			CostingMethod:      inventory.CostingWeightedAverage,
			ProducedInHouse:    true,
			CurrentCostPerUnit: inventory.MustParseDecimal("2.50"),
			MinStockLevel:      inventory.MustParseDecimal("500"),
			NutrientInfo:       "High moisture, good energy source",
		},
		{
			ID:                 "napier-grass",
			Name:               "Napier Grass",
			Category:           CategoryGreen,
			Unit:               inventory.UnitKilogram,
			CostingMethod:      inventory.CostingWeightedAverage,
			ProducedInHouse:    true,
			CurrentCostPerUnit: inventory.MustParseDecimal("1.80"),
			MinStockLevel:      inventory.MustParseDecimal("300"),
		},
		{
			ID:                 "wheat-straw",
			Name:               "Wheat Straw",
			Category:           CategoryDry,
			Unit:               inventory.UnitKilogram,
			CostingMethod:      inventory.CostingFIFO,
			CurrentCostPerUnit: inventory.MustParseDecimal("4.00"),
			MinStockLevel:      inventory.MustParseDecimal("1000"),
			NutrientInfo:       "Roughage, low protein",
		},
		{
			ID:                 "dry-hay",
			Name:               "Dry Hay",
			Category:           CategoryDry,
			Unit:               inventory.UnitBale,
			CostingMethod:      inventory.CostingFIFO,
			CurrentCostPerUnit: inventory.MustParseDecimal("180.00"),
			MinStockLevel:      inventory.MustParseDecimal("40"),
		},
		{
			ID:                 "cottonseed-cake",
			Name:               "Cottonseed Cake",
			Category:           CategoryConcentrate,
			Unit:               inventory.UnitBag,
			CostingMethod:      inventory.CostingFIFO,
			CurrentCostPerUnit: inventory.MustParseDecimal("1450.00"),
			MinStockLevel:      inventory.MustParseDecimal("10"),
			NutrientInfo:       "High protein concentrate",
		},
		{
			ID:                 "cattle-feed-mix",
			Name:               "Cattle Feed Mix",
			Category:           CategoryConcentrate,
			Unit:               inventory.UnitBag,
			CostingMethod:      inventory.CostingWeightedAverage,
			CurrentCostPerUnit: inventory.MustParseDecimal("1100.00"),
			MinStockLevel:      inventory.MustParseDecimal("15"),
		},
		{
			ID:                 "mineral-mix",
			Name:               "Mineral Mix",
			Category:           CategorySupplement,
			Unit:               inventory.UnitKilogram,
			CostingMethod:      inventory.CostingFIFO,
			CurrentCostPerUnit: inventory.MustParseDecimal("95.00"),
			MinStockLevel:      inventory.MustParseDecimal("25"),
			NutrientInfo:       "Calcium, phosphorus and trace minerals",
		},
	}
}

// SeedCatalog installs the default item types, skipping any ID already
// present so it is safe to run on every startup.
func SeedCatalog(ctx context.Context, catalog Catalog) (int, error) {
	seeded := 0
	for _, it := range DefaultCatalog() {
		if _, err := catalog.Get(ctx, it.ID); err == nil {
			continue
		}
		if err := catalog.Save(ctx, it); err != nil {
			return seeded, err
		}
		seeded++
	}
	return seeded, nil
}
