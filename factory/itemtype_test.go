package factory_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dairyops/feedstock/factory"
	"github.com/dairyops/feedstock/fodder"
	"github.com/dairyops/feedstock/inventory"
)

func TestParseItemType_FullDefinition(t *testing.T) {
	f := factory.NewItemTypeFactory()

	item, err := f.ParseItemType(`{
		"id": "cottonseed-cake",
		"name": "Cottonseed Cake",
		"category": "CONCENTRATE",
		"unit": "bag",
		"costing_method": "FIFO",
		"cost_per_unit": "1350.50",
		"min_stock_level": "10",
		"nutrient_info": "High protein"
	}`)
	require.NoError(t, err)

	assert.Equal(t, inventory.ItemTypeID("cottonseed-cake"), item.ID)
	assert.Equal(t, fodder.CategoryConcentrate, item.Category)
	assert.Equal(t, inventory.UnitBag, item.Unit)
	assert.True(t, item.CurrentCostPerUnit.Equal(inventory.MustParseDecimal("1350.50")))
	assert.True(t, item.MinStockLevel.Equal(inventory.MustParseDecimal("10")))
}

func TestParseItemType_Defaults(t *testing.T) {
	f := factory.NewItemTypeFactory()

	item, err := f.ParseItemType(`{"id": "misc-feed", "name": "Misc Feed", "unit": "kg"}`)
	require.NoError(t, err)

	assert.Equal(t, fodder.CategoryOther, item.Category)
	assert.Equal(t, inventory.CostingFIFO, item.CostingMethod)
	assert.True(t, item.CurrentCostPerUnit.IsZero())
	assert.False(t, item.ProducedInHouse)
}

func TestParseItemType_Invalid(t *testing.T) {
	f := factory.NewItemTypeFactory()

	tests := []struct {
		name string
		json string
	}{
		{"malformed json", `{"id": `},
		{"missing name", `{"id": "x", "unit": "kg"}`},
		{"unknown category", `{"id": "x", "name": "X", "unit": "kg", "category": "FROZEN"}`},
		{"unknown costing method", `{"id": "x", "name": "X", "unit": "kg", "costing_method": "RANDOM"}`},
		{"bad decimal", `{"id": "x", "name": "X", "unit": "kg", "cost_per_unit": "abc"}`},
		{"negative min stock", `{"id": "x", "name": "X", "unit": "kg", "min_stock_level": "-5"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ParseItemType(tt.json)
			assert.Error(t, err)
		})
	}
}

func TestParseCatalog_ReportsFailingEntry(t *testing.T) {
	f := factory.NewItemTypeFactory()

	items, err := f.ParseCatalog(`[
		{"id": "a", "name": "A", "unit": "kg"},
		{"id": "b", "name": "B", "unit": "bale", "category": "DRY"}
	]`)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, fodder.CategoryDry, items[1].Category)

	_, err = f.ParseCatalog(`[
		{"id": "a", "name": "A", "unit": "kg"},
		{"id": "broken", "name": "", "unit": "kg"}
	]`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken", "error names the failing entry")
}

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id": "dry-hay", "name": "Dry Hay", "unit": "bale", "category": "DRY", "cost_per_unit": "180"}
	]`), 0o644))

	f := factory.NewItemTypeFactory()
	items, err := f.LoadCatalogFile(path)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Dry Hay", items[0].Name)

	_, err = f.LoadCatalogFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestToJSON_RoundTrip(t *testing.T) {
	f := factory.NewItemTypeFactory()

	original := fodder.ItemType{
		ID:                 "green-maize",
		Name:               "Green Maize",
		Category:           fodder.CategoryGreen,
		Unit:               inventory.UnitKilogram,
		CostingMethod:      inventory.CostingWeightedAverage,
		ProducedInHouse:    true,
		CurrentCostPerUnit: inventory.MustParseDecimal("3.5"),
		MinStockLevel:      inventory.MustParseDecimal("200"),
	}

	back, err := f.FromJSON(f.ToJSON(original))
	require.NoError(t, err)
	assert.Equal(t, original.ID, back.ID)
	assert.Equal(t, original.CostingMethod, back.CostingMethod)
	assert.True(t, back.CurrentCostPerUnit.Equal(original.CurrentCostPerUnit))
	assert.True(t, back.ProducedInHouse)
}
