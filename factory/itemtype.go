/*
Package factory provides JSON to Go item-type conversion.

PURPOSE:
  Converts JSON catalog definitions into fodder.ItemType values. This
  enables catalog configuration without code changes - farm managers can
  define feed types in JSON files, and the factory creates the proper Go
  structs with defaults and validation applied.

JSON SCHEMA:
  {
    "id": "wheat-straw",
    "name": "Wheat Straw",
    "category": "DRY",
    "unit": "kg",
    "costing_method": "FIFO",
    "produced_in_house": false,
    "cost_per_unit": "4.00",
    "min_stock_level": "1000",
    "nutrient_info": "Roughage, low protein"
  }

KEY FEATURES:
  - Validates JSON structure and the resulting item type
  - Sets sensible defaults (FIFO costing, OTHER category)
  - Decimal fields accepted as JSON strings to avoid float drift
  - Whole-catalog parsing from a JSON array or file

USAGE:
  factory := NewItemTypeFactory()

  item, err := factory.ParseItemType(jsonString)

  items, err := factory.ParseCatalog(jsonArray)
  items, err := factory.LoadCatalogFile("catalog.json")

SEE ALSO:
  - fodder/types.go: ItemType definition and validation
  - fodder/presets.go: Go-based default catalog
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/dairyops/feedstock/fodder"
	"github.com/dairyops/feedstock/inventory"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ItemTypeJSON is the JSON representation of a catalog entry.
type ItemTypeJSON struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Category        string `json:"category,omitempty"`
	Unit            string `json:"unit"`
	CostingMethod   string `json:"costing_method,omitempty"`
	ProducedInHouse bool   `json:"produced_in_house,omitempty"`

	// Decimal fields travel as strings so values like 0.1 survive intact.
	CostPerUnit   string `json:"cost_per_unit,omitempty"`
	MinStockLevel string `json:"min_stock_level,omitempty"`

	NutrientInfo string `json:"nutrient_info,omitempty"`
}

// =============================================================================
// ITEM TYPE FACTORY
// =============================================================================

// ItemTypeFactory converts JSON catalog definitions to Go structs.
type ItemTypeFactory struct{}

func NewItemTypeFactory() *ItemTypeFactory {
	return &ItemTypeFactory{}
}

// ParseItemType parses a single JSON object into an ItemType.
func (f *ItemTypeFactory) ParseItemType(jsonStr string) (*fodder.ItemType, error) {
	var ij ItemTypeJSON
	if err := json.Unmarshal([]byte(jsonStr), &ij); err != nil {
		return nil, fmt.Errorf("failed to parse item type JSON: %w", err)
	}
	return f.FromJSON(ij)
}

// ParseCatalog parses a JSON array of item type definitions.
func (f *ItemTypeFactory) ParseCatalog(jsonStr string) ([]fodder.ItemType, error) {
	var defs []ItemTypeJSON
	if err := json.Unmarshal([]byte(jsonStr), &defs); err != nil {
		return nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
	}

	items := make([]fodder.ItemType, 0, len(defs))
	for i, ij := range defs {
		item, err := f.FromJSON(ij)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %d (%s): %w", i, ij.ID, err)
		}
		items = append(items, *item)
	}
	return items, nil
}

// LoadCatalogFile reads and parses a catalog definition file.
func (f *ItemTypeFactory) LoadCatalogFile(path string) ([]fodder.ItemType, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return f.ParseCatalog(string(data))
}

// FromJSON converts ItemTypeJSON to a validated fodder.ItemType.
func (f *ItemTypeFactory) FromJSON(ij ItemTypeJSON) (*fodder.ItemType, error) {
	cost, err := parseDecimalField("cost_per_unit", ij.CostPerUnit)
	if err != nil {
		return nil, err
	}
	minLevel, err := parseDecimalField("min_stock_level", ij.MinStockLevel)
	if err != nil {
		return nil, err
	}

	item := &fodder.ItemType{
		ID:                 inventory.ItemTypeID(ij.ID),
		Name:               ij.Name,
		Category:           parseCategory(ij.Category),
		Unit:               inventory.Unit(ij.Unit),
		CostingMethod:      parseCostingMethod(ij.CostingMethod),
		ProducedInHouse:    ij.ProducedInHouse,
		CurrentCostPerUnit: cost,
		MinStockLevel:      minLevel,
		NutrientInfo:       ij.NutrientInfo,
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

// ToJSON converts an ItemType back to its JSON representation.
func (f *ItemTypeFactory) ToJSON(item fodder.ItemType) ItemTypeJSON {
	return ItemTypeJSON{
		ID:              string(item.ID),
		Name:            item.Name,
		Category:        string(item.Category),
		Unit:            string(item.Unit),
		CostingMethod:   string(item.CostingMethod),
		ProducedInHouse: item.ProducedInHouse,
		CostPerUnit:     item.CurrentCostPerUnit.String(),
		MinStockLevel:   item.MinStockLevel.String(),
		NutrientInfo:    item.NutrientInfo,
	}
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseCategory(s string) fodder.Category {
	if s == "" {
		return fodder.CategoryOther
	}
	return fodder.Category(s)
}

func parseCostingMethod(s string) inventory.CostingMethod {
	if s == "" {
		return inventory.CostingFIFO
	}
	return inventory.CostingMethod(s)
}

func parseDecimalField(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", field, s, err)
	}
	return d, nil
}
