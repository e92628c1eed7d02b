/*
Package fodder instantiates the inventory engine for farm feed stock.

PURPOSE:
  Defines the feed catalog (item types with categories, units, thresholds
  and costing methods), the domain records users enter (purchases,
  production runs, consumption, adjustments, wastage), and the recording
  service that validates them, converts them to ledger events, and
  persists them with audit and expense side effects.

KEY CONCEPTS IN THIS FILE (types.go):
  - Category: Green / dry / concentrate / supplement / other
  - ItemType: One kind of fodder tracked for inventory
  - Catalog: Item type persistence with the referential invariant

REFERENTIAL INVARIANT:
  An item type is never deleted while ledger events reference it. The
  service enforces this through EventStore.HasEvents before delete.

SEE ALSO:
  - records.go: Domain entry records and event conversion
  - service.go: The recording service
  - presets.go: A ready-made starter catalog
*/
package fodder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dairyops/feedstock/inventory"
)

// =============================================================================
// CATEGORY
// =============================================================================

type Category string

const (
	CategoryGreen       Category = "GREEN"
	CategoryDry         Category = "DRY"
	CategoryConcentrate Category = "CONCENTRATE"
	CategorySupplement  Category = "SUPPLEMENT"
	CategoryOther       Category = "OTHER"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryGreen, CategoryDry, CategoryConcentrate, CategorySupplement, CategoryOther:
		return true
	}
	return false
}

// Categories lists all categories in display order.
func Categories() []Category {
	return []Category{CategoryGreen, CategoryDry, CategoryConcentrate, CategorySupplement, CategoryOther}
}

// =============================================================================
// ITEM TYPE
// =============================================================================

// ErrInvalidItemType is returned when an item type fails validation.
var ErrInvalidItemType = errors.New("invalid item type")

// ItemType is one kind of fodder/feed tracked for inventory.
type ItemType struct {
	ID       inventory.ItemTypeID
	Name     string
	Category Category
	Unit     inventory.Unit

	// CurrentCostPerUnit is the reference cost. Under weighted-average
	// costing the service keeps it aligned with the replayed average
	// after every inbound event.
	CurrentCostPerUnit decimal.Decimal

	// MinStockLevel triggers the low-stock classification.
	MinStockLevel decimal.Decimal

	CostingMethod   inventory.CostingMethod
	ProducedInHouse bool
	NutrientInfo    string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (it *ItemType) Validate() error {
	switch {
	case it.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidItemType)
	case it.Name == "":
		return fmt.Errorf("%w: missing name", ErrInvalidItemType)
	case it.Unit == "":
		return fmt.Errorf("%w: missing unit", ErrInvalidItemType)
	case !it.Category.Valid():
		return fmt.Errorf("%w: unknown category %q", ErrInvalidItemType, it.Category)
	case !it.CostingMethod.Valid():
		return fmt.Errorf("%w: unknown costing method %q", ErrInvalidItemType, it.CostingMethod)
	case it.CurrentCostPerUnit.IsNegative():
		return fmt.Errorf("%w: cost per unit cannot be negative", ErrInvalidItemType)
	case it.MinStockLevel.IsNegative():
		return fmt.Errorf("%w: minimum stock level cannot be negative", ErrInvalidItemType)
	}
	return nil
}

// Aggregator builds the replay aggregator configured for this item type.
func (it *ItemType) Aggregator(policy inventory.NegativeStockPolicy) (*inventory.Aggregator, error) {
	strategy, err := inventory.StrategyFor(it.CostingMethod)
	if err != nil {
		return nil, err
	}
	return &inventory.Aggregator{
		Strategy:      strategy,
		Policy:        policy,
		ReferenceCost: it.CurrentCostPerUnit,
	}, nil
}

// =============================================================================
// CATALOG - Item type persistence
// =============================================================================

type Catalog interface {
	// Get returns an item type by ID, or ErrUnknownItemType.
	Get(ctx context.Context, id inventory.ItemTypeID) (*ItemType, error)

	// GetByName returns an item type by its unique name.
	GetByName(ctx context.Context, name string) (*ItemType, error)

	// List returns all item types ordered by name.
	List(ctx context.Context) ([]ItemType, error)

	// Save creates or updates an item type.
	Save(ctx context.Context, it ItemType) error

	// Delete removes an item type. Callers must enforce the referential
	// invariant first (see Service.DeleteItemType).
	Delete(ctx context.Context, id inventory.ItemTypeID) error
}
