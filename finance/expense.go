/*
Package finance records the expense side of inventory movements.

PURPOSE:
  Every feed purchase and in-house production run is also money spent.
  This package derives expense records from ledger events (pure
  functions) and persists them through a Journal so the finance views
  can aggregate spend by category without re-walking the stock ledger.

DERIVATION:
  Purchase:   one expense in the "Feed" category for quantity x unit cost.
  Production: one expense in the "Feed Production" category for the sum
              of the production cost components.

SEE ALSO:
  - fodder: the recording service that writes expenses alongside events
  - store/sqlite: the persistent Journal implementation
*/
package finance

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dairyops/feedstock/inventory"
)

// =============================================================================
// EXPENSE TYPES
// =============================================================================

// ExpenseCategory groups expenses for finance reporting.
type ExpenseCategory struct {
	Name         string
	IsDirectCost bool
}

// Categories written by the inventory recording service.
var (
	CategoryFeed           = ExpenseCategory{Name: "Feed", IsDirectCost: true}
	CategoryFeedProduction = ExpenseCategory{Name: "Feed Production", IsDirectCost: true}
)

// ExpenseRecord is one expense entry in the farm's books.
type ExpenseRecord struct {
	ID          string
	Date        inventory.Date
	Category    string
	Description string
	Amount      decimal.Decimal

	// Back-reference to the record that generated this expense
	RelatedModule   string
	RelatedRecordID string

	Supplier  string
	Notes     string
	CreatedAt time.Time
}

// =============================================================================
// DERIVATION - Pure functions from ledger events
// =============================================================================

// ExpenseForPurchase derives the expense entry for a purchase event.
func ExpenseForPurchase(id string, ev inventory.LedgerEvent, itemName string) ExpenseRecord {
	return ExpenseRecord{
		ID:       id,
		Date:     ev.Date,
		Category: CategoryFeed.Name,
		Description: fmt.Sprintf("Purchase of %s %s of %s",
			ev.Quantity.Value, ev.Quantity.Unit, itemName),
		Amount:          ev.TotalCost(),
		RelatedModule:   "purchase",
		RelatedRecordID: string(ev.ID),
		Supplier:        ev.Metadata["supplier"],
		Notes:           ev.Note,
	}
}

// ExpenseForProduction derives the expense entry for a production event.
func ExpenseForProduction(id string, ev inventory.LedgerEvent, itemName string) ExpenseRecord {
	return ExpenseRecord{
		ID:       id,
		Date:     ev.Date,
		Category: CategoryFeedProduction.Name,
		Description: fmt.Sprintf("In-house production of %s %s of %s",
			ev.Quantity.Value, ev.Quantity.Unit, itemName),
		Amount:          ev.TotalCost(),
		RelatedModule:   "production",
		RelatedRecordID: string(ev.ID),
		Notes:           ev.Note,
	}
}
