package fodder

// Domain entry records. Each record type validates its own constraints and
// converts itself into a ledger event; the service decides transaction
// boundaries and side effects.

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dairyops/feedstock/inventory"
)

// =============================================================================
// CONSUMER SCOPE
// =============================================================================

// ConsumerScope identifies who a consumption entry was fed to.
type ConsumerScope string

const (
	ConsumedByWholeHerd  ConsumerScope = "WHOLE_HERD"
	ConsumedByGroup      ConsumerScope = "GROUP"
	ConsumedByIndividual ConsumerScope = "INDIVIDUAL"
)

func (s ConsumerScope) Valid() bool {
	switch s {
	case ConsumedByWholeHerd, ConsumedByGroup, ConsumedByIndividual:
		return true
	}
	return false
}

// Payment status values carried in purchase metadata.
const (
	PaymentPaid    = "PAID"
	PaymentPending = "PENDING"
	PaymentPartial = "PARTIAL"
)

// Metadata keys shared between records, events and the dashboard.
const (
	MetaSupplier      = "supplier"
	MetaInvoiceNumber = "invoice_number"
	MetaPaymentStatus = "payment_status"
	MetaConsumedBy    = "consumed_by"
	MetaGroupName     = "group_name"
	MetaAnimalTag     = "animal_tag"
	MetaLocation      = "location"
	MetaReason        = "reason"
)

// =============================================================================
// PURCHASE
// =============================================================================

// PurchaseRecord is an externally sourced inbound entry.
type PurchaseRecord struct {
	ItemTypeID    inventory.ItemTypeID
	Date          inventory.Date
	Quantity      decimal.Decimal
	UnitCost      decimal.Decimal
	Supplier      string
	InvoiceNumber string
	PaymentStatus string
	Note          string
	CreatedBy     string
}

func (r PurchaseRecord) Validate() error {
	if !r.Quantity.IsPositive() {
		return &inventory.InvalidQuantityError{
			ItemTypeID: r.ItemTypeID,
			EventType:  inventory.EventPurchase,
			Value:      r.Quantity,
			Reason:     "purchase quantity must be positive",
		}
	}
	if r.UnitCost.IsNegative() {
		return fmt.Errorf("%w: purchase unit cost cannot be negative", inventory.ErrInvalidQuantity)
	}
	return nil
}

func (r PurchaseRecord) ToEvent() inventory.LedgerEvent {
	meta := map[string]string{}
	putMeta(meta, MetaSupplier, r.Supplier)
	putMeta(meta, MetaInvoiceNumber, r.InvoiceNumber)
	putMeta(meta, MetaPaymentStatus, r.PaymentStatus)
	return inventory.LedgerEvent{
		ID:         newEventID(),
		ItemTypeID: r.ItemTypeID,
		Type:       inventory.EventPurchase,
		Date:       r.Date,
		Quantity:   inventory.NewQuantityFromDecimal(r.Quantity, ""),
		UnitCost:   r.UnitCost,
		Metadata:   meta,
		Note:       r.Note,
		CreatedBy:  r.CreatedBy,
		CreatedAt:  time.Now().UTC(),
	}
}

// =============================================================================
// PRODUCTION
// =============================================================================

// ProductionRecord is an in-house grown/produced inbound entry. Its unit
// cost is derived from the cost components, never entered directly.
type ProductionRecord struct {
	ItemTypeID inventory.ItemTypeID
	Date       inventory.Date
	Quantity   decimal.Decimal
	Costs      inventory.CostComponents
	Location   string
	Note       string
	CreatedBy  string
}

func (r ProductionRecord) Validate() error {
	if !r.Quantity.IsPositive() {
		return &inventory.InvalidQuantityError{
			ItemTypeID: r.ItemTypeID,
			EventType:  inventory.EventProduction,
			Value:      r.Quantity,
			Reason:     "production quantity must be positive",
		}
	}
	if r.Costs.IsZero() {
		return &inventory.InvalidQuantityError{
			ItemTypeID: r.ItemTypeID,
			EventType:  inventory.EventProduction,
			Value:      r.Quantity,
			Reason:     "production requires at least one cost component",
		}
	}
	return nil
}

// UnitCost derives the per-unit production cost from the components.
func (r ProductionRecord) UnitCost() decimal.Decimal {
	if !r.Quantity.IsPositive() {
		return decimal.Zero
	}
	return r.Costs.Total().Div(r.Quantity)
}

func (r ProductionRecord) ToEvent() inventory.LedgerEvent {
	costs := r.Costs
	meta := map[string]string{}
	putMeta(meta, MetaLocation, r.Location)
	return inventory.LedgerEvent{
		ID:             newEventID(),
		ItemTypeID:     r.ItemTypeID,
		Type:           inventory.EventProduction,
		Date:           r.Date,
		Quantity:       inventory.NewQuantityFromDecimal(r.Quantity, ""),
		UnitCost:       r.UnitCost(),
		CostComponents: &costs,
		Metadata:       meta,
		Note:           r.Note,
		CreatedBy:      r.CreatedBy,
		CreatedAt:      time.Now().UTC(),
	}
}

// =============================================================================
// CONSUMPTION
// =============================================================================

/// ConsumptionRecord is a feeding entry. Scope narrows who was fed: the
// whole herd, a named group, or an individual animal.
type ConsumptionRecord struct {
	ItemTypeID inventory.ItemTypeID
	Date       inventory.Date
	Quantity   decimal.Decimal
	Scope      ConsumerScope
	GroupName  string
	AnimalTag  string
	Note       string
	CreatedBy  string
}

func (r ConsumptionRecord) Validate() error {
	if !r.Quantity.IsPositive() {
		return &inventory.InvalidQuantityError{
			ItemTypeID: r.ItemTypeID,
			EventType:  inventory.EventConsumption,
			Value:      r.Quantity,
			Reason:     "consumption quantity must be positive",
		}
	}
	if !r.Scope.Valid() {
		return fmt.Errorf("%w: unknown consumer scope %q", inventory.ErrInvalidQuantity, r.Scope)
	}
	if r.Scope == ConsumedByGroup && r.GroupName == "" {
		return fmt.Errorf("%w: group consumption requires a group name", inventory.ErrInvalidQuantity)
	}
	if r.Scope == ConsumedByIndividual && r.AnimalTag == "" {
		return fmt.Errorf("%w: individual consumption requires an animal tag", inventory.ErrInvalidQuantity)
	}
	return nil
}

func (r ConsumptionRecord) ToEvent() inventory.LedgerEvent {
	meta := map[string]string{MetaConsumedBy: string(r.Scope)}
	putMeta(meta, MetaGroupName, r.GroupName)
	putMeta(meta, MetaAnimalTag, r.AnimalTag)
	return inventory.LedgerEvent{
		ID:         newEventID(),
		ItemTypeID: r.ItemTypeID,
		Type:       inventory.EventConsumption,
		Date:       r.Date,
		Quantity:   inventory.NewQuantityFromDecimal(r.Quantity, ""),
		Metadata:   meta,
		Note:       r.Note,
		CreatedBy:  r.CreatedBy,
		CreatedAt:  time.Now().UTC(),
	}
}

// =============================================================================
// ADJUSTMENT
// =============================================================================

// AdjustmentRecord is a signed stock correction. Positive quantities add
// stock at UnitCost (or the item's reference cost when zero); negative
// quantities remove stock through the costing strategy.
type AdjustmentRecord struct {
	ItemTypeID inventory.ItemTypeID
	Date       inventory.Date
	Quantity   decimal.Decimal
	UnitCost   decimal.Decimal
	Reason     string
	CreatedBy  string
}

func (r AdjustmentRecord) Validate() error {
	if r.Quantity.IsZero() {
		return &inventory.InvalidQuantityError{
			ItemTypeID: r.ItemTypeID,
			EventType:  inventory.EventAdjustment,
			Value:      r.Quantity,
			Reason:     "adjustment quantity cannot be zero",
		}
	}
	if r.UnitCost.IsNegative() {
		return fmt.Errorf("%w: adjustment unit cost cannot be negative", inventory.ErrInvalidQuantity)
	}
	if r.Reason == "" {
		return fmt.Errorf("%w: adjustment requires a reason", inventory.ErrInvalidQuantity)
	}
	return nil
}

func (r AdjustmentRecord) ToEvent() inventory.LedgerEvent {
	return inventory.LedgerEvent{
		ID:         newEventID(),
		ItemTypeID: r.ItemTypeID,
		Type:       inventory.EventAdjustment,
		Date:       r.Date,
		Quantity:   inventory.NewQuantityFromDecimal(r.Quantity, ""),
		UnitCost:   r.UnitCost,
		Metadata:   map[string]string{MetaReason: r.Reason},
		Note:       r.Reason,
		CreatedBy:  r.CreatedBy,
		CreatedAt:  time.Now().UTC(),
	}
}

// =============================================================================
// WASTAGE
// =============================================================================

// WastageRecord is spoiled or otherwise lost stock. Outbound, costed like
// consumption but tracked separately in state totals.
type WastageRecord struct {
	ItemTypeID inventory.ItemTypeID
	Date       inventory.Date
	Quantity   decimal.Decimal
	Reason     string
	CreatedBy  string
}

func (r WastageRecord) Validate() error {
	if !r.Quantity.IsPositive() {
		return &inventory.InvalidQuantityError{
			ItemTypeID: r.ItemTypeID,
			EventType:  inventory.EventWastage,
			Value:      r.Quantity,
			Reason:     "wastage quantity must be positive",
		}
	}
	if r.Reason == "" {
		return fmt.Errorf("%w: wastage requires a reason", inventory.ErrInvalidQuantity)
	}
	return nil
}

func (r WastageRecord) ToEvent() inventory.LedgerEvent {
	return inventory.LedgerEvent{
		ID:         newEventID(),
		ItemTypeID: r.ItemTypeID,
		Type:       inventory.EventWastage,
		Date:       r.Date,
		Quantity:   inventory.NewQuantityFromDecimal(r.Quantity, ""),
		Metadata:   map[string]string{MetaReason: r.Reason},
		Note:       r.Reason,
		CreatedBy:  r.CreatedBy,
		CreatedAt:  time.Now().UTC(),
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func newEventID() inventory.EventID {
	return inventory.EventID(uuid.NewString())
}

func putMeta(meta map[string]string, key, value string) {
	if value != "" {
		meta[key] = value
	}
}
