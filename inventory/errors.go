/*
errors.go - Centralized error types for the valuation engine

PURPOSE:
  All engine error types in one place. Validation errors are raised at
  event-application time and surfaced to the caller; the aggregator never
  partially applies an invalid event. Callers own user-facing messaging;
  the engine only classifies and reports.

NOT AN ERROR:
  Zero average consumption is guarded by the trend estimator and reported
  as the Unbounded days-remaining sentinel, never as an error or an
  arithmetic fault.

USAGE:
  if errors.Is(err, inventory.ErrInsufficientStock) {
      var detail *inventory.InsufficientStockError
      errors.As(err, &detail)
      ...
  }
*/
package inventory

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidQuantity is returned when an event carries a non-positive
	// quantity where a positive one is required.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrInsufficientStock is returned when a consumption would drive
	// quantity-on-hand below zero under the reject policy.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrUnknownItemType is returned when an event references an item type
	// that does not exist in the catalog.
	ErrUnknownItemType = errors.New("unknown item type")

	// ErrItemTypeInUse is returned when deleting an item type that is still
	// referenced by ledger events.
	ErrItemTypeInUse = errors.New("item type referenced by ledger events")

	// ErrDuplicateEvent is returned when appending an event whose ID
	// already exists in the store.
	ErrDuplicateEvent = errors.New("duplicate event id")

	// ErrEventNotFound is returned when amending or removing a missing event.
	ErrEventNotFound = errors.New("event not found")

	// ErrNotProducible is returned when recording in-house production for
	// an item type not flagged as produced in-house.
	ErrNotProducible = errors.New("item type not producible in-house")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientStockError details a stock shortfall. The lot state at the
// point of failure is guaranteed unchanged.
type InsufficientStockError struct {
	ItemTypeID ItemTypeID
	Available  decimal.Decimal
	Requested  decimal.Decimal
	Shortfall  decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: available %v, requested %v, shortfall %v",
		e.Available, e.Requested, e.Shortfall)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// InvalidQuantityError details a quantity validation failure.
type InvalidQuantityError struct {
	ItemTypeID ItemTypeID
	EventType  EventType
	Value      decimal.Decimal
	Reason     string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %v for %s event: %s", e.Value, e.EventType, e.Reason)
}

func (e *InvalidQuantityError) Unwrap() error { return ErrInvalidQuantity }

// InvalidCostingMethodError is returned for an unrecognized costing method.
type InvalidCostingMethodError struct {
	Method CostingMethod
}

func (e *InvalidCostingMethodError) Error() string {
	return fmt.Sprintf("invalid costing method: %q", e.Method)
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrDuplicateEvent) ||
		errors.Is(err, ErrNotProducible) ||
		errors.Is(err, ErrItemTypeInUse)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUnknownItemType) ||
		errors.Is(err, ErrEventNotFound)
}
