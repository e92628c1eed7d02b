/*
health.go - Stock-health evaluation

Pure comparisons of quantity-on-hand against a configured minimum.
BELOW_MINIMUM applies strictly below the threshold; equality is adequate.
Absence of any inventory record is quantity-on-hand zero, which is below
minimum whenever the threshold is positive.
*/
package inventory

import "github.com/shopspring/decimal"

// =============================================================================
// STOCK STATUS
// =============================================================================

type StockStatus string

const (
	StatusAdequate     StockStatus = "ADEQUATE"
	StatusBelowMinimum StockStatus = "BELOW_MINIMUM"
)

// EvaluateStock classifies quantity-on-hand against the minimum stock level.
func EvaluateStock(quantityOnHand, minStockLevel decimal.Decimal) StockStatus {
	if quantityOnHand.LessThan(minStockLevel) {
		return StatusBelowMinimum
	}
	return StatusAdequate
}

// =============================================================================
// BADGES - Presentation-layer classifications
// =============================================================================

// StockBadge is the three-tier badge the dashboard renders per item.
type StockBadge string

const (
	BadgeOutOfStock StockBadge = "OUT_OF_STOCK"
	BadgeLowStock   StockBadge = "LOW_STOCK"
	BadgeAdequate   StockBadge = "ADEQUATE"
)

// ClassifyStock maps quantity-on-hand to a badge. Out-of-stock takes
// precedence over the minimum-level comparison.
func ClassifyStock(quantityOnHand, minStockLevel decimal.Decimal) StockBadge {
	if quantityOnHand.IsZero() || quantityOnHand.IsNegative() {
		return BadgeOutOfStock
	}
	if EvaluateStock(quantityOnHand, minStockLevel) == StatusBelowMinimum {
		return BadgeLowStock
	}
	return BadgeAdequate
}

// RunwayBadge classifies projected days of stock remaining.
type RunwayBadge string

const (
	RunwayCritical RunwayBadge = "CRITICAL" // a week or less
	RunwayWarning  RunwayBadge = "WARNING"  // a month or less
	RunwayHealthy  RunwayBadge = "HEALTHY"
	RunwayUnknown  RunwayBadge = "N/A" // no consumption in window
)

var (
	runwayCriticalDays = decimal.NewFromInt(7)
	runwayWarningDays  = decimal.NewFromInt(30)
)

// ClassifyRunway maps a days-remaining projection to a badge.
func ClassifyRunway(d DaysRemaining) RunwayBadge {
	if d.Unbounded {
		return RunwayUnknown
	}
	if d.Days.LessThanOrEqual(runwayCriticalDays) {
		return RunwayCritical
	}
	if d.Days.LessThanOrEqual(runwayWarningDays) {
		return RunwayWarning
	}
	return RunwayHealthy
}
