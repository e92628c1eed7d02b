/*
trend.go - Consumption-trend estimation

PURPOSE:
  Computes a trailing average daily consumption rate and projects days of
  stock remaining. The window is right-aligned, ending at a reference
  date (defaulting to today for callers, always explicit here for
  testability); events exactly on either boundary are included.

DIVISION GUARD:
  An item with no consumption in the window has avg_daily zero. Dividing
  quantity-on-hand by that is guarded: the projection reports the
  Unbounded sentinel instead of raising an arithmetic fault.
*/
package inventory

import "github.com/shopspring/decimal"

// =============================================================================
// TREND
// =============================================================================

// Trend is the trailing consumption rate for one item type.
type Trend struct {
	WindowDays    int
	From          Date
	To            Date
	TotalConsumed decimal.Decimal
	AvgDaily      decimal.Decimal
}

// EstimateTrend computes the trailing consumption rate over windowDays
// ending at asOf. Only consumption events count; wastage and adjustments
// are excluded from the herd's feeding rate.
func EstimateTrend(events []LedgerEvent, windowDays int, asOf Date) Trend {
	trend := Trend{
		WindowDays: windowDays,
		To:         asOf,
		From:       asOf.AddDays(-windowDays),
	}
	if windowDays <= 0 {
		return trend
	}

	total := decimal.Zero
	for _, ev := range events {
		if ev.Type != EventConsumption {
			continue
		}
		if ev.Date.AfterOrEqual(trend.From) && ev.Date.BeforeOrEqual(trend.To) {
			total = total.Add(ev.Quantity.Value)
		}
	}

	trend.TotalConsumed = total
	trend.AvgDaily = total.Div(decimal.NewFromInt(int64(windowDays)))
	return trend
}

// =============================================================================
// DAYS REMAINING
// =============================================================================

// DaysRemaining projects how long current stock lasts at the trend rate.
// Unbounded means the rate is zero and no projection is possible.
type DaysRemaining struct {
	Days      decimal.Decimal
	Unbounded bool
}

// DaysRemaining divides quantity-on-hand by the average daily rate.
func (t Trend) DaysRemaining(quantityOnHand decimal.Decimal) DaysRemaining {
	if t.AvgDaily.IsZero() || t.AvgDaily.IsNegative() {
		return DaysRemaining{Unbounded: true}
	}
	if quantityOnHand.IsNegative() {
		return DaysRemaining{Days: decimal.Zero}
	}
	return DaysRemaining{Days: quantityOnHand.Div(t.AvgDaily)}
}

// String renders for display: a day count with one decimal, or "N/A".
func (d DaysRemaining) String() string {
	if d.Unbounded {
		return "N/A"
	}
	return d.Days.StringFixed(1)
}
