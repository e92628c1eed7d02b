package dashboard

// Chart series builders. Each returns ordered label/value points ready for
// whatever renders them; nothing here knows about presentation.

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/dairyops/feedstock/inventory"
)

// SeriesPoint is one labelled value in a chart series.
type SeriesPoint struct {
	Label string
	Value decimal.Decimal
}

// MonthlyConsumptionMonths is the trailing span of the consumption chart.
const MonthlyConsumptionMonths = 6

// MonthlyConsumption totals an item's consumption per calendar month over
// the trailing six months, oldest month first. Months without consumption
// appear with a zero value so the series has no gaps.
func (s *Service) MonthlyConsumption(ctx context.Context, id inventory.ItemTypeID, asOf inventory.Date) ([]SeriesPoint, error) {
	from := asOf.MonthKey().AddMonths(-(MonthlyConsumptionMonths - 1))
	events, err := s.events.LoadRange(ctx, id, from, asOf)
	if err != nil {
		return nil, err
	}

	totals := map[inventory.Date]decimal.Decimal{}
	for _, ev := range events {
		if ev.Type != inventory.EventConsumption {
			continue
		}
		key := ev.Date.MonthKey()
		totals[key] = totals[key].Add(ev.Quantity.Value)
	}

	points := make([]SeriesPoint, 0, MonthlyConsumptionMonths)
	for month := from; month.BeforeOrEqual(asOf); month = month.AddMonths(1) {
		points = append(points, SeriesPoint{
			Label: month.MonthLabel(),
			Value: totals[month],
		})
	}
	return points, nil
}

// PurchasePriceTrend lists an item's purchase unit costs in ledger order,
// labelled by purchase date. Production is excluded; its derived unit cost
// reflects input spend, not market price.
func (s *Service) PurchasePriceTrend(ctx context.Context, id inventory.ItemTypeID, asOf inventory.Date) ([]SeriesPoint, error) {
	events, err := s.events.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	var points []SeriesPoint
	for _, ev := range events {
		if ev.Type != inventory.EventPurchase || ev.Date.After(asOf) {
			continue
		}
		points = append(points, SeriesPoint{
			Label: ev.Date.String(),
			Value: ev.UnitCost,
		})
	}
	return points, nil
}
