package forecast

import (
	"sort"
	"time"

	"github.com/andresuchdata/stockcast/backend-go/internal/domain"
)

// PreparedRow is a single sale line item normalized for the engine:
// one row per (sale date, line item), annotated with an event flag.
type PreparedRow struct {
	Date        time.Time
	ProductID   string
	ProductName string
	Quantity    float64
	UnitPrice   float64
	IsEvent     bool
}

// DailyPoint is one calendar day of aggregated demand for a product.
type DailyPoint struct {
	Date     time.Time
	Quantity float64
	IsEvent  bool
}

// PrepareRows flattens sale records into prepared rows. The event flag
// is set iff an event falls on exactly the same calendar day as the
// sale; no range matching. Empty sales input yields an empty slice,
// which downstream consumers treat as insufficient data.
func PrepareRows(sales []domain.SaleRecord, events []domain.EventRecord) []PreparedRow {
	if len(sales) == 0 {
		return nil
	}

	eventDays := eventDateSet(events)

	rows := make([]PreparedRow, 0, len(sales))
	for _, sale := range sales {
		day := truncateDay(sale.SaleDate)
		_, isEvent := eventDays[day]
		for _, item := range sale.Items {
			rows = append(rows, PreparedRow{
				Date:        day,
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Quantity:    float64(item.Quantity),
				UnitPrice:   item.UnitPrice,
				IsEvent:     isEvent,
			})
		}
	}

	return rows
}

// FilterProduct returns only the rows belonging to the given product.
func FilterProduct(rows []PreparedRow, productID string) []PreparedRow {
	var filtered []PreparedRow
	for _, row := range rows {
		if row.ProductID == productID {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// AggregateDaily collapses prepared rows into one point per calendar
// day: quantities summed, event flag OR-ed across the day's rows.
// Output is sorted chronologically.
func AggregateDaily(rows []PreparedRow) []DailyPoint {
	if len(rows) == 0 {
		return nil
	}

	byDay := make(map[time.Time]*DailyPoint)
	for _, row := range rows {
		point, ok := byDay[row.Date]
		if !ok {
			point = &DailyPoint{Date: row.Date}
			byDay[row.Date] = point
		}
		point.Quantity += row.Quantity
		point.IsEvent = point.IsEvent || row.IsEvent
	}

	daily := make([]DailyPoint, 0, len(byDay))
	for _, point := range byDay {
		daily = append(daily, *point)
	}
	sort.Slice(daily, func(i, j int) bool {
		return daily[i].Date.Before(daily[j].Date)
	})

	return daily
}

// MeanQuantity returns the average quantity per prepared row. Used by
// the pricing optimizer to classify slow and fast movers.
func MeanQuantity(rows []PreparedRow) float64 {
	if len(rows) == 0 {
		return 0
	}
	var sum float64
	for _, row := range rows {
		sum += row.Quantity
	}
	return sum / float64(len(rows))
}

func eventDateSet(events []domain.EventRecord) map[time.Time]struct{} {
	if len(events) == 0 {
		return nil
	}
	set := make(map[time.Time]struct{}, len(events))
	for _, event := range events {
		set[truncateDay(event.Date)] = struct{}{}
	}
	return set
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
