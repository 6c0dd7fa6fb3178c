package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/stockcast/backend-go/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func saleOn(date time.Time, productID string, qty int) domain.SaleRecord {
	return domain.SaleRecord{
		SaleDate: date,
		Items: []domain.SaleItem{
			{ProductID: productID, ProductName: "Product " + productID, Quantity: qty, UnitPrice: 9.99},
		},
	}
}

func TestPrepareRowsEmptySales(t *testing.T) {
	assert.Empty(t, PrepareRows(nil, nil))
	assert.Empty(t, PrepareRows([]domain.SaleRecord{}, []domain.EventRecord{{Date: day(2024, 3, 1)}}))
}

func TestPrepareRowsFlattensLineItems(t *testing.T) {
	sales := []domain.SaleRecord{
		{
			SaleDate: day(2024, 3, 1).Add(14 * time.Hour),
			Items: []domain.SaleItem{
				{ProductID: "p1", Quantity: 2, UnitPrice: 5},
				{ProductID: "p2", Quantity: 1, UnitPrice: 12},
			},
		},
	}

	rows := PrepareRows(sales, nil)
	require.Len(t, rows, 2)
	// rows carry the calendar day, not the sale timestamp
	assert.Equal(t, day(2024, 3, 1), rows[0].Date)
	assert.Equal(t, "p1", rows[0].ProductID)
	assert.Equal(t, 2.0, rows[0].Quantity)
	assert.False(t, rows[0].IsEvent)
}

func TestPrepareRowsEventExactDateMatch(t *testing.T) {
	sales := []domain.SaleRecord{
		saleOn(day(2024, 3, 1), "p1", 3),
		saleOn(day(2024, 3, 2), "p1", 3),
	}
	events := []domain.EventRecord{
		{Date: day(2024, 3, 2).Add(10 * time.Hour), ImpactLevel: domain.ImpactHigh},
	}

	rows := PrepareRows(sales, events)
	require.Len(t, rows, 2)
	assert.False(t, rows[0].IsEvent, "no event on March 1")
	assert.True(t, rows[1].IsEvent, "event day matches regardless of time of day")
}

func TestAggregateDailySumsAndOrsEvents(t *testing.T) {
	rows := []PreparedRow{
		{Date: day(2024, 3, 2), Quantity: 4},
		{Date: day(2024, 3, 1), Quantity: 2},
		{Date: day(2024, 3, 2), Quantity: 1, IsEvent: true},
	}

	daily := AggregateDaily(rows)
	require.Len(t, daily, 2)
	assert.Equal(t, day(2024, 3, 1), daily[0].Date)
	assert.Equal(t, 2.0, daily[0].Quantity)
	assert.False(t, daily[0].IsEvent)
	assert.Equal(t, 5.0, daily[1].Quantity)
	assert.True(t, daily[1].IsEvent)
}

func TestFilterProduct(t *testing.T) {
	rows := []PreparedRow{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p2", Quantity: 2},
		{ProductID: "p1", Quantity: 3},
	}

	filtered := FilterProduct(rows, "p1")
	require.Len(t, filtered, 2)
	assert.Equal(t, 4.0, filtered[0].Quantity+filtered[1].Quantity)
	assert.Empty(t, FilterProduct(rows, "p3"))
}

func TestMeanQuantity(t *testing.T) {
	assert.Zero(t, MeanQuantity(nil))
	rows := []PreparedRow{{Quantity: 4}, {Quantity: 8}}
	assert.Equal(t, 6.0, MeanQuantity(rows))
}
