package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/stockcast/backend-go/internal/domain"
)

func steadySales(start time.Time, days, qty int) []domain.SaleRecord {
	sales := make([]domain.SaleRecord, 0, days)
	for i := 0; i < days; i++ {
		sales = append(sales, saleOn(start.AddDate(0, 0, i), "p1", qty))
	}
	return sales
}

func TestForecastInsufficientHistory(t *testing.T) {
	engine := NewEngine()
	sales := steadySales(day(2024, 3, 1), 9, 5)

	result := engine.Forecast("p1", sales, 30, nil)

	assert.Empty(t, result.Forecast)
	assert.Equal(t, domain.ConfidenceLow, result.Confidence)
	assert.Equal(t, domain.MethodInsufficient, result.Method)
}

func TestForecastUnknownProduct(t *testing.T) {
	engine := NewEngine()
	sales := steadySales(day(2024, 3, 1), 20, 5)

	result := engine.Forecast("missing", sales, 30, nil)

	assert.Empty(t, result.Forecast)
	assert.Equal(t, domain.MethodInsufficient, result.Method)
}

func TestForecastSteadyDemand(t *testing.T) {
	engine := NewEngine()
	start := day(2024, 3, 1)
	sales := steadySales(start, 15, 10)

	result := engine.Forecast("p1", sales, 7, nil)

	require.Equal(t, domain.MethodModel, result.Method, "model path must succeed: %s", result.Message)
	assert.Equal(t, domain.ConfidenceMedium, result.Confidence)
	require.Len(t, result.Forecast, 7)
	assert.InDelta(t, 70, result.TotalPredictedDemand, 1)
	assert.InDelta(t, 10, result.HistoricalAverage, 0.01)

	// forecast grid starts the day after the last observed date
	assert.Equal(t, start.AddDate(0, 0, 15).Format(dateLayout), result.Forecast[0].Date)

	for _, point := range result.Forecast {
		assert.InDelta(t, 10, point.PredictedDemand, 0.5)
		assert.GreaterOrEqual(t, point.PredictedDemand, 0.0)
		assert.GreaterOrEqual(t, point.LowerBound, 0.0)
		assert.GreaterOrEqual(t, point.UpperBound, 0.0)
	}
}

func TestForecastHighConfidenceAtFiftyRows(t *testing.T) {
	engine := NewEngine()
	sales := steadySales(day(2024, 1, 1), 50, 8)

	result := engine.Forecast("p1", sales, 7, nil)

	require.Equal(t, domain.MethodModel, result.Method)
	assert.Equal(t, domain.ConfidenceHigh, result.Confidence)
}

func TestForecastFallbackOnUnfittableSeries(t *testing.T) {
	engine := NewEngine()

	// 12 rows compressed onto two calendar days: enough history to
	// pass the row gate but too few daily points to fit any model.
	var sales []domain.SaleRecord
	for i := 0; i < 6; i++ {
		sales = append(sales, saleOn(day(2024, 3, 1), "p1", 4))
		sales = append(sales, saleOn(day(2024, 3, 2), "p1", 8))
	}

	result := engine.Forecast("p1", sales, 14, nil)

	require.Equal(t, domain.MethodFallback, result.Method)
	assert.Equal(t, domain.ConfidenceLow, result.Confidence)
	assert.Contains(t, result.Message, "average-based")
	require.Len(t, result.Forecast, 14)

	// daily totals are 24 and 48, so the historical mean is 36
	for _, point := range result.Forecast {
		assert.InDelta(t, 36, point.PredictedDemand, 0.01)
		assert.InDelta(t, 36*0.7, point.LowerBound, 0.01)
		assert.InDelta(t, 36*1.3, point.UpperBound, 0.01)
	}
	assert.InDelta(t, 36*14, result.TotalPredictedDemand, 0.1)
}

func TestForecastHorizonClamped(t *testing.T) {
	engine := NewEngine()
	sales := steadySales(day(2024, 3, 1), 20, 10)

	short := engine.Forecast("p1", sales, 3, nil)
	require.Equal(t, domain.MethodModel, short.Method)
	assert.Len(t, short.Forecast, MinHorizonDays)

	long := engine.Forecast("p1", sales, 500, nil)
	require.Equal(t, domain.MethodModel, long.Method)
	assert.Len(t, long.Forecast, MaxHorizonDays)
}

func TestForecastEventRegressorLiftsEventDays(t *testing.T) {
	engine := NewEngine()
	start := day(2024, 3, 4) // a Monday

	// Four weeks of steady demand with pronounced spikes on event
	// days that fall on different weekdays.
	eventOffsets := map[int]bool{3: true, 11: true, 19: true}
	var sales []domain.SaleRecord
	var events []domain.EventRecord
	for i := 0; i < 28; i++ {
		qty := 10
		if eventOffsets[i] {
			qty = 32
			events = append(events, domain.EventRecord{
				Date:        start.AddDate(0, 0, i),
				ImpactLevel: domain.ImpactHigh,
			})
		}
		sales = append(sales, saleOn(start.AddDate(0, 0, i), "p1", qty))
	}

	// A known upcoming event inside the forecast horizon
	futureEvent := start.AddDate(0, 0, 30)
	events = append(events, domain.EventRecord{Date: futureEvent, ImpactLevel: domain.ImpactHigh})

	result := engine.Forecast("p1", sales, 7, events)
	require.Equal(t, domain.MethodModel, result.Method, result.Message)

	var eventDemand, baselineDemand float64
	for _, point := range result.Forecast {
		if point.Date == futureEvent.Format(dateLayout) {
			eventDemand = point.PredictedDemand
		} else {
			baselineDemand = point.PredictedDemand
		}
	}
	assert.Greater(t, eventDemand, baselineDemand+5,
		"future event day should carry the regressor lift")
}

func TestForecastPointsNeverNegative(t *testing.T) {
	engine := NewEngine()

	// Steeply declining demand drives the raw trend extrapolation
	// below zero inside the horizon.
	var sales []domain.SaleRecord
	for i := 0; i < 20; i++ {
		qty := 60 - 3*i
		if qty < 1 {
			qty = 1
		}
		sales = append(sales, saleOn(day(2024, 3, 1).AddDate(0, 0, i), "p1", qty))
	}

	result := engine.Forecast("p1", sales, 90, nil)
	require.NotEmpty(t, result.Forecast)

	for _, point := range result.Forecast {
		assert.GreaterOrEqual(t, point.PredictedDemand, 0.0)
		assert.GreaterOrEqual(t, point.LowerBound, 0.0)
		assert.GreaterOrEqual(t, point.UpperBound, 0.0)
	}
}
