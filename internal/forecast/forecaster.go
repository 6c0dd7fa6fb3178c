package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/andresuchdata/stockcast/backend-go/internal/domain"
)

const (
	// MinHorizonDays and MaxHorizonDays bound the forecast horizon;
	// out-of-range requests are clamped rather than rejected.
	MinHorizonDays = 7
	MaxHorizonDays = 90

	// minHistoryRows is the number of prepared rows a product needs
	// before a model is fit at all.
	minHistoryRows = 10

	// highConfidenceRows is the sample size at which a successful fit
	// is reported as high confidence instead of medium.
	highConfidenceRows = 50

	dateLayout = "2006-01-02"
)

// Engine computes demand forecasts, reorder points and price
// recommendations. It holds no state across calls: every method is a
// pure function of the snapshots passed in. Construct one per caller
// instead of sharing a package-level instance.
type Engine struct{}

// NewEngine returns a ready-to-use engine handle.
func NewEngine() *Engine {
	return &Engine{}
}

// Forecast produces a demand forecast for one product from a sales
// snapshot. Products with fewer than minHistoryRows prepared rows get
// an empty low-confidence result; model fitting failures degrade to a
// deterministic mean-based forecast. Neither case returns an error.
func (e *Engine) Forecast(productID string, sales []domain.SaleRecord, horizonDays int, events []domain.EventRecord) domain.ForecastResult {
	horizonDays = ClampHorizon(horizonDays)

	rows := FilterProduct(PrepareRows(sales, events), productID)
	if len(rows) < minHistoryRows {
		return domain.ForecastResult{
			ProductID:  productID,
			Forecast:   []domain.ForecastPoint{},
			Confidence: domain.ConfidenceLow,
			Method:     domain.MethodInsufficient,
			Message:    "insufficient sales history for this product",
		}
	}

	daily := AggregateDaily(rows)
	histAvg := dailyMean(daily)
	lastDate := daily[len(daily)-1].Date

	model, err := fitSeasonalModel(daily)
	if err != nil {
		return e.fallbackForecast(productID, lastDate, horizonDays, histAvg, err)
	}

	eventDays := eventDateSet(events)

	points := make([]domain.ForecastPoint, 0, horizonDays)
	var total float64
	for i := 1; i <= horizonDays; i++ {
		day := lastDate.AddDate(0, 0, i)
		_, isEvent := eventDays[day]

		yhat, lower, upper := model.predict(day, isEvent)
		point := domain.ForecastPoint{
			Date:            day.Format(dateLayout),
			PredictedDemand: roundTo(math.Max(0, yhat), 2),
			LowerBound:      roundTo(math.Max(0, lower), 2),
			UpperBound:      roundTo(math.Max(0, upper), 2),
		}
		points = append(points, point)
		total += point.PredictedDemand
	}

	confidence := domain.ConfidenceMedium
	if len(rows) >= highConfidenceRows {
		confidence = domain.ConfidenceHigh
	}

	return domain.ForecastResult{
		ProductID:            productID,
		Forecast:             points,
		TotalPredictedDemand: roundTo(total, 2),
		Confidence:           confidence,
		HistoricalAverage:    roundTo(histAvg, 2),
		Method:               domain.MethodModel,
		Message:              "forecast generated successfully",
	}
}

// fallbackForecast emits a flat mean-based forecast with a 0.7x..1.3x
// band. It always succeeds: the caller guarantees a non-empty series.
func (e *Engine) fallbackForecast(productID string, lastDate time.Time, horizonDays int, histAvg float64, cause error) domain.ForecastResult {
	points := make([]domain.ForecastPoint, 0, horizonDays)
	for i := 1; i <= horizonDays; i++ {
		points = append(points, domain.ForecastPoint{
			Date:            lastDate.AddDate(0, 0, i).Format(dateLayout),
			PredictedDemand: roundTo(histAvg, 2),
			LowerBound:      roundTo(math.Max(0, histAvg*0.7), 2),
			UpperBound:      roundTo(math.Max(0, histAvg*1.3), 2),
		})
	}

	return domain.ForecastResult{
		ProductID:            productID,
		Forecast:             points,
		TotalPredictedDemand: roundTo(histAvg*float64(horizonDays), 2),
		Confidence:           domain.ConfidenceLow,
		HistoricalAverage:    roundTo(histAvg, 2),
		Method:               domain.MethodFallback,
		Message:              fmt.Sprintf("using simple average-based forecast: %v", cause),
	}
}

// ClampHorizon bounds a requested horizon to the supported range.
func ClampHorizon(days int) int {
	if days < MinHorizonDays {
		return MinHorizonDays
	}
	if days > MaxHorizonDays {
		return MaxHorizonDays
	}
	return days
}

func dailyMean(daily []DailyPoint) float64 {
	if len(daily) == 0 {
		return 0
	}
	var sum float64
	for _, p := range daily {
		sum += p.Quantity
	}
	return sum / float64(len(daily))
}

// roundTo rounds v to the given number of decimal places.
func roundTo(v float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}
