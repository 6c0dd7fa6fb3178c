package forecast

import (
	"math"

	"github.com/andresuchdata/stockcast/backend-go/internal/domain"
)

const (
	// MinLeadTimeDays and MaxLeadTimeDays bound the replenishment lead
	// time; out-of-range requests are clamped rather than rejected.
	MinLeadTimeDays = 1
	MaxLeadTimeDays = 30

	// DefaultServiceLevel is the target in-stock probability during
	// lead time when the caller does not supply one.
	DefaultServiceLevel = 0.95
)

// Reorder derives a reorder point and safety stock from a forecast.
// An empty forecast yields a zeroed recommendation, never an error.
func (e *Engine) Reorder(result domain.ForecastResult, leadTimeDays int, serviceLevel float64) domain.ReorderRecommendation {
	leadTimeDays = ClampLeadTime(leadTimeDays)
	if serviceLevel <= 0 || serviceLevel > 1 {
		serviceLevel = DefaultServiceLevel
	}

	if len(result.Forecast) == 0 {
		return domain.ReorderRecommendation{
			ReorderPoint: 0,
			SafetyStock:  0,
			LeadTimeDays: leadTimeDays,
			ServiceLevel: serviceLevel,
			Message:      "insufficient data",
		}
	}

	window := result.Forecast
	if leadTimeDays < len(window) {
		window = window[:leadTimeDays]
	}

	var leadTimeDemand float64
	for _, point := range window {
		leadTimeDemand += point.PredictedDemand
	}

	// With a single point there is no spread to measure; the 20% of
	// lead-time demand is a documented heuristic, not a statistic.
	var demandStd float64
	if len(window) > 1 {
		demandStd = populationStd(window, leadTimeDemand/float64(len(window)))
	} else {
		demandStd = leadTimeDemand * 0.2
	}

	// Two-tier z lookup, deliberately not a continuous inverse CDF
	zScore := 1.28
	if serviceLevel >= 0.95 {
		zScore = 1.65
	}

	safetyStock := zScore * demandStd * math.Sqrt(float64(leadTimeDays))

	return domain.ReorderRecommendation{
		ReorderPoint:   int(math.Max(1, math.Round(leadTimeDemand+safetyStock))),
		SafetyStock:    int(math.Max(0, math.Round(safetyStock))),
		LeadTimeDemand: roundTo(leadTimeDemand, 2),
		LeadTimeDays:   leadTimeDays,
		ServiceLevel:   serviceLevel,
		Message:        "reorder point calculated successfully",
	}
}

// ClampLeadTime bounds a requested lead time to the supported range.
func ClampLeadTime(days int) int {
	if days < MinLeadTimeDays {
		return MinLeadTimeDays
	}
	if days > MaxLeadTimeDays {
		return MaxLeadTimeDays
	}
	return days
}

func populationStd(points []domain.ForecastPoint, mean float64) float64 {
	var sumSq float64
	for _, point := range points {
		diff := point.PredictedDemand - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(points)))
}
