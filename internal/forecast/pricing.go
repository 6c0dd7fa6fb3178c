package forecast

import (
	"math"

	"github.com/andresuchdata/stockcast/backend-go/internal/domain"
)

// Markup bands applied to cost price. The final recommendation is
// always clamped into [cost*minMarkup, cost*maxMarkup].
const (
	minMarkup    = 1.15
	targetMarkup = 1.40
	maxMarkup    = 2.00

	// Demand thresholds on average quantity per sale row
	slowMoverThreshold = 5.0
	fastMoverThreshold = 20.0

	slowMoverDiscount = 0.95
	fastMoverPremium  = 1.05

	// Recommendations stay just under the competitor average
	competitorUndercut = 0.98
)

// Price derives a bounded price recommendation from cost, demand level
// and optional competitor prices. A zero cost price returns the current
// price unchanged, never an error.
func (e *Engine) Price(product domain.ProductRecord, sales []domain.SaleRecord, market *domain.MarketData) domain.PriceRecommendation {
	cost := product.CostPrice
	current := product.SellingPrice

	if cost == 0 {
		return domain.PriceRecommendation{
			RecommendedPrice: current,
			MinPrice:         current,
			MaxPrice:         current,
			CurrentPrice:     current,
			Message:          "cost price not available",
		}
	}

	minPrice := cost * minMarkup
	recommended := cost * targetMarkup
	maxPrice := cost * maxMarkup

	if rows := FilterProduct(PrepareRows(sales, nil), product.ID); len(rows) > 0 {
		avgQuantity := MeanQuantity(rows)
		if avgQuantity < slowMoverThreshold {
			recommended *= slowMoverDiscount
		} else if avgQuantity > fastMoverThreshold {
			recommended *= fastMoverPremium
		}
	}

	if market != nil && len(market.CompetitorPrices) > 0 {
		var sum float64
		for _, price := range market.CompetitorPrices {
			sum += price
		}
		competitorAvg := sum / float64(len(market.CompetitorPrices))
		if competitorAvg > 0 {
			recommended = math.Min(recommended, competitorAvg*competitorUndercut)
		}
	}

	// The markup band clamp is applied last and dominates every
	// adjustment above.
	recommended = math.Max(minPrice, math.Min(recommended, maxPrice))

	expectedMargin := (recommended - cost) / recommended * 100

	var changePercent float64
	if current > 0 {
		changePercent = roundTo((recommended-current)/current*100, 2)
	}

	return domain.PriceRecommendation{
		RecommendedPrice:      roundTo(recommended, 2),
		MinPrice:              roundTo(minPrice, 2),
		MaxPrice:              roundTo(maxPrice, 2),
		CurrentPrice:          current,
		ExpectedMarginPercent: roundTo(expectedMargin, 2),
		PriceChangePercent:    changePercent,
		Message:               "pricing optimized based on cost and demand",
	}
}
