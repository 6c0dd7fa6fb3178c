package forecast

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/stockcast/backend-go/internal/domain"
)

func product(cost, current float64) domain.ProductRecord {
	return domain.ProductRecord{ID: "p1", Name: "Widget", CostPrice: cost, SellingPrice: current}
}

func TestPriceMarkupBand(t *testing.T) {
	engine := NewEngine()

	rec := engine.Price(product(100, 150), nil, nil)

	assert.Equal(t, 115.0, rec.MinPrice)
	assert.Equal(t, 140.0, rec.RecommendedPrice)
	assert.Equal(t, 200.0, rec.MaxPrice)
	assert.InDelta(t, (140.0-100.0)/140.0*100, rec.ExpectedMarginPercent, 0.01)
	assert.InDelta(t, (140.0-150.0)/150.0*100, rec.PriceChangePercent, 0.01)
}

func TestPriceZeroCostReturnsCurrentPrice(t *testing.T) {
	engine := NewEngine()

	rec := engine.Price(product(0, 49.90), nil, nil)

	assert.Equal(t, 49.90, rec.RecommendedPrice)
	assert.Equal(t, 49.90, rec.CurrentPrice)
	assert.Equal(t, "cost price not available", rec.Message)
}

func TestPriceSlowMoverDiscount(t *testing.T) {
	engine := NewEngine()
	sales := []domain.SaleRecord{
		saleOn(day(2024, 3, 1), "p1", 2),
		saleOn(day(2024, 3, 2), "p1", 3),
	}

	rec := engine.Price(product(100, 150), sales, nil)

	assert.InDelta(t, 140*0.95, rec.RecommendedPrice, 0.01)
}

func TestPriceFastMoverPremium(t *testing.T) {
	engine := NewEngine()
	sales := []domain.SaleRecord{
		saleOn(day(2024, 3, 1), "p1", 30),
		saleOn(day(2024, 3, 2), "p1", 25),
	}

	rec := engine.Price(product(100, 150), sales, nil)

	assert.InDelta(t, 140*1.05, rec.RecommendedPrice, 0.01)
}

func TestPriceCompetitorCeilingThenBandClamp(t *testing.T) {
	engine := NewEngine()

	// Fast mover: average quantity 25 lifts 1400 to 1470; competitor
	// ceiling caps at 1125*0.98=1102.50; the final band clamp wins
	// and raises the result back to min_price.
	var sales []domain.SaleRecord
	for i := 0; i < 4; i++ {
		sales = append(sales, saleOn(day(2024, 3, 1).AddDate(0, 0, i), "p1", 25))
	}
	market := &domain.MarketData{CompetitorPrices: []float64{1100, 1150}}

	rec := engine.Price(product(1000, 1200), sales, market)

	require.Equal(t, 1150.0, rec.MinPrice)
	assert.Equal(t, 1150.0, rec.RecommendedPrice)
	assert.Equal(t, 2000.0, rec.MaxPrice)
}

func TestPriceRecommendationAlwaysWithinBand(t *testing.T) {
	engine := NewEngine()
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		cost := 1 + rng.Float64()*999
		current := rng.Float64() * 2000

		var sales []domain.SaleRecord
		for d := 0; d < rng.Intn(10); d++ {
			sales = append(sales, saleOn(day(2024, 3, 1).AddDate(0, 0, d), "p1", 1+rng.Intn(40)))
		}

		var market *domain.MarketData
		if rng.Intn(2) == 0 {
			prices := make([]float64, 1+rng.Intn(5))
			for p := range prices {
				prices[p] = rng.Float64() * 3000
			}
			market = &domain.MarketData{CompetitorPrices: prices}
		}

		rec := engine.Price(product(cost, current), sales, market)

		assert.GreaterOrEqual(t, rec.RecommendedPrice, rec.MinPrice)
		assert.LessOrEqual(t, rec.RecommendedPrice, rec.MaxPrice)
	}
}

func TestPriceChangePercentZeroWhenNoCurrentPrice(t *testing.T) {
	engine := NewEngine()

	rec := engine.Price(product(100, 0), nil, nil)

	assert.Zero(t, rec.PriceChangePercent)
	assert.Equal(t, 140.0, rec.RecommendedPrice)
}
