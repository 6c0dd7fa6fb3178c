package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/stockcast/backend-go/internal/config"
	"github.com/andresuchdata/stockcast/backend-go/internal/domain"
	"github.com/andresuchdata/stockcast/backend-go/internal/repository"
)

// fakeSnapshotRepo serves canned snapshots for service tests.
type fakeSnapshotRepo struct {
	sales    []domain.SaleRecord
	products []domain.ProductRecord
	events   []domain.EventRecord
}

func (f *fakeSnapshotRepo) GetSales(ctx context.Context) ([]domain.SaleRecord, error) {
	return f.sales, nil
}

func (f *fakeSnapshotRepo) GetSalesSince(ctx context.Context, since time.Time) ([]domain.SaleRecord, error) {
	var recent []domain.SaleRecord
	for _, sale := range f.sales {
		if !sale.SaleDate.Before(since) {
			recent = append(recent, sale)
		}
	}
	return recent, nil
}

func (f *fakeSnapshotRepo) GetProduct(ctx context.Context, id string) (*domain.ProductRecord, error) {
	for _, product := range f.products {
		if product.ID == id {
			return &product, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (f *fakeSnapshotRepo) GetActiveProducts(ctx context.Context) ([]domain.ProductRecord, error) {
	var active []domain.ProductRecord
	for _, product := range f.products {
		if product.IsActive {
			active = append(active, product)
		}
	}
	return active, nil
}

func (f *fakeSnapshotRepo) GetPublicEvents(ctx context.Context) ([]domain.EventRecord, error) {
	return f.events, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dailySales(productID string, start time.Time, days, qty int) []domain.SaleRecord {
	var sales []domain.SaleRecord
	for i := 0; i < days; i++ {
		sales = append(sales, domain.SaleRecord{
			ID:       productID + "-" + start.AddDate(0, 0, i).Format("20060102"),
			SaleDate: start.AddDate(0, 0, i),
			Items: []domain.SaleItem{
				{ProductID: productID, ProductName: "Product " + productID, Quantity: qty, UnitPrice: 10},
			},
		})
	}
	return sales
}

func engineConfig() config.EngineConfig {
	return config.EngineConfig{
		DefaultHorizonDays:  30,
		DefaultLeadTimeDays: 7,
		ServiceLevel:        0.95,
		ScanWorkers:         4,
	}
}

func TestForecastDemandUnknownProduct(t *testing.T) {
	svc := NewForecastService(&fakeSnapshotRepo{}, nil, engineConfig())

	_, err := svc.ForecastDemand(context.Background(), "missing", 30)

	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}

func TestForecastDemandSteadyProduct(t *testing.T) {
	repo := &fakeSnapshotRepo{
		sales: dailySales("p1", day(2024, 3, 1), 20, 10),
		products: []domain.ProductRecord{
			{ID: "p1", Name: "Widget", IsActive: true},
		},
	}
	svc := NewForecastService(repo, nil, engineConfig())

	result, err := svc.ForecastDemand(context.Background(), "p1", 7)
	require.NoError(t, err)

	assert.Equal(t, domain.MethodModel, result.Method)
	assert.Len(t, result.Forecast, 7)
}

func TestReorderScanFlagsLowStock(t *testing.T) {
	// p1 sells 10/day with 5 on hand, p2 has deep stock, p3 has no
	// history and is skipped.
	sales := append(
		dailySales("p1", day(2024, 3, 1), 20, 10),
		dailySales("p2", day(2024, 3, 1), 20, 10)...,
	)
	repo := &fakeSnapshotRepo{
		sales: sales,
		products: []domain.ProductRecord{
			{ID: "p1", Name: "Low", Quantity: 5, IsActive: true},
			{ID: "p2", Name: "Deep", Quantity: 5000, IsActive: true},
			{ID: "p3", Name: "New", Quantity: 3, IsActive: true},
		},
	}
	svc := NewForecastService(repo, nil, engineConfig())

	scan, err := svc.ReorderScan(context.Background(), 7, 0.95)
	require.NoError(t, err)

	require.Equal(t, 2, scan.TotalProducts, "product without history is skipped")
	require.Equal(t, 1, scan.NeedsReorderCount)

	flagged := scan.NeedsReorder[0]
	assert.Equal(t, "p1", flagged.ProductID)
	assert.True(t, flagged.NeedsReorder)
	assert.Greater(t, flagged.ReorderPoint, 5)
	assert.Equal(t, flagged.ReorderPoint-5+flagged.SafetyStock, flagged.RecommendedOrderQty)

	deep := scan.Products[1]
	assert.Equal(t, "p2", deep.ProductID)
	assert.False(t, deep.NeedsReorder)
	assert.Zero(t, deep.RecommendedOrderQty)
}

func TestReorderScanEmptyCatalog(t *testing.T) {
	svc := NewForecastService(&fakeSnapshotRepo{}, nil, engineConfig())

	scan, err := svc.ReorderScan(context.Background(), 7, 0.95)
	require.NoError(t, err)

	assert.Empty(t, scan.Products)
	assert.Equal(t, "no products found", scan.Message)
}

func TestBatchPricing(t *testing.T) {
	repo := &fakeSnapshotRepo{
		products: []domain.ProductRecord{
			{ID: "p1", Name: "Aligned", CostPrice: 100, SellingPrice: 140, IsActive: true},
			{ID: "p2", Name: "Underpriced", CostPrice: 100, SellingPrice: 90, IsActive: true},
			{ID: "p3", Name: "Inactive", CostPrice: 100, SellingPrice: 50},
		},
	}
	svc := NewForecastService(repo, nil, engineConfig())

	scan, err := svc.BatchPricing(context.Background())
	require.NoError(t, err)

	require.Equal(t, 2, scan.TotalProducts, "inactive products are excluded")
	require.Equal(t, 1, scan.NeedsAdjustmentCount)

	assert.False(t, scan.Products[0].NeedsAdjustment)
	assert.Equal(t, "p2", scan.NeedsAdjustment[0].ProductID)
	assert.InDelta(t, 50, scan.NeedsAdjustment[0].PriceDifference, 0.01)
}

func TestRecommendPricing(t *testing.T) {
	repo := &fakeSnapshotRepo{
		products: []domain.ProductRecord{
			{ID: "p1", Name: "Widget", CostPrice: 100, SellingPrice: 150, IsActive: true},
		},
	}
	svc := NewForecastService(repo, nil, engineConfig())

	rec, err := svc.RecommendPricing(context.Background(), "p1", nil)
	require.NoError(t, err)

	assert.Equal(t, 140.0, rec.RecommendedPrice)
	assert.Equal(t, 115.0, rec.MinPrice)
	assert.Equal(t, 200.0, rec.MaxPrice)
}

func TestRecommendPricingCompetitorCeiling(t *testing.T) {
	repo := &fakeSnapshotRepo{
		products: []domain.ProductRecord{
			{ID: "p1", Name: "Widget", CostPrice: 100, SellingPrice: 150, IsActive: true},
		},
	}
	svc := NewForecastService(repo, nil, engineConfig())

	market := &domain.MarketData{CompetitorPrices: []float64{130, 132}}
	rec, err := svc.RecommendPricing(context.Background(), "p1", market)
	require.NoError(t, err)

	// 131 * 0.98 = 128.38, inside the 115..200 band
	assert.Equal(t, 128.38, rec.RecommendedPrice)
}
