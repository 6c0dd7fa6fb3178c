package service

import (
	"context"
	"math"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/stockcast/backend-go/internal/cache"
	"github.com/andresuchdata/stockcast/backend-go/internal/config"
	"github.com/andresuchdata/stockcast/backend-go/internal/domain"
	"github.com/andresuchdata/stockcast/backend-go/internal/forecast"
	"github.com/andresuchdata/stockcast/backend-go/internal/repository"
)

// ForecastService orchestrates the forecast engine over data snapshots.
// The engine itself is stateless; batch operations fan out across
// products on a bounded worker pool since no state is shared between
// per-product calls.
type ForecastService struct {
	repo    repository.SnapshotRepository
	cache   cache.ForecastCache
	engine  *forecast.Engine
	workers int
}

func NewForecastService(repo repository.SnapshotRepository, cacheImpl cache.ForecastCache, cfg config.EngineConfig) *ForecastService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopForecastCache()
	}
	workers := cfg.ScanWorkers
	if workers < 1 {
		workers = 1
	}
	return &ForecastService{
		repo:    repo,
		cache:   cacheImpl,
		engine:  forecast.NewEngine(),
		workers: workers,
	}
}

// ForecastDemand forecasts demand for one product. Errors are reserved
// for snapshot loading failures and unknown products; thin history and
// model fitting failures come back as degraded results.
func (s *ForecastService) ForecastDemand(ctx context.Context, productID string, horizonDays int) (*domain.ForecastResult, error) {
	horizonDays = forecast.ClampHorizon(horizonDays)

	if _, err := s.repo.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	if result, ok, err := s.cache.Get(ctx, productID, horizonDays); err == nil && ok {
		return result, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("forecast: cache get failed")
	}

	sales, err := s.repo.GetSales(ctx)
	if err != nil {
		return nil, err
	}
	events, err := s.repo.GetPublicEvents(ctx)
	if err != nil {
		return nil, err
	}

	result := s.engine.Forecast(productID, sales, horizonDays, events)

	if err := s.cache.Set(ctx, productID, horizonDays, &result); err != nil {
		log.Warn().Err(err).Msg("forecast: cache set failed")
	}

	return &result, nil
}

// RecommendPricing derives a price recommendation for one product.
// Competitor pricing context is optional.
func (s *ForecastService) RecommendPricing(ctx context.Context, productID string, market *domain.MarketData) (*domain.PriceRecommendation, error) {
	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	sales, err := s.repo.GetSales(ctx)
	if err != nil {
		return nil, err
	}

	result := s.engine.Price(*product, sales, market)
	return &result, nil
}

// ReorderScan computes reorder points across the active catalog. The
// forecast horizon is twice the lead time so the lead-time window is
// always covered. Products without enough history are skipped, as a
// zeroed recommendation would read as "order nothing".
func (s *ForecastService) ReorderScan(ctx context.Context, leadTimeDays int, serviceLevel float64) (*domain.ReorderScanResult, error) {
	leadTimeDays = forecast.ClampLeadTime(leadTimeDays)

	products, err := s.repo.GetActiveProducts(ctx)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return &domain.ReorderScanResult{
			Products:     []domain.ReorderScanItem{},
			NeedsReorder: []domain.ReorderScanItem{},
			Message:      "no products found",
		}, nil
	}

	sales, err := s.repo.GetSales(ctx)
	if err != nil {
		return nil, err
	}
	events, err := s.repo.GetPublicEvents(ctx)
	if err != nil {
		return nil, err
	}

	horizonDays := forecast.ClampHorizon(leadTimeDays * 2)

	items := make([]*domain.ReorderScanItem, len(products))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.workers)

	for i, product := range products {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			result := s.engine.Forecast(product.ID, sales, horizonDays, events)
			if len(result.Forecast) == 0 {
				return nil
			}

			rec := s.engine.Reorder(result, leadTimeDays, serviceLevel)

			item := domain.ReorderScanItem{
				ProductID:          product.ID,
				ProductName:        product.Name,
				Category:           product.Category,
				CurrentQuantity:    product.Quantity,
				ReorderPoint:       rec.ReorderPoint,
				SafetyStock:        rec.SafetyStock,
				ForecastConfidence: result.Confidence,
			}
			if product.Quantity <= rec.ReorderPoint {
				item.NeedsReorder = true
				item.RecommendedOrderQty = int(math.Max(0, float64(rec.ReorderPoint-product.Quantity+rec.SafetyStock)))
			}
			items[i] = &item
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	scan := &domain.ReorderScanResult{
		Products:     []domain.ReorderScanItem{},
		NeedsReorder: []domain.ReorderScanItem{},
	}
	for _, item := range items {
		if item == nil {
			continue
		}
		scan.Products = append(scan.Products, *item)
		if item.NeedsReorder {
			scan.NeedsReorder = append(scan.NeedsReorder, *item)
		}
	}
	scan.TotalProducts = len(scan.Products)
	scan.NeedsReorderCount = len(scan.NeedsReorder)

	return scan, nil
}

// BatchPricing recommends prices across the active catalog.
func (s *ForecastService) BatchPricing(ctx context.Context) (*domain.PricingScanResult, error) {
	products, err := s.repo.GetActiveProducts(ctx)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return &domain.PricingScanResult{
			Products:        []domain.PricingScanItem{},
			NeedsAdjustment: []domain.PricingScanItem{},
			Message:         "no products found",
		}, nil
	}

	sales, err := s.repo.GetSales(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]domain.PricingScanItem, len(products))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.workers)

	for i, product := range products {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			rec := s.engine.Price(product, sales, nil)
			diff := rec.RecommendedPrice - product.SellingPrice

			items[i] = domain.PricingScanItem{
				ProductID:             product.ID,
				ProductName:           product.Name,
				Category:              product.Category,
				CurrentPrice:          product.SellingPrice,
				RecommendedPrice:      rec.RecommendedPrice,
				PriceDifference:       math.Round(diff*100) / 100,
				ExpectedMarginPercent: rec.ExpectedMarginPercent,
				NeedsAdjustment:       math.Abs(diff) > 0.01,
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	scan := &domain.PricingScanResult{
		Products:        items,
		NeedsAdjustment: []domain.PricingScanItem{},
		TotalProducts:   len(items),
	}
	for _, item := range items {
		if item.NeedsAdjustment {
			scan.NeedsAdjustment = append(scan.NeedsAdjustment, item)
		}
	}
	scan.NeedsAdjustmentCount = len(scan.NeedsAdjustment)

	return scan, nil
}
