package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/andresuchdata/stockcast/backend-go/internal/domain"
	"github.com/andresuchdata/stockcast/backend-go/internal/repository"
)

const (
	expiryAlertWindowDays = 30
	overstockMultiplier   = 3
	fastMoverTurnover     = 20
	turnoverWindowDays    = 30
	topMoversLimit        = 10
)

// InventoryService derives stock alerts and catalog summaries from
// product and sales snapshots.
type InventoryService struct {
	repo repository.SnapshotRepository
	now  func() time.Time
}

func NewInventoryService(repo repository.SnapshotRepository) *InventoryService {
	return &InventoryService{repo: repo, now: time.Now}
}

// Alerts flags products that are out of stock, below their stored
// reorder point, overstocked, or expiring within the alert window.
func (s *InventoryService) Alerts(ctx context.Context) (*domain.InventoryAlerts, error) {
	products, err := s.repo.GetActiveProducts(ctx)
	if err != nil {
		return nil, err
	}

	alerts := &domain.InventoryAlerts{
		OutOfStock:   []domain.InventoryAlertItem{},
		LowStock:     []domain.InventoryAlertItem{},
		ExpiringSoon: []domain.InventoryAlertItem{},
		Overstock:    []domain.InventoryAlertItem{},
	}
	now := s.now().UTC()

	for _, product := range products {
		item := domain.InventoryAlertItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Category:    product.Category,
			Quantity:    product.Quantity,
		}

		if product.Quantity == 0 {
			alerts.OutOfStock = append(alerts.OutOfStock, item)
		} else if product.ReorderPoint > 0 && product.Quantity <= product.ReorderPoint {
			item.ReorderPoint = product.ReorderPoint
			alerts.LowStock = append(alerts.LowStock, item)
		}

		if product.ExpiryDate != nil {
			daysUntilExpiry := int(product.ExpiryDate.Sub(now).Hours() / 24)
			if daysUntilExpiry >= 0 && daysUntilExpiry <= expiryAlertWindowDays {
				expiring := item
				expiring.ReorderPoint = 0
				expiring.ExpiryDate = product.ExpiryDate.Format("2006-01-02")
				expiring.DaysUntilExpiry = daysUntilExpiry
				alerts.ExpiringSoon = append(alerts.ExpiringSoon, expiring)
			}
		}

		if product.ReorderPoint > 0 && product.Quantity > product.ReorderPoint*overstockMultiplier {
			over := item
			over.ReorderPoint = product.ReorderPoint
			alerts.Overstock = append(alerts.Overstock, over)
		}
	}

	alerts.OutOfStockCount = len(alerts.OutOfStock)
	alerts.LowStockCount = len(alerts.LowStock)
	alerts.ExpiringSoonCount = len(alerts.ExpiringSoon)
	alerts.OverstockCount = len(alerts.Overstock)
	alerts.TotalAlerts = alerts.OutOfStockCount + alerts.LowStockCount +
		alerts.ExpiringSoonCount + alerts.OverstockCount

	return alerts, nil
}

// Summary builds the catalog-wide inventory overview, including slow
// and fast movers from recent sales turnover.
func (s *InventoryService) Summary(ctx context.Context) (*domain.InventorySummary, error) {
	products, err := s.repo.GetActiveProducts(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := s.now().UTC().AddDate(0, 0, -turnoverWindowDays)
	recentSales, err := s.repo.GetSalesSince(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	turnover := make(map[string]int)
	for _, sale := range recentSales {
		for _, item := range sale.Items {
			turnover[item.ProductID] += item.Quantity
		}
	}

	summary := &domain.InventorySummary{
		TotalProducts:      len(products),
		Categories:         make(map[string]domain.CategorySummary),
		SlowMovingProducts: []domain.MoverItem{},
		FastMovingProducts: []domain.MoverItem{},
	}

	var slow, fast []domain.MoverItem
	for _, product := range products {
		summary.TotalQuantity += product.Quantity
		value := product.CostPrice * float64(product.Quantity)
		summary.TotalValue += value

		category := product.Category
		if category == "" {
			category = "Uncategorized"
		}
		rollup := summary.Categories[category]
		rollup.Count++
		rollup.Quantity += product.Quantity
		rollup.Value += value
		summary.Categories[category] = rollup

		sold := turnover[product.ID]
		if sold == 0 && product.Quantity > 0 {
			slow = append(slow, domain.MoverItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    product.Quantity,
				CostValue:   value,
			})
		} else if sold >= fastMoverTurnover {
			fast = append(fast, domain.MoverItem{
				ProductID:       product.ID,
				ProductName:     product.Name,
				Turnover:        sold,
				CurrentQuantity: product.Quantity,
			})
		}
	}

	summary.TotalValue = math.Round(summary.TotalValue*100) / 100
	summary.SlowMovingCount = len(slow)
	summary.FastMovingCount = len(fast)

	sort.Slice(fast, func(i, j int) bool { return fast[i].Turnover > fast[j].Turnover })

	if len(slow) > topMoversLimit {
		slow = slow[:topMoversLimit]
	}
	if len(fast) > topMoversLimit {
		fast = fast[:topMoversLimit]
	}
	summary.SlowMovingProducts = append(summary.SlowMovingProducts, slow...)
	summary.FastMovingProducts = append(summary.FastMovingProducts, fast...)

	return summary, nil
}
