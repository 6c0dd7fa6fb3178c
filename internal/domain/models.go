// internal/domain/models.go
package domain

import "time"

// SaleItem represents a single line item within a sale
type SaleItem struct {
	ProductID   string  `json:"product_id" db:"product_id"`
	ProductName string  `json:"product_name" db:"product_name"`
	Quantity    int     `json:"quantity" db:"quantity"`
	UnitPrice   float64 `json:"unit_price" db:"unit_price"`
}

// SaleRecord represents a completed sale with its line items
type SaleRecord struct {
	ID       string     `json:"id" db:"id"`
	SaleDate time.Time  `json:"sale_date" db:"sale_date"`
	Items    []SaleItem `json:"items"`
}

// EventImpact is the expected demand impact of a calendar event
type EventImpact string

const (
	ImpactLow    EventImpact = "low"
	ImpactMedium EventImpact = "medium"
	ImpactHigh   EventImpact = "high"
)

// EventRecord represents a calendar event expected to shift demand
type EventRecord struct {
	Date        time.Time   `json:"date" db:"date"`
	Name        string      `json:"name" db:"name"`
	ImpactLevel EventImpact `json:"impact_level" db:"impact_level"`
	IsPublic    bool        `json:"is_public" db:"is_public"`
}

// ProductRecord represents a product snapshot from the catalog
type ProductRecord struct {
	ID           string     `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Category     string     `json:"category" db:"category"`
	CostPrice    float64    `json:"cost_price" db:"cost_price"`
	SellingPrice float64    `json:"selling_price" db:"selling_price"`
	Quantity     int        `json:"quantity" db:"quantity"`
	ReorderPoint int        `json:"reorder_point" db:"reorder_point"`
	ExpiryDate   *time.Time `json:"expiry_date,omitempty" db:"expiry_date"`
	IsActive     bool       `json:"is_active" db:"is_active"`
}

// Confidence expresses how much a forecast should be trusted
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// ForecastMethod tags which path produced a forecast so callers can
// branch on the outcome instead of matching message strings
type ForecastMethod string

const (
	MethodModel        ForecastMethod = "model"
	MethodFallback     ForecastMethod = "fallback"
	MethodInsufficient ForecastMethod = "insufficient"
)

// ForecastPoint is a single predicted day of demand
type ForecastPoint struct {
	Date            string  `json:"date"`
	PredictedDemand float64 `json:"predicted_demand"`
	LowerBound      float64 `json:"lower_bound"`
	UpperBound      float64 `json:"upper_bound"`
}

// ForecastResult is the outcome of a demand forecast for one product
type ForecastResult struct {
	ProductID            string          `json:"product_id"`
	Forecast             []ForecastPoint `json:"forecast"`
	TotalPredictedDemand float64         `json:"total_predicted_demand"`
	Confidence           Confidence      `json:"confidence"`
	HistoricalAverage    float64         `json:"historical_average"`
	Method               ForecastMethod  `json:"method"`
	Message              string          `json:"message"`
}

// ReorderRecommendation is the reorder point derived from a forecast
type ReorderRecommendation struct {
	ReorderPoint   int     `json:"reorder_point"`
	SafetyStock    int     `json:"safety_stock"`
	LeadTimeDemand float64 `json:"lead_time_demand"`
	LeadTimeDays   int     `json:"lead_time_days"`
	ServiceLevel   float64 `json:"service_level"`
	Message        string  `json:"message"`
}

// MarketData carries optional competitor pricing context
type MarketData struct {
	CompetitorPrices []float64 `json:"competitor_prices"`
}

// PriceRecommendation is the outcome of a price optimization
type PriceRecommendation struct {
	RecommendedPrice      float64 `json:"recommended_price"`
	MinPrice              float64 `json:"min_price"`
	MaxPrice              float64 `json:"max_price"`
	CurrentPrice          float64 `json:"current_price"`
	ExpectedMarginPercent float64 `json:"expected_margin_percent"`
	PriceChangePercent    float64 `json:"price_change_percent"`
	Message               string  `json:"message"`
}

// ReorderScanItem is one product's row in a catalog reorder scan
type ReorderScanItem struct {
	ProductID           string     `json:"product_id"`
	ProductName         string     `json:"product_name"`
	Category            string     `json:"category,omitempty"`
	CurrentQuantity     int        `json:"current_quantity"`
	ReorderPoint        int        `json:"reorder_point"`
	SafetyStock         int        `json:"safety_stock"`
	NeedsReorder        bool       `json:"needs_reorder"`
	RecommendedOrderQty int        `json:"recommended_order_quantity"`
	ForecastConfidence  Confidence `json:"forecast_confidence"`
}

// ReorderScanResult aggregates a catalog-wide reorder scan
type ReorderScanResult struct {
	Products          []ReorderScanItem `json:"products"`
	NeedsReorder      []ReorderScanItem `json:"needs_reorder"`
	NeedsReorderCount int               `json:"needs_reorder_count"`
	TotalProducts     int               `json:"total_products"`
	Message           string            `json:"message,omitempty"`
}

// PricingScanItem is one product's row in a batch pricing run
type PricingScanItem struct {
	ProductID             string  `json:"product_id"`
	ProductName           string  `json:"product_name"`
	Category              string  `json:"category,omitempty"`
	CurrentPrice          float64 `json:"current_price"`
	RecommendedPrice      float64 `json:"recommended_price"`
	PriceDifference       float64 `json:"price_difference"`
	ExpectedMarginPercent float64 `json:"expected_margin_percent"`
	NeedsAdjustment       bool    `json:"needs_adjustment"`
}

// PricingScanResult aggregates a catalog-wide pricing run
type PricingScanResult struct {
	Products             []PricingScanItem `json:"products"`
	NeedsAdjustment      []PricingScanItem `json:"needs_adjustment"`
	NeedsAdjustmentCount int               `json:"needs_adjustment_count"`
	TotalProducts        int               `json:"total_products"`
	Message              string            `json:"message,omitempty"`
}

// InventoryAlertItem is one product flagged by the alert scan
type InventoryAlertItem struct {
	ProductID       string `json:"product_id"`
	ProductName     string `json:"product_name"`
	Category        string `json:"category,omitempty"`
	Quantity        int    `json:"quantity"`
	ReorderPoint    int    `json:"reorder_point,omitempty"`
	ExpiryDate      string `json:"expiry_date,omitempty"`
	DaysUntilExpiry int    `json:"days_until_expiry,omitempty"`
}

// InventoryAlerts groups stock alerts by condition
type InventoryAlerts struct {
	OutOfStock        []InventoryAlertItem `json:"out_of_stock"`
	OutOfStockCount   int                  `json:"out_of_stock_count"`
	LowStock          []InventoryAlertItem `json:"low_stock"`
	LowStockCount     int                  `json:"low_stock_count"`
	ExpiringSoon      []InventoryAlertItem `json:"expiring_soon"`
	ExpiringSoonCount int                  `json:"expiring_soon_count"`
	Overstock         []InventoryAlertItem `json:"overstock"`
	OverstockCount    int                  `json:"overstock_count"`
	TotalAlerts       int                  `json:"total_alerts"`
}

// CategorySummary is the per-category rollup within an inventory summary
type CategorySummary struct {
	Count    int     `json:"count"`
	Quantity int     `json:"quantity"`
	Value    float64 `json:"value"`
}

// MoverItem is a slow or fast moving product in the inventory summary
type MoverItem struct {
	ProductID       string  `json:"product_id"`
	ProductName     string  `json:"product_name"`
	Quantity        int     `json:"quantity,omitempty"`
	CostValue       float64 `json:"cost_value,omitempty"`
	Turnover        int     `json:"turnover,omitempty"`
	CurrentQuantity int     `json:"current_quantity,omitempty"`
}

// InventorySummary is the catalog-wide inventory overview
type InventorySummary struct {
	TotalProducts      int                        `json:"total_products"`
	TotalQuantity      int                        `json:"total_quantity"`
	TotalValue         float64                    `json:"total_value"`
	Categories         map[string]CategorySummary `json:"categories"`
	SlowMovingProducts []MoverItem                `json:"slow_moving_products"`
	FastMovingProducts []MoverItem                `json:"fast_moving_products"`
	SlowMovingCount    int                        `json:"slow_moving_count"`
	FastMovingCount    int                        `json:"fast_moving_count"`
}
