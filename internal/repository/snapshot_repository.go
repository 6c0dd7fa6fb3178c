// backend-go/internal/repository/snapshot_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/stockcast/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
)

// ErrProductNotFound is returned when a product id has no active row.
var ErrProductNotFound = errors.New("product not found")

// SnapshotRepository loads the immutable data snapshots the forecast
// engine consumes. Implementations must return fully materialized
// slices; the engine never reaches back into the store mid-call.
type SnapshotRepository interface {
	GetSales(ctx context.Context) ([]domain.SaleRecord, error)
	GetSalesSince(ctx context.Context, since time.Time) ([]domain.SaleRecord, error)
	GetProduct(ctx context.Context, id string) (*domain.ProductRecord, error)
	GetActiveProducts(ctx context.Context) ([]domain.ProductRecord, error)
	GetPublicEvents(ctx context.Context) ([]domain.EventRecord, error)
}

type snapshotRepository struct {
	db *sqlx.DB
}

func NewSnapshotRepository(db *sqlx.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

// saleItemRow is the flattened sale/line-item join row
type saleItemRow struct {
	SaleID      string    `db:"sale_id"`
	SaleDate    time.Time `db:"sale_date"`
	ProductID   string    `db:"product_id"`
	ProductName string    `db:"product_name"`
	Quantity    int       `db:"quantity"`
	UnitPrice   float64   `db:"unit_price"`
}

func (r *snapshotRepository) GetSales(ctx context.Context) ([]domain.SaleRecord, error) {
	return r.querySales(ctx, `
		SELECT s.id AS sale_id, s.sale_date, i.product_id, i.product_name, i.quantity, i.unit_price
		FROM sales s
		JOIN sale_items i ON i.sale_id = s.id
		ORDER BY s.sale_date, s.id
	`)
}

func (r *snapshotRepository) GetSalesSince(ctx context.Context, since time.Time) ([]domain.SaleRecord, error) {
	return r.querySales(ctx, `
		SELECT s.id AS sale_id, s.sale_date, i.product_id, i.product_name, i.quantity, i.unit_price
		FROM sales s
		JOIN sale_items i ON i.sale_id = s.id
		WHERE s.sale_date >= $1
		ORDER BY s.sale_date, s.id
	`, since)
}

func (r *snapshotRepository) querySales(ctx context.Context, query string, args ...interface{}) ([]domain.SaleRecord, error) {
	var rows []saleItemRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("error loading sales snapshot: %w", err)
	}

	// Rows arrive ordered by sale id, so line items of one sale are
	// contiguous and can be folded without a map.
	var sales []domain.SaleRecord
	for _, row := range rows {
		item := domain.SaleItem{
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			Quantity:    row.Quantity,
			UnitPrice:   row.UnitPrice,
		}
		if n := len(sales); n > 0 && sales[n-1].ID == row.SaleID {
			sales[n-1].Items = append(sales[n-1].Items, item)
			continue
		}
		sales = append(sales, domain.SaleRecord{
			ID:       row.SaleID,
			SaleDate: row.SaleDate,
			Items:    []domain.SaleItem{item},
		})
	}

	return sales, nil
}

func (r *snapshotRepository) GetProduct(ctx context.Context, id string) (*domain.ProductRecord, error) {
	query := `
		SELECT id, name, category, cost_price, selling_price, quantity, reorder_point, expiry_date, is_active
		FROM products
		WHERE id = $1
	`

	var product domain.ProductRecord
	if err := r.db.GetContext(ctx, &product, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("error loading product %s: %w", id, err)
	}

	return &product, nil
}

func (r *snapshotRepository) GetActiveProducts(ctx context.Context) ([]domain.ProductRecord, error) {
	query := `
		SELECT id, name, category, cost_price, selling_price, quantity, reorder_point, expiry_date, is_active
		FROM products
		WHERE is_active = TRUE
		ORDER BY name
	`

	var products []domain.ProductRecord
	if err := r.db.SelectContext(ctx, &products, query); err != nil {
		return nil, fmt.Errorf("error loading products snapshot: %w", err)
	}

	return products, nil
}

func (r *snapshotRepository) GetPublicEvents(ctx context.Context) ([]domain.EventRecord, error) {
	query := `
		SELECT date, name, impact_level, is_public
		FROM events
		WHERE is_public = TRUE
		ORDER BY date
	`

	var events []domain.EventRecord
	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, fmt.Errorf("error loading events snapshot: %w", err)
	}

	return events, nil
}
