package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ridelinehq/ridegear-backend/pkg/enums"
)

// Repository runs the aggregate queries behind the admin dashboard.
type Repository interface {
	RevenueSummary(ctx context.Context, since time.Time) (*RevenueSummaryRow, error)
	RevenueByDay(ctx context.Context, since time.Time) ([]DailyRevenueRow, error)
	OrderStatusCounts(ctx context.Context) ([]StatusCountRow, error)
	TopProducts(ctx context.Context, since time.Time, limit int) ([]TopProductRow, error)
	LowStockProducts(ctx context.Context, threshold int) ([]LowStockRow, error)
	CustomerCount(ctx context.Context) (int64, error)
}

// RevenueSummaryRow aggregates completed order revenue in a window.
type RevenueSummaryRow struct {
	RevenueCents int64
	OrderCount   int64
}

// DailyRevenueRow is one day's revenue bucket.
type DailyRevenueRow struct {
	Day          time.Time
	RevenueCents int64
	OrderCount   int64
}

// StatusCountRow is one status bucket of the order pipeline.
type StatusCountRow struct {
	Status enums.OrderStatus
	Count  int64
}

// TopProductRow ranks a product by units sold.
type TopProductRow struct {
	ProductID    uuid.UUID
	Title        string
	Units        int64
	RevenueCents int64
}

// LowStockRow flags a product at or below the restock threshold.
type LowStockRow struct {
	ProductID uuid.UUID
	Title     string
	Stock     int
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository constructs an analytics repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

// Canceled orders never count toward revenue; pending orders do not either
// since their payment has not settled.
const revenueStatuses = "('paid', 'shipped', 'delivered')"

func (r *repositoryImpl) RevenueSummary(ctx context.Context, since time.Time) (*RevenueSummaryRow, error) {
	var row RevenueSummaryRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(total_cents), 0) AS revenue_cents,
		       COUNT(*) AS order_count
		FROM orders
		WHERE status IN `+revenueStatuses+`
		  AND created_at >= ?`, since).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repositoryImpl) RevenueByDay(ctx context.Context, since time.Time) ([]DailyRevenueRow, error) {
	var rows []DailyRevenueRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT date_trunc('day', created_at) AS day,
		       COALESCE(SUM(total_cents), 0) AS revenue_cents,
		       COUNT(*) AS order_count
		FROM orders
		WHERE status IN `+revenueStatuses+`
		  AND created_at >= ?
		GROUP BY 1
		ORDER BY 1`, since).Scan(&rows).Error
	return rows, err
}

func (r *repositoryImpl) OrderStatusCounts(ctx context.Context) ([]StatusCountRow, error) {
	var rows []StatusCountRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT status, COUNT(*) AS count
		FROM orders
		GROUP BY status`).Scan(&rows).Error
	return rows, err
}

func (r *repositoryImpl) TopProducts(ctx context.Context, since time.Time, limit int) ([]TopProductRow, error) {
	var rows []TopProductRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT oi.product_id,
		       oi.title,
		       SUM(oi.quantity) AS units,
		       SUM(oi.line_total_cents) AS revenue_cents
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.status IN `+revenueStatuses+`
		  AND o.created_at >= ?
		GROUP BY oi.product_id, oi.title
		ORDER BY units DESC, revenue_cents DESC
		LIMIT ?`, since, limit).Scan(&rows).Error
	return rows, err
}

func (r *repositoryImpl) LowStockProducts(ctx context.Context, threshold int) ([]LowStockRow, error) {
	var rows []LowStockRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT id AS product_id, title, stock
		FROM products
		WHERE is_active = true AND stock <= ?
		ORDER BY stock ASC, title ASC`, threshold).Scan(&rows).Error
	return rows, err
}

func (r *repositoryImpl) CustomerCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM users WHERE role = ?`, enums.UserRoleCustomer).Scan(&count).Error
	return count, err
}
