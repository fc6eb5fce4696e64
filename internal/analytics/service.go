package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ridelinehq/ridegear-backend/pkg/enums"
	pkgerrors "github.com/ridelinehq/ridegear-backend/pkg/errors"
)

const (
	defaultWindowDays = 30
	maxWindowDays     = 365
	topProductsLimit  = 10
)

// Service assembles the admin dashboard payload.
type Service interface {
	Dashboard(ctx context.Context, params DashboardParams) (*DashboardDTO, error)
}

// DashboardParams configures the reporting window.
type DashboardParams struct {
	Days              int
	LowStockThreshold int
}

// DashboardDTO is the combined analytics payload.
type DashboardDTO struct {
	WindowDays     int                          `json:"window_days"`
	RevenueCents   int64                        `json:"revenue_cents"`
	OrderCount     int64                        `json:"order_count"`
	AvgOrderCents  int64                        `json:"avg_order_cents"`
	CustomerCount  int64                        `json:"customer_count"`
	OrdersByStatus map[enums.OrderStatus]int64  `json:"orders_by_status"`
	RevenueByDay   []DailyRevenueDTO            `json:"revenue_by_day"`
	TopProducts    []TopProductDTO              `json:"top_products"`
	LowStock       []LowStockDTO                `json:"low_stock"`
}

// DailyRevenueDTO is one day's bucket in the revenue series.
type DailyRevenueDTO struct {
	Day          string `json:"day"`
	RevenueCents int64  `json:"revenue_cents"`
	OrderCount   int64  `json:"order_count"`
}

// TopProductDTO ranks a product by units sold in the window.
type TopProductDTO struct {
	ProductID    uuid.UUID `json:"product_id"`
	Title        string    `json:"title"`
	Units        int64     `json:"units"`
	RevenueCents int64     `json:"revenue_cents"`
}

// LowStockDTO flags a product that needs restocking.
type LowStockDTO struct {
	ProductID uuid.UUID `json:"product_id"`
	Title     string    `json:"title"`
	Stock     int       `json:"stock"`
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs an analytics service instance.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("analytics repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Dashboard(ctx context.Context, params DashboardParams) (*DashboardDTO, error) {
	days := params.Days
	if days <= 0 {
		days = defaultWindowDays
	}
	if days > maxWindowDays {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "window cannot exceed 365 days")
	}
	since := s.now().UTC().AddDate(0, 0, -days)

	summary, err := s.repo.RevenueSummary(ctx, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revenue summary")
	}
	daily, err := s.repo.RevenueByDay(ctx, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revenue by day")
	}
	statuses, err := s.repo.OrderStatusCounts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order status counts")
	}
	top, err := s.repo.TopProducts(ctx, since, topProductsLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "top products")
	}
	low, err := s.repo.LowStockProducts(ctx, params.LowStockThreshold)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "low stock products")
	}
	customers, err := s.repo.CustomerCount(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "customer count")
	}

	dto := &DashboardDTO{
		WindowDays:     days,
		RevenueCents:   summary.RevenueCents,
		OrderCount:     summary.OrderCount,
		AvgOrderCents:  averageOrderCents(summary.RevenueCents, summary.OrderCount),
		CustomerCount:  customers,
		OrdersByStatus: map[enums.OrderStatus]int64{},
		RevenueByDay:   make([]DailyRevenueDTO, 0, len(daily)),
		TopProducts:    make([]TopProductDTO, 0, len(top)),
		LowStock:       make([]LowStockDTO, 0, len(low)),
	}
	for _, row := range statuses {
		dto.OrdersByStatus[row.Status] = row.Count
	}
	for _, row := range daily {
		dto.RevenueByDay = append(dto.RevenueByDay, DailyRevenueDTO{
			Day:          row.Day.UTC().Format("2006-01-02"),
			RevenueCents: row.RevenueCents,
			OrderCount:   row.OrderCount,
		})
	}
	for _, row := range top {
		dto.TopProducts = append(dto.TopProducts, TopProductDTO(row))
	}
	for _, row := range low {
		dto.LowStock = append(dto.LowStock, LowStockDTO(row))
	}
	return dto, nil
}

// averageOrderCents rounds half up to the nearest cent.
func averageOrderCents(revenueCents, orders int64) int64 {
	if orders == 0 {
		return 0
	}
	avg := decimal.NewFromInt(revenueCents).Div(decimal.NewFromInt(orders)).Round(0)
	return avg.IntPart()
}
