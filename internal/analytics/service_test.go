package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ridelinehq/ridegear-backend/pkg/enums"
	pkgerrors "github.com/ridelinehq/ridegear-backend/pkg/errors"
)

type fakeRepo struct {
	summary   RevenueSummaryRow
	daily     []DailyRevenueRow
	statuses  []StatusCountRow
	top       []TopProductRow
	low       []LowStockRow
	customers int64

	since     time.Time
	threshold int
}

func (f *fakeRepo) RevenueSummary(_ context.Context, since time.Time) (*RevenueSummaryRow, error) {
	f.since = since
	row := f.summary
	return &row, nil
}

func (f *fakeRepo) RevenueByDay(_ context.Context, _ time.Time) ([]DailyRevenueRow, error) {
	return f.daily, nil
}

func (f *fakeRepo) OrderStatusCounts(_ context.Context) ([]StatusCountRow, error) {
	return f.statuses, nil
}

func (f *fakeRepo) TopProducts(_ context.Context, _ time.Time, _ int) ([]TopProductRow, error) {
	return f.top, nil
}

func (f *fakeRepo) LowStockProducts(_ context.Context, threshold int) ([]LowStockRow, error) {
	f.threshold = threshold
	return f.low, nil
}

func (f *fakeRepo) CustomerCount(_ context.Context) (int64, error) {
	return f.customers, nil
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestDashboardAssemblesPayload(t *testing.T) {
	productID := uuid.New()
	repo := &fakeRepo{
		summary: RevenueSummaryRow{RevenueCents: 259900, OrderCount: 8},
		daily: []DailyRevenueRow{
			{Day: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), RevenueCents: 129950, OrderCount: 4},
			{Day: time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC), RevenueCents: 129950, OrderCount: 4},
		},
		statuses: []StatusCountRow{
			{Status: enums.OrderStatusPending, Count: 2},
			{Status: enums.OrderStatusDelivered, Count: 6},
		},
		top:       []TopProductRow{{ProductID: productID, Title: "Apex Carbon Helmet", Units: 5, RevenueCents: 149975}},
		low:       []LowStockRow{{ProductID: productID, Title: "Apex Carbon Helmet", Stock: 2}},
		customers: 42,
	}
	svc := newTestService(t, repo)

	dto, err := svc.Dashboard(context.Background(), DashboardParams{Days: 7, LowStockThreshold: 5})
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dto.WindowDays != 7 {
		t.Fatalf("expected 7 day window, got %d", dto.WindowDays)
	}
	if dto.RevenueCents != 259900 || dto.OrderCount != 8 {
		t.Fatalf("unexpected summary: %d / %d", dto.RevenueCents, dto.OrderCount)
	}
	if dto.CustomerCount != 42 {
		t.Fatalf("expected 42 customers, got %d", dto.CustomerCount)
	}
	if dto.OrdersByStatus[enums.OrderStatusDelivered] != 6 {
		t.Fatalf("unexpected status counts: %v", dto.OrdersByStatus)
	}
	if len(dto.RevenueByDay) != 2 || dto.RevenueByDay[0].Day != "2026-08-01" {
		t.Fatalf("unexpected daily series: %v", dto.RevenueByDay)
	}
	if len(dto.TopProducts) != 1 || dto.TopProducts[0].Units != 5 {
		t.Fatalf("unexpected top products: %v", dto.TopProducts)
	}
	if repo.threshold != 5 {
		t.Fatalf("expected threshold 5 to reach the repo, got %d", repo.threshold)
	}
}

func TestDashboardAverageRoundsHalfUp(t *testing.T) {
	repo := &fakeRepo{summary: RevenueSummaryRow{RevenueCents: 100, OrderCount: 3}}
	svc := newTestService(t, repo)

	dto, err := svc.Dashboard(context.Background(), DashboardParams{})
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	// 100 / 3 = 33.33 rounds to 33.
	if dto.AvgOrderCents != 33 {
		t.Fatalf("expected avg 33, got %d", dto.AvgOrderCents)
	}
}

func TestDashboardZeroOrders(t *testing.T) {
	svc := newTestService(t, &fakeRepo{})

	dto, err := svc.Dashboard(context.Background(), DashboardParams{})
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dto.AvgOrderCents != 0 {
		t.Fatalf("expected avg 0 with no orders, got %d", dto.AvgOrderCents)
	}
	if dto.WindowDays != defaultWindowDays {
		t.Fatalf("expected default window, got %d", dto.WindowDays)
	}
}

func TestDashboardRejectsOversizedWindow(t *testing.T) {
	svc := newTestService(t, &fakeRepo{})

	_, err := svc.Dashboard(context.Background(), DashboardParams{Days: 366})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
