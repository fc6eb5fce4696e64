package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ridelinehq/ridegear-backend/pkg/db/models"
	"github.com/ridelinehq/ridegear-backend/pkg/enums"
	pkgerrors "github.com/ridelinehq/ridegear-backend/pkg/errors"
	"github.com/ridelinehq/ridegear-backend/pkg/pagination"
)

type fakeRepo struct {
	rows []*models.Notification
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(_ context.Context, notification *models.Notification) error {
	notification.ID = uuid.New()
	notification.CreatedAt = time.Now().UTC()
	f.rows = append(f.rows, notification)
	return nil
}

func (f *fakeRepo) List(_ context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error) {
	var out []models.Notification
	for _, row := range f.rows {
		if params.UnreadOnly && row.Read {
			continue
		}
		out = append(out, *row)
	}
	return out, nil, nil
}

func (f *fakeRepo) MarkRead(_ context.Context, id uuid.UUID) (notificationMarkResult, error) {
	for _, row := range f.rows {
		if row.ID == id {
			updated := !row.Read
			row.Read = true
			return notificationMarkResult{Updated: updated, Found: true}, nil
		}
	}
	return notificationMarkResult{}, nil
}

func (f *fakeRepo) MarkAllRead(_ context.Context) (int64, error) {
	var count int64
	for _, row := range f.rows {
		if !row.Read {
			row.Read = true
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) CountUnread(_ context.Context) (int64, error) {
	var count int64
	for _, row := range f.rows {
		if !row.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	kept := f.rows[:0]
	var removed int64
	for _, row := range f.rows {
		if row.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	f.rows = kept
	return removed, nil
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestEmitOrderCreated(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(t, repo)

	order := &models.Order{ID: uuid.New(), Number: "RG-20260801-000001", TotalCents: 12957}
	if err := svc.EmitOrderCreated(context.Background(), nil, order); err != nil {
		t.Fatalf("emit: %v", err)
	}

	if len(repo.rows) != 1 {
		t.Fatalf("expected one notification, got %d", len(repo.rows))
	}
	row := repo.rows[0]
	if row.Kind != enums.NotificationKindOrderCreated {
		t.Fatalf("unexpected kind %s", row.Kind)
	}
	if row.OrderID == nil || *row.OrderID != order.ID {
		t.Fatal("expected order reference on notification")
	}
}

func TestEmitLowStock(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(t, repo)

	product := &models.Product{ID: uuid.New(), Title: "Apex Carbon Helmet", Stock: 3}
	if err := svc.EmitLowStock(context.Background(), nil, product); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if repo.rows[0].Kind != enums.NotificationKindLowStock {
		t.Fatalf("unexpected kind %s", repo.rows[0].Kind)
	}
	if repo.rows[0].ProductID == nil || *repo.rows[0].ProductID != product.ID {
		t.Fatal("expected product reference on notification")
	}
}

func TestMarkReadNotFound(t *testing.T) {
	svc := newTestService(t, &fakeRepo{})

	err := svc.MarkRead(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMarkAllReadAndUnreadCount(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(t, repo)

	for range 3 {
		order := &models.Order{ID: uuid.New(), Number: "RG-20260801-000001"}
		if err := svc.EmitOrderCreated(context.Background(), nil, order); err != nil {
			t.Fatalf("emit: %v", err)
		}
	}

	unread, err := svc.UnreadCount(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if unread != 3 {
		t.Fatalf("expected 3 unread, got %d", unread)
	}

	count, err := svc.MarkAllRead(context.Background())
	if err != nil {
		t.Fatalf("mark all: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 marked, got %d", count)
	}

	unread, err = svc.UnreadCount(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if unread != 0 {
		t.Fatalf("expected 0 unread, got %d", unread)
	}
}

func TestListRejectsBadCursor(t *testing.T) {
	svc := newTestService(t, &fakeRepo{})

	_, err := svc.List(context.Background(), ListParams{Cursor: "not-base64!!"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
