package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ridelinehq/ridegear-backend/pkg/db/models"
	"github.com/ridelinehq/ridegear-backend/pkg/enums"
	pkgerrors "github.com/ridelinehq/ridegear-backend/pkg/errors"
	"github.com/ridelinehq/ridegear-backend/pkg/pagination"
)

// Service defines the dashboard notification feed plus the emit helpers other
// services call from inside their transactions.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context) (int64, error)
	UnreadCount(ctx context.Context) (int64, error)

	EmitOrderCreated(ctx context.Context, tx *gorm.DB, order *models.Order) error
	EmitOrderStatus(ctx context.Context, tx *gorm.DB, order *models.Order, from, to enums.OrderStatus) error
	EmitLowStock(ctx context.Context, tx *gorm.DB, product *models.Product) error

	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type service struct {
	repo Repository
}

// ListParams configures pagination for the notification feed.
type ListParams struct {
	Limit      int
	Cursor     string
	UnreadOnly bool
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []models.Notification `json:"items"`
	Cursor string                `json:"cursor"`
}

// NewService wires notifications dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listNotificationsParams{
		Limit:      params.Limit,
		UnreadOnly: params.UnreadOnly,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}

	return &ListResult{
		Items:  rows,
		Cursor: cursor,
	}, nil
}

func (s *service) MarkRead(ctx context.Context, notificationID uuid.UUID) error {
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, notificationID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context) (int64, error) {
	count, err := s.repo.MarkAllRead(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}

func (s *service) UnreadCount(ctx context.Context) (int64, error) {
	count, err := s.repo.CountUnread(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread notifications")
	}
	return count, nil
}

func (s *service) EmitOrderCreated(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	notification := &models.Notification{
		Kind:    enums.NotificationKindOrderCreated,
		Title:   fmt.Sprintf("New order %s", order.Number),
		Body:    fmt.Sprintf("Order %s placed for $%.2f", order.Number, float64(order.TotalCents)/100),
		OrderID: &order.ID,
	}
	if err := s.repo.WithTx(tx).Create(ctx, notification); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order created notification")
	}
	return nil
}

func (s *service) EmitOrderStatus(ctx context.Context, tx *gorm.DB, order *models.Order, from, to enums.OrderStatus) error {
	notification := &models.Notification{
		Kind:    enums.NotificationKindOrderStatus,
		Title:   fmt.Sprintf("Order %s %s", order.Number, to),
		Body:    fmt.Sprintf("Order %s moved from %s to %s", order.Number, from, to),
		OrderID: &order.ID,
	}
	if err := s.repo.WithTx(tx).Create(ctx, notification); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order status notification")
	}
	return nil
}

func (s *service) EmitLowStock(ctx context.Context, tx *gorm.DB, product *models.Product) error {
	notification := &models.Notification{
		Kind:      enums.NotificationKindLowStock,
		Title:     fmt.Sprintf("Low stock: %s", product.Title),
		Body:      fmt.Sprintf("%s has %d units left", product.Title, product.Stock),
		ProductID: &product.ID,
	}
	if err := s.repo.WithTx(tx).Create(ctx, notification); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit low stock notification")
	}
	return nil
}

func (s *service) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	count, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "prune notifications")
	}
	return count, nil
}
