package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/ridelinehq/ridegear-backend/internal/orders"
	"github.com/ridelinehq/ridegear-backend/pkg/db/models"
	"github.com/ridelinehq/ridegear-backend/pkg/enums"
	"github.com/ridelinehq/ridegear-backend/pkg/logger"
)

const defaultPendingOrderTTL = 72 * time.Hour

type statusNotifier interface {
	EmitOrderStatus(ctx context.Context, tx *gorm.DB, order *models.Order, from, to enums.OrderStatus) error
}

// OrderExpiryJobParams configure the pending order expiry job.
type OrderExpiryJobParams struct {
	Logger   *logger.Logger
	DB       txRunner
	Orders   orders.Repository
	Notifier statusNotifier
	TTL      time.Duration
}

// NewOrderExpiryJob builds the job that cancels pending orders whose
// payment never settled and returns their stock.
func NewOrderExpiryJob(params OrderExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultPendingOrderTTL
	}
	return &orderExpiryJob{
		logg:     params.Logger,
		db:       params.DB,
		orders:   params.Orders,
		notifier: params.Notifier,
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

type orderExpiryJob struct {
	logg     *logger.Logger
	db       txRunner
	orders   orders.Repository
	notifier statusNotifier
	ttl      time.Duration
	now      func() time.Time
}

func (j *orderExpiryJob) Name() string { return "order-expiry" }

func (j *orderExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.ttl)
	stale, err := j.orders.ListPendingOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("query stale pending orders: %w", err)
	}

	var errs error
	canceled := 0
	for _, order := range stale {
		if err := j.expireOrder(ctx, order.ID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("expire order %s: %w", order.Number, err))
			continue
		}
		canceled++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":   cutoff,
		"canceled": canceled,
	})
	j.logg.Info(logCtx, "order expiry loop complete")
	return errs
}

// expireOrder cancels a single order in its own transaction so one bad row
// does not block the rest of the batch.
func (j *orderExpiryJob) expireOrder(ctx context.Context, orderID uuid.UUID) error {
	return j.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := j.orders.WithTx(tx)

		current, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		// A payment may have landed between the list query and this tx.
		if current.Status != enums.OrderStatusPending {
			return nil
		}

		if err := repo.UpdateStatus(ctx, orderID, enums.OrderStatusCanceled); err != nil {
			return err
		}
		for _, item := range current.Items {
			if err := repo.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return j.notifier.EmitOrderStatus(ctx, tx, current, enums.OrderStatusPending, enums.OrderStatusCanceled)
	})
}
