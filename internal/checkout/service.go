package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ridelinehq/ridegear-backend/internal/cart"
	"github.com/ridelinehq/ridegear-backend/internal/notifications"
	"github.com/ridelinehq/ridegear-backend/internal/orders"
	"github.com/ridelinehq/ridegear-backend/internal/payments"
	"github.com/ridelinehq/ridegear-backend/pkg/config"
	"github.com/ridelinehq/ridegear-backend/pkg/db"
	"github.com/ridelinehq/ridegear-backend/pkg/db/models"
	"github.com/ridelinehq/ridegear-backend/pkg/enums"
	pkgerrors "github.com/ridelinehq/ridegear-backend/pkg/errors"
	"github.com/ridelinehq/ridegear-backend/pkg/types"
)

const numberAttempts = 5

// CouponRedeemer is the slice of the coupons service checkout needs.
type CouponRedeemer interface {
	QuoteForItems(ctx context.Context, code string, items []models.CartItem) (*cart.CouponQuote, error)
	RedeemForOrder(ctx context.Context, tx *gorm.DB, code string) error
}

// TxRunner runs a function inside a database transaction. *db.Client
// satisfies it.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service converts the active cart into an order.
type Service interface {
	Submit(ctx context.Context, userID uuid.UUID, input SubmitInput) (*orders.OrderDTO, error)
}

// SubmitInput is the validated checkout payload.
type SubmitInput struct {
	ShippingAddress types.Address
	PaymentMethod   enums.PaymentMethod
}

type service struct {
	carts     cart.Store
	orders    orders.Repository
	inventory Inventory
	coupons   CouponRedeemer
	gateway   payments.Gateway
	notifier  notifications.Service
	tx        TxRunner
	cfg       config.CheckoutConfig
	now       func() time.Time
}

// NewService constructs a checkout service instance.
func NewService(
	carts cart.Store,
	ordersRepo orders.Repository,
	inventory Inventory,
	coupons CouponRedeemer,
	gateway payments.Gateway,
	notifier notifications.Service,
	tx TxRunner,
	cfg config.CheckoutConfig,
) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if inventory == nil {
		return nil, fmt.Errorf("inventory required")
	}
	if coupons == nil {
		return nil, fmt.Errorf("coupon redeemer required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifications service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{
		carts:     carts,
		orders:    ordersRepo,
		inventory: inventory,
		coupons:   coupons,
		gateway:   gateway,
		notifier:  notifier,
		tx:        tx,
		cfg:       cfg,
		now:       time.Now,
	}, nil
}

// Submit prices the cart one final time, reserves stock, charges the card,
// and writes the order, all in one transaction. Any failure, including a
// declined charge, rolls the stock reservation back.
func (s *service) Submit(ctx context.Context, userID uuid.UUID, input SubmitInput) (*orders.OrderDTO, error) {
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}
	input.ShippingAddress.Normalize()

	var out *orders.OrderDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)
		ordersRepo := s.orders.WithTx(tx)
		inventory := s.inventory.WithTx(tx)

		record, err := carts.FindActiveByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		items, err := carts.ListItems(ctx, record.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart items")
		}
		if len(items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		subtotal := 0
		for _, item := range items {
			subtotal += item.LineTotalCents
		}
		var quote *cart.CouponQuote
		if record.CouponCode != nil {
			quote, err = s.coupons.QuoteForItems(ctx, *record.CouponCode, items)
			if err != nil {
				return err
			}
		}
		totals := cart.ComputeTotals(subtotal, quote)

		lowStock, err := s.reserveStock(ctx, inventory, items)
		if err != nil {
			return err
		}

		var paymentRef *string
		if input.PaymentMethod == enums.PaymentMethodCard {
			result, chargeErr := s.gateway.Charge(ctx, payments.ChargeInput{
				UserID:      userID,
				AmountCents: totals.TotalCents,
				Descriptor:  "RideGear order",
			})
			if chargeErr != nil {
				return chargeErr
			}
			paymentRef = &result.Reference
		}

		order, err := s.createOrder(ctx, ordersRepo, userID, record, items, totals, input, paymentRef)
		if err != nil {
			return err
		}

		if record.CouponCode != nil {
			if err := s.coupons.RedeemForOrder(ctx, tx, *record.CouponCode); err != nil {
				return err
			}
		}
		if err := carts.MarkConverted(ctx, record.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "convert cart")
		}

		if err := s.notifier.EmitOrderCreated(ctx, tx, order); err != nil {
			return err
		}
		for _, product := range lowStock {
			if err := s.notifier.EmitLowStock(ctx, tx, product); err != nil {
				return err
			}
		}

		out = orders.ToOrderDTO(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// reserveStock decrements stock for every line under the guard and returns
// the products that crossed the low-stock threshold.
func (s *service) reserveStock(ctx context.Context, inventory Inventory, items []models.CartItem) ([]*models.Product, error) {
	var lowStock []*models.Product
	for _, item := range items {
		ok, err := inventory.DecrementStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve stock")
		}
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock").
				WithDetails(map[string]any{"product_id": item.ProductID, "title": item.Title})
		}
		product, err := inventory.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if product.Stock <= s.cfg.LowStockThreshold {
			lowStock = append(lowStock, product)
		}
	}
	return lowStock, nil
}

func (s *service) createOrder(
	ctx context.Context,
	ordersRepo orders.Repository,
	userID uuid.UUID,
	record *models.CartRecord,
	items []models.CartItem,
	totals cart.Totals,
	input SubmitInput,
	paymentRef *string,
) (*models.Order, error) {
	orderItems := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		orderItems = append(orderItems, models.OrderItem{
			ProductID:      item.ProductID,
			VariantKey:     item.VariantKey,
			Title:          item.Title,
			Brand:          item.Brand,
			ImageURL:       item.ImageURL,
			VariantLabel:   item.VariantLabel,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Quantity,
			LineTotalCents: item.LineTotalCents,
		})
	}

	number, err := s.allocateNumber(ctx, ordersRepo)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		Number:          number,
		UserID:          userID,
		Status:          enums.OrderStatusPending,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
		PaymentRef:      paymentRef,
		CouponCode:      record.CouponCode,
		SubtotalCents:   totals.SubtotalCents,
		TaxCents:        totals.TaxCents,
		ShippingCents:   totals.ShippingCents,
		DiscountCents:   totals.DiscountCents,
		TotalCents:      totals.TotalCents,
		Items:           orderItems,
	}
	if err := ordersRepo.Create(ctx, order); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order number collision")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert order")
	}
	return order, nil
}

// allocateNumber picks a number no existing order uses. The unique index on
// orders.number still backs the insert; a retried insert inside an aborted
// transaction cannot recover on Postgres, so the check runs before writing.
func (s *service) allocateNumber(ctx context.Context, ordersRepo orders.Repository) (string, error) {
	for attempt := 0; attempt < numberAttempts; attempt++ {
		number := GenerateOrderNumber(s.now(), nil)
		taken, err := ordersRepo.NumberExists(ctx, number)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check order number")
		}
		if !taken {
			return number, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeDependency, "could not allocate order number")
}
