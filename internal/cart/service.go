package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ridelinehq/ridegear-backend/pkg/db/models"
	pkgerrors "github.com/ridelinehq/ridegear-backend/pkg/errors"
)

// Store is the persistence surface the service needs. *Repository satisfies
// it; tests swap in a fake.
type Store interface {
	WithTx(tx *gorm.DB) Store
	FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error)
	Create(ctx context.Context, cart *models.CartRecord) (*models.CartRecord, error)
	FindItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error)
	FindItemBySelection(ctx context.Context, cartID, productID uuid.UUID, variantKey string) (*models.CartItem, error)
	CreateItem(ctx context.Context, item *models.CartItem) error
	SaveItem(ctx context.Context, item *models.CartItem) error
	DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) error
	DeleteItems(ctx context.Context, cartID uuid.UUID) error
	ListItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error)
	SaveTotals(ctx context.Context, cartID uuid.UUID, couponCode *string, totals Totals) error
	MarkConverted(ctx context.Context, cartID uuid.UUID) error
	FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
}

// CouponSource resolves a coupon code against the current cart contents.
// Implemented by the coupons service; kept as an interface here so the cart
// package does not depend on it.
type CouponSource interface {
	QuoteForItems(ctx context.Context, code string, items []models.CartItem) (*CouponQuote, error)
}

// TxRunner runs a function inside a database transaction. *db.Client
// satisfies it.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes cart reads and mutations. Every mutation recomputes and
// persists totals inside the same transaction.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartDTO, error)
	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*CartDTO, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartDTO, error)
	ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) (*CartDTO, error)
	RemoveCoupon(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
}

// AddItemInput is the validated payload to add a product to the cart.
type AddItemInput struct {
	ProductID  uuid.UUID
	Quantity   int
	Selections map[string]string
}

type service struct {
	store   Store
	coupons CouponSource
	tx      TxRunner
}

// NewService constructs a cart service instance.
func NewService(store Store, coupons CouponSource, tx TxRunner) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if coupons == nil {
		return nil, fmt.Errorf("coupon source required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{store: store, coupons: coupons, tx: tx}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	cart, err := s.store.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No row until the first mutation; an empty cart is not an error.
			return &CartDTO{Items: []CartItemDTO{}}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return toCartDTO(cart), nil
}

func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartDTO, error) {
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	var out *CartDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		store := s.store.WithTx(tx)

		cart, err := s.ensureCart(ctx, store, userID)
		if err != nil {
			return err
		}

		product, err := store.FindProduct(ctx, input.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if !product.IsActive {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}

		variantKey, variantLabel, err := NormalizeSelection(product, input.Selections)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variant selection")
		}

		existing, err := store.FindItemBySelection(ctx, cart.ID, product.ID, variantKey)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
			}
			existing = nil
		}

		quantity := input.Quantity
		if existing != nil {
			quantity += existing.Quantity
		}
		if quantity > product.Stock {
			return pkgerrors.New(pkgerrors.CodeValidation, "insufficient stock").
				WithDetails(map[string]any{"available": product.Stock, "requested": quantity})
		}

		if existing != nil {
			existing.Quantity = quantity
			existing.LineTotalCents = existing.UnitPriceCents * quantity
			if err := store.SaveItem(ctx, existing); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
			}
		} else {
			item := &models.CartItem{
				CartID:         cart.ID,
				ProductID:      product.ID,
				VariantKey:     variantKey,
				Quantity:       quantity,
				UnitPriceCents: product.PriceCents,
				LineTotalCents: product.PriceCents * quantity,
				Title:          product.Title,
				Brand:          product.Brand,
			}
			if variantLabel != "" {
				item.VariantLabel = &variantLabel
			}
			if len(product.Images) > 0 {
				item.ImageURL = &product.Images[0].URL
			}
			if err := store.CreateItem(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert cart item")
			}
		}

		dto, err := s.recompute(ctx, store, cart)
		if err != nil {
			return err
		}
		out = dto
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*CartDTO, error) {
	var out *CartDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		store := s.store.WithTx(tx)

		cart, err := s.activeCart(ctx, store, userID)
		if err != nil {
			return err
		}

		item, err := store.FindItem(ctx, cart.ID, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
		}

		if quantity <= 0 {
			if err := store.DeleteItem(ctx, cart.ID, item.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
			}
		} else {
			product, err := store.FindProduct(ctx, item.ProductID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
			}
			if product != nil && quantity > product.Stock {
				return pkgerrors.New(pkgerrors.CodeValidation, "insufficient stock").
					WithDetails(map[string]any{"available": product.Stock, "requested": quantity})
			}
			item.Quantity = quantity
			item.LineTotalCents = item.UnitPriceCents * quantity
			if err := store.SaveItem(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
			}
		}

		dto, err := s.recompute(ctx, store, cart)
		if err != nil {
			return err
		}
		out = dto
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartDTO, error) {
	return s.UpdateItem(ctx, userID, itemID, 0)
}

func (s *service) ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) (*CartDTO, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code required")
	}

	var out *CartDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		store := s.store.WithTx(tx)

		cart, err := s.activeCart(ctx, store, userID)
		if err != nil {
			return err
		}

		items, err := store.ListItems(ctx, cart.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart items")
		}
		if len(items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		// Surface quote errors here; silent drops only happen on recompute.
		if _, err := s.coupons.QuoteForItems(ctx, normalized, items); err != nil {
			return err
		}

		cart.CouponCode = &normalized
		dto, err := s.recompute(ctx, store, cart)
		if err != nil {
			return err
		}
		out = dto
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) RemoveCoupon(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	var out *CartDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		store := s.store.WithTx(tx)

		cart, err := s.activeCart(ctx, store, userID)
		if err != nil {
			return err
		}

		cart.CouponCode = nil
		dto, err := s.recompute(ctx, store, cart)
		if err != nil {
			return err
		}
		out = dto
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	var out *CartDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		store := s.store.WithTx(tx)

		cart, err := s.activeCart(ctx, store, userID)
		if err != nil {
			return err
		}

		if err := store.DeleteItems(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}

		cart.CouponCode = nil
		dto, err := s.recompute(ctx, store, cart)
		if err != nil {
			return err
		}
		out = dto
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ensureCart loads the user's active cart, creating the row on first use.
func (s *service) ensureCart(ctx context.Context, store Store, userID uuid.UUID) (*models.CartRecord, error) {
	cart, err := store.FindActiveByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	created, err := store.Create(ctx, &models.CartRecord{UserID: userID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return created, nil
}

// activeCart loads the user's active cart; mutating a cart that was never
// created is a not-found.
func (s *service) activeCart(ctx context.Context, store Store, userID uuid.UUID) (*models.CartRecord, error) {
	cart, err := store.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return cart, nil
}

// recompute reprices the cart from its current items and persists the totals.
// A coupon that no longer quotes cleanly is dropped rather than failing the
// mutation that triggered the repricing.
func (s *service) recompute(ctx context.Context, store Store, cart *models.CartRecord) (*CartDTO, error) {
	items, err := store.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart items")
	}

	subtotal := 0
	for _, item := range items {
		subtotal += item.LineTotalCents
	}

	var quote *CouponQuote
	couponCode := cart.CouponCode
	if couponCode != nil && len(items) > 0 {
		quote, err = s.coupons.QuoteForItems(ctx, *couponCode, items)
		if err != nil {
			if pkgerrors.As(err) == nil {
				return nil, err
			}
			quote = nil
			couponCode = nil
		}
	}
	if len(items) == 0 {
		couponCode = nil
	}

	totals := ComputeTotals(subtotal, quote)
	if err := store.SaveTotals(ctx, cart.ID, couponCode, totals); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart totals")
	}

	cart.CouponCode = couponCode
	cart.SubtotalCents = totals.SubtotalCents
	cart.TaxCents = totals.TaxCents
	cart.ShippingCents = totals.ShippingCents
	cart.DiscountCents = totals.DiscountCents
	cart.TotalCents = totals.TotalCents
	cart.Items = items
	return toCartDTO(cart), nil
}
