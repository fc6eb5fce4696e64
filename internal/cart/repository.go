package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ridelinehq/ridegear-backend/pkg/db/models"
	"github.com/ridelinehq/ridegear-backend/pkg/enums"
)

// Repository handles cart persistence. Each user holds at most one active
// cart, enforced by a partial unique index on (user_id) WHERE status='active'.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction. It returns
// the Store interface so the service can swap stores under test.
func (r *Repository) WithTx(tx *gorm.DB) Store {
	return &Repository{db: tx}
}

// FindActiveByUser loads the user's active cart with items in insertion order.
func (r *Repository) FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error) {
	var cart models.CartRecord
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("user_id = ? AND status = ?", userID, enums.CartStatusActive).
		First(&cart).
		Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// Create inserts a new cart row.
func (r *Repository) Create(ctx context.Context, cart *models.CartRecord) (*models.CartRecord, error) {
	if err := r.db.WithContext(ctx).Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

// FindItem loads a single item scoped to the cart.
func (r *Repository) FindItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		First(&item).
		Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindItemBySelection locates the merge target for (product, variant key).
func (r *Repository) FindItemBySelection(ctx context.Context, cartID, productID uuid.UUID, variantKey string) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ? AND variant_key = ?", cartID, productID, variantKey).
		First(&item).
		Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem inserts a cart item.
func (r *Repository) CreateItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// SaveItem persists quantity and line-total changes on an item.
func (r *Repository) SaveItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// DeleteItem removes a single item from the cart.
func (r *Repository) DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Delete(&models.CartItem{}).
		Error
}

// DeleteItems empties the cart.
func (r *Repository) DeleteItems(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{}).
		Error
}

// ListItems reloads the cart's items after a mutation.
func (r *Repository) ListItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("created_at ASC").
		Find(&items).
		Error
	return items, err
}

// SaveTotals writes the recomputed totals and coupon code onto the cart row.
func (r *Repository) SaveTotals(ctx context.Context, cartID uuid.UUID, couponCode *string, totals Totals) error {
	return r.db.WithContext(ctx).
		Model(&models.CartRecord{}).
		Where("id = ?", cartID).
		Updates(map[string]any{
			"coupon_code":    couponCode,
			"subtotal_cents": totals.SubtotalCents,
			"tax_cents":      totals.TaxCents,
			"shipping_cents": totals.ShippingCents,
			"discount_cents": totals.DiscountCents,
			"total_cents":    totals.TotalCents,
		}).
		Error
}

// MarkConverted flips the cart out of active state once an order is placed.
func (r *Repository) MarkConverted(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.CartRecord{}).
		Where("id = ?", cartID).
		Update("status", enums.CartStatusConverted).
		Error
}

// FindProduct loads the product with variants and gallery for snapshotting
// into a cart line.
func (r *Repository) FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Variants").
		First(&product, "id = ?", productID).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}
