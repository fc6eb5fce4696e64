package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ridelinehq/ridegear-backend/pkg/enums"
)

// CartRecord is the single active cart held per user. Totals are recomputed
// inside the same transaction as every item or coupon mutation and are never
// stored stale: TotalCents = max(0, subtotal + tax + shipping - discount).
type CartRecord struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID        `gorm:"column:user_id;type:uuid;not null;index"`
	Status        enums.CartStatus `gorm:"column:status;not null;default:'active'"`
	CouponCode    *string          `gorm:"column:coupon_code"`
	SubtotalCents int              `gorm:"column:subtotal_cents;not null;default:0"`
	TaxCents      int              `gorm:"column:tax_cents;not null;default:0"`
	ShippingCents int              `gorm:"column:shipping_cents;not null;default:0"`
	DiscountCents int              `gorm:"column:discount_cents;not null;default:0"`
	TotalCents    int              `gorm:"column:total_cents;not null;default:0"`
	Items         []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// CartItem is a price/display snapshot taken when the product was added.
// VariantKey is the normalized selection ("Size:M|Color:Red", empty when the
// product has no variants); (cart_id, product_id, variant_key) is unique so
// adding the same selection twice merges quantities.
type CartItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID         uuid.UUID `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:idx_cart_product_variant"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_cart_product_variant"`
	VariantKey     string    `gorm:"column:variant_key;not null;default:'';uniqueIndex:idx_cart_product_variant"`
	Quantity       int       `gorm:"column:quantity;not null"`
	UnitPriceCents int       `gorm:"column:unit_price_cents;not null"`
	LineTotalCents int       `gorm:"column:line_total_cents;not null"`
	Title          string    `gorm:"column:title;not null"`
	Brand          string    `gorm:"column:brand;not null"`
	ImageURL       *string   `gorm:"column:image_url"`
	VariantLabel   *string   `gorm:"column:variant_label"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
