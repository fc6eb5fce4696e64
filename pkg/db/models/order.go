package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ridelinehq/ridegear-backend/pkg/enums"
	"github.com/ridelinehq/ridegear-backend/pkg/types"
)

// Order is created once at checkout submission. Item rows and totals are an
// immutable snapshot of the cart; only Status changes afterwards, and only
// through the admin transition table.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Number          string              `gorm:"column:number;not null;uniqueIndex"`
	UserID          uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	Status          enums.OrderStatus   `gorm:"column:status;not null;default:'pending'"`
	ShippingAddress types.Address       `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;not null"`
	PaymentRef      *string             `gorm:"column:payment_ref"`
	CouponCode      *string             `gorm:"column:coupon_code"`
	SubtotalCents   int                 `gorm:"column:subtotal_cents;not null"`
	TaxCents        int                 `gorm:"column:tax_cents;not null"`
	ShippingCents   int                 `gorm:"column:shipping_cents;not null"`
	DiscountCents   int                 `gorm:"column:discount_cents;not null"`
	TotalCents      int                 `gorm:"column:total_cents;not null"`
	Items           []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem is the per-line snapshot copied from the cart at checkout.
type OrderItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	VariantKey     string    `gorm:"column:variant_key;not null;default:''"`
	Title          string    `gorm:"column:title;not null"`
	Brand          string    `gorm:"column:brand;not null"`
	ImageURL       *string   `gorm:"column:image_url"`
	VariantLabel   *string   `gorm:"column:variant_label"`
	UnitPriceCents int       `gorm:"column:unit_price_cents;not null"`
	Quantity       int       `gorm:"column:quantity;not null"`
	LineTotalCents int       `gorm:"column:line_total_cents;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
