package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/ridelinehq/ridegear-backend/pkg/db/models"
	"github.com/ridelinehq/ridegear-backend/pkg/enums"
	"github.com/ridelinehq/ridegear-backend/pkg/types"
)

// OrderDTO is the full order payload.
type OrderDTO struct {
	ID              uuid.UUID           `json:"id"`
	Number          string              `json:"number"`
	Status          enums.OrderStatus   `json:"status"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	PaymentRef      *string             `json:"payment_ref,omitempty"`
	CouponCode      *string             `json:"coupon_code,omitempty"`
	ShippingAddress types.Address       `json:"shipping_address"`
	SubtotalCents   int                 `json:"subtotal_cents"`
	TaxCents        int                 `json:"tax_cents"`
	ShippingCents   int                 `json:"shipping_cents"`
	DiscountCents   int                 `json:"discount_cents"`
	TotalCents      int                 `json:"total_cents"`
	Items           []OrderItemDTO      `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
}

// OrderItemDTO is one snapshot line on an order.
type OrderItemDTO struct {
	ID             uuid.UUID `json:"id"`
	ProductID      uuid.UUID `json:"product_id"`
	Title          string    `json:"title"`
	Brand          string    `json:"brand"`
	ImageURL       *string   `json:"image_url,omitempty"`
	VariantLabel   *string   `json:"variant_label,omitempty"`
	UnitPriceCents int       `json:"unit_price_cents"`
	Quantity       int       `json:"quantity"`
	LineTotalCents int       `json:"line_total_cents"`
}

// OrderSummaryDTO is the list payload.
type OrderSummaryDTO struct {
	ID         uuid.UUID         `json:"id"`
	Number     string            `json:"number"`
	Status     enums.OrderStatus `json:"status"`
	TotalCents int               `json:"total_cents"`
	ItemCount  int               `json:"item_count"`
	UserEmail  string            `json:"user_email,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// ListResult wraps an order page and the cursor for the next page.
type ListResult struct {
	Items  []OrderSummaryDTO `json:"items"`
	Cursor string            `json:"cursor"`
}

// ToOrderDTO maps an order row to its payload. Exported for the checkout
// service, which returns the freshly created order.
func ToOrderDTO(order *models.Order) *OrderDTO {
	dto := &OrderDTO{
		ID:              order.ID,
		Number:          order.Number,
		Status:          order.Status,
		PaymentMethod:   order.PaymentMethod,
		PaymentRef:      order.PaymentRef,
		CouponCode:      order.CouponCode,
		ShippingAddress: order.ShippingAddress,
		SubtotalCents:   order.SubtotalCents,
		TaxCents:        order.TaxCents,
		ShippingCents:   order.ShippingCents,
		DiscountCents:   order.DiscountCents,
		TotalCents:      order.TotalCents,
		Items:           make([]OrderItemDTO, 0, len(order.Items)),
		CreatedAt:       order.CreatedAt,
	}
	for _, item := range order.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ID:             item.ID,
			ProductID:      item.ProductID,
			Title:          item.Title,
			Brand:          item.Brand,
			ImageURL:       item.ImageURL,
			VariantLabel:   item.VariantLabel,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Quantity,
			LineTotalCents: item.LineTotalCents,
		})
	}
	return dto
}

func toOrderSummary(order models.Order, email string) OrderSummaryDTO {
	count := 0
	for _, item := range order.Items {
		count += item.Quantity
	}
	return OrderSummaryDTO{
		ID:         order.ID,
		Number:     order.Number,
		Status:     order.Status,
		TotalCents: order.TotalCents,
		ItemCount:  count,
		UserEmail:  email,
		CreatedAt:  order.CreatedAt,
	}
}
