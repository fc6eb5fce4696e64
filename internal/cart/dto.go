package cart

import (
	"github.com/google/uuid"

	"github.com/ridelinehq/ridegear-backend/pkg/db/models"
)

// CartDTO is the cart payload returned by every cart operation.
type CartDTO struct {
	ID         uuid.UUID     `json:"id"`
	Items      []CartItemDTO `json:"items"`
	CouponCode *string       `json:"coupon_code,omitempty"`
	Totals
}

// CartItemDTO is a single priced line in the cart.
type CartItemDTO struct {
	ID             uuid.UUID `json:"id"`
	ProductID      uuid.UUID `json:"product_id"`
	VariantKey     string    `json:"variant_key,omitempty"`
	VariantLabel   *string   `json:"variant_label,omitempty"`
	Title          string    `json:"title"`
	Brand          string    `json:"brand"`
	ImageURL       *string   `json:"image_url,omitempty"`
	UnitPriceCents int       `json:"unit_price_cents"`
	Quantity       int       `json:"quantity"`
	LineTotalCents int       `json:"line_total_cents"`
}

func toCartDTO(cart *models.CartRecord) *CartDTO {
	dto := &CartDTO{
		ID:         cart.ID,
		Items:      make([]CartItemDTO, 0, len(cart.Items)),
		CouponCode: cart.CouponCode,
		Totals: Totals{
			SubtotalCents: cart.SubtotalCents,
			TaxCents:      cart.TaxCents,
			ShippingCents: cart.ShippingCents,
			DiscountCents: cart.DiscountCents,
			TotalCents:    cart.TotalCents,
		},
	}
	for _, item := range cart.Items {
		dto.Items = append(dto.Items, CartItemDTO{
			ID:             item.ID,
			ProductID:      item.ProductID,
			VariantKey:     item.VariantKey,
			VariantLabel:   item.VariantLabel,
			Title:          item.Title,
			Brand:          item.Brand,
			ImageURL:       item.ImageURL,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Quantity,
			LineTotalCents: item.LineTotalCents,
		})
	}
	return dto
}
