package cart

import (
	"github.com/shopspring/decimal"

	"github.com/ridelinehq/ridegear-backend/pkg/enums"
)

const (
	// flatShippingCents applies whenever the subtotal does not clear the
	// free-shipping threshold.
	flatShippingCents = 1500
	// freeShippingThresholdCents must be strictly exceeded for free shipping.
	freeShippingThresholdCents = 10000
)

var taxRate = decimal.NewFromFloat(0.08)

// Totals is the priced breakdown for a cart, all values in cents.
type Totals struct {
	SubtotalCents int `json:"subtotal_cents"`
	TaxCents      int `json:"tax_cents"`
	ShippingCents int `json:"shipping_cents"`
	DiscountCents int `json:"discount_cents"`
	TotalCents    int `json:"total_cents"`
}

// CouponQuote is a resolved coupon applied against a cart. EligibleCents is
// the portion of the subtotal the coupon scope covers.
type CouponQuote struct {
	Code          string
	Type          enums.CouponType
	Value         int
	EligibleCents int
}

// ComputeTotals prices a cart. Tax and shipping are computed on the
// pre-discount subtotal; tax truncates fractional cents while percent
// discounts round half up. An empty cart short-circuits to all zeros.
func ComputeTotals(subtotalCents int, coupon *CouponQuote) Totals {
	if subtotalCents <= 0 {
		return Totals{}
	}

	subtotal := decimal.NewFromInt(int64(subtotalCents))
	tax := int(subtotal.Mul(taxRate).Truncate(0).IntPart())

	shipping := flatShippingCents
	if subtotalCents > freeShippingThresholdCents {
		shipping = 0
	}

	discount := discountCents(subtotalCents, coupon)

	total := subtotalCents + tax + shipping - discount
	if total < 0 {
		total = 0
	}

	return Totals{
		SubtotalCents: subtotalCents,
		TaxCents:      tax,
		ShippingCents: shipping,
		DiscountCents: discount,
		TotalCents:    total,
	}
}

func discountCents(subtotalCents int, coupon *CouponQuote) int {
	if coupon == nil || coupon.Value <= 0 {
		return 0
	}

	eligible := coupon.EligibleCents
	if eligible <= 0 || eligible > subtotalCents {
		eligible = subtotalCents
	}

	switch coupon.Type {
	case enums.CouponTypePercent:
		amount := decimal.NewFromInt(int64(eligible)).
			Mul(decimal.NewFromInt(int64(coupon.Value))).
			Div(decimal.NewFromInt(100)).
			Round(0)
		return int(amount.IntPart())
	case enums.CouponTypeFixed:
		if coupon.Value > eligible {
			return eligible
		}
		return coupon.Value
	default:
		return 0
	}
}
