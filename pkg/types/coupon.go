package types

import "github.com/marcovilla/storefront-client/pkg/enums"

// Coupon is the discount rule returned by coupons/{code}/validate/. It is
// held only for the duration of a checkout attempt.
type Coupon struct {
	Code         string             `json:"code"`
	DiscountType enums.DiscountType `json:"discount_type"`
	Value        string             `json:"value"`
	MinAmount    string             `json:"min_amount,omitempty"`
	ExpiryDate   string             `json:"expiry_date,omitempty"`
	UsageLimit   int                `json:"usage_limit,omitempty"`
}

// CouponValidation is the validation endpoint's envelope.
type CouponValidation struct {
	Message string `json:"message"`
	Coupon  Coupon `json:"coupon"`
}
