package enums

// DiscountType distinguishes percentage coupons from fixed-amount coupons.
type DiscountType string

const (
	DiscountTypePercent DiscountType = "PERCENT"
	DiscountTypeFixed   DiscountType = "FIXED"
)

func (d DiscountType) IsValid() bool {
	switch d {
	case DiscountTypePercent, DiscountTypeFixed:
		return true
	}
	return false
}

func (d DiscountType) String() string {
	return string(d)
}
