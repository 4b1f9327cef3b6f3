package pricing

import (
	"github.com/marcovilla/storefront-client/pkg/enums"
	pkgerrors "github.com/marcovilla/storefront-client/pkg/errors"
	"github.com/marcovilla/storefront-client/pkg/types"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// Quote is the derived cart total breakdown. All values are exact decimals;
// Display rounds them to two places for presentation only.
type Quote struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Display holds the 2-decimal formatted fields.
type Display struct {
	Subtotal string
	Discount string
	Total    string
}

// Compute derives subtotal, discount, and total from the cart lines and the
// optionally active coupon. It is pure: no I/O, no state.
//
// Line subtotals are trusted as the server provides them; the client never
// recomputes unit price x quantity. A FIXED coupon larger than the subtotal
// produces a negative total: the hosted frontend does not clamp, so neither
// does this.
func Compute(items []types.CartItem, coupon *types.Coupon) (Quote, error) {
	subtotal := decimal.Zero
	for _, item := range items {
		amount, err := decimal.NewFromString(item.Subtotal)
		if err != nil {
			return Quote{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse item subtotal")
		}
		subtotal = subtotal.Add(amount)
	}

	discount := decimal.Zero
	if coupon != nil {
		value, err := decimal.NewFromString(coupon.Value)
		if err != nil {
			return Quote{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse coupon value")
		}
		switch coupon.DiscountType {
		case enums.DiscountTypePercent:
			discount = subtotal.Mul(value).Div(oneHundred)
		case enums.DiscountTypeFixed:
			discount = value
		default:
			return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown discount type "+coupon.DiscountType.String())
		}
	}

	return Quote{
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal.Sub(discount),
	}, nil
}

// Format renders the quote with two decimal places for display.
func (q Quote) Format() Display {
	return Display{
		Subtotal: q.Subtotal.StringFixed(2),
		Discount: q.Discount.StringFixed(2),
		Total:    q.Total.StringFixed(2),
	}
}
