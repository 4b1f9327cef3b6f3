package types

import "github.com/marcovilla/storefront-client/pkg/enums"

// Order is a snapshot of the cart at creation time; it has no live link back
// to the cart afterwards.
type Order struct {
	ID            int64               `json:"id"`
	Items         []OrderItem         `json:"items"`
	Address       *Address            `json:"address,omitempty"`
	TotalAmount   string              `json:"total_amount"`
	Discount      string              `json:"discount"`
	GrandTotal    string              `json:"grand_total"`
	OrderStatus   enums.OrderStatus   `json:"order_status"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	CreatedAt     string              `json:"created_at,omitempty"`
}

type OrderItem struct {
	ID             int64          `json:"id"`
	ProductVariant ProductVariant `json:"product_variant"`
	Quantity       int            `json:"quantity"`
	Price          string         `json:"price"`
}

// PaymentSession is returned by payments/; URL is the processor redirect
// target the client hands navigation off to.
type PaymentSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}
