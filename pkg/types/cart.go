package types

// Cart is the server-owned cart; the client only ever holds a read-through
// copy of it.
type Cart struct {
	ID    int64      `json:"id"`
	Items []CartItem `json:"items"`
}

// CartItem is one line of the cart. Subtotal is computed server-side
// (unit price x quantity) and trusted as given.
type CartItem struct {
	ID             int64          `json:"id"`
	ProductVariant ProductVariant `json:"product_variant"`
	Quantity       int            `json:"quantity"`
	Subtotal       string         `json:"subtotal"`
}
