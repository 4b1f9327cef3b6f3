package types

// Product is the catalog entry returned by products/ and products/{id}/.
// Price fields arrive as decimal strings and are never recomputed locally.
type Product struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Slug        string           `json:"slug"`
	Description string           `json:"description,omitempty"`
	Category    string           `json:"category,omitempty"`
	Brand       string           `json:"brand,omitempty"`
	BasePrice   string           `json:"base_price"`
	Stock       int              `json:"stock"`
	IsActive    bool             `json:"is_active"`
	Variants    []ProductVariant `json:"variants,omitempty"`
}

// ProductVariant is the purchasable SKU-level configuration a cart line
// actually references.
type ProductVariant struct {
	ID    int64  `json:"id"`
	SKU   string `json:"sku"`
	Name  string `json:"name"`
	Price string `json:"price"`
	Stock int    `json:"stock"`
}

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

type Brand struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type Review struct {
	ID        int64  `json:"id"`
	User      string `json:"user,omitempty"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// ProductListParams are the supported products/ query filters.
type ProductListParams struct {
	Search   string
	Category string
	Brand    string
	MinPrice string
	MaxPrice string
	Page     int
}
