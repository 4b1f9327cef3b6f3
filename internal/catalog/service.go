package catalog

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/marcovilla/storefront-client/internal/api"
	"github.com/marcovilla/storefront-client/internal/session"
	pkgerrors "github.com/marcovilla/storefront-client/pkg/errors"
	"github.com/marcovilla/storefront-client/pkg/logger"
	"github.com/marcovilla/storefront-client/pkg/types"
)

var (
	ErrVariantRequired = pkgerrors.New(pkgerrors.CodeValidation, "this product has options, pick one first")
	ErrOutOfStock      = pkgerrors.New(pkgerrors.CodeRejected, "this option is out of stock")
)

// Gateway is the slice of the API client the catalog reads through.
type Gateway interface {
	Get(ctx context.Context, path string, query url.Values, out any, opts ...api.CallOption) error
	Post(ctx context.Context, path string, body, out any, opts ...api.CallOption) error
}

// SessionReader gates review submission on authentication.
type SessionReader interface {
	Current() session.Session
}

// Service exposes the read-mostly catalog surface: products, variants,
// categories, brands, reviews.
type Service struct {
	gw       Gateway
	sessions SessionReader
	logg     *logger.Logger
}

func NewService(gw Gateway, sessions SessionReader, logg *logger.Logger) (*Service, error) {
	if gw == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "gateway required")
	}
	if sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session reader required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{gw: gw, sessions: sessions, logg: logg}, nil
}

// ProductPage is the paginated products/ envelope. Servers without
// pagination produce a bare list, which decodes into Results alone.
type ProductPage struct {
	Count    int             `json:"count"`
	Next     *string         `json:"next"`
	Previous *string         `json:"previous"`
	Results  []types.Product `json:"results"`
}

// ListProducts queries products/ with the supported filters.
func (s *Service) ListProducts(ctx context.Context, params types.ProductListParams) (*ProductPage, error) {
	query := url.Values{}
	setIfPresent(query, "search", params.Search)
	setIfPresent(query, "category", params.Category)
	setIfPresent(query, "brand", params.Brand)
	setIfPresent(query, "min_price", params.MinPrice)
	setIfPresent(query, "max_price", params.MaxPrice)
	if params.Page > 0 {
		query.Set("page", strconv.Itoa(params.Page))
	}

	var raw json.RawMessage
	if err := s.gw.Get(ctx, "products/", query, &raw); err != nil {
		return nil, err
	}
	return decodeProductPage(raw)
}

// GetProduct fetches one product with its variants.
func (s *Service) GetProduct(ctx context.Context, id int64) (*types.Product, error) {
	var product types.Product
	if err := s.gw.Get(ctx, "products/"+strconv.FormatInt(id, 10)+"/", nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Variants fetches the purchasable configurations of a product.
func (s *Service) Variants(ctx context.Context, productID int64) ([]types.ProductVariant, error) {
	var variants []types.ProductVariant
	if err := s.gw.Get(ctx, "products/"+strconv.FormatInt(productID, 10)+"/variants/", nil, &variants); err != nil {
		return nil, err
	}
	return variants, nil
}

func (s *Service) Categories(ctx context.Context) ([]types.Category, error) {
	var categories []types.Category
	if err := s.gw.Get(ctx, "categories/", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *Service) Brands(ctx context.Context) ([]types.Brand, error) {
	var brands []types.Brand
	if err := s.gw.Get(ctx, "brands/", nil, &brands); err != nil {
		return nil, err
	}
	return brands, nil
}

// Reviews lists the reviews of a product.
func (s *Service) Reviews(ctx context.Context, productID int64) ([]types.Review, error) {
	var reviews []types.Review
	if err := s.gw.Get(ctx, "product/"+strconv.FormatInt(productID, 10)+"/reviews/", nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// CreateReview posts a review; requires authentication and a 1-5 rating.
func (s *Service) CreateReview(ctx context.Context, productID int64, rating int, comment string) (*types.Review, error) {
	if !s.sessions.Current().IsAuthenticated {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "please login to leave a review")
	}
	if rating < 1 || rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	var review types.Review
	path := "product/" + strconv.FormatInt(productID, 10) + "/reviews/"
	if err := s.gw.Post(ctx, path, reviewRequest{Rating: rating, Comment: comment}, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

// ResolveVariant picks the variant to add to the cart. A product with
// configurable variants cannot be added without a selection, and a selection
// with no stock is rejected before any request is sent.
func ResolveVariant(product *types.Product, variantID int64) (*types.ProductVariant, error) {
	if product == nil || len(product.Variants) == 0 {
		return nil, ErrVariantRequired
	}
	if variantID <= 0 {
		if len(product.Variants) == 1 {
			variantID = product.Variants[0].ID
		} else {
			return nil, ErrVariantRequired
		}
	}
	for i := range product.Variants {
		if product.Variants[i].ID == variantID {
			if product.Variants[i].Stock <= 0 {
				return nil, ErrOutOfStock
			}
			return &product.Variants[i], nil
		}
	}
	return nil, ErrVariantRequired
}

// ResolveForAdd loads the product and gates the selection through
// ResolveVariant, returning the variant a cart line may reference. This is
// the step every add-to-cart path goes through before the cart call.
func (s *Service) ResolveForAdd(ctx context.Context, productID, variantID int64) (*types.ProductVariant, error) {
	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return ResolveVariant(product, variantID)
}

func decodeProductPage(raw json.RawMessage) (*ProductPage, error) {
	var page ProductPage
	if err := json.Unmarshal(raw, &page); err == nil && page.Results != nil {
		return &page, nil
	}

	var list []types.Product
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeTransport, err, "decode products payload")
	}
	return &ProductPage{Count: len(list), Results: list}, nil
}

func setIfPresent(query url.Values, key, value string) {
	if value != "" {
		query.Set(key, value)
	}
}
