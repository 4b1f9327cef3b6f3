package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/marcovilla/storefront-client/internal/api"
	"github.com/marcovilla/storefront-client/internal/session"
	pkgerrors "github.com/marcovilla/storefront-client/pkg/errors"
	"github.com/marcovilla/storefront-client/pkg/logger"
	"github.com/marcovilla/storefront-client/pkg/types"
)

type stubGateway struct {
	lastPath  string
	lastQuery url.Values
	response  string
	posted    any
}

func (g *stubGateway) Get(_ context.Context, path string, query url.Values, out any, _ ...api.CallOption) error {
	g.lastPath = path
	g.lastQuery = query
	if out != nil && g.response != "" {
		return json.Unmarshal([]byte(g.response), out)
	}
	return nil
}

func (g *stubGateway) Post(_ context.Context, path string, body, out any, _ ...api.CallOption) error {
	g.lastPath = path
	g.posted = body
	if out != nil && g.response != "" {
		return json.Unmarshal([]byte(g.response), out)
	}
	return nil
}

type stubSession struct {
	authenticated bool
}

func (s *stubSession) Current() session.Session {
	return session.Session{IsAuthenticated: s.authenticated}
}

func newCatalog(t *testing.T, gw *stubGateway, authenticated bool) *Service {
	t.Helper()
	svc, err := NewService(gw, &stubSession{authenticated: authenticated}, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestListProductsBuildsFilterQuery(t *testing.T) {
	gw := &stubGateway{response: `{"count":0,"results":[]}`}
	svc := newCatalog(t, gw, false)

	_, err := svc.ListProducts(context.Background(), types.ProductListParams{
		Search:   "hoodie",
		Category: "apparel",
		Page:     2,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if gw.lastPath != "products/" {
		t.Fatalf("unexpected path %q", gw.lastPath)
	}
	if gw.lastQuery.Get("search") != "hoodie" || gw.lastQuery.Get("category") != "apparel" {
		t.Fatalf("unexpected query %v", gw.lastQuery)
	}
	if gw.lastQuery.Get("page") != "2" {
		t.Fatalf("expected page=2, got %v", gw.lastQuery)
	}
	if gw.lastQuery.Has("brand") || gw.lastQuery.Has("min_price") {
		t.Fatalf("empty filters must be omitted, got %v", gw.lastQuery)
	}
}

func TestDecodeProductPageAcceptsEnvelopeAndBareList(t *testing.T) {
	envelope, err := decodeProductPage(json.RawMessage(`{"count":12,"next":"/products/?page=2","results":[{"id":1,"name":"Hoodie"}]}`))
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Count != 12 || len(envelope.Results) != 1 || envelope.Next == nil {
		t.Fatalf("unexpected page %+v", envelope)
	}

	bare, err := decodeProductPage(json.RawMessage(`[{"id":1,"name":"Hoodie"},{"id":2,"name":"Cap"}]`))
	if err != nil {
		t.Fatalf("decode bare list: %v", err)
	}
	if bare.Count != 2 || len(bare.Results) != 2 {
		t.Fatalf("unexpected page %+v", bare)
	}
}

func TestResolveVariantAutoSelectsSingleOption(t *testing.T) {
	product := &types.Product{Variants: []types.ProductVariant{
		{ID: 11, Stock: 3},
	}}

	variant, err := ResolveVariant(product, 0)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if variant.ID != 11 {
		t.Fatalf("expected sole variant auto-selected, got %+v", variant)
	}
}

func TestResolveVariantRequiresChoiceAmongMany(t *testing.T) {
	product := &types.Product{Variants: []types.ProductVariant{
		{ID: 11, Stock: 3},
		{ID: 12, Stock: 3},
	}}

	if _, err := ResolveVariant(product, 0); !errors.Is(err, ErrVariantRequired) {
		t.Fatalf("expected ErrVariantRequired, got %v", err)
	}

	variant, err := ResolveVariant(product, 12)
	if err != nil {
		t.Fatalf("resolve explicit choice: %v", err)
	}
	if variant.ID != 12 {
		t.Fatalf("unexpected variant %+v", variant)
	}
}

func TestResolveVariantRejectsOutOfStock(t *testing.T) {
	product := &types.Product{Variants: []types.ProductVariant{
		{ID: 11, Stock: 0},
	}}

	if _, err := ResolveVariant(product, 11); !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("expected ErrOutOfStock, got %v", err)
	}
}

func TestResolveVariantWithoutVariants(t *testing.T) {
	if _, err := ResolveVariant(&types.Product{}, 0); !errors.Is(err, ErrVariantRequired) {
		t.Fatalf("expected ErrVariantRequired for variant-less product, got %v", err)
	}
	if _, err := ResolveVariant(nil, 5); !errors.Is(err, ErrVariantRequired) {
		t.Fatalf("expected ErrVariantRequired for nil product, got %v", err)
	}
}

func TestResolveForAddFetchesProductAndGates(t *testing.T) {
	gw := &stubGateway{response: `{"id":7,"name":"Hoodie","variants":[{"id":11,"sku":"H-S","stock":3}]}`}
	svc := newCatalog(t, gw, true)

	variant, err := svc.ResolveForAdd(context.Background(), 7, 0)
	if err != nil {
		t.Fatalf("resolve for add: %v", err)
	}
	if variant.ID != 11 {
		t.Fatalf("expected sole variant selected, got %+v", variant)
	}
	if gw.lastPath != "products/7/" {
		t.Fatalf("unexpected path %q", gw.lastPath)
	}
}

func TestResolveForAddRejectsExhaustedStock(t *testing.T) {
	gw := &stubGateway{response: `{"id":7,"variants":[{"id":11,"stock":0}]}`}
	svc := newCatalog(t, gw, true)

	if _, err := svc.ResolveForAdd(context.Background(), 7, 11); !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("expected ErrOutOfStock, got %v", err)
	}
}

func TestResolveForAddRequiresChoiceAmongMany(t *testing.T) {
	gw := &stubGateway{response: `{"id":7,"variants":[{"id":11,"stock":3},{"id":12,"stock":3}]}`}
	svc := newCatalog(t, gw, true)

	if _, err := svc.ResolveForAdd(context.Background(), 7, 0); !errors.Is(err, ErrVariantRequired) {
		t.Fatalf("expected ErrVariantRequired, got %v", err)
	}
}

func TestCreateReviewRequiresAuthAndValidRating(t *testing.T) {
	gw := &stubGateway{}
	svc := newCatalog(t, gw, false)

	_, err := svc.CreateReview(context.Background(), 1, 5, "great")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	svc = newCatalog(t, gw, true)
	_, err = svc.CreateReview(context.Background(), 1, 6, "")
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected rating validation, got %v", err)
	}

	gw.response = `{"id":3,"rating":4}`
	review, err := svc.CreateReview(context.Background(), 1, 4, "solid")
	if err != nil {
		t.Fatalf("create review: %v", err)
	}
	if review.Rating != 4 {
		t.Fatalf("unexpected review %+v", review)
	}
	if gw.lastPath != "product/1/reviews/" {
		t.Fatalf("unexpected path %q", gw.lastPath)
	}
}
