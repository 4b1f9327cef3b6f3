package cart

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"sync"

	"github.com/marcovilla/storefront-client/internal/api"
	"github.com/marcovilla/storefront-client/internal/session"
	pkgerrors "github.com/marcovilla/storefront-client/pkg/errors"
	"github.com/marcovilla/storefront-client/pkg/logger"
	"github.com/marcovilla/storefront-client/pkg/types"
)

// Distinct precondition failures so the caller can notify precisely.
var (
	ErrNotAuthenticated  = pkgerrors.New(pkgerrors.CodeUnauthorized, "please login to manage your cart")
	ErrNoVariantSelected = pkgerrors.New(pkgerrors.CodeValidation, "select a product option before adding to cart")
)

// Gateway is the slice of the API client the coordinator needs.
type Gateway interface {
	Get(ctx context.Context, path string, query url.Values, out any, opts ...api.CallOption) error
	Post(ctx context.Context, path string, body, out any, opts ...api.CallOption) error
	Put(ctx context.Context, path string, body, out any, opts ...api.CallOption) error
	Delete(ctx context.Context, path string, out any, opts ...api.CallOption) error
}

// SessionReader exposes the auth state the preconditions check.
type SessionReader interface {
	Current() session.Session
}

// Service coordinates cart mutations against the server and reconciles the
// local read-through copy. Mutations never patch the cached view: a
// successful mutation invalidates it and the next read re-fetches, because
// totals are recomputed server-side. Cache updates carry a per-resource
// monotonic sequence so a late response can never overwrite a newer one.
type Service struct {
	gw       Gateway
	sessions SessionReader
	logg     *logger.Logger

	mu      sync.Mutex
	cached  *types.Cart
	seq     uint64
	applied uint64
}

// NewService builds the cart coordinator.
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

type addRequest struct {
	ProductVariantID int64 `json:"product_variant_id"`
	Quantity         int   `json:"quantity"`
}

type updateRequest struct {
	Quantity int `json:"quantity"`
}

// Get returns the cached cart, fetching from the server when the cache is
// invalid.
func (s *Service) Get(ctx context.Context) (*types.Cart, error) {
	s.mu.Lock()
	if s.cached != nil {
		cart := *s.cached
		s.mu.Unlock()
		return &cart, nil
	}
	s.mu.Unlock()
	return s.Refresh(ctx)
}

// Refresh always re-fetches. A response that lost the race against a newer
// cache write is discarded, not applied.
func (s *Service) Refresh(ctx context.Context) (*types.Cart, error) {
	if !s.sessions.Current().IsAuthenticated {
		return nil, ErrNotAuthenticated
	}

	seq := s.nextSeq()

	var raw json.RawMessage
	if err := s.gw.Get(ctx, "cart/", nil, &raw); err != nil {
		return nil, err
	}

	cart, err := decodeCart(raw)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.applied {
		s.logg.Debug(ctx, "discarding stale cart response")
		if s.cached != nil {
			copied := *s.cached
			return &copied, nil
		}
		return cart, nil
	}
	s.applied = seq
	s.cached = cart
	copied := *cart
	return &copied, nil
}

// Add puts a variant into the server cart. The caller must be authenticated
// and must have resolved a concrete variant; both checks run before any
// network I/O.
func (s *Service) Add(ctx context.Context, variantID int64, quantity int) error {
	if !s.sessions.Current().IsAuthenticated {
		return ErrNotAuthenticated
	}
	if variantID <= 0 {
		return ErrNoVariantSelected
	}
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	req := addRequest{ProductVariantID: variantID, Quantity: quantity}
	if err := s.gw.Post(ctx, "cart/add/", req, nil); err != nil {
		// Prior cached state stays intact on failure.
		return err
	}

	s.Invalidate()
	return nil
}

// UpdateQuantity sets a cart line to an absolute quantity of at least 1.
func (s *Service) UpdateQuantity(ctx context.Context, itemID int64, quantity int) error {
	if !s.sessions.Current().IsAuthenticated {
		return ErrNotAuthenticated
	}
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	if err := s.gw.Put(ctx, itemPath("cart/update/", itemID), updateRequest{Quantity: quantity}, nil); err != nil {
		return err
	}

	s.Invalidate()
	return nil
}

// Increment bumps the line quantity by one.
func (s *Service) Increment(ctx context.Context, item types.CartItem) error {
	return s.UpdateQuantity(ctx, item.ID, item.Quantity+1)
}

// Decrement lowers the line quantity by one. At quantity 1 it is a local
// no-op: no request with a value below 1 is ever sent.
func (s *Service) Decrement(ctx context.Context, item types.CartItem) error {
	if item.Quantity <= 1 {
		return nil
	}
	return s.UpdateQuantity(ctx, item.ID, item.Quantity-1)
}

// Remove deletes a cart line.
func (s *Service) Remove(ctx context.Context, itemID int64) error {
	if !s.sessions.Current().IsAuthenticated {
		return ErrNotAuthenticated
	}

	if err := s.gw.Delete(ctx, itemPath("cart/remove/", itemID), nil); err != nil {
		return err
	}

	s.Invalidate()
	return nil
}

// Invalidate drops the cached view and supersedes any in-flight reads so
// their responses get discarded on arrival.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.seq++
	s.applied = s.seq
	s.cached = nil
	s.mu.Unlock()
}

func (s *Service) nextSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// decodeCart tolerates both shapes the server is known to produce: a single
// cart object, or a one-element list from the list-style view.
func decodeCart(raw json.RawMessage) (*types.Cart, error) {
	var single types.Cart
	if err := json.Unmarshal(raw, &single); err == nil {
		return &single, nil
	}

	var many []types.Cart
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeTransport, err, "decode cart payload")
	}
	if len(many) == 0 {
		return &types.Cart{}, nil
	}
	return &many[0], nil
}

func itemPath(prefix string, id int64) string {
	return prefix + strconv.FormatInt(id, 10) + "/"
}
