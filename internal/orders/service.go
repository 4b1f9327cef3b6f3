package orders

import (
	"context"
	"net/url"
	"strconv"

	"github.com/marcovilla/storefront-client/internal/api"
	"github.com/marcovilla/storefront-client/internal/session"
	"github.com/marcovilla/storefront-client/pkg/enums"
	pkgerrors "github.com/marcovilla/storefront-client/pkg/errors"
	"github.com/marcovilla/storefront-client/pkg/logger"
	"github.com/marcovilla/storefront-client/pkg/types"
)

// Gateway is the slice of the API client the order views use.
type Gateway interface {
	Get(ctx context.Context, path string, query url.Values, out any, opts ...api.CallOption) error
	Post(ctx context.Context, path string, body, out any, opts ...api.CallOption) error
	Put(ctx context.Context, path string, body, out any, opts ...api.CallOption) error
}

// SessionReader gates the admin operations on role.
type SessionReader interface {
	Current() session.Session
}

// Service covers order history plus the two admin mutations. Orders are
// created by checkout, mutated afterwards only by status updates here or by
// the payment webhook server-side.
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

// List returns the order history; the server scopes it by role.
func (s *Service) List(ctx context.Context) ([]types.Order, error) {
	if !s.sessions.Current().IsAuthenticated {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "please login to view your orders")
	}

	var orders []types.Order
	if err := s.gw.Get(ctx, "orders/", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Get fetches one order.
func (s *Service) Get(ctx context.Context, id int64) (*types.Order, error) {
	if !s.sessions.Current().IsAuthenticated {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "please login to view your orders")
	}

	var order types.Order
	if err := s.gw.Get(ctx, "orders/"+strconv.FormatInt(id, 10)+"/", nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

type updateStatusRequest struct {
	OrderStatus enums.OrderStatus `json:"order_status"`
}

// UpdateStatus moves an order to a new fulfillment status (admin only; the
// server enforces the permission, the client pre-checks the role to fail
// fast).
func (s *Service) UpdateStatus(ctx context.Context, id int64, status enums.OrderStatus) (*types.Order, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status "+status.String())
	}

	var order types.Order
	path := "orders/" + strconv.FormatInt(id, 10) + "/update-status/"
	if err := s.gw.Put(ctx, path, updateStatusRequest{OrderStatus: status}, &order); err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"order_id": id, "status": status.String()}), "order status updated")
	return &order, nil
}

// Approve approves a pending order (admin only).
func (s *Service) Approve(ctx context.Context, id int64) (*types.Order, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}

	var order types.Order
	if err := s.gw.Post(ctx, "orders/"+strconv.FormatInt(id, 10)+"/approve/", nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Service) requireAdmin() error {
	current := s.sessions.Current()
	if !current.IsAuthenticated {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "please login first")
	}
	if current.User == nil || !current.User.Role.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin access required")
	}
	return nil
}
