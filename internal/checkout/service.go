package checkout

import (
	"context"
	"fmt"
	"sync"

	"github.com/marcovilla/storefront-client/internal/api"
	"github.com/marcovilla/storefront-client/internal/pricing"
	"github.com/marcovilla/storefront-client/internal/session"
	"github.com/marcovilla/storefront-client/internal/validate"
	pkgerrors "github.com/marcovilla/storefront-client/pkg/errors"
	"github.com/marcovilla/storefront-client/pkg/logger"
	"github.com/marcovilla/storefront-client/pkg/types"
)

// State is the phase of a single checkout attempt.
type State string

const (
	StateCollecting       State = "COLLECTING"
	StateSubmitting       State = "SUBMITTING"
	StateOrderCreated     State = "ORDER_CREATED"
	StatePaymentInitiated State = "PAYMENT_INITIATED"
	StateFailed           State = "FAILED"
)

// Gateway is the slice of the API client checkout needs.
type Gateway interface {
	Post(ctx context.Context, path string, body, out any, opts ...api.CallOption) error
}

// CartSource is the cart coordinator surface checkout reads and invalidates.
type CartSource interface {
	Get(ctx context.Context) (*types.Cart, error)
	Invalidate()
}

// SessionReader gates submission on authentication.
type SessionReader interface {
	Current() session.Session
}

// PaymentInitiationError reports the partial-failure case where the order
// was created server-side but payment could not be started. The order id is
// carried so the caller can reconcile; no compensating cancel call exists in
// the documented API surface.
type PaymentInitiationError struct {
	OrderID int64
	Err     error
}

func (e *PaymentInitiationError) Error() string {
	return fmt.Sprintf("payment initiation failed for order %d: %v", e.OrderID, e.Err)
}

func (e *PaymentInitiationError) Unwrap() error {
	return e.Err
}

// ShippingForm holds the address fields gathered while collecting. Local
// constraints are checked before any request leaves the client.
type ShippingForm struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Street    string `json:"street_address" validate:"required"`
	City      string `json:"city" validate:"required"`
	ZipCode   string `json:"zip_code" validate:"required"`
	Country   string `json:"country" validate:"required"`
}

// Result is a completed submission: the created order and the payment
// processor redirect target navigation is handed off to.
type Result struct {
	Order       *types.Order
	RedirectURL string
}

// Orchestrator sequences one checkout attempt: order creation, then payment
// initiation. Coupon validation happens independently while collecting and
// feeds display pricing only; the code is not re-sent at order creation, so
// the server computes its own discount (a known contract ambiguity, kept).
// No step is retried automatically; a failed attempt restarts from
// collecting.
type Orchestrator struct {
	gw       Gateway
	cart     CartSource
	sessions SessionReader
	logg     *logger.Logger

	mu     sync.Mutex
	state  State
	coupon *types.Coupon
}

func NewOrchestrator(gw Gateway, cart CartSource, sessions SessionReader, logg *logger.Logger) (*Orchestrator, error) {
	if gw == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "gateway required")
	}
	if cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart source required")
	}
	if sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session reader required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Orchestrator{
		gw:       gw,
		cart:     cart,
		sessions: sessions,
		logg:     logg,
		state:    StateCollecting,
	}, nil
}

// State reports the current attempt phase.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Coupon returns the currently applied coupon, nil when none.
func (o *Orchestrator) Coupon() *types.Coupon {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.coupon
}

type couponValidateRequest struct {
	OrderAmount string `json:"order_amount"`
}

// ApplyCoupon validates a code against the server and keeps the returned
// rule for display pricing. The current cart subtotal rides along as
// order_amount so the server can run its minimum-amount check. Validation is
// idempotent and has no side effect beyond fetching the coupon record.
func (o *Orchestrator) ApplyCoupon(ctx context.Context, code string) (*types.Coupon, error) {
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}

	var body any
	if amount, ok := o.orderAmount(ctx); ok {
		body = couponValidateRequest{OrderAmount: amount}
	}

	var resp types.CouponValidation
	if err := o.gw.Post(ctx, "coupons/"+code+"/validate/", body, &resp); err != nil {
		return nil, err
	}

	coupon := resp.Coupon
	if coupon.Code == "" {
		coupon.Code = code
	}

	o.mu.Lock()
	o.coupon = &coupon
	o.mu.Unlock()
	return &coupon, nil
}

// orderAmount derives the current cart subtotal for the server's
// minimum-amount check. An unreadable cart leaves the amount off; the server
// then validates the coupon without it.
func (o *Orchestrator) orderAmount(ctx context.Context) (string, bool) {
	cart, err := o.cart.Get(ctx)
	if err != nil || cart == nil {
		return "", false
	}
	quote, err := pricing.Compute(cart.Items, nil)
	if err != nil {
		return "", false
	}
	return quote.Subtotal.StringFixed(2), true
}

// ClearCoupon drops the applied coupon.
func (o *Orchestrator) ClearCoupon() {
	o.mu.Lock()
	o.coupon = nil
	o.mu.Unlock()
}

// Quote derives the display totals for the current cart and coupon.
func (o *Orchestrator) Quote(ctx context.Context) (pricing.Quote, error) {
	cart, err := o.cart.Get(ctx)
	if err != nil {
		return pricing.Quote{}, err
	}
	return pricing.Compute(cart.Items, o.Coupon())
}

type createOrderRequest struct {
	AddressData ShippingForm `json:"address_data"`
}

type paymentRequest struct {
	OrderID int64 `json:"order_id"`
}

// Submit runs the attempt: validate the form locally, create the order from
// the server-side cart contents, then immediately initiate payment for the
// new order id. Order-creation failure and payment-initiation failure are
// reported distinctly; the latter leaves an order without payment behind.
func (o *Orchestrator) Submit(ctx context.Context, form ShippingForm) (*Result, error) {
	if !o.sessions.Current().IsAuthenticated {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "please login to checkout")
	}

	o.mu.Lock()
	if o.state != StateCollecting && o.state != StateFailed {
		state := o.state
		o.mu.Unlock()
		return nil, pkgerrors.New(pkgerrors.CodeRejected, "checkout already in progress ("+string(state)+")")
	}
	o.state = StateCollecting
	o.mu.Unlock()

	// Local form constraints block before any request.
	if err := validate.Struct(form); err != nil {
		return nil, err
	}

	o.setState(StateSubmitting)

	var order types.Order
	if err := o.gw.Post(ctx, "orders/create/", createOrderRequest{AddressData: form}, &order); err != nil {
		o.setState(StateFailed)
		return nil, err
	}

	o.setState(StateOrderCreated)
	o.logg.Info(o.logg.WithField(ctx, "order_id", order.ID), "order created")

	var payment types.PaymentSession
	if err := o.gw.Post(ctx, "payments/", paymentRequest{OrderID: order.ID}, &payment); err != nil {
		o.setState(StateFailed)
		return nil, &PaymentInitiationError{OrderID: order.ID, Err: err}
	}
	if payment.URL == "" {
		o.setState(StateFailed)
		return nil, &PaymentInitiationError{
			OrderID: order.ID,
			Err:     pkgerrors.New(pkgerrors.CodeTransport, "payment response missing redirect url"),
		}
	}

	o.setState(StatePaymentInitiated)
	o.cart.Invalidate()
	o.logg.Info(o.logg.WithField(ctx, "order_id", order.ID), "payment initiated, handing off to processor")

	return &Result{Order: &order, RedirectURL: payment.URL}, nil
}

// Reset returns a finished or failed attempt to collecting. The applied
// coupon survives; its validation is idempotent.
func (o *Orchestrator) Reset() {
	o.setState(StateCollecting)
}

func (o *Orchestrator) setState(state State) {
	o.mu.Lock()
	o.state = state
	o.mu.Unlock()
}
