// Package checkout sequences a cart through address entry, payment
// selection, review, and order submission, gating each step on the one
// before it.
package checkout

import (
	"context"
	"fmt"
	"sync"

	"storefront/internal/cart"
	"storefront/internal/model"
	"storefront/internal/pricing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// State names the checkout step the client currently needs to complete.
type State string

const (
	StateNeedsAuth    State = "NEEDS_AUTH"
	StateNeedsAddress State = "NEEDS_ADDRESS"
	StateNeedsPayment State = "NEEDS_PAYMENT"
	StateReadyToPlace State = "READY_TO_PLACE"
	StatePlaced       State = "PLACED"
)

// String representation (for logging)
func (s State) String() string {
	return string(s)
}

// Session reports whether the client holds an authenticated session.
type Session interface {
	Authenticated() bool
}

// OrderPlacer submits a finalized order payload to the order authority.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req *model.OrderRequest) (*model.Order, error)
}

// SignInRedirect is returned when a step requires authentication; Resume
// names the step to return to after signing in.
type SignInRedirect struct {
	Resume string
}

func (e *SignInRedirect) Error() string {
	return "sign-in required, resume at " + e.Resume
}

// ErrOutOfOrder is returned for a transition attempted before its
// preconditions are met.
type ErrOutOfOrder struct {
	Current  State
	Required State
}

func (e *ErrOutOfOrder) Error() string {
	return fmt.Sprintf("checkout step out of order: at %s, need %s", e.Current, e.Required)
}

// Orchestrator drives the checkout state machine over a cart store.
type Orchestrator struct {
	mu    sync.Mutex
	state State

	// One idempotency key per checkout attempt; retained across failed
	// submissions so a retry dedupes server-side.
	attemptKey uuid.UUID

	placedOrderID uuid.UUID

	cart    *cart.Store
	session Session
	placer  OrderPlacer
	logger  zerolog.Logger
}

// New creates an orchestrator at the start of the checkout flow.
func New(cartStore *cart.Store, session Session, placer OrderPlacer, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		state:   StateNeedsAuth,
		cart:    cartStore,
		session: session,
		placer:  placer,
		logger:  logger.With().Str("component", "checkout").Logger(),
	}
}

// State returns the current checkout step.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// PlacedOrderID returns the id of the created order once the flow has
// reached Placed.
func (o *Orchestrator) PlacedOrderID() uuid.UUID {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.placedOrderID
}

// Begin gates entry into address entry on an authenticated session.
// Without one the caller gets a redirect target carrying the resume step.
func (o *Orchestrator) Begin() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.session.Authenticated() {
		return &SignInRedirect{Resume: "/shipping"}
	}

	if o.state == StateNeedsAuth {
		o.state = StateNeedsAddress
	}

	return nil
}

// SubmitAddress stores the shipping address and advances to payment
// selection. Allowed from any step past authentication so the address
// can be edited before placing.
func (o *Orchestrator) SubmitAddress(ctx context.Context, address model.ShippingAddress) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state == StateNeedsAuth {
		return &ErrOutOfOrder{Current: o.state, Required: StateNeedsAddress}
	}

	if !address.IsComplete() {
		return model.NewDomainError(model.ErrCodeValidation, "All shipping address fields are required")
	}

	if err := o.cart.SetShippingAddress(ctx, address); err != nil {
		return err
	}

	if o.state == StateNeedsAddress {
		o.state = StateNeedsPayment
	}

	return nil
}

// SelectPayment stores the payment method and advances to review. A
// fresh idempotency key is minted the first time the flow reaches
// ReadyToPlace.
func (o *Orchestrator) SelectPayment(ctx context.Context, method model.PaymentMethod) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state == StateNeedsAuth || o.state == StateNeedsAddress {
		return &ErrOutOfOrder{Current: o.state, Required: StateNeedsPayment}
	}

	if err := o.cart.SetPaymentMethod(ctx, method); err != nil {
		return err
	}

	if o.state == StateNeedsPayment {
		o.state = StateReadyToPlace
		o.attemptKey = uuid.New()
	}

	return nil
}

// Quote computes the advisory price breakdown for the current cart.
// The order service recomputes authoritative totals on submission.
func (o *Orchestrator) Quote() pricing.Quote {
	return pricing.Compute(o.cart.Items())
}

// PlaceOrder submits the cart snapshot to the order authority. On
// success the cart's line items are cleared and the flow reaches
// Placed; on rejection the error is surfaced and the flow stays at
// ReadyToPlace with the same attempt key.
func (o *Orchestrator) PlaceOrder(ctx context.Context) (*model.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateReadyToPlace {
		return nil, &ErrOutOfOrder{Current: o.state, Required: StateReadyToPlace}
	}

	items := o.cart.Items()
	if len(items) == 0 {
		return nil, model.ErrEmptyOrder
	}

	quote := pricing.Compute(items)
	req := &model.OrderRequest{
		IdempotencyKey:  o.attemptKey.String(),
		Items:           items,
		ShippingAddress: o.cart.ShippingAddress(),
		PaymentMethod:   o.cart.PaymentMethod(),
		ItemsPrice:      quote.ItemsPrice,
		ShippingPrice:   quote.ShippingPrice,
		TaxPrice:        quote.TaxPrice,
		TotalPrice:      quote.TotalPrice,
	}

	order, err := o.placer.PlaceOrder(ctx, req)
	if err != nil {
		o.logger.Warn().Err(err).Msg("order submission rejected")
		return nil, err
	}

	if err := o.cart.Clear(ctx); err != nil {
		// The order exists server-side; a stale local cart is the
		// lesser problem. Report it but complete the transition.
		o.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to clear cart after placement")
	}

	o.state = StatePlaced
	o.placedOrderID = order.ID
	o.attemptKey = uuid.Nil

	o.logger.Info().
		Str("order_id", order.ID.String()).
		Str("total", order.TotalPrice.String()).
		Msg("order placed")

	return order, nil
}
