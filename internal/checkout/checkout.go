package checkout

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/ovenside/pizza-storefront/internal/cart"
	"github.com/ovenside/pizza-storefront/internal/metrics"
	"github.com/ovenside/pizza-storefront/internal/models"
	"github.com/ovenside/pizza-storefront/pkg/errors"
	"github.com/ovenside/pizza-storefront/pkg/logger"
)

// State is the phase of the current checkout attempt.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SessionInfo is the slice of the session store checkout consults.
type SessionInfo interface {
	IsAuthenticated() bool
}

// OrderAPI is the slice of the backend client checkout uses.
type OrderAPI interface {
	CreateOrder(ctx context.Context, sub models.OrderSubmission) (*models.Order, error)
}

// Orchestrator converts cart state into an order submission. One attempt
// at a time: a Submit while another is in flight is rejected outright,
// which closes the double-order window a double-clicked button opens.
type Orchestrator struct {
	mu    sync.Mutex
	state State

	cart    *cart.Cart
	session SessionInfo
	api     OrderAPI
	metrics *metrics.AppMetrics
	log     *logger.Logger
	now     func() time.Time
}

func New(c *cart.Cart, session SessionInfo, api OrderAPI, m *metrics.AppMetrics, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		cart:    c,
		session: session,
		api:     api,
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

// State returns the phase of the most recent checkout attempt.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Submit snapshots the cart into an order and sends it. On success the
// cart is cleared and the created order returned. On any failure the cart
// is preserved unchanged so the user can retry.
func (o *Orchestrator) Submit(ctx context.Context) (*models.Order, error) {
	o.mu.Lock()
	if o.state == StateSubmitting {
		o.mu.Unlock()
		return nil, errors.New(errors.CodeCheckoutInFlight, "")
	}
	if o.cart.IsEmpty() {
		// Reject before leaving Idle; no network call.
		o.state = StateIdle
		o.mu.Unlock()
		return nil, errors.New(errors.CodeEmptyCart, "")
	}
	o.state = StateSubmitting
	o.mu.Unlock()

	if !o.session.IsAuthenticated() {
		// Cart preserved; the caller redirects to login.
		o.setState(StateFailed)
		return nil, errors.New(errors.CodeAuthRequired, "")
	}

	sub := o.buildSubmission()
	order, err := o.api.CreateOrder(ctx, sub)
	if err != nil {
		o.setState(StateFailed)
		o.log.Error(ctx, "checkout failed", err)
		return nil, err
	}

	o.cart.Clear()
	o.setState(StateSucceeded)

	attrs := metric.WithAttributes(o.metrics.WithServiceName(nil)...)
	o.metrics.OrdersPlaced.Add(ctx, 1, attrs)
	o.metrics.RevenueTotal.Add(ctx, sub.TotalPrice, attrs)
	o.log.Info(o.log.WithField(ctx, "order_id", order.ID), "order placed")

	return order, nil
}

// buildSubmission maps cart lines to order items. The total uses the same
// formula as the cart subtotal.
func (o *Orchestrator) buildSubmission() models.OrderSubmission {
	lines := o.cart.Lines()
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.OrderItem{
			PizzaID:  line.PizzaID,
			Quantity: line.Quantity,
			Price:    line.UnitPrice.InexactFloat64(),
		})
	}
	return models.OrderSubmission{
		Items:      items,
		Status:     models.OrderStatusPending,
		TotalPrice: o.cart.Subtotal().InexactFloat64(),
		OrderDate:  o.now().UTC(),
	}
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}
