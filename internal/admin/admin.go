package admin

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/ovenside/pizza-storefront/internal/models"
	"github.com/ovenside/pizza-storefront/pkg/errors"
)

// API is the slice of the backend client the admin managers use.
type API interface {
	CreatePizza(ctx context.Context, in models.PizzaInput) (*models.Pizza, error)
	UpdatePizza(ctx context.Context, id int64, in models.PizzaInput) (*models.Pizza, error)
	DeletePizza(ctx context.Context, id int64) error
	ListUsers(ctx context.Context) ([]models.UserProfile, error)
	ListOrders(ctx context.Context, skip, limit int) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status string) (*models.Order, error)
}

// SessionInfo is the auth gate the managers consult before any call.
type SessionInfo interface {
	IsAuthenticated() bool
}

// Manager wraps the back-office operations: pizza CRUD, user and order
// listings, and order status transitions. Role enforcement lives on the
// backend; the manager only refuses to attempt calls without a session.
type Manager struct {
	api      API
	session  SessionInfo
	validate *validator.Validate
}

func NewManager(api API, session SessionInfo) *Manager {
	return &Manager{
		api:      api,
		session:  session,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// requireSession fails fast instead of letting an unauthenticated call
// reach the network.
func (m *Manager) requireSession() error {
	if !m.session.IsAuthenticated() {
		return errors.New(errors.CodeAuthRequired, "")
	}
	return nil
}

func (m *Manager) CreatePizza(ctx context.Context, in models.PizzaInput) (*models.Pizza, error) {
	if err := m.requireSession(); err != nil {
		return nil, err
	}
	if err := m.validate.Struct(in); err != nil {
		return nil, errors.Wrap(errors.CodeValidation, err, "a pizza needs a name and a positive price")
	}
	return m.api.CreatePizza(ctx, in)
}

func (m *Manager) UpdatePizza(ctx context.Context, id int64, in models.PizzaInput) (*models.Pizza, error) {
	if err := m.requireSession(); err != nil {
		return nil, err
	}
	if err := m.validate.Struct(in); err != nil {
		return nil, errors.Wrap(errors.CodeValidation, err, "a pizza needs a name and a positive price")
	}
	return m.api.UpdatePizza(ctx, id, in)
}

func (m *Manager) DeletePizza(ctx context.Context, id int64) error {
	if err := m.requireSession(); err != nil {
		return err
	}
	return m.api.DeletePizza(ctx, id)
}

func (m *Manager) ListUsers(ctx context.Context) ([]models.UserProfile, error) {
	if err := m.requireSession(); err != nil {
		return nil, err
	}
	return m.api.ListUsers(ctx)
}

func (m *Manager) ListOrders(ctx context.Context, skip, limit int) ([]models.Order, error) {
	if err := m.requireSession(); err != nil {
		return nil, err
	}
	return m.api.ListOrders(ctx, skip, limit)
}

func (m *Manager) UpdateOrderStatus(ctx context.Context, id int64, status string) (*models.Order, error) {
	if err := m.requireSession(); err != nil {
		return nil, err
	}
	if err := m.validate.Var(status, "required,oneof=pending preparing delivered cancelled"); err != nil {
		return nil, errors.Wrap(errors.CodeValidation, err, "unknown order status "+status)
	}
	return m.api.UpdateOrderStatus(ctx, id, status)
}
