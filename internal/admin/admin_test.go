package admin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovenside/pizza-storefront/internal/models"
	"github.com/ovenside/pizza-storefront/pkg/errors"
)

type fakeSession struct {
	authed bool
}

func (f fakeSession) IsAuthenticated() bool { return f.authed }

// fakeAdminAPI counts calls across all operations.
type fakeAdminAPI struct {
	calls      int
	lastStatus string
}

func (f *fakeAdminAPI) CreatePizza(ctx context.Context, in models.PizzaInput) (*models.Pizza, error) {
	f.calls++
	return &models.Pizza{ID: 1, Name: in.Name, Price: in.Price}, nil
}

func (f *fakeAdminAPI) UpdatePizza(ctx context.Context, id int64, in models.PizzaInput) (*models.Pizza, error) {
	f.calls++
	return &models.Pizza{ID: id, Name: in.Name, Price: in.Price}, nil
}

func (f *fakeAdminAPI) DeletePizza(ctx context.Context, id int64) error {
	f.calls++
	return nil
}

func (f *fakeAdminAPI) ListUsers(ctx context.Context) ([]models.UserProfile, error) {
	f.calls++
	return []models.UserProfile{{ID: 1, Email: "admin@pizzeria.local", IsAdmin: true}}, nil
}

func (f *fakeAdminAPI) ListOrders(ctx context.Context, skip, limit int) ([]models.Order, error) {
	f.calls++
	return []models.Order{{ID: 1, Status: models.OrderStatusPending}}, nil
}

func (f *fakeAdminAPI) UpdateOrderStatus(ctx context.Context, id int64, status string) (*models.Order, error) {
	f.calls++
	f.lastStatus = status
	return &models.Order{ID: id, Status: status}, nil
}

func validInput() models.PizzaInput {
	return models.PizzaInput{Name: "Calzone", Description: "Folded", Price: 11.00}
}

func TestOperationsFailFastWithoutSession(t *testing.T) {
	api := &fakeAdminAPI{}
	m := NewManager(api, fakeSession{authed: false})
	ctx := context.Background()

	_, err := m.CreatePizza(ctx, validInput())
	assert.Equal(t, errors.CodeAuthRequired, errors.CodeOf(err))

	_, err = m.UpdatePizza(ctx, 1, validInput())
	assert.Equal(t, errors.CodeAuthRequired, errors.CodeOf(err))

	err = m.DeletePizza(ctx, 1)
	assert.Equal(t, errors.CodeAuthRequired, errors.CodeOf(err))

	_, err = m.ListUsers(ctx)
	assert.Equal(t, errors.CodeAuthRequired, errors.CodeOf(err))

	_, err = m.ListOrders(ctx, 0, 10)
	assert.Equal(t, errors.CodeAuthRequired, errors.CodeOf(err))

	_, err = m.UpdateOrderStatus(ctx, 1, models.OrderStatusDelivered)
	assert.Equal(t, errors.CodeAuthRequired, errors.CodeOf(err))

	assert.Zero(t, api.calls)
}

func TestCreatePizzaValidatesInput(t *testing.T) {
	api := &fakeAdminAPI{}
	m := NewManager(api, fakeSession{authed: true})

	_, err := m.CreatePizza(context.Background(), models.PizzaInput{Name: "", Price: 10})
	assert.Equal(t, errors.CodeValidation, errors.CodeOf(err))

	_, err = m.CreatePizza(context.Background(), models.PizzaInput{Name: "Calzone", Price: -1})
	assert.Equal(t, errors.CodeValidation, errors.CodeOf(err))

	assert.Zero(t, api.calls)
}

func TestCreatePizzaPassesThrough(t *testing.T) {
	api := &fakeAdminAPI{}
	m := NewManager(api, fakeSession{authed: true})

	pizza, err := m.CreatePizza(context.Background(), validInput())

	require.NoError(t, err)
	assert.Equal(t, "Calzone", pizza.Name)
	assert.Equal(t, 1, api.calls)
}

func TestUpdateOrderStatusRejectsUnknownStatus(t *testing.T) {
	api := &fakeAdminAPI{}
	m := NewManager(api, fakeSession{authed: true})

	_, err := m.UpdateOrderStatus(context.Background(), 1, "shipped")

	assert.Equal(t, errors.CodeValidation, errors.CodeOf(err))
	assert.Zero(t, api.calls)
}

func TestUpdateOrderStatusAcceptsKnownStatuses(t *testing.T) {
	api := &fakeAdminAPI{}
	m := NewManager(api, fakeSession{authed: true})

	for _, status := range []string{
		models.OrderStatusPending,
		models.OrderStatusPreparing,
		models.OrderStatusDelivered,
		models.OrderStatusCancelled,
	} {
		order, err := m.UpdateOrderStatus(context.Background(), 1, status)
		require.NoError(t, err, status)
		assert.Equal(t, status, order.Status)
	}
}
