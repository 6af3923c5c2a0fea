package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovenside/pizza-storefront/internal/models"
)

type fakeCatalogAPI struct {
	skip, limit int
	pizzas      []models.Pizza
	err         error
}

func (f *fakeCatalogAPI) ListPizzas(ctx context.Context, skip, limit int) ([]models.Pizza, error) {
	f.skip, f.limit = skip, limit
	return f.pizzas, f.err
}

func menu() []models.Pizza {
	return []models.Pizza{
		{ID: 1, Name: "Margherita", Price: 12.99},
		{ID: 2, Name: "Quattro Formaggi", Price: 14.50},
	}
}

func TestListPassesPagingThrough(t *testing.T) {
	api := &fakeCatalogAPI{pizzas: menu()}
	loader := NewLoader(api)

	pizzas, err := loader.List(context.Background(), 10, 25)

	require.NoError(t, err)
	assert.Len(t, pizzas, 2)
	assert.Equal(t, 10, api.skip)
	assert.Equal(t, 25, api.limit)
}

func TestListDefaultsNonPositivePaging(t *testing.T) {
	api := &fakeCatalogAPI{pizzas: menu()}
	loader := NewLoader(api)

	_, err := loader.List(context.Background(), -5, 0)

	require.NoError(t, err)
	assert.Equal(t, 0, api.skip)
	assert.Equal(t, DefaultPageSize, api.limit)
}

func TestFind(t *testing.T) {
	pizzas := menu()

	p, ok := Find(pizzas, 2)
	require.True(t, ok)
	assert.Equal(t, "Quattro Formaggi", p.Name)

	_, ok = Find(pizzas, 99)
	assert.False(t, ok)
}
