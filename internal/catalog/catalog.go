package catalog

import (
	"context"

	"github.com/ovenside/pizza-storefront/internal/models"
)

// DefaultPageSize mirrors the backend's listing default.
const DefaultPageSize = 100

// API is the slice of the backend client the loader uses.
type API interface {
	ListPizzas(ctx context.Context, skip, limit int) ([]models.Pizza, error)
}

// Loader fetches the product catalog for display. Read-only; the cart is
// populated from its output by user interaction.
type Loader struct {
	api API
}

func NewLoader(api API) *Loader {
	return &Loader{api: api}
}

// List fetches one page of the catalog. Non-positive paging arguments
// fall back to the first full page.
func (l *Loader) List(ctx context.Context, skip, limit int) ([]models.Pizza, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	return l.api.ListPizzas(ctx, skip, limit)
}

// Find returns the catalog entry with the given id from a fetched page,
// for add-to-cart flows keyed on user input.
func Find(pizzas []models.Pizza, id int64) (models.Pizza, bool) {
	for _, p := range pizzas {
		if p.ID == id {
			return p, true
		}
	}
	return models.Pizza{}, false
}
