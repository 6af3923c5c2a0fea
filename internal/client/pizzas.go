package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ovenside/pizza-storefront/internal/models"
)

// ListPizzas fetches a page of the catalog.
func (c *Client) ListPizzas(ctx context.Context, skip, limit int) ([]models.Pizza, error) {
	query := url.Values{}
	query.Set("skip", strconv.Itoa(skip))
	query.Set("limit", strconv.Itoa(limit))

	var pizzas []models.Pizza
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/pizzas/",
		query:  query,
	}, &pizzas)
	if err != nil {
		return nil, err
	}
	return pizzas, nil
}

// CreatePizza adds a pizza to the catalog. Admin-only on the backend.
func (c *Client) CreatePizza(ctx context.Context, in models.PizzaInput) (*models.Pizza, error) {
	body, err := jsonBody(in)
	if err != nil {
		return nil, err
	}

	var pizza models.Pizza
	err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/pizzas/",
		body:        body,
		contentType: "application/json",
		authed:      true,
	}, &pizza)
	if err != nil {
		return nil, err
	}
	return &pizza, nil
}

// UpdatePizza patches an existing pizza. Admin-only on the backend.
func (c *Client) UpdatePizza(ctx context.Context, id int64, in models.PizzaInput) (*models.Pizza, error) {
	body, err := jsonBody(in)
	if err != nil {
		return nil, err
	}

	var pizza models.Pizza
	err = c.do(ctx, request{
		method:      http.MethodPatch,
		path:        fmt.Sprintf("/pizzas/%d", id),
		body:        body,
		contentType: "application/json",
		authed:      true,
	}, &pizza)
	if err != nil {
		return nil, err
	}
	return &pizza, nil
}

// DeletePizza removes a pizza from the catalog. Admin-only on the backend.
func (c *Client) DeletePizza(ctx context.Context, id int64) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/pizzas/%d", id),
		authed: true,
	}, nil)
}
