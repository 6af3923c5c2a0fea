package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ovenside/pizza-storefront/internal/models"
)

// CreateOrder submits an order snapshot built at checkout.
func (c *Client) CreateOrder(ctx context.Context, sub models.OrderSubmission) (*models.Order, error) {
	body, err := jsonBody(sub)
	if err != nil {
		return nil, err
	}

	var order models.Order
	err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/orders/",
		body:        body,
		contentType: "application/json",
		authed:      true,
	}, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders fetches a page of orders. The backend scopes the listing to
// the caller: regular users see their own orders, admins see all.
func (c *Client) ListOrders(ctx context.Context, skip, limit int) ([]models.Order, error) {
	query := url.Values{}
	query.Set("skip", strconv.Itoa(skip))
	query.Set("limit", strconv.Itoa(limit))

	var orders []models.Order
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/orders/",
		query:  query,
		authed: true,
	}, &orders)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrderStatus transitions an order's status. Admin-only on the backend.
func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status string) (*models.Order, error) {
	body, err := jsonBody(map[string]string{"status": status})
	if err != nil {
		return nil, err
	}

	var order models.Order
	err = c.do(ctx, request{
		method:      http.MethodPatch,
		path:        fmt.Sprintf("/orders/%d", id),
		body:        body,
		contentType: "application/json",
		authed:      true,
	}, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}
