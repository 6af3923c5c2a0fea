package client

import (
	"context"
	"net/http"

	"github.com/ovenside/pizza-storefront/internal/models"
)

// Me fetches the current user's profile.
func (c *Client) Me(ctx context.Context) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/users/me",
		authed: true,
	}, &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListUsers returns all users. Admin-only on the backend.
func (c *Client) ListUsers(ctx context.Context) ([]models.UserProfile, error) {
	var users []models.UserProfile
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/users/",
		authed: true,
	}, &users)
	if err != nil {
		return nil, err
	}
	return users, nil
}
