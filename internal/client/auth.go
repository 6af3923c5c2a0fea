package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/ovenside/pizza-storefront/internal/models"
	"github.com/ovenside/pizza-storefront/pkg/errors"
)

// Login exchanges credentials for a bearer token. The endpoint speaks the
// OAuth2 password-grant form encoding, with the email as username.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", creds.Email)
	form.Set("password", creds.Password)
	form.Set("scope", "")

	var resp models.AuthResponse
	err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/auth/login",
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
		fail4xx:     errors.CodeAuth,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and returns a token, auto-authenticating
// the new user.
func (c *Client) Register(ctx context.Context, reg models.Registration) (*models.AuthResponse, error) {
	body, err := jsonBody(reg)
	if err != nil {
		return nil, err
	}

	var resp models.AuthResponse
	err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/users/register",
		body:        body,
		contentType: "application/json",
		fail4xx:     errors.CodeRegistration,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
