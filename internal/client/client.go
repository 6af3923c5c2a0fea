package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ovenside/pizza-storefront/internal/metrics"
	"github.com/ovenside/pizza-storefront/pkg/errors"
	"github.com/ovenside/pizza-storefront/pkg/logger"
)

// TokenProvider supplies the current bearer token, or "" when logged out.
type TokenProvider interface {
	Token() string
}

// Client is the typed REST client for the backend API. All storefront
// components share one instance.
type Client struct {
	baseURL string
	http    *http.Client
	metrics *metrics.AppMetrics
	log     *logger.Logger

	tokens         TokenProvider
	onUnauthorized func()
}

// New creates a backend API client. baseURL must not end with a slash.
func New(baseURL string, timeout time.Duration, m *metrics.AppMetrics, log *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		metrics: m,
		log:     log,
	}
}

// SetTokenProvider wires the session store in after construction; the
// session store itself needs the client for login calls.
func (c *Client) SetTokenProvider(tp TokenProvider) {
	c.tokens = tp
}

// SetUnauthorizedHandler registers the callback invoked when an
// authenticated call is rejected with 401 or 403.
func (c *Client) SetUnauthorizedHandler(fn func()) {
	c.onUnauthorized = fn
}

// errorBody is the backend's error envelope.
type errorBody struct {
	Detail string `json:"detail"`
}

// request describes one backend call for the do helper.
type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	authed      bool
	// fail4xx is the error code used for plain 4xx rejections of this
	// call (login maps them to AUTH_ERROR, register to REGISTRATION_ERROR).
	fail4xx errors.Code
}

// do executes a request and decodes a 2xx JSON response into out when out
// is non-nil. Non-2xx responses are mapped onto the error taxonomy with
// the backend's detail message preserved verbatim.
func (c *Client) do(ctx context.Context, req request, out any) error {
	endpoint := req.path
	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, req.body)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "building request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	if req.authed {
		token := ""
		if c.tokens != nil {
			token = c.tokens.Token()
		}
		if token == "" {
			// Fail fast: never hit the network without a session.
			return errors.New(errors.CodeAuthRequired, "")
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.metrics.RecordAPIRequest(ctx, req.method, endpoint, 0, start)
		c.log.Error(ctx, fmt.Sprintf("%s %s failed", req.method, endpoint), err)
		return errors.Wrap(errors.CodeNetwork, err, "")
	}
	defer resp.Body.Close()

	c.metrics.RecordAPIRequest(ctx, req.method, endpoint, resp.StatusCode, start)
	c.log.Debug(c.log.WithField(ctx, "status", resp.StatusCode),
		fmt.Sprintf("%s %s", req.method, endpoint))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Wrap(errors.CodeServer, err, "invalid response from server")
		}
		return nil
	}

	return c.mapError(req, resp)
}

// mapError converts a non-2xx response into a typed error.
func (c *Client) mapError(req request, resp *http.Response) error {
	detail := ""
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		detail = body.Detail
	}

	switch {
	case resp.StatusCode >= 500:
		return errors.New(errors.CodeServer, detail)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		if req.authed {
			// The session the token represents is gone; demote it.
			if c.onUnauthorized != nil {
				c.onUnauthorized()
			}
			return errors.New(errors.CodeAuthRequired, detail)
		}
		if req.fail4xx != "" {
			return errors.New(req.fail4xx, detail)
		}
		return errors.New(errors.CodeAuthRequired, detail)
	case resp.StatusCode == http.StatusNotFound:
		return errors.New(errors.CodeNotFound, detail)
	default:
		if req.fail4xx != "" {
			return errors.New(req.fail4xx, detail)
		}
		return errors.New(errors.CodeValidation, detail)
	}
}

// jsonBody encodes v for a JSON request body.
func jsonBody(v any) (io.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "encoding request body")
	}
	return bytes.NewReader(data), nil
}
