package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovenside/pizza-storefront/internal/metrics"
	"github.com/ovenside/pizza-storefront/internal/models"
	"github.com/ovenside/pizza-storefront/pkg/errors"
	"github.com/ovenside/pizza-storefront/pkg/logger"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: discard{}})
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second, metrics.NewNoop(), testLogger()), srv
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

func TestLoginSendsPasswordGrantForm(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "password", r.PostForm.Get("grant_type"))
		assert.Equal(t, "user@example.com", r.PostForm.Get("username"))
		assert.Equal(t, "secret1", r.PostForm.Get("password"))
		json.NewEncoder(w).Encode(models.AuthResponse{AccessToken: "tok", TokenType: "bearer"})
	}))

	resp, err := c.Login(context.Background(), models.Credentials{
		Email:    "user@example.com",
		Password: "secret1",
	})

	require.NoError(t, err)
	assert.Equal(t, "tok", resp.AccessToken)
}

func TestLoginRejectionMapsToAuthError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
	}))

	_, err := c.Login(context.Background(), models.Credentials{
		Email:    "user@example.com",
		Password: "wrong",
	})

	assert.Equal(t, errors.CodeAuth, errors.CodeOf(err))
	assert.Equal(t, "Incorrect email or password", errors.As(err).Message())
}

func TestRegisterDuplicateMapsToRegistrationError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/register", r.URL.Path)
		writeDetail(w, http.StatusBadRequest, "Email already registered")
	}))

	_, err := c.Register(context.Background(), models.Registration{
		Email:    "dup@example.com",
		FullName: "Dup",
		Password: "secret1",
	})

	assert.Equal(t, errors.CodeRegistration, errors.CodeOf(err))
	assert.Equal(t, "Email already registered", errors.As(err).Message())
}

func TestAuthenticatedCallSendsBearerToken(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(models.UserProfile{ID: 1, Email: "user@example.com"})
	}))
	c.SetTokenProvider(staticToken("tok-xyz"))

	_, err := c.Me(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-xyz", gotAuth)
}

func TestAuthenticatedCallFailsFastWithoutToken(t *testing.T) {
	var hits atomic.Int64
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	c.SetTokenProvider(staticToken(""))

	_, err := c.Me(context.Background())

	assert.Equal(t, errors.CodeAuthRequired, errors.CodeOf(err))
	assert.Zero(t, hits.Load())
}

func TestRejectedTokenFiresUnauthorizedHandler(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
	}))
	c.SetTokenProvider(staticToken("stale"))
	demoted := false
	c.SetUnauthorizedHandler(func() { demoted = true })

	_, err := c.Me(context.Background())

	assert.Equal(t, errors.CodeAuthRequired, errors.CodeOf(err))
	assert.True(t, demoted)
}

func TestServerErrorMapsToServerCode(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusInternalServerError, "boom")
	}))

	_, err := c.ListPizzas(context.Background(), 0, 10)

	assert.Equal(t, errors.CodeServer, errors.CodeOf(err))
}

func TestUnreachableBackendMapsToNetworkCode(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	c := New(url, time.Second, metrics.NewNoop(), testLogger())

	_, err := c.ListPizzas(context.Background(), 0, 10)

	assert.Equal(t, errors.CodeNetwork, errors.CodeOf(err))
}

func TestNotFoundMapsToNotFoundCode(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Pizza not found")
	}))
	c.SetTokenProvider(staticToken("tok"))

	err := c.DeletePizza(context.Background(), 99)

	assert.Equal(t, errors.CodeNotFound, errors.CodeOf(err))
	assert.Equal(t, "Pizza not found", errors.As(err).Message())
}

func TestListPizzasSendsPagination(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pizzas/", r.URL.Path)
		assert.Equal(t, "20", r.URL.Query().Get("skip"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode([]models.Pizza{{ID: 21, Name: "Diavola", Price: 13.50}})
	}))

	pizzas, err := c.ListPizzas(context.Background(), 20, 10)

	require.NoError(t, err)
	require.Len(t, pizzas, 1)
	assert.Equal(t, "Diavola", pizzas[0].Name)
}

func TestUpdateOrderStatusPatchesStatusOnly(t *testing.T) {
	var body map[string]string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/orders/5", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(models.Order{ID: 5, Status: models.OrderStatusPreparing})
	}))
	c.SetTokenProvider(staticToken("tok"))

	order, err := c.UpdateOrderStatus(context.Background(), 5, models.OrderStatusPreparing)

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"status": "preparing"}, body)
	assert.Equal(t, models.OrderStatusPreparing, order.Status)
}

func TestMalformedSuccessBodyMapsToServerCode(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))

	_, err := c.ListPizzas(context.Background(), 0, 10)

	assert.Equal(t, errors.CodeServer, errors.CodeOf(err))
}
