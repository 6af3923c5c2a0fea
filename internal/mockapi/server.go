// Package mockapi is an in-memory stand-in for the backend REST API. It
// serves the same contract the storefront consumes (bearer auth, JSON
// bodies, {detail} error envelopes) for development runs and integration
// tests; nothing survives a restart.
package mockapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/ovenside/pizza-storefront/internal/middleware"
	"github.com/ovenside/pizza-storefront/internal/models"
	"github.com/ovenside/pizza-storefront/pkg/logger"
)

// Server is the mock backend.
type Server struct {
	store *store
	log   *logger.Logger
}

func NewServer(log *logger.Logger) *Server {
	return &Server{
		store: newStore(),
		log:   log,
	}
}

// AdminEmail and AdminPassword are the seeded back-office credentials.
const (
	AdminEmail    = "admin@pizzeria.local"
	AdminPassword = "admin123"
)

// RevokeToken invalidates a bearer token, simulating server-side expiry.
func (s *Server) RevokeToken(token string) {
	s.store.revokeToken(token)
}

// Handler builds the router with the same route shapes as the real API.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.CORS)
	r.Use(middleware.Recover(s.log))
	r.Use(middleware.Logging(s.log))

	r.HandleFunc("/auth/login", s.loginHandler).Methods(http.MethodPost)
	r.HandleFunc("/users/register", s.registerHandler).Methods(http.MethodPost)
	r.HandleFunc("/users/me", s.meHandler).Methods(http.MethodGet)
	r.HandleFunc("/users/", s.listUsersHandler).Methods(http.MethodGet)

	r.HandleFunc("/pizzas/", s.listPizzasHandler).Methods(http.MethodGet)
	r.HandleFunc("/pizzas/", s.createPizzaHandler).Methods(http.MethodPost)
	r.HandleFunc("/pizzas/{id}", s.updatePizzaHandler).Methods(http.MethodPatch)
	r.HandleFunc("/pizzas/{id}", s.deletePizzaHandler).Methods(http.MethodDelete)

	r.HandleFunc("/orders/", s.createOrderHandler).Methods(http.MethodPost)
	r.HandleFunc("/orders/", s.listOrdersHandler).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id}", s.updateOrderStatusHandler).Methods(http.MethodPatch)

	return r
}

// writeJSON encodes a 2xx JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeDetail encodes the backend's {detail} error envelope.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// authUser resolves the bearer token on a request, writing 401 when it is
// missing or unknown.
func (s *Server) authUser(w http.ResponseWriter, r *http.Request) *models.UserProfile {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return nil
	}
	user := s.store.userForToken(token)
	if user == nil {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return nil
	}
	return user
}

// requireAdmin resolves the caller and writes 403 for non-admins.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) *models.UserProfile {
	user := s.authUser(w, r)
	if user == nil {
		return nil
	}
	if !user.IsAdmin {
		writeDetail(w, http.StatusForbidden, "Not enough permissions")
		return nil
	}
	return user
}

func pagination(r *http.Request) (skip, limit int) {
	limit = 100
	if v := r.URL.Query().Get("skip"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			skip = parsed
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	return skip, limit
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil
}

// loginHandler handles POST /auth/login (OAuth2 password-grant form).
func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid form body")
		return
	}

	token := s.store.login(r.PostFormValue("username"), r.PostFormValue("password"))
	if token == "" {
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	writeJSON(w, http.StatusOK, models.AuthResponse{AccessToken: token, TokenType: "bearer"})
}

// registerHandler handles POST /users/register.
func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	var reg models.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if reg.Email == "" || reg.Password == "" {
		writeDetail(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	token, ok := s.store.register(reg)
	if !ok {
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}

	writeJSON(w, http.StatusCreated, models.AuthResponse{AccessToken: token, TokenType: "bearer"})
}

// meHandler handles GET /users/me.
func (s *Server) meHandler(w http.ResponseWriter, r *http.Request) {
	user := s.authUser(w, r)
	if user == nil {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// listUsersHandler handles GET /users/ (admin-only).
func (s *Server) listUsersHandler(w http.ResponseWriter, r *http.Request) {
	if s.requireAdmin(w, r) == nil {
		return
	}
	writeJSON(w, http.StatusOK, s.store.listUsers())
}

// listPizzasHandler handles GET /pizzas/?skip=&limit=.
func (s *Server) listPizzasHandler(w http.ResponseWriter, r *http.Request) {
	skip, limit := pagination(r)
	writeJSON(w, http.StatusOK, s.store.listPizzas(skip, limit))
}

// createPizzaHandler handles POST /pizzas/ (admin-only).
func (s *Server) createPizzaHandler(w http.ResponseWriter, r *http.Request) {
	if s.requireAdmin(w, r) == nil {
		return
	}

	var in models.PizzaInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if in.Name == "" || in.Price <= 0 {
		writeDetail(w, http.StatusBadRequest, "Name and a positive price are required")
		return
	}

	writeJSON(w, http.StatusCreated, s.store.createPizza(in))
}

// updatePizzaHandler handles PATCH /pizzas/{id} (admin-only).
func (s *Server) updatePizzaHandler(w http.ResponseWriter, r *http.Request) {
	if s.requireAdmin(w, r) == nil {
		return
	}

	id, ok := pathID(r)
	if !ok {
		writeDetail(w, http.StatusBadRequest, "Invalid pizza id")
		return
	}

	var in models.PizzaInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	pizza, found := s.store.updatePizza(id, in)
	if !found {
		writeDetail(w, http.StatusNotFound, "Pizza not found")
		return
	}
	writeJSON(w, http.StatusOK, pizza)
}

// deletePizzaHandler handles DELETE /pizzas/{id} (admin-only).
func (s *Server) deletePizzaHandler(w http.ResponseWriter, r *http.Request) {
	if s.requireAdmin(w, r) == nil {
		return
	}

	id, ok := pathID(r)
	if !ok {
		writeDetail(w, http.StatusBadRequest, "Invalid pizza id")
		return
	}
	if !s.store.deletePizza(id) {
		writeDetail(w, http.StatusNotFound, "Pizza not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// createOrderHandler handles POST /orders/.
func (s *Server) createOrderHandler(w http.ResponseWriter, r *http.Request) {
	user := s.authUser(w, r)
	if user == nil {
		return
	}

	var sub models.OrderSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(sub.Items) == 0 {
		writeDetail(w, http.StatusBadRequest, "Order must contain at least one item")
		return
	}

	writeJSON(w, http.StatusCreated, s.store.createOrder(user.ID, sub))
}

// listOrdersHandler handles GET /orders/?skip=&limit=.
func (s *Server) listOrdersHandler(w http.ResponseWriter, r *http.Request) {
	user := s.authUser(w, r)
	if user == nil {
		return
	}

	skip, limit := pagination(r)
	writeJSON(w, http.StatusOK, s.store.listOrders(*user, skip, limit))
}

// updateOrderStatusHandler handles PATCH /orders/{id} (admin-only).
func (s *Server) updateOrderStatusHandler(w http.ResponseWriter, r *http.Request) {
	if s.requireAdmin(w, r) == nil {
		return
	}

	id, ok := pathID(r)
	if !ok {
		writeDetail(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, found := s.store.updateOrderStatus(id, body.Status)
	if !found {
		writeDetail(w, http.StatusNotFound, "Order not found")
		return
	}
	writeJSON(w, http.StatusOK, order)
}
