package mockapi

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ovenside/pizza-storefront/internal/models"
)

// account pairs a profile with its password. Plaintext is fine here; the
// mock exists for development and tests only.
type account struct {
	profile  models.UserProfile
	password string
}

// store is the mock backend's in-memory state.
type store struct {
	mu sync.Mutex

	pizzas      map[int64]models.Pizza
	nextPizzaID int64

	accounts   map[int64]*account
	nextUserID int64

	tokens map[string]int64 // bearer token -> user id

	orders      map[int64]models.Order
	nextOrderID int64
}

func newStore() *store {
	s := &store{
		pizzas:      make(map[int64]models.Pizza),
		nextPizzaID: 1,
		accounts:    make(map[int64]*account),
		nextUserID:  1,
		tokens:      make(map[string]int64),
		orders:      make(map[int64]models.Order),
		nextOrderID: 1,
	}
	s.seed()
	return s
}

// seed loads the demo catalog and the admin account.
func (s *store) seed() {
	for _, p := range []models.Pizza{
		{Name: "Margherita", Description: "Tomate, mozzarella, basilic", Price: 12.99, ImageURL: "/images/margherita.jpg",
			Toppings: []models.Topping{{ID: 1, Name: "Basilic", Price: 0}}},
		{Name: "Quattro Formaggi", Description: "Quatre fromages", Price: 14.50, ImageURL: "/images/quattro.jpg"},
		{Name: "Diavola", Description: "Salami piquant, piment", Price: 13.50, ImageURL: "/images/diavola.jpg",
			Toppings: []models.Topping{{ID: 2, Name: "Piment", Price: 0.50}}},
		{Name: "Regina", Description: "Jambon, champignons", Price: 13.00, ImageURL: "/images/regina.jpg"},
	} {
		p.ID = s.nextPizzaID
		s.pizzas[p.ID] = p
		s.nextPizzaID++
	}

	s.accounts[s.nextUserID] = &account{
		profile: models.UserProfile{
			ID:       s.nextUserID,
			Email:    "admin@pizzeria.local",
			FullName: "Admin",
			IsActive: true,
			IsAdmin:  true,
		},
		password: "admin123",
	}
	s.nextUserID++
}

func (s *store) findByEmail(email string) *account {
	for _, acc := range s.accounts {
		if acc.profile.Email == email {
			return acc
		}
	}
	return nil
}

// login checks credentials and mints a token, or returns "".
func (s *store) login(email, password string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.findByEmail(email)
	if acc == nil || acc.password != password {
		return ""
	}
	token := uuid.NewString()
	s.tokens[token] = acc.profile.ID
	return token
}

// register creates an account and mints a token. ok is false on a
// duplicate email.
func (s *store) register(reg models.Registration) (token string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findByEmail(reg.Email) != nil {
		return "", false
	}

	acc := &account{
		profile: models.UserProfile{
			ID:       s.nextUserID,
			Email:    reg.Email,
			FullName: reg.FullName,
			IsActive: true,
		},
		password: reg.Password,
	}
	s.accounts[acc.profile.ID] = acc
	s.nextUserID++

	token = uuid.NewString()
	s.tokens[token] = acc.profile.ID
	return token, true
}

// userForToken resolves a bearer token, or nil.
func (s *store) userForToken(token string) *models.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.tokens[token]
	if !ok {
		return nil
	}
	acc, ok := s.accounts[id]
	if !ok {
		return nil
	}
	profile := acc.profile
	return &profile
}

// revokeToken drops a token, for tests that simulate expiry.
func (s *store) revokeToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

func (s *store) listUsers() []models.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]models.UserProfile, 0, len(s.accounts))
	for _, acc := range s.accounts {
		users = append(users, acc.profile)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

func (s *store) listPizzas(skip, limit int) []models.Pizza {
	s.mu.Lock()
	defer s.mu.Unlock()

	pizzas := make([]models.Pizza, 0, len(s.pizzas))
	for _, p := range s.pizzas {
		pizzas = append(pizzas, p)
	}
	sort.Slice(pizzas, func(i, j int) bool { return pizzas[i].ID < pizzas[j].ID })
	return page(pizzas, skip, limit)
}

func (s *store) createPizza(in models.PizzaInput) models.Pizza {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := models.Pizza{
		ID:          s.nextPizzaID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    in.ImageURL,
		Toppings:    in.Toppings,
	}
	s.pizzas[p.ID] = p
	s.nextPizzaID++
	return p
}

func (s *store) updatePizza(id int64, in models.PizzaInput) (models.Pizza, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pizzas[id]
	if !ok {
		return models.Pizza{}, false
	}
	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.ImageURL = in.ImageURL
	p.Toppings = in.Toppings
	s.pizzas[id] = p
	return p, true
}

func (s *store) deletePizza(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pizzas[id]; !ok {
		return false
	}
	delete(s.pizzas, id)
	return true
}

func (s *store) createOrder(userID int64, sub models.OrderSubmission) models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	order := models.Order{
		ID:         s.nextOrderID,
		UserID:     userID,
		Status:     sub.Status,
		TotalPrice: sub.TotalPrice,
		Items:      sub.Items,
		OrderDate:  sub.OrderDate,
	}
	s.orders[order.ID] = order
	s.nextOrderID++
	return order
}

// listOrders returns all orders for admins, the user's own otherwise.
func (s *store) listOrders(user models.UserProfile, skip, limit int) []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if user.IsAdmin || o.UserID == user.ID {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return page(orders, skip, limit)
}

func (s *store) updateOrderStatus(id int64, status string) (models.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return models.Order{}, false
	}
	o.Status = status
	s.orders[id] = o
	return o, true
}

// page applies skip/limit slicing to a sorted listing.
func page[T any](items []T, skip, limit int) []T {
	if skip >= len(items) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
