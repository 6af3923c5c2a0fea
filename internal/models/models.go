package models

import "time"

// Pizza represents one product in the catalog as served by the backend.
type Pizza struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"image_url"`
	Toppings    []Topping `json:"toppings"`
}

// Topping is an ingredient nested under a pizza.
type Topping struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// PizzaInput is the write payload for creating or updating a pizza.
type PizzaInput struct {
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description"`
	Price       float64   `json:"price" validate:"required,gt=0"`
	ImageURL    string    `json:"image_url"`
	Toppings    []Topping `json:"toppings"`
}

// UserProfile is the backend's projection of the current user.
type UserProfile struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	IsActive bool   `json:"is_active"`
	IsAdmin  bool   `json:"is_admin"`
}

// Credentials is a login request. The backend's OAuth2 form expects the
// email in the username field.
type Credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Registration is the payload for creating an account.
type Registration struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// OrderItem is one line of an order submission or a fetched order.
type OrderItem struct {
	PizzaID  int64   `json:"pizza_id"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// OrderSubmission is the one-way snapshot sent at checkout. Once accepted
// the order is owned by the backend.
type OrderSubmission struct {
	Items      []OrderItem `json:"items"`
	Status     string      `json:"status"`
	TotalPrice float64     `json:"total_price"`
	OrderDate  time.Time   `json:"order_date"`
}

// Order is an order as returned by the backend.
type Order struct {
	ID         int64       `json:"id"`
	UserID     int64       `json:"user_id,omitempty"`
	Status     string      `json:"status"`
	TotalPrice float64     `json:"total_price"`
	Items      []OrderItem `json:"items"`
	OrderDate  time.Time   `json:"order_date"`
}

// Order statuses used by the backend. OrderStatusPending is the only one
// the storefront ever sets itself; the rest appear in admin listings.
const (
	OrderStatusPending   = "pending"
	OrderStatusPreparing = "preparing"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)
