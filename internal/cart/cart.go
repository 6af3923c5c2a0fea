package cart

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ovenside/pizza-storefront/internal/metrics"
	"github.com/ovenside/pizza-storefront/internal/models"
)

// Item is what a catalog view hands to the cart when the user adds a
// product.
type Item struct {
	PizzaID   int64
	Name      string
	UnitPrice decimal.Decimal
	ImageURL  string
}

// ItemFromPizza builds a cart item from a catalog entry.
func ItemFromPizza(p models.Pizza) Item {
	return Item{
		PizzaID:   p.ID,
		Name:      p.Name,
		UnitPrice: decimal.NewFromFloat(p.Price),
		ImageURL:  p.ImageURL,
	}
}

// Line is one distinct product in the cart. At most one line exists per
// pizza id; adding the same pizza again merges into the existing line.
type Line struct {
	Item
	Quantity int
}

// Total returns unit price times quantity for this line.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the in-memory aggregation of lines keyed by pizza id. It is
// owned by the current process and never persisted to the backend until
// checkout. Totals are recomputed from the lines on every read.
type Cart struct {
	mu      sync.Mutex
	lines   map[int64]*Line
	order   []int64 // insertion order, for stable display
	metrics *metrics.AppMetrics
}

// New creates an empty cart. metrics may be metrics.NewNoop().
func New(m *metrics.AppMetrics) *Cart {
	return &Cart{
		lines:   make(map[int64]*Line),
		metrics: m,
	}
}

// Add merges qty of an item into the cart. A qty below 1 is treated as 1.
// Add never fails.
func (c *Cart) Add(item Item, qty int) {
	if qty < 1 {
		qty = 1
	}

	c.mu.Lock()
	if line, ok := c.lines[item.PizzaID]; ok {
		line.Quantity += qty
	} else {
		c.lines[item.PizzaID] = &Line{Item: item, Quantity: qty}
		c.order = append(c.order, item.PizzaID)
	}
	c.mu.Unlock()

	c.recordState()
}

// SetQuantity sets the quantity of an existing line. An absent id is a
// no-op. A quantity below 1 removes the line: the minus button on a
// quantity of 1 empties that line rather than pinning it at 1.
func (c *Cart) SetQuantity(pizzaID int64, qty int) {
	c.mu.Lock()
	if _, ok := c.lines[pizzaID]; !ok {
		c.mu.Unlock()
		return
	}
	if qty < 1 {
		c.removeLocked(pizzaID)
	} else {
		c.lines[pizzaID].Quantity = qty
	}
	c.mu.Unlock()

	c.recordState()
}

// Remove deletes a line. An absent id is a no-op, not an error.
func (c *Cart) Remove(pizzaID int64) {
	c.mu.Lock()
	c.removeLocked(pizzaID)
	c.mu.Unlock()

	c.recordState()
}

func (c *Cart) removeLocked(pizzaID int64) {
	if _, ok := c.lines[pizzaID]; !ok {
		return
	}
	delete(c.lines, pizzaID)
	for i, id := range c.order {
		if id == pizzaID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Clear empties the cart unconditionally.
func (c *Cart) Clear() {
	c.mu.Lock()
	c.lines = make(map[int64]*Line)
	c.order = nil
	c.mu.Unlock()

	c.recordState()
}

// Lines returns the cart lines in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Line, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.lines[id])
	}
	return out
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c.Len() == 0
}

// Subtotal returns the sum of unit price times quantity over all lines.
func (c *Cart) Subtotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subtotalLocked()
}

func (c *Cart) subtotalLocked() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Total())
	}
	return total
}

// ItemCount returns the sum of quantities over all lines.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.itemCountLocked()
}

func (c *Cart) itemCountLocked() int {
	count := 0
	for _, line := range c.lines {
		count += line.Quantity
	}
	return count
}

// recordState updates the cart gauges after a mutation.
func (c *Cart) recordState() {
	if c.metrics == nil {
		return
	}
	c.mu.Lock()
	count := c.itemCountLocked()
	subtotal := c.subtotalLocked()
	c.mu.Unlock()
	c.metrics.RecordCartState(context.Background(), count, subtotal.InexactFloat64())
}
