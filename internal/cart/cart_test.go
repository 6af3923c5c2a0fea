package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovenside/pizza-storefront/internal/metrics"
	"github.com/ovenside/pizza-storefront/internal/models"
)

func pizzaFixture() models.Pizza {
	return models.Pizza{ID: 7, Name: "Regina", Price: 10.50}
}

func price(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func margherita() Item {
	return Item{PizzaID: 1, Name: "Margherita", UnitPrice: price("12.99")}
}

func quattro() Item {
	return Item{PizzaID: 2, Name: "Quattro Formaggi", UnitPrice: price("8.50")}
}

func newCart() *Cart {
	return New(metrics.NewNoop())
}

func TestAddMergesByPizzaID(t *testing.T) {
	c := newCart()

	c.Add(margherita(), 2)
	c.Add(margherita(), 3)
	c.Add(margherita(), 1)

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 6, lines[0].Quantity)
	assert.Equal(t, int64(1), lines[0].PizzaID)
}

func TestAddClampsQuantityBelowOne(t *testing.T) {
	c := newCart()

	c.Add(margherita(), 0)
	assert.Equal(t, 1, c.ItemCount())

	c.Add(quattro(), -4)
	assert.Equal(t, 2, c.ItemCount())
}

func TestSubtotalAndItemCountExample(t *testing.T) {
	c := newCart()

	c.Add(margherita(), 2) // 12.99 x 2
	c.Add(quattro(), 1)    // 8.50 x 1

	assert.Equal(t, 3, c.ItemCount())
	assert.True(t, c.Subtotal().Equal(price("34.48")), "got %s", c.Subtotal())
}

func TestSetQuantityBelowOneRemovesLine(t *testing.T) {
	c := newCart()
	c.Add(margherita(), 2)
	c.Add(quattro(), 1)

	c.SetQuantity(1, 0)

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 1, c.ItemCount())
	assert.True(t, c.Subtotal().Equal(price("8.50")), "got %s", c.Subtotal())

	c.SetQuantity(2, -1)
	assert.True(t, c.IsEmpty())
}

func TestSetQuantityOnAbsentIDIsNoOp(t *testing.T) {
	c := newCart()
	c.Add(margherita(), 2)

	c.SetQuantity(99, 5)

	assert.Equal(t, 2, c.ItemCount())
	assert.Equal(t, 1, c.Len())
}

func TestSetQuantityReplacesValue(t *testing.T) {
	c := newCart()
	c.Add(margherita(), 2)

	c.SetQuantity(1, 7)

	assert.Equal(t, 7, c.ItemCount())
	assert.True(t, c.Subtotal().Equal(price("90.93")), "got %s", c.Subtotal())
}

func TestRemoveAbsentIDLeavesCartUnchanged(t *testing.T) {
	c := newCart()
	c.Add(margherita(), 2)
	c.Add(quattro(), 1)

	before := c.Subtotal()
	c.Remove(42)

	assert.Equal(t, 3, c.ItemCount())
	assert.True(t, c.Subtotal().Equal(before))
	assert.Equal(t, 2, c.Len())
}

func TestRemoveDeletesLine(t *testing.T) {
	c := newCart()
	c.Add(margherita(), 2)
	c.Add(quattro(), 1)

	c.Remove(1)

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int64(2), lines[0].PizzaID)
}

func TestClearEmptiesRegardlessOfPriorState(t *testing.T) {
	c := newCart()
	c.Add(margherita(), 5)
	c.Add(quattro(), 3)

	c.Clear()

	assert.Equal(t, 0, c.ItemCount())
	assert.True(t, c.Subtotal().IsZero())
	assert.True(t, c.IsEmpty())

	// Clearing an already-empty cart is fine too.
	c.Clear()
	assert.Equal(t, 0, c.ItemCount())
}

func TestTotalsTrackInterleavedMutations(t *testing.T) {
	c := newCart()

	c.Add(margherita(), 1)
	assert.True(t, c.Subtotal().Equal(price("12.99")))

	c.Add(quattro(), 2)
	assert.True(t, c.Subtotal().Equal(price("29.99")))

	c.SetQuantity(2, 1)
	assert.True(t, c.Subtotal().Equal(price("21.49")))

	c.Remove(1)
	assert.True(t, c.Subtotal().Equal(price("8.50")))
	assert.Equal(t, 1, c.ItemCount())
}

func TestLinesKeepInsertionOrder(t *testing.T) {
	c := newCart()
	c.Add(quattro(), 1)
	c.Add(margherita(), 1)
	c.Add(Item{PizzaID: 3, Name: "Diavola", UnitPrice: price("11.00")}, 1)

	c.Remove(1)
	c.Add(Item{PizzaID: 4, Name: "Calzone", UnitPrice: price("9.00")}, 1)

	var ids []int64
	for _, line := range c.Lines() {
		ids = append(ids, line.PizzaID)
	}
	assert.Equal(t, []int64{2, 3, 4}, ids)
}

func TestItemFromPizza(t *testing.T) {
	item := ItemFromPizza(pizzaFixture())
	assert.Equal(t, int64(7), item.PizzaID)
	assert.Equal(t, "Regina", item.Name)
	assert.True(t, item.UnitPrice.Equal(price("10.50")))
}
