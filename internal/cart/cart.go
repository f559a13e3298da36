package cart

import (
	"github.com/shopspring/decimal"

	"github.com/babyland-store/babyland/internal/domain"
)

// Line is one product's presence in the cart. The product is embedded by
// value so the cart can render name/price/code without re-fetching; the
// price locked in here is the one used for totals, not a live lookup.
type Line struct {
	Product  domain.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

// Cart is an ordered sequence of lines. Insertion order is stable: quantity
// updates never move a line, and only genuinely new products append. At most
// one line exists per product id, and every mutation clamps quantity to a
// minimum of 1. All mutations are total functions; none of them can fail.
type Cart struct {
	Lines []Line `json:"lines"`
}

// Add merges quantity into an existing line for the same product id, keeping
// the product snapshot taken at first add, or appends a new line at the end.
func (c *Cart) Add(p domain.Product, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	for i := range c.Lines {
		if c.Lines[i].Product.ID == p.ID {
			c.Lines[i].Quantity += quantity
			return
		}
	}
	c.Lines = append(c.Lines, Line{Product: p, Quantity: quantity})
}

// SetQuantity sets the line's quantity to max(1, quantity). Unknown product
// ids are a no-op, not an error.
func (c *Cart) SetQuantity(productID string, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	for i := range c.Lines {
		if c.Lines[i].Product.ID == productID {
			c.Lines[i].Quantity = quantity
			return
		}
	}
}

// Remove drops the line for productID, preserving the relative order of the
// remaining lines. A product re-added after removal is treated as new and
// appends at the end.
func (c *Cart) Remove(productID string) {
	for i := range c.Lines {
		if c.Lines[i].Product.ID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// Clear resets the cart to empty. Idempotent.
func (c *Cart) Clear() {
	c.Lines = nil
}

func (c *Cart) Empty() bool {
	return len(c.Lines) == 0
}

// TotalItems is the sum of all line quantities.
func (c *Cart) TotalItems() int {
	total := 0
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}

// TotalAmount is the sum of unit price times quantity over all lines, using
// each line's embedded add-time price.
func (c *Cart) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}
