package domain

import (
	"sort"
	"time"
)

// CartLine holds every pack size picked for one product.
type CartLine struct {
	ProductID uint64         `json:"productId"`
	Packs     map[string]int `json:"packs"`
}

type Cart struct {
	ID        string     `json:"cartId"`
	Items     []CartLine `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func NewCart(id string) *Cart {
	return &Cart{ID: id, Items: []CartLine{}}
}

// Add increments the pack quantity of an existing line or appends a new line.
// Non-positive quantities are ignored; the result saturates at MaxLineQuantity.
func (c *Cart) Add(productID uint64, packSize string, quantity int) {
	if quantity <= 0 {
		return
	}

	if i := c.indexOf(productID); i >= 0 {
		c.Items[i].Packs[packSize] = addQuantity(c.Items[i].Packs[packSize], quantity)
		return
	}

	c.Items = append(c.Items, CartLine{
		ProductID: productID,
		Packs:     map[string]int{packSize: addQuantity(0, quantity)},
	})
}

// UpdateQuantity applies delta clamped to [0, MaxLineQuantity]. A pack that
// reaches zero is dropped, and a line left without packs is dropped with it.
func (c *Cart) UpdateQuantity(productID uint64, packSize string, delta int) {
	i := c.indexOf(productID)
	if i < 0 {
		return
	}

	line := c.Items[i]
	current, ok := line.Packs[packSize]
	if !ok {
		return
	}

	next := addQuantity(current, delta)
	if next > 0 {
		line.Packs[packSize] = next
		return
	}

	delete(line.Packs, packSize)
	if len(line.Packs) == 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	}
}

func (c *Cart) Remove(productID uint64) {
	if i := c.indexOf(productID); i >= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	}
}

func (c *Cart) Clear() {
	c.Items = []CartLine{}
}

func (c *Cart) Quantity(productID uint64, packSize string) int {
	if i := c.indexOf(productID); i >= 0 {
		return c.Items[i].Packs[packSize]
	}
	return 0
}

func (c *Cart) Contains(productID uint64) bool {
	return c.indexOf(productID) >= 0
}

// PackSizes lists a line's pack sizes in a stable order.
func (l CartLine) PackSizes() []string {
	sizes := make([]string, 0, len(l.Packs))
	for size := range l.Packs {
		sizes = append(sizes, size)
	}
	sort.Strings(sizes)
	return sizes
}

// addQuantity returns current+delta clamped to [0, MaxLineQuantity] without
// overflowing int. current is never negative.
func addQuantity(current, delta int) int {
	if current > MaxLineQuantity {
		current = MaxLineQuantity
	}
	if delta > 0 && current > MaxLineQuantity-delta {
		return MaxLineQuantity
	}

	next := current + delta
	if next < 0 {
		return 0
	}
	return next
}

func (c *Cart) indexOf(productID uint64) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}
