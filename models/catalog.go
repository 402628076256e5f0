package models

import (
	"strings"

	"github.com/shopspring/decimal"

	"fragrance-sampler/utils"
)

// Catalog is the read-only item/price snapshot available to a single request.
// It is never mutated after NewCatalog returns, so it can be shared by
// concurrent validators and composers.
type Catalog struct {
	items []Item
	index map[string]int
}

// NewCatalog builds a snapshot from items in the given order.
// Sizes are normalized, non-positive prices are discarded and the first
// occurrence of a repeated item ID wins.
func NewCatalog(items []Item) *Catalog {
	c := &Catalog{
		items: make([]Item, 0, len(items)),
		index: make(map[string]int, len(items)),
	}

	for _, item := range items {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			continue
		}
		if _, exists := c.index[id]; exists {
			continue
		}

		prices := make(map[string]decimal.Decimal, len(item.Prices))
		for size, price := range item.Prices {
			normalized := utils.NormalizeSize(size)
			if normalized == "" || !price.IsPositive() {
				continue
			}
			if _, exists := prices[normalized]; exists {
				continue
			}
			prices[normalized] = price
		}

		item.ID = id
		item.Prices = prices
		c.index[id] = len(c.items)
		c.items = append(c.items, item)
	}

	return c
}

// Items returns a copy of the catalog items in catalog order.
// Each item carries its own price map; changing it leaves the catalog untouched.
func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	for i, item := range c.items {
		out[i] = item.clone()
	}
	return out
}

// Len returns the number of distinct items
func (c *Catalog) Len() int {
	return len(c.items)
}

// Lookup finds an item by its exact reference
func (c *Catalog) Lookup(id string) (Item, bool) {
	idx, ok := c.index[strings.TrimSpace(id)]
	if !ok {
		return Item{}, false
	}
	return c.items[idx].clone(), true
}
