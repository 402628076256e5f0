package models

import (
	"sort"

	"github.com/shopspring/decimal"

	"fragrance-sampler/utils"
)

// Item represents a fragrance that can be sampled, with its authoritative
// unit price per size (e.g. "2ml" -> 12.90)
type Item struct {
	ID        string                     `json:"id" yaml:"id"`
	Name      string                     `json:"name" yaml:"name"`
	Brand     string                     `json:"brand" yaml:"brand"`
	Family    string                     `json:"family" yaml:"family"`       // Scent family (e.g. "citrus", "woody")
	Intensity string                     `json:"intensity" yaml:"intensity"` // Free text tier as stored in the catalog
	Prices    map[string]decimal.Decimal `json:"prices" yaml:"prices"`
}

// Sizes returns the item's sizes ordered from smallest to largest.
// Sizes with a volume come first, by volume; the rest follow by price.
// Ties break on the size label, so the order never depends on map iteration.
func (i Item) Sizes() []string {
	sizes := make([]string, 0, len(i.Prices))
	for size := range i.Prices {
		sizes = append(sizes, size)
	}
	sort.Slice(sizes, func(a, b int) bool {
		va, okA := utils.SizeVolume(sizes[a])
		vb, okB := utils.SizeVolume(sizes[b])
		if okA != okB {
			return okA
		}
		if okA && va != vb {
			return va < vb
		}
		pa, pb := i.Prices[sizes[a]], i.Prices[sizes[b]]
		if !pa.Equal(pb) {
			return pa.LessThan(pb)
		}
		return sizes[a] < sizes[b]
	})
	return sizes
}

// clone copies the item with its own price map
func (i Item) clone() Item {
	prices := make(map[string]decimal.Decimal, len(i.Prices))
	for size, price := range i.Prices {
		prices[size] = price
	}
	i.Prices = prices
	return i
}
