package bundle

import (
	"fmt"
	"math/rand"

	"github.com/shopspring/decimal"

	"fragrance-sampler/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func prices(kv ...string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out[kv[i]] = d(kv[i+1])
	}
	return out
}

// fixtureItems is a small sampler catalog in shelf order
func fixtureItems() []models.Item {
	return []models.Item{
		{ID: "FR-001", Name: "Neroli Portofino", Brand: "Tom Ford", Family: "citrus", Intensity: "light", Prices: prices("2ml", "24.90", "5ml", "52.16", "10ml", "89.99")},
		{ID: "FR-002", Name: "Aventus", Brand: "Creed", Family: "fruity", Intensity: "intense", Prices: prices("2ml", "38.07", "5ml", "79.90", "10ml", "139.90")},
		{ID: "FR-003", Name: "Bleu de Chanel", Brand: "Chanel", Family: "aromatic", Intensity: "medium", Prices: prices("2ml", "21.50", "5ml", "48.00", "10ml", "86.00")},
		{ID: "FR-004", Name: "Baccarat Rouge 540", Brand: "Maison Francis Kurkdjian", Family: "amber", Intensity: "Eau de Parfum", Prices: prices("2ml", "45.00", "5ml", "99.00", "10ml", "178.00")},
		{ID: "FR-005", Name: "Acqua di Gio", Brand: "Giorgio Armani", Family: "aquatic", Intensity: "fresh", Prices: prices("2ml", "15.90", "5ml", "34.90", "10ml", "59.90")},
		{ID: "FR-006", Name: "Santal 33", Brand: "Le Labo", Family: "woody", Intensity: "", Prices: prices("2ml", "29.90", "5ml", "62.90")},
		{ID: "FR-007", Name: "Light Blue", Brand: "Dolce & Gabbana", Family: "citrus", Intensity: "soft", Prices: prices("2ml", "12.90", "5ml", "27.90", "10ml", "49.90")},
		{ID: "FR-008", Name: "Oud Wood", Brand: "Tom Ford", Family: "oud", Intensity: "strong", Prices: prices("2ml", "41.00", "5ml", "89.00", "10ml", "159.00")},
	}
}

func fixtureCatalog() *models.Catalog {
	return models.NewCatalog(fixtureItems())
}

// randomCatalog builds a reproducible catalog from seed
func randomCatalog(seed int64) *models.Catalog {
	rng := rand.New(rand.NewSource(seed))
	intensities := []string{"light", "medium", "intense", "", "mystery", "eau de parfum"}
	sizes := []string{"1ml", "2ml", "5ml", "10ml"}

	n := rng.Intn(12)
	items := make([]models.Item, 0, n)
	for i := 0; i < n; i++ {
		p := make(map[string]decimal.Decimal)
		price := int64(500 + rng.Intn(4000))
		for _, size := range sizes[:1+rng.Intn(len(sizes))] {
			p[size] = decimal.New(price, -2)
			price += int64(300 + rng.Intn(6000))
		}
		items = append(items, models.Item{
			ID:        fmt.Sprintf("R-%03d", i),
			Name:      fmt.Sprintf("Random %d", i),
			Family:    []string{"citrus", "woody", "floral"}[rng.Intn(3)],
			Intensity: intensities[rng.Intn(len(intensities))],
			Prices:    p,
		})
	}
	return models.NewCatalog(items)
}

// invariantViolation returns a description of the first broken invariant, or ""
func invariantViolation(policy Policy, budget decimal.Decimal, catalog *models.Catalog, b models.ValidatedBundle) string {
	seen := make(map[string]bool)
	sum := decimal.Zero
	for _, line := range b.Lines {
		if seen[line.ItemID] {
			return "duplicate item " + line.ItemID
		}
		seen[line.ItemID] = true

		item, found := catalog.Lookup(line.ItemID)
		price, ok := item.Prices[line.Size]
		if !found || !ok {
			return "line not in catalog " + line.ItemID + "@" + line.Size
		}
		if !price.Equal(line.UnitPrice) {
			return "line price differs from catalog for " + line.ItemID
		}
		sum = sum.Add(line.UnitPrice)
	}

	switch {
	case !sum.Equal(b.Total):
		return fmt.Sprintf("total %s != sum %s", b.Total, sum)
	case b.Total.GreaterThan(budget):
		return fmt.Sprintf("total %s over budget %s", b.Total, budget)
	case b.Total.LessThan(budget.Mul(policy.MinUtilization)):
		return fmt.Sprintf("total %s under utilized for budget %s", b.Total, budget)
	case len(b.Lines) < policy.MinItems:
		return fmt.Sprintf("only %d lines", len(b.Lines))
	}
	return ""
}
