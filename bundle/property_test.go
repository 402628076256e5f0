package bundle

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fragrance-sampler/models"
)

// TestComposerInvariants verifies every composed bundle is compliant and reproducible.
// Property: Compose(c, b) is either rejected or satisfies every invariant, and equals a second run
func TestComposerInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	policy := DefaultPolicy()
	composer := NewComposer(policy, zap.NewNop())

	properties.Property("composed bundles are compliant and deterministic", prop.ForAll(
		func(seed int64, budgetCents int64) bool {
			catalog := randomCatalog(seed)
			budget := decimal.New(budgetCents, -2)
			tier := policy.TierFor(budget)

			first, ok := composer.Compose(catalog, budget, tier)
			second, ok2 := composer.Compose(catalog, budget, tier)
			if ok != ok2 || !cmp.Equal(first, second) {
				return false
			}
			if !ok {
				return first == nil
			}
			return invariantViolation(policy, budget, catalog, *first) == ""
		},
		gen.Int64(),
		gen.Int64Range(1000, 150000),
	))

	properties.TestingRun(t)
}

// TestComposerFindsEasyBundles verifies the composer does not give up when the
// catalog plainly supports a bundle.
// Property: with >= 3 single-size items priced within [floor/3, budget/3], Compose succeeds
func TestComposerFindsEasyBundles(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	policy := DefaultPolicy()
	composer := NewComposer(policy, zap.NewNop())

	properties.Property("easy catalogs always yield a bundle", prop.ForAll(
		func(n int, budgetCents int64) bool {
			budget := decimal.New(budgetCents, -2)
			// 0.80 * budget / 3 keeps three items between the 70% floor and the budget
			price := budget.Mul(decimal.RequireFromString("0.80")).Div(decimal.NewFromInt(3)).Round(2)

			items := make([]models.Item, n)
			for i := range items {
				items[i] = models.Item{
					ID:     fmt.Sprintf("E-%d", i),
					Prices: map[string]decimal.Decimal{"5ml": price},
				}
			}
			catalog := models.NewCatalog(items)

			b, ok := composer.Compose(catalog, budget, policy.TierFor(budget))
			return ok && invariantViolation(policy, budget, catalog, *b) == ""
		},
		gen.IntRange(3, 10),
		gen.Int64Range(3000, 200000),
	))

	properties.TestingRun(t)
}

// TestValidatorInvariants verifies no accepted bundle breaks an invariant, whatever the proposals claim.
// Property: for random proposals with junk lines and fake prices, accepted bundles are compliant
func TestValidatorInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	policy := DefaultPolicy()
	validator := NewValidator(policy, zap.NewNop())

	properties.Property("accepted bundles are compliant", prop.ForAll(
		func(seed int64, budgetCents int64) bool {
			catalog := fixtureCatalog()
			budget := decimal.New(budgetCents, -2)
			proposals := randomProposals(seed, catalog)

			accepted, report := validator.Validate(proposals, catalog, budget)
			if report.Accepted != len(accepted) || report.Accepted+report.Rejected != len(proposals) {
				return false
			}
			for _, b := range accepted {
				if invariantViolation(policy, budget, catalog, b) != "" {
					return false
				}
			}

			again, _ := validator.Validate(proposals, catalog, budget)
			return cmp.Equal(accepted, again)
		},
		gen.Int64(),
		gen.Int64Range(5000, 100000),
	))

	properties.TestingRun(t)
}

// randomProposals mixes real lines with duplicates, unknown items, bad sizes and fake prices
func randomProposals(seed int64, catalog *models.Catalog) []models.RawProposal {
	rng := rand.New(rand.NewSource(seed))
	items := catalog.Items()
	sizes := []string{"2ml", "5ml", "10ml", "50ml", ""}

	proposals := make([]models.RawProposal, rng.Intn(5))
	for i := range proposals {
		n := rng.Intn(7)
		lines := make([]models.RawLine, n)
		for j := range lines {
			id := items[rng.Intn(len(items))].ID
			if rng.Intn(8) == 0 {
				id = fmt.Sprintf("FAKE-%d", rng.Intn(3))
			}
			lines[j] = models.RawLine{
				ItemID:           id,
				Size:             sizes[rng.Intn(len(sizes))],
				ClaimedUnitPrice: decimal.New(int64(rng.Intn(10000)), -2),
			}
		}
		proposals[i] = models.RawProposal{
			Name:         fmt.Sprintf("proposal %d", i),
			Lines:        lines,
			ClaimedTotal: decimal.New(int64(rng.Intn(50000)), -2),
		}
	}
	return proposals
}
