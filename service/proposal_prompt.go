package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"fragrance-sampler/bundle"
	"fragrance-sampler/models"
	"fragrance-sampler/utils"
)

// maxPromptItems bounds the catalog listing sent to the model
const maxPromptItems = 80

// BuildProposalPrompt renders the instructions and catalog listing for a proposal request
func BuildProposalPrompt(req ProposalRequest, items []models.Item) string {
	var b strings.Builder

	b.WriteString("You assemble fragrance sampler bundles for a perfume decant store.\n")
	fmt.Fprintf(&b, "Budget: %s (%s).\n", req.Budget.StringFixed(2), utils.FormatBRL(req.Budget))
	fmt.Fprintf(&b, "Each bundle must contain between %d and %d different fragrances, each at most once.\n", req.MinItems, req.MaxItems)
	fmt.Fprintf(&b, "A bundle total must never exceed the budget and must reach at least %s of it; aim for about %s.\n",
		percent(req.MinUtilization), percent(req.TargetUtilization))
	b.WriteString(bundle.TierHint(req.Tier))
	b.WriteString("\nMix light, medium and intense fragrances when possible.\n")
	b.WriteString("Use only the item ids and sizes listed below, with the listed prices.\n\n")

	b.WriteString("Catalog (id | name | brand | family | intensity | size=price):\n")
	for i, item := range items {
		if i == maxPromptItems {
			break
		}
		sizes := item.Sizes()
		offers := make([]string, len(sizes))
		for j, size := range sizes {
			offers[j] = fmt.Sprintf("%s=%s", size, item.Prices[size].StringFixed(2))
		}
		fmt.Fprintf(&b, "%s | %s | %s | %s | %s | %s\n",
			item.ID, item.Name, item.Brand, item.Family, utils.IntensityBucket(item.Intensity), strings.Join(offers, ", "))
	}

	b.WriteString("\nAnswer with JSON only, up to 3 bundles, in this shape:\n")
	b.WriteString(`{"bundles":[{"name":"...","description":"...","tags":["..."],"lines":[{"itemId":"...","size":"5ml","unitPrice":0.00}],"total":0.00}]}`)
	b.WriteString("\n")

	return b.String()
}

func percent(ratio decimal.Decimal) string {
	return ratio.Mul(decimal.NewFromInt(100)).StringFixed(0) + "%"
}
