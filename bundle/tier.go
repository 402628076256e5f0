package bundle

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"fragrance-sampler/models"
)

// TierFor maps a budget to a target item count and size preference.
// It never looks at the catalog and is defined for every budget.
func (p Policy) TierFor(budget decimal.Decimal) models.Tier {
	level := 0
	for i, rule := range p.Tiers {
		if budget.GreaterThanOrEqual(rule.From) {
			level = i + 1
		}
	}

	if level == 0 {
		target := p.MinItems
		if budget.IsPositive() {
			byPrice := budget.Div(p.ReferenceSmallPrice).Floor().IntPart()
			if byPrice > int64(target) {
				target = int(min(byPrice, int64(p.MaxItems)))
			}
		}
		return models.Tier{
			Level:           0,
			TargetItemCount: target,
			SizePreference:  []models.SizeClass{models.SizeSmall},
		}
	}

	rule := p.Tiers[level-1]
	sizes := make([]models.SizeClass, len(rule.Sizes))
	copy(sizes, rule.Sizes)

	return models.Tier{
		Level:           level,
		TargetItemCount: rule.TargetItems,
		SizePreference:  sizes,
		MaxLargeLines:   rule.LargeLines,
	}
}

// TierHint renders the tier as plain instructions for the proposal source
func TierHint(tier models.Tier) string {
	classes := make([]string, len(tier.SizePreference))
	for i, class := range tier.SizePreference {
		classes[i] = string(class)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Aim for %d distinct fragrances.", tier.TargetItemCount)
	fmt.Fprintf(&b, " Prefer %s sizes.", strings.Join(classes, " and "))
	switch {
	case tier.MaxLargeLines == 1:
		b.WriteString(" The largest size is allowed for the first fragrance only.")
	case tier.MaxLargeLines > 1:
		fmt.Fprintf(&b, " The largest size is allowed for at most the first %d fragrances.", tier.MaxLargeLines)
	default:
		b.WriteString(" Do not use the largest size.")
	}
	return b.String()
}
