package bundle

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"fragrance-sampler/models"
)

// Policy holds the bundle composition rules
type Policy struct {
	MinItems            int             `yaml:"min_items"`
	MaxItems            int             `yaml:"max_items"`
	MinUtilization      decimal.Decimal `yaml:"min_utilization"`    // Hard floor for every returned bundle
	TargetUtilization   decimal.Decimal `yaml:"target_utilization"` // Soft goal, only told to the proposal source
	ReferenceSmallPrice decimal.Decimal `yaml:"reference_small_price"`
	MaxTags             int             `yaml:"max_tags"`
	Tiers               []TierRule      `yaml:"tiers"` // T1, T2, T3 in increasing order
}

// TierRule describes a budget tier starting at From
type TierRule struct {
	From        decimal.Decimal    `yaml:"from"`
	TargetItems int                `yaml:"target_items"`
	Sizes       []models.SizeClass `yaml:"sizes"`       // Largest first, never "large"
	LargeLines  int                `yaml:"large_lines"` // Leading lines allowed to use the largest size
}

// tierCount is the number of configured thresholds (T1 < T2 < T3)
const tierCount = 3

// DefaultPolicy returns the policy used when no policy file is configured
func DefaultPolicy() Policy {
	return Policy{
		MinItems:            3,
		MaxItems:            8,
		MinUtilization:      decimal.RequireFromString("0.70"),
		TargetUtilization:   decimal.RequireFromString("0.85"),
		ReferenceSmallPrice: decimal.NewFromInt(25),
		MaxTags:             6,
		Tiers: []TierRule{
			{From: decimal.NewFromInt(150), TargetItems: 4, Sizes: []models.SizeClass{models.SizeMedium, models.SizeSmall}},
			{From: decimal.NewFromInt(300), TargetItems: 5, Sizes: []models.SizeClass{models.SizeMedium, models.SizeSmall}, LargeLines: 1},
			{From: decimal.NewFromInt(600), TargetItems: 6, Sizes: []models.SizeClass{models.SizeMedium, models.SizeSmall}, LargeLines: 2},
		},
	}
}

// LoadPolicy reads a YAML policy file on top of DefaultPolicy.
// Fields missing from the file keep their default value.
func LoadPolicy(path string) (Policy, error) {
	policy := DefaultPolicy()

	// Resolve config path
	if !filepath.IsAbs(path) {
		wd, err := os.Getwd()
		if err != nil {
			return Policy{}, fmt.Errorf("failed to get working directory: %w", err)
		}
		path = filepath.Join(wd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("failed to read bundle policy: %w", err)
	}

	if err := yaml.Unmarshal(data, &policy); err != nil {
		return Policy{}, fmt.Errorf("failed to parse bundle policy: %w", err)
	}

	if err := policy.Validate(); err != nil {
		return Policy{}, fmt.Errorf("invalid bundle policy: %w", err)
	}

	return policy, nil
}

// Validate checks the policy for internal consistency
func (p Policy) Validate() error {
	if p.MinItems < 1 {
		return fmt.Errorf("min_items must be at least 1")
	}
	if p.MaxItems < p.MinItems {
		return fmt.Errorf("max_items (%d) must not be below min_items (%d)", p.MaxItems, p.MinItems)
	}
	if !p.MinUtilization.IsPositive() || p.MinUtilization.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("min_utilization must be in (0, 1]")
	}
	if p.TargetUtilization.LessThan(p.MinUtilization) || p.TargetUtilization.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("target_utilization must be in [min_utilization, 1]")
	}
	if !p.ReferenceSmallPrice.IsPositive() {
		return fmt.Errorf("reference_small_price must be positive")
	}
	if len(p.Tiers) != tierCount {
		return fmt.Errorf("exactly %d tiers are required, got %d", tierCount, len(p.Tiers))
	}

	for i, tier := range p.Tiers {
		if !tier.From.IsPositive() {
			return fmt.Errorf("tier %d: from must be positive", i+1)
		}
		if i > 0 && !tier.From.GreaterThan(p.Tiers[i-1].From) {
			return fmt.Errorf("tier %d: thresholds must be strictly increasing", i+1)
		}
		if tier.TargetItems < p.MinItems || tier.TargetItems > p.MaxItems {
			return fmt.Errorf("tier %d: target_items must be within [min_items, max_items]", i+1)
		}
		if tier.LargeLines < 0 {
			return fmt.Errorf("tier %d: large_lines must not be negative", i+1)
		}
		hasSmall := false
		for _, class := range tier.Sizes {
			switch class {
			case models.SizeSmall:
				hasSmall = true
			case models.SizeMedium:
			case models.SizeLarge:
				return fmt.Errorf("tier %d: use large_lines to allow the largest size", i+1)
			default:
				return fmt.Errorf("tier %d: unknown size class %q", i+1, class)
			}
		}
		if !hasSmall {
			return fmt.Errorf("tier %d: sizes must include small", i+1)
		}
	}

	return nil
}
