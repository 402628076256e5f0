package service

import (
	"context"

	"github.com/shopspring/decimal"

	"fragrance-sampler/models"
)

// BundleServiceInterface defines the contract for bundle building operations
type BundleServiceInterface interface {
	Build(ctx context.Context, budget decimal.Decimal) (*models.BuildResult, error)
	// ValidateProposals runs raw proposal text through parsing and validation without the fallback
	ValidateProposals(ctx context.Context, budget decimal.Decimal, text string) (*ValidationResult, error)
	Candidates(ctx context.Context) ([]models.Item, error)
}
