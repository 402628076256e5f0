package service

import (
	"context"

	"github.com/shopspring/decimal"

	"fragrance-sampler/models"
	"fragrance-sampler/repository"
)

// ProposalRequest is what a proposal source is told about the bundle to suggest
type ProposalRequest struct {
	Budget            decimal.Decimal
	Tier              models.Tier
	MinItems          int
	MaxItems          int
	MinUtilization    decimal.Decimal
	TargetUtilization decimal.Decimal
	// Catalog is the build's snapshot; sources that list items read them here
	// so they see exactly what the validator prices against
	Catalog repository.CatalogReader
}

// ProposalSourceInterface defines the contract for untrusted bundle proposal producers.
// The returned text is parsed defensively; nothing in it is trusted.
type ProposalSourceInterface interface {
	ProduceProposals(ctx context.Context, req ProposalRequest) (string, error)
}
