package repository

import (
	"context"

	"fragrance-sampler/models"
)

// CatalogReader defines the contract for loading the candidate catalog.
// Items come back in shelf order; only purchasable sizes are listed.
type CatalogReader interface {
	LoadCandidates(ctx context.Context) ([]models.Item, error)
}
