package service

import (
	"context"
	"sync"

	"fragrance-sampler/models"
	"fragrance-sampler/repository"
)

// catalogSnapshot loads the catalog at most once per build and hands the same
// items to every reader, so the proposal prompt and the validator agree on prices.
type catalogSnapshot struct {
	load func() ([]models.Item, error)
}

// newCatalogSnapshot binds the load to ctx; readers waiting on it are bounded by CatalogTimeout
func (s *BundleService) newCatalogSnapshot(ctx context.Context) *catalogSnapshot {
	return &catalogSnapshot{
		load: sync.OnceValues(func() ([]models.Item, error) {
			return s.loadCatalog(ctx)
		}),
	}
}

// Ensure catalogSnapshot implements repository.CatalogReader
var _ repository.CatalogReader = (*catalogSnapshot)(nil)

// LoadCandidates returns the items read by the first caller
func (c *catalogSnapshot) LoadCandidates(ctx context.Context) ([]models.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.load()
}
