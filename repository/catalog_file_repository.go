package repository

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"fragrance-sampler/models"
)

// catalogFile is the on-disk YAML catalog layout
type catalogFile struct {
	Items []catalogFileItem `yaml:"items"`
}

type catalogFileItem struct {
	models.Item `yaml:",inline"`
	Inactive    bool `yaml:"inactive"`
}

// FileCatalogRepository loads sampler candidates from a YAML file.
// The file is read on every call so edits are picked up without a restart.
type FileCatalogRepository struct {
	path   string
	logger *zap.Logger
}

// NewFileCatalogRepository creates a new FileCatalogRepository
func NewFileCatalogRepository(path string, logger *zap.Logger) *FileCatalogRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileCatalogRepository{
		path:   path,
		logger: logger,
	}
}

// Ensure FileCatalogRepository implements CatalogReader
var _ CatalogReader = (*FileCatalogRepository)(nil)

// LoadCandidates reads the catalog file and returns its active items in file order
func (r *FileCatalogRepository) LoadCandidates(ctx context.Context) ([]models.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", r.path, err)
	}

	items := make([]models.Item, 0, len(file.Items))
	for _, entry := range file.Items {
		if entry.Inactive {
			continue
		}
		items = append(items, entry.Item)
	}

	r.logger.Info("✓ Loaded catalog file",
		zap.String("path", r.path),
		zap.Int("items", len(items)))
	return items, nil
}
