package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fragrance-sampler/models"
	"fragrance-sampler/utils"
)

const candidatesQuery = `
		SELECT
			f.id,
			f.name,
			COALESCE(f.brand, '') AS brand,
			COALESCE(f.family, '') AS family,
			COALESCE(f.intensity, '') AS intensity,
			s.size,
			s.price::text
		FROM fragrances f
		INNER JOIN fragrance_sizes s ON s.fragrance_id = f.id
		WHERE f.is_active = true
		  AND s.in_stock = true
		  AND s.price > 0
		ORDER BY f.position ASC, f.id ASC, s.size ASC
	`

// CatalogRepository loads sampler candidates from PostgreSQL
type CatalogRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCatalogRepository creates a new CatalogRepository
func NewCatalogRepository(db *sql.DB, logger *zap.Logger) *CatalogRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogRepository{
		db:     db,
		logger: logger,
	}
}

// Ensure CatalogRepository implements CatalogReader
var _ CatalogReader = (*CatalogRepository)(nil)

// LoadCandidates retrieves active fragrances with their in-stock sizes.
// One row per size is folded into one item per fragrance, keeping shelf order.
func (r *CatalogRepository) LoadCandidates(ctx context.Context) ([]models.Item, error) {
	r.logger.Debug("🔍 LoadCandidates: fetching sampler candidates")

	rows, err := r.db.QueryContext(ctx, candidatesQuery)
	if err != nil {
		r.logger.Error("❌ Error querying sampler candidates", zap.Error(err))
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	index := make(map[string]int)
	skipped := 0

	for rows.Next() {
		var id, name, brand, family, intensity, size string
		var price decimal.Decimal

		if err := rows.Scan(&id, &name, &brand, &family, &intensity, &size, &price); err != nil {
			r.logger.Warn("⚠️  Error scanning candidate row", zap.Error(err))
			skipped++
			continue
		}

		normalizedSize := utils.NormalizeSize(size)
		if normalizedSize == "" || !price.IsPositive() {
			skipped++
			continue
		}

		i, ok := index[id]
		if !ok {
			i = len(items)
			index[id] = i
			items = append(items, models.Item{
				ID:        id,
				Name:      strings.TrimSpace(name),
				Brand:     strings.TrimSpace(brand),
				Family:    strings.ToLower(strings.TrimSpace(family)),
				Intensity: strings.TrimSpace(intensity),
				Prices:    make(map[string]decimal.Decimal),
			})
		}
		if _, exists := items[i].Prices[normalizedSize]; !exists {
			items[i].Prices[normalizedSize] = price
		}
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("❌ Error iterating sampler candidates", zap.Error(err))
		return nil, fmt.Errorf("failed to iterate candidates: %w", err)
	}

	r.logger.Info("✓ Successfully fetched sampler candidates",
		zap.Int("items", len(items)),
		zap.Int("skippedRows", skipped))
	return items, nil
}
