package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogYAML = `items:
  - id: FR-001
    name: Neroli Portofino
    brand: Tom Ford
    family: citrus
    intensity: light
    prices:
      2ml: 24.90
      5ml: "52.16"
  - id: FR-099
    name: Discontinued
    inactive: true
    prices:
      2ml: 10.00
  - id: FR-002
    name: Aventus
    brand: Creed
    family: fruity
    intensity: intense
    prices:
      5ml: 79.90
`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileCatalogRepository_LoadCandidates(t *testing.T) {
	t.Parallel()
	repo := NewFileCatalogRepository(writeCatalog(t, catalogYAML), nil)

	items, err := repo.LoadCandidates(context.Background())

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "FR-001", items[0].ID)
	assert.Equal(t, "Tom Ford", items[0].Brand)
	assert.True(t, items[0].Prices["2ml"].Equal(decimal.RequireFromString("24.90")))
	assert.True(t, items[0].Prices["5ml"].Equal(decimal.RequireFromString("52.16")))
	assert.Equal(t, "FR-002", items[1].ID)
}

func TestFileCatalogRepository_Errors(t *testing.T) {
	t.Parallel()

	_, err := NewFileCatalogRepository(filepath.Join(t.TempDir(), "missing.yaml"), nil).LoadCandidates(context.Background())
	assert.ErrorContains(t, err, "failed to read catalog file")

	_, err = NewFileCatalogRepository(writeCatalog(t, "items: [oops"), nil).LoadCandidates(context.Background())
	assert.ErrorContains(t, err, "failed to parse catalog file")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewFileCatalogRepository(writeCatalog(t, catalogYAML), nil).LoadCandidates(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
