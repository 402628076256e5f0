package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fragrance-sampler/config"
)

const testCatalog = `items:
  - {id: FR-001, name: Neroli Portofino, family: citrus, intensity: light, prices: {2ml: 24.90, 5ml: 52.16, 10ml: 89.99}}
  - {id: FR-002, name: Aventus, family: fruity, intensity: intense, prices: {2ml: 38.07, 5ml: 79.90, 10ml: 139.90}}
  - {id: FR-003, name: Bleu de Chanel, family: aromatic, intensity: medium, prices: {2ml: 21.50, 5ml: 48.00, 10ml: 86.00}}
  - {id: FR-004, name: Terre d'Hermes, family: woody, intensity: medium, prices: {2ml: 62.90, 5ml: 70.80, 10ml: 120.00}}
`

func TestInitialize_FileCatalogWithoutModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o600))

	cfg, err := config.LoadFrom(func(key string) string {
		return map[string]string{"CATALOG_FILE": path}[key]
	})
	require.NoError(t, err)

	r, cleanup, err := Initialize(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()

	req := httptest.NewRequest(http.MethodPost, "/bundles/build", strings.NewReader(`{"budget":"300"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"outcome":"fallback"`)
	assert.Contains(t, w.Body.String(), `"total":"288.69"`)
}

func TestInitialize_MissingDatabaseSettings(t *testing.T) {
	cfg, err := config.LoadFrom(func(string) string { return "" })
	require.NoError(t, err)

	_, cleanup, err := Initialize(context.Background(), cfg, zap.NewNop())
	defer cleanup()
	assert.ErrorContains(t, err, "failed to initialize database")
}

func TestInitialize_BadPolicyPath(t *testing.T) {
	cfg, err := config.LoadFrom(func(key string) string {
		return map[string]string{"BUNDLE_POLICY_PATH": filepath.Join(t.TempDir(), "missing.yaml"), "CATALOG_FILE": "unused.yaml"}[key]
	})
	require.NoError(t, err)

	_, cleanup, err := Initialize(context.Background(), cfg, zap.NewNop())
	defer cleanup()
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	for _, env := range []string{"development", "production"} {
		logger, err := NewLogger(config.Config{Env: env, LogLevel: "debug"})
		require.NoError(t, err)
		assert.NotNil(t, logger)
	}

	_, err := NewLogger(config.Config{LogLevel: "chatty"})
	assert.Error(t, err)
}
