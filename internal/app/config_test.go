package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/catalog-view/internal/ui"
)

func testLoad(t *testing.T, files ...string) (*Config, error) {
	t.Helper()
	return loadConfig(aconfig.Config{
		SkipFlags: true,
		SkipFiles: len(files) == 0,
		Files:     files,
	})
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := testLoad(t)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr)
	assert.Equal(t, "https://dummyjson.com/products", cfg.Upstream.URL)
	assert.Equal(t, 10*time.Second, cfg.Upstream.Timeout)
	assert.EqualValues(t, 4<<20, cfg.Upstream.MaxBodyBytes)
	assert.Equal(t, []string{"*"}, cfg.CORS.Origins)
	assert.True(t, cfg.Health.UpstreamProbe)
	assert.Equal(t, ui.DefaultLabels(), cfg.Labels)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("CATALOG_UPSTREAM_URL", "http://upstream:8081/products")
	t.Setenv("CATALOG_UPSTREAM_TIMEOUT", "2s")
	t.Setenv("CATALOG_RATE_LIMIT_MAX", "0")
	t.Setenv("CATALOG_LABELS_TITLE", "Products")

	cfg, err := testLoad(t)
	require.NoError(t, err)

	assert.Equal(t, "http://upstream:8081/products", cfg.Upstream.URL)
	assert.Equal(t, 2*time.Second, cfg.Upstream.Timeout)
	assert.Zero(t, cfg.RateLimit.Max)
	assert.Equal(t, "Products", cfg.Labels.Title)
	assert.Equal(t, ui.DefaultLabels().Next, cfg.Labels.Next)
}

func TestLoadConfig_PageSizeLabelWithoutVerb(t *testing.T) {
	t.Setenv("CATALOG_LABELS_PAGE_SIZE", "Items")

	cfg, err := testLoad(t)
	require.NoError(t, err)

	assert.Equal(t, "12 Sản phẩm", cfg.Labels.PageSizeLabel(12))
}

func TestLoadConfig_PlatformPort(t *testing.T) {
	t.Setenv("PORT", "9090")
	cfg, err := testLoad(t)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.Addr)

	t.Setenv("CATALOG_ADDR", "127.0.0.1:7000")
	cfg, err = testLoad(t)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Addr, "explicit addr wins over PORT")
}

func TestLoadConfig_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: 127.0.0.1:8181
upstream:
  url: http://localhost:9000/products
  timeout: 500ms
labels:
  retry: Retry
`), 0o600))

	cfg, err := testLoad(t, path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8181", cfg.Addr)
	assert.Equal(t, "http://localhost:9000/products", cfg.Upstream.URL)
	assert.Equal(t, 500*time.Millisecond, cfg.Upstream.Timeout)
	assert.Equal(t, "Retry", cfg.Labels.Retry)
}

func TestLoadConfig_InvalidUpstream(t *testing.T) {
	t.Setenv("CATALOG_UPSTREAM_URL", "ftp://example.com/products")
	_, err := testLoad(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream")
}
