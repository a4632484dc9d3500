package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func withEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for k, v := range kv {
		t.Setenv(k, v)
	}
}

func TestLoad_RequiresCredentials(t *testing.T) {
	withEnv(t, map[string]string{
		"PULLSCOPE_CLIENT_ID":     "",
		"PULLSCOPE_CLIENT_SECRET": "",
	})

	_, err := Load("")
	assert.Error(t, err)
	var loadErr *LoadError
	assert.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "client_id", loadErr.Field)
}

func TestLoad_DefaultsApplyWithoutOverlay(t *testing.T) {
	withEnv(t, map[string]string{
		"PULLSCOPE_CLIENT_ID":     "id",
		"PULLSCOPE_CLIENT_SECRET": "secret",
		"PULLSCOPE_BASE_URL":      "https://www.warcraftlogs.com",
	})

	cfg, err := Load("")
	assert.NoError(t, err)
	assert.Equal(t, 2, cfg.MaxConcurrentReports)
	assert.Equal(t, 750*time.Millisecond, cfg.FastReturnThreshold)
}

func TestLoad_OverlayOverridesOnlySetFields(t *testing.T) {
	withEnv(t, map[string]string{
		"PULLSCOPE_CLIENT_ID":     "id",
		"PULLSCOPE_CLIENT_SECRET": "secret",
		"PULLSCOPE_BASE_URL":      "https://www.warcraftlogs.com",
	})

	dir := t.TempDir()
	path := filepath.Join(dir, "overlay.yaml")
	err := os.WriteFile(path, []byte(`
max_concurrent_reports: 8
cache_ttl_seconds: 120
`), 0o644)
	assert.NoError(t, err)

	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, 8, cfg.MaxConcurrentReports)
	assert.Equal(t, 120*time.Second, cfg.CacheTTL)
	// untouched fields keep their defaults
	assert.Equal(t, 64, cfg.CacheCapacity)
	assert.Equal(t, 4, cfg.MaxInflightPerJob)
}

func TestLoad_MissingOverlayFileIsNotAnError(t *testing.T) {
	withEnv(t, map[string]string{
		"PULLSCOPE_CLIENT_ID":     "id",
		"PULLSCOPE_CLIENT_SECRET": "secret",
		"PULLSCOPE_BASE_URL":      "https://www.warcraftlogs.com",
	})

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.NoError(t, err)
	assert.Equal(t, 64, cfg.CacheCapacity)
}

func TestValidate_RejectsNonPositiveTunables(t *testing.T) {
	cfg := Defaults()
	cfg.ClientID = "id"
	cfg.ClientSecret = "secret"
	cfg.BaseURL = "https://www.warcraftlogs.com"
	cfg.MaxConcurrentReports = 0

	err := cfg.Validate()
	assert.Error(t, err)
	var loadErr *LoadError
	assert.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "max_concurrent_reports", loadErr.Field)
	assert.ErrorIs(t, err, ErrInvalidValue)
}
