package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "http://localhost:8080/api", cfg.APIBaseURL)
	assert.Equal(t, "auto", cfg.Theme)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("STOREFRONT_API_URL", "")
	t.Setenv("STOREFRONT_THEME", "")

	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.APIBaseURL = "https://shop.example.com/api"
	cfg.Theme = "dark"
	cfg.PageSize = 25
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/api", loaded.APIBaseURL)
	assert.Equal(t, "dark", loaded.Theme)
	assert.Equal(t, 25, loaded.PageSize)
}

func TestConfig_MissingFileYieldsDefaults(t *testing.T) {
	t.Setenv("STOREFRONT_API_URL", "")
	t.Setenv("STOREFRONT_THEME", "")

	loaded, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), loaded)
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("STOREFRONT_API_URL", "http://staging:9090/api")
	t.Setenv("STOREFRONT_THEME", "light")
	t.Setenv("STOREFRONT_TIMEOUT", "5s")

	loaded, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://staging:9090/api", loaded.APIBaseURL)
	assert.Equal(t, "light", loaded.Theme)
	assert.Equal(t, 5*time.Second, loaded.RequestTimeout)
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.APIBaseURL = ""
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.PageSize = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Theme = "solarized"
	assert.Error(t, bad.Validate())
}
