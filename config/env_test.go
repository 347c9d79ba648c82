package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/stockpile/config"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultsWhenFilesMissing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, config.LoadFrom(filepath.Join(dir, "none.json"), filepath.Join(dir, ".env")))

	assert.Equal(t, "sqlite", config.DatabaseDriver())
	assert.Equal(t, "stockpile.db", config.DatabaseDSN())
	assert.Equal(t, 5*time.Second, config.StoreTimeout())
	assert.Equal(t, 24*time.Hour, config.JWTTTL())
	assert.Equal(t, 200, config.RateLimit())
}

func TestDotEnvOverridesJSON(t *testing.T) {
	dir := t.TempDir()
	jsonPath := writeFile(t, dir, "app.json", `{"db_driver":"postgres","app_port":"9000","rate_limit":50}`)
	envPath := writeFile(t, dir, ".env", "# comment\nAPP_PORT=\"9100\"\nSTORE_TIMEOUT=250ms\n")

	require.NoError(t, config.LoadFrom(jsonPath, envPath))

	assert.Equal(t, "postgres", config.DatabaseDriver())
	assert.Contains(t, config.DatabaseDSN(), "dbname=inventory_management")
	assert.Equal(t, "9100", config.AppPort())
	assert.Equal(t, 250*time.Millisecond, config.StoreTimeout())
	assert.Equal(t, 50, config.RateLimit())
}

func TestEnvironmentWins(t *testing.T) {
	dir := t.TempDir()
	envPath := writeFile(t, dir, ".env", "JWT_SECRET=from-file\n")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("JWT_TTL", "0")

	require.NoError(t, config.LoadFrom(filepath.Join(dir, "none.json"), envPath))

	assert.Equal(t, "from-env", config.JWTSecret())
	assert.Equal(t, time.Duration(0), config.JWTTTL())
}

func TestUnknownDriverFallsBack(t *testing.T) {
	dir := t.TempDir()
	envPath := writeFile(t, dir, ".env", "DB_DRIVER=oracle\nLIST_CACHE_TTL=nonsense\n")

	require.NoError(t, config.LoadFrom(filepath.Join(dir, "none.json"), envPath))

	assert.Equal(t, "sqlite", config.DatabaseDriver())
	assert.Equal(t, 30*time.Second, config.ListCacheTTL())
}

func TestMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	jsonPath := writeFile(t, dir, "app.json", `{not json`)

	err := config.LoadFrom(jsonPath, filepath.Join(dir, ".env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}
