package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 8*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, "portal_token", cfg.JWT.CookieName)
	assert.Equal(t, "America/Sao_Paulo", cfg.Cafeteria.Timezone)
	assert.Equal(t, "0 5 * * *", cfg.MenuFeed.RefreshCron)
	assert.Equal(t, 5, cfg.Points.Exchange)
	assert.Equal(t, 10, cfg.Points.Post)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
server:
  address: ":9090"
jwt:
  secret: from-file
  expiration: 30m
points:
  exchange: 7
menu_feed:
  source: /srv/menu.yaml
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("CAFETERIA_TIMEZONE", "UTC")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 30*time.Minute, cfg.JWT.Expiration)
	assert.Equal(t, 7, cfg.Points.Exchange)
	assert.Equal(t, "/srv/menu.yaml", cfg.MenuFeed.Source)
	assert.Equal(t, "UTC", cfg.Cafeteria.Timezone)
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.secret")
}

func TestValidate_BadTimezone(t *testing.T) {
	cfg := Config{
		JWT:       JWTConfig{Secret: "s", Expiration: time.Hour},
		Database:  DatabaseConfig{URI: "mongodb://x", Name: "db"},
		Cafeteria: CafeteriaConfig{Timezone: "Mars/Olympus_Mons"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cafeteria.timezone")
}
