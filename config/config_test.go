package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, BackendFile, cfg.Backend)
	assert.Equal(t, "db.json", cfg.StorePath)
	assert.Equal(t, 5*time.Second, cfg.LockTimeout)
	assert.Equal(t, "*", cfg.CORSOrigin)
	assert.Empty(t, cfg.JWTSecret)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("APP_ADDR", ":8080")
	t.Setenv("STORE_BACKEND", "Pebble")
	t.Setenv("STORE_PATH", "/var/lib/jsoncrud")
	t.Setenv("STORE_LOCK_TIMEOUT", "250ms")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := FromViper(newViper())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, BackendPebble, cfg.Backend)
	assert.Equal(t, "/var/lib/jsoncrud", cfg.StorePath)
	assert.Equal(t, 250*time.Millisecond, cfg.LockTimeout)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
}

func TestPostgresDSNAssembledFromParts(t *testing.T) {
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("user", "app")
	t.Setenv("password", "pw")
	t.Setenv("host", "db.local")
	t.Setenv("port", "5432")
	t.Setenv("dbname", "crud")

	cfg, err := FromViper(newViper())
	require.NoError(t, err)
	assert.Equal(t, "postgres://app:pw@db.local:5432/crud?sslmode=require", cfg.DatabaseURL)
}

func TestPostgresPrefersDatabaseURL(t *testing.T) {
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://x@y/z")

	cfg, err := FromViper(newViper())
	require.NoError(t, err)
	assert.Equal(t, "postgres://x@y/z", cfg.DatabaseURL)
}

func TestValidate(t *testing.T) {
	valid := Config{Addr: ":3000", Backend: BackendFile, StorePath: "db.json", LockTimeout: time.Second}
	require.NoError(t, valid.Validate())

	cases := map[string]func(c *Config){
		"unknown backend":  func(c *Config) { c.Backend = "mongo" },
		"zero timeout":     func(c *Config) { c.LockTimeout = 0 },
		"negative timeout": func(c *Config) { c.LockTimeout = -time.Second },
		"missing path":     func(c *Config) { c.StorePath = "" },
		"postgres no dsn":  func(c *Config) { c.Backend = BackendPostgres },
		"missing addr":     func(c *Config) { c.Addr = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestBadTimeout(t *testing.T) {
	v := viper.New()
	v.Set("STORE_LOCK_TIMEOUT", "soon")
	_, err := FromViper(v)
	assert.ErrorContains(t, err, "STORE_LOCK_TIMEOUT")
}
