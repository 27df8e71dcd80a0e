package config

import (
	"fmt"
	"strings"
	"time"

	"jsoncrud/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendPebble   = "pebble"
)

type Config struct {
	Addr        string
	LogLevel    string
	Backend     string
	StorePath   string
	LockTimeout time.Duration
	DatabaseURL string
	JWTSecret   string
	CORSOrigin  string
}

func defaults(v *viper.Viper) {
	v.SetDefault("APP_ADDR", ":3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_BACKEND", BackendFile)
	v.SetDefault("STORE_PATH", "db.json")
	v.SetDefault("STORE_LOCK_TIMEOUT", "5s")
	v.SetDefault("CORS_ALLOWED_ORIGIN", "*")

	// Lower-case connection variables, bound verbatim.
	for _, k := range dsnParts {
		_ = v.BindEnv("pg_"+k, k)
	}
}

var dsnParts = []string{"user", "password", "host", "port", "dbname"}

// Load reads .env (if any) into the process environment and resolves the
// configuration from it.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Sugar.Info("No .env file found, using environment variables from OS")
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	defaults(v)
	return v
}

// FromViper builds a Config from v, applying defaults for unset keys.
func FromViper(v *viper.Viper) (Config, error) {
	defaults(v)

	timeout, err := time.ParseDuration(strings.TrimSpace(v.GetString("STORE_LOCK_TIMEOUT")))
	if err != nil {
		return Config{}, fmt.Errorf("config: STORE_LOCK_TIMEOUT: %w", err)
	}

	cfg := Config{
		Addr:        strings.TrimSpace(v.GetString("APP_ADDR")),
		LogLevel:    strings.TrimSpace(v.GetString("LOG_LEVEL")),
		Backend:     strings.ToLower(strings.TrimSpace(v.GetString("STORE_BACKEND"))),
		StorePath:   strings.TrimSpace(v.GetString("STORE_PATH")),
		LockTimeout: timeout,
		DatabaseURL: strings.TrimSpace(v.GetString("DATABASE_URL")),
		JWTSecret:   v.GetString("JWT_SECRET"),
		CORSOrigin:  strings.TrimSpace(v.GetString("CORS_ALLOWED_ORIGIN")),
	}
	if cfg.DatabaseURL == "" && cfg.Backend == BackendPostgres {
		cfg.DatabaseURL = assembleDSN(v)
	}
	return cfg, cfg.Validate()
}

// assembleDSN builds a DSN from the discrete user/password/host/port/dbname
// variables.
func assembleDSN(v *viper.Viper) string {
	get := func(k string) string { return strings.TrimSpace(v.GetString("pg_" + k)) }
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=require",
		get("user"), get("password"), get("host"), get("port"), get("dbname"))
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendPebble:
		if c.StorePath == "" {
			return fmt.Errorf("config: STORE_PATH is required for the %s backend", c.Backend)
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.Backend)
	}
	if c.LockTimeout <= 0 {
		return fmt.Errorf("config: STORE_LOCK_TIMEOUT must be positive, got %s", c.LockTimeout)
	}
	if c.Addr == "" {
		return fmt.Errorf("config: APP_ADDR is required")
	}
	return nil
}
