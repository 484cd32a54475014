// Package config loads runtime configuration from a YAML file with
// environment-variable fallbacks for containerized deployments.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is where the server looks for its config by default.
const DefaultConfigPath = "config.yaml"

// Load reads and normalizes the YAML config at path. A missing file is not an
// error; env vars alone can configure the app.
func Load(path string) (*AppConfig, error) {
	var cfg AppConfig

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// fall through to env/defaults
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	normalize(&cfg)
	if cfg.DSN == "" {
		return nil, fmt.Errorf("no database configured: set dsn or database.* in %s, or CHRONICAL_DSN", path)
	}
	return &cfg, nil
}

func normalize(cfg *AppConfig) {
	envOverride(&cfg.DSN, "CHRONICAL_DSN")
	envOverride(&cfg.RedisURL, "CHRONICAL_REDIS_URL")
	envOverride(&cfg.Env, "CHRONICAL_ENV")
	envOverride(&cfg.JWTSecret, "CHRONICAL_JWT_SECRET")

	if cfg.Port == 0 {
		if p, err := strconv.Atoi(os.Getenv("PORT")); err == nil {
			cfg.Port = p
		}
	}
	if cfg.Port == 0 {
		cfg.Port = 3000
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.RedisURL == "" {
		cfg.RedisURL = "redis://localhost:6379/0"
	}
	if cfg.DSN == "" {
		cfg.DSN = buildDSN(cfg.Database)
	}
}

func envOverride(dst *string, key string) {
	if *dst == "" {
		*dst = os.Getenv(key)
	}
}

// buildDSN assembles a MySQL DSN from the database.* fields. parseTime is
// always on: lifecycle timestamps round-trip as time.Time.
func buildDSN(db DatabaseConfig) string {
	if db.Host == "" || db.Name == "" {
		return ""
	}
	if db.Port == 0 {
		db.Port = 3306
	}
	if db.Charset == "" {
		db.Charset = "utf8mb4"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=UTC",
		db.User, db.Password, db.Host, db.Port, db.Name, db.Charset)
}
