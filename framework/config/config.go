package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the typed process configuration read from the environment.
// Layered application parameters live in Parameters.
type Config struct {
	App   AppConfig
	Cache CacheConfig
}

type AppConfig struct {
	Name    string
	Env     string // dev | test | prod; selects the config/<env>/ overlay
	Debug   bool
	Root    string // application directory
	Modules string // directory holding one sub-directory per module
	Addr    string // admin listen address
}

type CacheConfig struct {
	Dir          string // relative to Root
	Dependencies bool   // seeds system.dependencies.cache
	Parameters   bool   // cache the merged parameters
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	return &Config{
		App: AppConfig{
			Name:    env("APP_NAME", "Bootstrap"),
			Env:     env("APP_ENV", "dev"),
			Debug:   envBool("APP_DEBUG", true),
			Root:    env("APP_ROOT", "."),
			Modules: env("APP_MODULES", "modules"),
			Addr:    env("APP_ADDR", ":8000"),
		},
		Cache: CacheConfig{
			Dir:          env("CACHE_DIR", "data/cache"),
			Dependencies: envBool("CACHE_DEPENDENCIES", false),
			Parameters:   envBool("CACHE_PARAMETERS", false),
		},
	}
}

// IsProduction reports whether the environment is a production one.
func (c *Config) IsProduction() bool {
	return c.App.Env == "prod" || c.App.Env == "production"
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
