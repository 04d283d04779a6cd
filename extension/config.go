package extension

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Storage backends the extension can open from configuration alone.
const (
	BackendMemory  = "memory"
	BackendLevelDB = "leveldb"
	BackendRedis   = "redis"
)

// Config holds the bonding extension configuration.
// Fields can be set programmatically via Option functions, loaded from
// YAML configuration files (under "extensions.bonding" or "bonding" keys),
// or read from BONDING_* environment variables with LoadEnvConfig.
type Config struct {
	// DisableRoutes prevents the HTTP handler from being built and provided.
	DisableRoutes bool `env:"BONDING_DISABLE_ROUTES" json:"disable_routes" mapstructure:"disable_routes" yaml:"disable_routes"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `env:"BONDING_DISABLE_MIGRATE" json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// BasePath is the URL prefix for bonding routes (default: "/bonding").
	BasePath string `env:"BONDING_BASE_PATH" envDefault:"/bonding" json:"base_path" mapstructure:"base_path" yaml:"base_path"`

	// Dispatcher fixes the dispatcher identity at startup. Empty leaves it
	// unset until SetDispatcher is called.
	Dispatcher string `env:"BONDING_DISPATCHER" json:"dispatcher" mapstructure:"dispatcher" yaml:"dispatcher"`

	// Backend selects the store opened when none is given with WithStore:
	// "memory" (default), "leveldb" or "redis".
	Backend string `env:"BONDING_BACKEND" envDefault:"memory" json:"backend" mapstructure:"backend" yaml:"backend"`

	// LevelDBPath is the database directory for the leveldb backend.
	LevelDBPath string `env:"BONDING_LEVELDB_PATH" json:"leveldb_path" mapstructure:"leveldb_path" yaml:"leveldb_path"`

	// RedisURL is the redis:// URL for the redis backend.
	RedisURL string `env:"BONDING_REDIS_URL" json:"redis_url" mapstructure:"redis_url" yaml:"redis_url"`

	// RedisPrefix namespaces the keys of the redis backend (default: "bonding:").
	RedisPrefix string `env:"BONDING_REDIS_PREFIX" envDefault:"bonding:" json:"redis_prefix" mapstructure:"redis_prefix" yaml:"redis_prefix"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BasePath:    "/bonding",
		Backend:     BackendMemory,
		RedisPrefix: "bonding:",
	}
}

// LoadEnvConfig reads a Config from BONDING_* environment variables.
func LoadEnvConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("bonding: parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks that the selected backend has what it needs.
func (c Config) Validate() error {
	switch c.Backend {
	case "", BackendMemory:
		return nil
	case BackendLevelDB:
		if c.LevelDBPath == "" {
			return fmt.Errorf("bonding: backend %q requires leveldb_path", c.Backend)
		}
		return nil
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("bonding: backend %q requires redis_url", c.Backend)
		}
		return nil
	default:
		return fmt.Errorf("bonding: unknown backend %q", c.Backend)
	}
}
