package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Storage backends selectable through STORE_BACKEND.
const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	SeedRoles []string `env:"SEED_ROLES, default=User,Admin"`

	Store      StoreConfig
	JWT        JWTConfig
	Redis      RedisConfig
	Login      LoginConfig
	Membership MembershipConfig
}

type JWTConfig struct {
	Secret string        `env:"JWT_SECRET, required"`
	Issuer string        `env:"JWT_ISSUER, default=identity-store"`
	TTL    time.Duration `env:"JWT_TTL,    default=24h"`
}

// StoreConfig selects the document store backing users and roles.
type StoreConfig struct {
	Backend string `env:"STORE_BACKEND, default=mongo"`
	Mongo   MongoConfig
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI,     default=mongodb://localhost:27017"`
	Database string        `env:"MONGO_DB,      default=identity"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s"`
}

// RedisConfig is optional: an empty address disables login throttling.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

type LoginConfig struct {
	MaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS, default=5"`
	Lockout     time.Duration `env:"LOGIN_LOCKOUT,      default=15m"`
}

type MembershipConfig struct {
	Workers int `env:"MEMBERSHIP_WORKERS, default=8"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFrom is Load with an explicit lookuper, used by tests.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadStore reads only the storage settings. Tools that never issue tokens
// use it so JWT_SECRET is not required.
func LoadStore(ctx context.Context) (*StoreConfig, error) {
	var cfg StoreConfig
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Development reports whether the process runs in a development environment.
func (c *Config) Development() bool {
	return c.Env == "development"
}

func (c *Config) validate() error {
	if c.Login.MaxAttempts < 0 {
		return fmt.Errorf("config: LOGIN_MAX_ATTEMPTS must not be negative")
	}
	return c.Store.validate()
}

func (c *StoreConfig) validate() error {
	switch c.Backend {
	case BackendMongo, BackendMemory:
		return nil
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.Backend)
	}
}
