package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Console ConsoleConfig
	Backend BackendConfig
	Store   StoreConfig
	Redis   RedisConfig
	Mongo   MongoConfig
}

// ConsoleConfig drives the console shell process.
type ConsoleConfig struct {
	Port        string        `env:"CONSOLE_PORT,         default=3000"`
	APIBaseURL  string        `env:"API_BASE_URL,         default=http://localhost:8080"`
	APITimeout  time.Duration `env:"API_TIMEOUT,          default=10s"`
	IdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT, default=5m"`
	RoutesFile  string        `env:"ROUTES_FILE"`
	AllowOrigin string        `env:"WS_ALLOW_ORIGIN"`
}

// BackendConfig drives the development auth API.
type BackendConfig struct {
	Port          string        `env:"PORT,                default=8080"`
	JWTSecret     string        `env:"JWT_SECRET,          default=dev-secret"`
	TokenTTL      time.Duration `env:"TOKEN_TTL,           default=24h"`
	UserStore     string        `env:"USER_STORE,          default=memory"`
	SeedAdminMail string        `env:"SEED_ADMIN_EMAIL"`
	SeedAdminPass string        `env:"SEED_ADMIN_PASSWORD"`
}

// StoreConfig selects the credential store backend: sqlite, redis or memory.
type StoreConfig struct {
	Driver     string        `env:"STORE_DRIVER,  default=sqlite"`
	SQLitePath string        `env:"SQLITE_PATH,   default=console.db"`
	Profile    string        `env:"STORE_PROFILE, default=default"`
	TTL        time.Duration `env:"STORE_TTL,     default=0s"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=fleet_service"`
}

// IsProduction reports whether ENV selects production behaviour.
func (c *Config) IsProduction() bool { return c.Env == "production" }

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

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "sqlite", "redis", "memory":
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.Store.Driver)
	}
	switch c.Backend.UserStore {
	case "memory", "mongo":
	default:
		return fmt.Errorf("config: unknown USER_STORE %q", c.Backend.UserStore)
	}
	if c.Console.IdleTimeout <= 0 {
		return fmt.Errorf("config: SESSION_IDLE_TIMEOUT must be positive")
	}
	if c.IsProduction() && c.Backend.JWTSecret == "dev-secret" {
		return fmt.Errorf("config: JWT_SECRET must be set in production")
	}
	return nil
}
