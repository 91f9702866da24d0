package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// Store selects the credential store backend: "mongo" or "memory".
	// Memory mode needs no external dependencies and is meant for local
	// development and tests.
	Store string `env:"STORE, default=mongo"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
}

// AuthConfig holds token issuance settings. JWTSecret is required input:
// there is deliberately no default, so the process refuses to start without
// an injected secret.
type AuthConfig struct {
	JWTSecret   string        `env:"JWT_SECRET,        required"`
	Issuer      string        `env:"TOKEN_ISSUER,      default=identity-service"`
	AccessTTL   time.Duration `env:"ACCESS_TOKEN_TTL,  default=10m"`
	RefreshTTL  time.Duration `env:"REFRESH_TOKEN_TTL, default=168h"`
	SeedEnabled bool          `env:"SEED_FIXTURES,     default=false"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=identity_service"`
}

type RedisConfig struct {
	Addr         string        `env:"REDIS_ADDR,     default=localhost:6379"`
	DB           int           `env:"REDIS_DB,       default=0"`
	UserCacheTTL time.Duration `env:"USER_CACHE_TTL, default=30s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
