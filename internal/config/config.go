// Package config loads the application configuration from the environment.
package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/m-mizutani/goerr/v2"
	"github.com/naka-gawa/portfolio/internal/domain"
	"github.com/sethvargo/go-envconfig"
)

// Secret is a configuration value that must never show up in logs.
type Secret string

func (s Secret) LogValue() slog.Value {
	if s == "" {
		return slog.StringValue("")
	}
	return slog.StringValue("***********")
}

func (s Secret) String() string {
	return "***********"
}

// GitHub holds upstream API settings.
type GitHub struct {
	Token           Secret        `env:"TOKEN"`
	Username        string        `env:"USERNAME"`
	APIURL          string        `env:"API_URL"`
	ListTimeout     time.Duration `env:"LIST_TIMEOUT, default=10s"`
	LanguageTimeout time.Duration `env:"LANGUAGES_TIMEOUT, default=5s"`
	FanoutLimit     int           `env:"FANOUT_LIMIT, default=0"`
	RateLimitWait   time.Duration `env:"RATE_LIMIT_WAIT, default=0s"`
}

// Server holds the HTTP side of the portfolio.
type Server struct {
	ListenAddr string `env:"LISTEN_ADDR, default=0.0.0.0:8080"`
	APIKey     Secret `env:"API_KEY"`
	PublicURL  string `env:"PUBLIC_URL"`
	DataFile   string `env:"DATA_FILE, default=data/portfolio.json"`
	PageSize   int    `env:"PAGE_SIZE, default=5"`
}

// Database selects where mirrored data is written.
type Database struct {
	Driver string `env:"DRIVER, default=sqlite3"`
	DSN    Secret `env:"DSN, default=portfolio.db"`
}

// Cache configures the optional aggregate cache. A zero TTL disables it.
type Cache struct {
	TTL       time.Duration `env:"CACHE_TTL, default=0s"`
	RedisAddr string        `env:"REDIS_ADDR"`
}

type Config struct {
	GitHub   GitHub   `env:",prefix=GITHUB_"`
	Server   Server   `env:",prefix=PORTFOLIO_"`
	Database Database `env:",prefix=DB_"`
	Cache    Cache
}

// Option adjusts a decoded Config before it is validated, e.g. from command line flags.
type Option func(*Config)

// WithUsername overrides GITHUB_USERNAME when user is not empty.
func WithUsername(user string) Option {
	return func(c *Config) {
		if user != "" {
			c.GitHub.Username = user
		}
	}
}

// Load reads an optional .env file and decodes the environment into a Config.
func Load(ctx context.Context, opts ...Option) (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to process environment")
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot check on its own.
func (c *Config) Validate() error {
	if c.GitHub.Username == "" {
		return goerr.Wrap(domain.ErrInvalidConfig, "GITHUB_USERNAME is required")
	}
	if c.GitHub.ListTimeout <= 0 || c.GitHub.LanguageTimeout <= 0 {
		return goerr.Wrap(domain.ErrInvalidConfig, "timeouts must be positive",
			goerr.V("list_timeout", c.GitHub.ListTimeout),
			goerr.V("languages_timeout", c.GitHub.LanguageTimeout),
		)
	}
	if c.Server.PageSize < 1 {
		return goerr.Wrap(domain.ErrInvalidConfig, "page size must be at least 1", goerr.V("page_size", c.Server.PageSize))
	}
	switch c.Database.Driver {
	case "sqlite3", "postgres":
	default:
		return goerr.Wrap(domain.ErrInvalidConfig, "unsupported database driver", goerr.V("driver", c.Database.Driver))
	}
	return nil
}
