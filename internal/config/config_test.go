package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/naka-gawa/portfolio/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults are applied", func(t *testing.T) {
		t.Setenv("GITHUB_USERNAME", "octocat")
		t.Setenv("GITHUB_TOKEN", "")

		cfg, err := Load(context.Background())
		require.NoError(t, err)

		assert.Equal(t, "octocat", cfg.GitHub.Username)
		assert.Equal(t, 10*time.Second, cfg.GitHub.ListTimeout)
		assert.Equal(t, 5*time.Second, cfg.GitHub.LanguageTimeout)
		assert.Equal(t, time.Duration(0), cfg.GitHub.RateLimitWait)
		assert.Equal(t, "0.0.0.0:8080", cfg.Server.ListenAddr)
		assert.Equal(t, 5, cfg.Server.PageSize)
		assert.Equal(t, "sqlite3", cfg.Database.Driver)
		assert.Equal(t, time.Duration(0), cfg.Cache.TTL)
	})

	t.Run("username is required", func(t *testing.T) {
		t.Setenv("GITHUB_USERNAME", "")

		_, err := Load(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidConfig))
	})

	t.Run("username from option", func(t *testing.T) {
		t.Setenv("GITHUB_USERNAME", "")

		cfg, err := Load(context.Background(), WithUsername("hubot"))
		require.NoError(t, err)
		assert.Equal(t, "hubot", cfg.GitHub.Username)
	})

	t.Run("empty option keeps environment", func(t *testing.T) {
		t.Setenv("GITHUB_USERNAME", "octocat")

		cfg, err := Load(context.Background(), WithUsername(""))
		require.NoError(t, err)
		assert.Equal(t, "octocat", cfg.GitHub.Username)
	})

	t.Run("overrides from environment", func(t *testing.T) {
		t.Setenv("GITHUB_USERNAME", "octocat")
		t.Setenv("GITHUB_LIST_TIMEOUT", "3s")
		t.Setenv("PORTFOLIO_API_KEY", "s3cret")
		t.Setenv("DB_DRIVER", "postgres")
		t.Setenv("CACHE_TTL", "1m")

		cfg, err := Load(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 3*time.Second, cfg.GitHub.ListTimeout)
		assert.Equal(t, Secret("s3cret"), cfg.Server.APIKey)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, time.Minute, cfg.Cache.TTL)
	})

	t.Run("unknown driver is rejected", func(t *testing.T) {
		t.Setenv("GITHUB_USERNAME", "octocat")
		t.Setenv("DB_DRIVER", "oracle")

		_, err := Load(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidConfig))
	})
}

func TestSecretIsMasked(t *testing.T) {
	s := Secret("ghp_abcdef")
	assert.Equal(t, "***********", s.String())
	assert.Equal(t, "***********", fmt.Sprint(s))
	assert.Equal(t, slog.StringValue("***********"), s.LogValue())
	assert.Equal(t, slog.StringValue(""), Secret("").LogValue())
}
