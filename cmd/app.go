package cmd

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"

	"github.com/naka-gawa/portfolio/internal/cache"
	"github.com/naka-gawa/portfolio/internal/config"
	"github.com/naka-gawa/portfolio/internal/gateway"
	"github.com/naka-gawa/portfolio/internal/store"
	"github.com/naka-gawa/portfolio/internal/usecase"
)

// app holds the use cases shared by every command.
type app struct {
	cfg       *config.Config
	projects  usecase.ProjectSource
	tutorials *usecase.Tutorials
	closers   []func() error
	logger    *slog.Logger
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	logger.Debug("configuration loaded",
		"username", cfg.GitHub.Username,
		"token", cfg.GitHub.Token,
		"api_url", cfg.GitHub.APIURL,
		"fanout_limit", cfg.GitHub.FanoutLimit,
		"cache_ttl", cfg.Cache.TTL,
	)

	gw, err := gateway.NewGitHubGateway(gateway.Options{
		Token:         string(cfg.GitHub.Token),
		BaseURL:       cfg.GitHub.APIURL,
		RateLimitWait: cfg.GitHub.RateLimitWait,
	}, logger)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub gateway")
	}

	a := &app{
		cfg:       cfg,
		tutorials: usecase.NewTutorials(gw, logger),
		logger:    logger,
	}

	aggregator := usecase.NewAggregator(gw, logger,
		usecase.WithTimeouts(cfg.GitHub.ListTimeout, cfg.GitHub.LanguageTimeout),
		usecase.WithFanoutLimit(cfg.GitHub.FanoutLimit),
	)
	a.projects = aggregator

	if cfg.Cache.TTL > 0 {
		var c cache.Cache
		if cfg.Cache.RedisAddr != "" {
			r := cache.NewRedis(cfg.Cache.RedisAddr)
			a.closers = append(a.closers, r.Close)
			c = r
			logger.Info("caching aggregate results in redis", "addr", cfg.Cache.RedisAddr, "ttl", cfg.Cache.TTL)
		} else {
			m, err := cache.NewMemory(logger)
			if err != nil {
				return nil, err
			}
			c = m
			logger.Info("caching aggregate results in memory", "ttl", cfg.Cache.TTL)
		}
		a.projects = usecase.NewCachedAggregator(aggregator, c, cfg.Cache.TTL, logger)
	}

	return a, nil
}

func (a *app) openStore(ctx context.Context) (*store.Store, error) {
	s, err := store.Open(ctx, a.cfg.Database.Driver, string(a.cfg.Database.DSN), a.logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, s.Close)
	return s, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("failed to close resource", "error", err)
		}
	}
}
