package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"

	"github.com/naka-gawa/portfolio/internal/catalog"
	"github.com/naka-gawa/portfolio/internal/config"
	"github.com/naka-gawa/portfolio/internal/server"
	"github.com/naka-gawa/portfolio/internal/usecase"
)

// builtWith lists the modules reported by /api/tools.
var builtWith = []string{
	"github.com/go-chi/chi/v5",
	"github.com/google/go-github/v62",
	"github.com/shurcooL/githubv4",
	"github.com/yuin/goldmark",
	"github.com/spf13/cobra",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the portfolio HTTP server",
	Long:  `Serves the portfolio pages and JSON API until SIGINT or SIGTERM is received.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		cfg, err := config.Load(ctx)
		if err != nil {
			return err
		}
		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		st, err := a.openStore(ctx)
		if err != nil {
			return err
		}

		options := []server.Option{
			server.WithAPIKey(string(cfg.Server.APIKey)),
			server.WithPageSize(cfg.Server.PageSize),
			server.WithPublicURL(cfg.Server.PublicURL),
			server.WithTools(catalog.Tools(builtWith)),
			server.WithMirror(usecase.NewMirror(a.projects, a.tutorials, st, logger)),
			server.WithLogger(logger),
		}
		if c, err := catalog.Load(cfg.Server.DataFile); err != nil {
			logger.Warn("serving without curated data", "path", cfg.Server.DataFile, "error", err)
		} else {
			options = append(options, server.WithCatalog(c))
		}
		if cfg.Server.APIKey == "" {
			logger.Warn("PORTFOLIO_API_KEY is not set, the JSON API is open")
		}

		s, err := server.New(a.projects, a.tutorials, cfg.GitHub.Username, options...)
		if err != nil {
			return err
		}

		serverErr := make(chan error, 1)
		httpServer := &http.Server{
			Addr:    cfg.Server.ListenAddr,
			Handler: s.Mux(),

			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
		}

		go func() {
			logger.Info("starting http server", "addr", cfg.Server.ListenAddr)
			if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
				serverErr <- goerr.Wrap(err, "failed to listen and serve")
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-serverErr:
			return err

		case sig := <-quit:
			logger.Info("shutting down server", "signal", sig)

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(ctx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server")
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
