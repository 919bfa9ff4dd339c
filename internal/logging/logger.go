// Package logging builds the slog loggers used across the application.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/m-mizutani/goerr/v2"
	"github.com/naka-gawa/portfolio/internal/domain"
)

// New returns a slog.Logger backed by a charmbracelet handler.
// format is "text" or "json"; level is one of debug, info, warn, error.
func New(w io.Writer, format, level string) (*slog.Logger, error) {
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, goerr.Wrap(domain.ErrInvalidConfig, "invalid log level", goerr.V("value", level))
	}

	opts := log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           lvl,
		Prefix:          "portfolio",
	}
	switch format {
	case "text", "":
		opts.Formatter = log.TextFormatter
	case "json":
		opts.Formatter = log.JSONFormatter
	default:
		return nil, goerr.Wrap(domain.ErrInvalidConfig, "invalid log format, should be 'json' or 'text'", goerr.V("value", format))
	}

	return slog.New(log.NewWithOptions(w, opts)), nil
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type ctxKey struct{}

// With returns a copy of ctx carrying logger.
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// From returns the logger stored in ctx, or fallback when there is none.
func From(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return fallback
}
