package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/naka-gawa/portfolio/internal/domain"
	"github.com/naka-gawa/portfolio/internal/logging"
)

const unavailableMessage = "Sorry, the GitHub API is not available right now. Please try again later."

type errorBody struct {
	Error          string `json:"error"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
	UpstreamBody   string `json:"upstream_body,omitempty"`
}

// statusOf maps an error onto the HTTP status and body shown to clients.
// Internal details never leave the process.
func statusOf(err error) (int, errorBody) {
	var unavailable *domain.UpstreamUnavailableError
	var upstream *domain.UpstreamError

	switch {
	case errors.As(err, &unavailable):
		if unavailable.StatusCode == http.StatusTooManyRequests {
			return http.StatusTooManyRequests, errorBody{Error: unavailableMessage}
		}
		return http.StatusForbidden, errorBody{Error: unavailableMessage}
	case errors.As(err, &upstream):
		return http.StatusBadGateway, errorBody{
			Error:          "upstream request failed",
			UpstreamStatus: upstream.StatusCode,
			UpstreamBody:   upstream.Body,
		}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorBody{Error: "not found"}
	default:
		return http.StatusInternalServerError, errorBody{Error: "internal server error"}
	}
}

func (x *Server) handleAPIError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	status, body := statusOf(err)
	logError(ctx, x.cfg.logger, status, msg, err)
	writeJSON(ctx, w, status, body)
}

func logError(ctx context.Context, fallback *slog.Logger, status int, msg string, err error) {
	logger := logging.From(ctx, fallback)
	if status >= http.StatusInternalServerError {
		logger.Error(msg, "status", status, "error", err)
		return
	}
	logger.Warn(msg, "status", status, "error", err)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logging.From(ctx, slog.Default()).Error("failed to encode response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		safeWrite(ctx, w, http.StatusInternalServerError, []byte(`{"error":"internal server error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	safeWrite(ctx, w, status, body)
}
