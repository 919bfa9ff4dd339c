// Package server exposes the portfolio pages and its JSON API over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/naka-gawa/portfolio/internal/domain"
	"github.com/naka-gawa/portfolio/internal/logging"
	"github.com/naka-gawa/portfolio/internal/markup"
	"github.com/naka-gawa/portfolio/internal/usecase"
)

// TutorialSource lists a user's tutorials and fetches single gists.
type TutorialSource interface {
	List(ctx context.Context, user string) ([]domain.Tutorial, error)
	Gist(ctx context.Context, user, id string) (*domain.Gist, error)
}

// Catalog serves the hand-curated data file.
type Catalog interface {
	Projects() *domain.AggregateResult
	Skills() []domain.Skill
}

// Mirror refreshes and reads the persisted copy of the portfolio.
type Mirror interface {
	Refresh(ctx context.Context, user string) (*usecase.MirrorReport, error)
	ListProjects(ctx context.Context) (*domain.AggregateResult, error)
	ListTutorials(ctx context.Context) ([]domain.Tutorial, error)
}

type Server struct {
	mux       *chi.Mux
	cfg       *config
	projects  usecase.ProjectSource
	tutorials TutorialSource
	user      string
	pages     *pages
	markdown  *markup.Renderer
}

type config struct {
	apiKey    string
	pageSize  int
	publicURL string
	catalog   Catalog
	mirror    Mirror
	tools     domain.Tools
	logger    *slog.Logger
}

type Option func(*config)

// WithAPIKey gates the JSON API behind the X-API-Key header. An empty key disables the gate.
func WithAPIKey(key string) Option {
	return func(cfg *config) {
		cfg.apiKey = key
	}
}

func WithPageSize(n int) Option {
	return func(cfg *config) {
		cfg.pageSize = n
	}
}

func WithPublicURL(url string) Option {
	return func(cfg *config) {
		cfg.publicURL = url
	}
}

func WithCatalog(c Catalog) Option {
	return func(cfg *config) {
		cfg.catalog = c
	}
}

func WithMirror(m Mirror) Option {
	return func(cfg *config) {
		cfg.mirror = m
	}
}

func WithTools(tools domain.Tools) Option {
	return func(cfg *config) {
		cfg.tools = tools
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// New builds the router. Routes backed by an optional dependency are only
// mounted when that dependency is configured.
func New(projects usecase.ProjectSource, tutorials TutorialSource, user string, options ...Option) (*Server, error) {
	cfg := &config{
		pageSize: 5,
		logger:   logging.Discard(),
	}
	for _, opt := range options {
		opt(cfg)
	}

	p, err := loadPages()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:       cfg,
		projects:  projects,
		tutorials: tutorials,
		user:      user,
		pages:     p,
		markdown:  markup.NewRenderer(),
	}

	r := chi.NewRouter()
	r.Use(preProcess(cfg.logger))
	r.NotFound(s.notFoundPage)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		safeWrite(r.Context(), w, http.StatusOK, []byte("ok"))
	})

	r.Get("/", s.indexPage)
	r.Get("/projects", s.projectsPage)
	r.Get("/about", s.aboutPage)
	r.Get("/tutorials", s.tutorialsPage)
	r.Get("/tutorial", s.tutorialPage)

	r.Route("/api", func(r chi.Router) {
		r.Use(apiKeyAuth(cfg.apiKey))
		r.Get("/projects", s.getProjects)
		if cfg.catalog != nil {
			r.Get("/projects/curated", s.getCuratedProjects)
			r.Get("/skills", s.getSkills)
		}
		r.Get("/tools", s.getTools)
		r.Get("/languages", s.getLanguages)
		r.Get("/tutorials", s.getTutorials)
		r.Get("/tutorials/{id}", s.getTutorial)
	})

	if cfg.mirror != nil {
		r.Route("/db", func(r chi.Router) {
			r.With(apiKeyAuth(cfg.apiKey)).Post("/refresh", s.refreshMirror)
			r.Get("/projects", s.getMirroredProjects)
			r.Get("/tutorials", s.getMirroredTutorials)
		})
	}

	s.mux = r
	return s, nil
}

func (x *Server) Mux() *chi.Mux {
	return x.mux
}

func safeWrite(ctx context.Context, w http.ResponseWriter, code int, body []byte) {
	w.WriteHeader(code)
	if _, err := w.Write(body); err != nil {
		logging.From(ctx, slog.Default()).Error("failed to write response", "error", err)
	}
}
