package server

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/naka-gawa/portfolio/internal/domain"
	"github.com/naka-gawa/portfolio/internal/usecase"
)

//go:embed templates
var templateFS embed.FS

type pages struct {
	t map[string]*template.Template
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"lower": strings.ToLower,
		"add":   func(a, b int) int { return a + b },
		"sub":   func(a, b int) int { return a - b },
	}
}

// loadPages parses every page on top of the shared layouts.
func loadPages() (*pages, error) {
	templates := make(map[string]*template.Template)

	err := fs.WalkDir(templateFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") || strings.Contains(path, "layouts/") {
			return nil
		}
		name := strings.TrimSuffix(strings.TrimPrefix(path, "templates/"), ".html")
		tmpl, err := template.New(name).
			Funcs(funcMap()).
			ParseFS(templateFS, "templates/layouts/*.html", path)
		if err != nil {
			return goerr.Wrap(err, "failed to parse template", goerr.V("path", path))
		}
		templates[name] = tmpl
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load templates")
	}
	return &pages{t: templates}, nil
}

type pageParams struct {
	Owner     string
	PublicURL string
	Path      string
	Data      any
}

// render executes into a buffer first so a failing template never leaves a half written page.
func (x *Server) render(ctx context.Context, w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	tmpl, ok := x.pages.t[name]
	if !ok {
		logError(ctx, x.cfg.logger, http.StatusInternalServerError, "template not found", goerr.New("template not found", goerr.V("name", name)))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	params := pageParams{
		Owner:     x.user,
		PublicURL: x.cfg.publicURL,
		Path:      r.URL.Path,
		Data:      data,
	}
	if err := tmpl.ExecuteTemplate(&buf, "layouts/base", params); err != nil {
		logError(ctx, x.cfg.logger, http.StatusInternalServerError, "failed to render page", goerr.Wrap(err, "failed to execute template", goerr.V("name", name)))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	safeWrite(ctx, w, status, buf.Bytes())
}

// renderError shows the error page matching err. Rate limits and upstream refusals use the 403 page.
func (x *Server) renderError(ctx context.Context, w http.ResponseWriter, r *http.Request, msg string, err error) {
	status, _ := statusOf(err)
	logError(ctx, x.cfg.logger, status, msg, err)

	switch status {
	case http.StatusNotFound:
		x.render(ctx, w, r, http.StatusNotFound, "errors/404", nil)
	case http.StatusForbidden, http.StatusTooManyRequests:
		x.render(ctx, w, r, status, "errors/403", nil)
	default:
		x.render(ctx, w, r, http.StatusInternalServerError, "errors/500", nil)
	}
}

func (x *Server) notFoundPage(w http.ResponseWriter, r *http.Request) {
	x.render(r.Context(), w, r, http.StatusNotFound, "errors/404", nil)
}

func (x *Server) indexPage(w http.ResponseWriter, r *http.Request) {
	var data *domain.AggregateResult
	if x.cfg.catalog != nil {
		data = x.cfg.catalog.Projects()
	}
	x.render(r.Context(), w, r, http.StatusOK, "index", data)
}

func (x *Server) projectsPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, paged, err := parsePage(r)
	if err != nil {
		http.Redirect(w, r, "/projects", http.StatusFound)
		return
	}
	if !paged {
		page = 1
	}

	result, err := x.projects.Aggregate(ctx, x.user)
	if err != nil {
		x.renderError(ctx, w, r, "failed to aggregate projects", err)
		return
	}
	x.render(ctx, w, r, http.StatusOK, "projects", usecase.Paginate(result, page, x.cfg.pageSize))
}

type aboutData struct {
	Skills    []domain.Skill
	Languages []domain.LanguageStat
	Tools     domain.Tools
}

func (x *Server) aboutPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := aboutData{Tools: x.cfg.tools}
	if x.cfg.catalog != nil {
		data.Skills = x.cfg.catalog.Skills()
	}

	result, err := x.projects.Aggregate(ctx, x.user)
	if err != nil {
		x.renderError(ctx, w, r, "failed to aggregate projects", err)
		return
	}
	if data.Languages, err = usecase.LanguageStats(result.Projects); err != nil {
		x.renderError(ctx, w, r, "failed to compute language statistics", err)
		return
	}
	x.render(ctx, w, r, http.StatusOK, "about", data)
}

func (x *Server) tutorialsPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tutorials, err := x.tutorials.List(ctx, x.user)
	if err != nil {
		x.renderError(ctx, w, r, "failed to list tutorials", err)
		return
	}
	x.render(ctx, w, r, http.StatusOK, "tutorials", tutorials)
}

type tutorialFile struct {
	Name string
	Text string
	HTML template.HTML
}

type tutorialData struct {
	Tutorial domain.Tutorial
	Files    []tutorialFile
}

func (x *Server) tutorialPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Redirect(w, r, "/tutorials", http.StatusFound)
		return
	}

	gist, err := x.tutorials.Gist(ctx, x.user, id)
	if err != nil {
		x.renderError(ctx, w, r, "failed to fetch tutorial", err)
		return
	}

	data := tutorialData{Tutorial: usecase.ToTutorial(*gist)}
	for _, f := range gist.Files {
		file := tutorialFile{Name: f.Name, Text: f.Text}
		if strings.HasSuffix(strings.ToLower(f.Name), ".md") {
			if file.HTML, err = x.markdown.Render(f.Text); err != nil {
				x.renderError(ctx, w, r, "failed to render tutorial", err)
				return
			}
		}
		data.Files = append(data.Files, file)
	}
	x.render(ctx, w, r, http.StatusOK, "tutorial", data)
}
