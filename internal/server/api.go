package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/naka-gawa/portfolio/internal/usecase"
)

// parsePage reads the optional 1-based ?page= parameter. ok is false when it is absent.
func parsePage(r *http.Request) (page int, ok bool, err error) {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 0, false, nil
	}
	page, err = strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, false, goerr.New("page must be a positive integer", goerr.V("page", raw))
	}
	return page, true, nil
}

func (x *Server) getProjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, paged, err := parsePage(r)
	if err != nil {
		writeJSON(ctx, w, http.StatusBadRequest, errorBody{Error: "page must be a positive integer"})
		return
	}

	result, err := x.projects.Aggregate(ctx, x.user)
	if err != nil {
		x.handleAPIError(ctx, w, "failed to aggregate projects", err)
		return
	}
	if paged {
		result = usecase.Paginate(result, page, x.cfg.pageSize)
	}
	writeJSON(ctx, w, http.StatusOK, result)
}

func (x *Server) getCuratedProjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, x.cfg.catalog.Projects())
}

func (x *Server) getSkills(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]any{"skills": x.cfg.catalog.Skills()})
}

func (x *Server) getTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, x.cfg.tools)
}

func (x *Server) getLanguages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := x.projects.Aggregate(ctx, x.user)
	if err != nil {
		x.handleAPIError(ctx, w, "failed to aggregate projects", err)
		return
	}
	langs, err := usecase.LanguageStats(result.Projects)
	if err != nil {
		x.handleAPIError(ctx, w, "failed to compute language statistics", err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, map[string]any{"languages": langs})
}

func (x *Server) getTutorials(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tutorials, err := x.tutorials.List(ctx, x.user)
	if err != nil {
		x.handleAPIError(ctx, w, "failed to list tutorials", err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, tutorials)
}

func (x *Server) getTutorial(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	gist, err := x.tutorials.Gist(ctx, x.user, chi.URLParam(r, "id"))
	if err != nil {
		x.handleAPIError(ctx, w, "failed to fetch tutorial", err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, usecase.ToTutorial(*gist))
}

func (x *Server) refreshMirror(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	report, err := x.cfg.mirror.Refresh(ctx, x.user)
	if err != nil {
		x.handleAPIError(ctx, w, "failed to refresh mirror", err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, report)
}

func (x *Server) getMirroredProjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := x.cfg.mirror.ListProjects(ctx)
	if err != nil {
		x.handleAPIError(ctx, w, "failed to list mirrored projects", err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, result)
}

func (x *Server) getMirroredTutorials(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tutorials, err := x.cfg.mirror.ListTutorials(ctx)
	if err != nil {
		x.handleAPIError(ctx, w, "failed to list mirrored tutorials", err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, tutorials)
}
