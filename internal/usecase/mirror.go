package usecase

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"

	"github.com/naka-gawa/portfolio/internal/domain"
)

// MirrorStore is the persistence side of the mirror.
type MirrorStore interface {
	SaveProjects(ctx context.Context, projects []*domain.AggregatedProject) error
	ListProjects(ctx context.Context) (*domain.AggregateResult, error)
	SaveTutorials(ctx context.Context, tutorials []domain.Tutorial) error
	ListTutorials(ctx context.Context) ([]domain.Tutorial, error)
}

// TutorialLister lists a user's tutorials.
type TutorialLister interface {
	List(ctx context.Context, user string) ([]domain.Tutorial, error)
}

// MirrorReport counts what a refresh wrote.
type MirrorReport struct {
	Projects  int `json:"projects"`
	Tutorials int `json:"tutorials"`
}

// Mirror copies live upstream data into the store.
type Mirror struct {
	projects  ProjectSource
	tutorials TutorialLister
	store     MirrorStore
	logger    *slog.Logger
}

func NewMirror(projects ProjectSource, tutorials TutorialLister, store MirrorStore, logger *slog.Logger) *Mirror {
	return &Mirror{projects: projects, tutorials: tutorials, store: store, logger: logger}
}

// Refresh fetches everything first and only then writes, so an upstream
// failure leaves the previous mirror untouched.
func (m *Mirror) Refresh(ctx context.Context, user string) (*MirrorReport, error) {
	result, err := m.projects.Aggregate(ctx, user)
	if err != nil {
		return nil, err
	}
	tutorials, err := m.tutorials.List(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := m.store.SaveProjects(ctx, result.Projects); err != nil {
		return nil, goerr.Wrap(err, "failed to mirror projects", goerr.V("user", user))
	}
	if err := m.store.SaveTutorials(ctx, tutorials); err != nil {
		return nil, goerr.Wrap(err, "failed to mirror tutorials", goerr.V("user", user))
	}

	report := &MirrorReport{Projects: len(result.Projects), Tutorials: len(tutorials)}
	m.logger.Info("mirror refreshed", "user", user, "projects", report.Projects, "tutorials", report.Tutorials)
	return report, nil
}

func (m *Mirror) ListProjects(ctx context.Context) (*domain.AggregateResult, error) {
	return m.store.ListProjects(ctx)
}

func (m *Mirror) ListTutorials(ctx context.Context) ([]domain.Tutorial, error) {
	return m.store.ListTutorials(ctx)
}
