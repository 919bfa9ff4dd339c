// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/portfolio/internal/domain"
	"github.com/naka-gawa/portfolio/internal/gateway"
)

const (
	DefaultListTimeout     = 10 * time.Second
	DefaultLanguageTimeout = 5 * time.Second
)

// ProjectSource produces the aggregated project list of a user.
type ProjectSource interface {
	Aggregate(ctx context.Context, user string) (*domain.AggregateResult, error)
}

// Aggregator is the use case for aggregating a user's repositories and their languages.
// The upstream credential is bound to the fetcher it is given.
type Aggregator struct {
	fetcher         gateway.Fetcher
	logger          *slog.Logger
	listTimeout     time.Duration
	languageTimeout time.Duration
	fanoutLimit     int
}

type Option func(*Aggregator)

// WithTimeouts sets the per-call bounds of the listing and of each language lookup.
func WithTimeouts(list, languages time.Duration) Option {
	return func(a *Aggregator) {
		a.listTimeout = list
		a.languageTimeout = languages
	}
}

// WithFanoutLimit caps the number of concurrent language lookups. Zero or less means one per repository.
func WithFanoutLimit(n int) Option {
	return func(a *Aggregator) {
		a.fanoutLimit = n
	}
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(fetcher gateway.Fetcher, logger *slog.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		fetcher:         fetcher,
		logger:          logger,
		listTimeout:     DefaultListTimeout,
		languageTimeout: DefaultLanguageTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// languageResult is what one fan-out branch hands back. It carries the repository id
// so the join never depends on positions.
type languageResult struct {
	repoID int64
	usage  domain.LanguageUsage
}

// Aggregate lists the non-fork repositories of user, fetches every repository's language
// breakdown concurrently and merges both into the result.
// Any failing upstream call fails the whole aggregation; nothing is retried.
func (a *Aggregator) Aggregate(ctx context.Context, user string) (*domain.AggregateResult, error) {
	a.logger.Debug("usecase: starting project aggregation", "user", user)

	repos, err := a.listOwnRepositories(ctx, user)
	if err != nil {
		return nil, err
	}

	results, err := a.fetchLanguages(ctx, repos)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("usecase: all languages fetched", "repos", len(repos))

	projects, err := joinProjects(repos, results)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("usecase: aggregation complete", "projects", len(projects))
	return &domain.AggregateResult{
		Projects:  projects,
		Languages: domain.LanguageSet(projects),
	}, nil
}

func (a *Aggregator) listOwnRepositories(ctx context.Context, user string) ([]domain.RepositorySummary, error) {
	listCtx, cancel := context.WithTimeout(ctx, a.listTimeout)
	defer cancel()

	all, err := a.fetcher.ListRepositories(listCtx, user)
	if err != nil {
		return nil, err
	}

	repos := make([]domain.RepositorySummary, 0, len(all))
	for _, r := range all {
		if r.IsFork {
			continue
		}
		repos = append(repos, r)
	}
	a.logger.Debug("usecase: filtered forks", "listed", len(all), "kept", len(repos))
	return repos, nil
}

// fetchLanguages runs one lookup per repository and waits for all of them.
// Branches are not cancelled when a sibling fails; the first error wins once every branch is done.
func (a *Aggregator) fetchLanguages(ctx context.Context, repos []domain.RepositorySummary) ([]languageResult, error) {
	results := make([]languageResult, len(repos))

	var eg errgroup.Group
	if a.fanoutLimit > 0 {
		eg.SetLimit(a.fanoutLimit)
	}
	for i, repo := range repos {
		i, repo := i, repo
		eg.Go(func() error {
			lookupCtx, cancel := context.WithTimeout(ctx, a.languageTimeout)
			defer cancel()

			usage, err := a.fetcher.FetchLanguages(lookupCtx, repo.Owner, repo.Name)
			if err != nil {
				return err
			}
			results[i] = languageResult{repoID: repo.ID, usage: usage}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// joinProjects merges repositories with their language breakdowns by repository id.
func joinProjects(repos []domain.RepositorySummary, results []languageResult) ([]*domain.AggregatedProject, error) {
	if len(results) != len(repos) {
		return nil, goerr.Wrap(domain.ErrInternalConsistency, "language lookups do not match repositories",
			goerr.V("repos", len(repos)),
			goerr.V("lookups", len(results)),
		)
	}

	byID := make(map[int64]domain.LanguageUsage, len(results))
	for _, r := range results {
		if _, dup := byID[r.repoID]; dup {
			return nil, goerr.Wrap(domain.ErrInternalConsistency, "duplicate repository in language lookups",
				goerr.V("repo_id", r.repoID),
			)
		}
		byID[r.repoID] = r.usage
	}

	projects := make([]*domain.AggregatedProject, 0, len(repos))
	for _, repo := range repos {
		usage, ok := byID[repo.ID]
		if !ok {
			return nil, goerr.Wrap(domain.ErrInternalConsistency, "repository has no language lookup",
				goerr.V("repo_id", repo.ID),
				goerr.V("repo", repo.Name),
			)
		}
		projects = append(projects, buildProject(repo, usage))
	}
	return projects, nil
}

func buildProject(repo domain.RepositorySummary, usage domain.LanguageUsage) *domain.AggregatedProject {
	langs := make([]domain.Language, 0, len(usage))
	for name, bytes := range usage {
		langs = append(langs, domain.NewLanguage(name, bytes))
	}
	// Largest share first, like the upstream listing; names break ties.
	sort.Slice(langs, func(i, j int) bool {
		if langs[i].UseRate != langs[j].UseRate {
			return langs[i].UseRate > langs[j].UseRate
		}
		return langs[i].Name < langs[j].Name
	})

	return &domain.AggregatedProject{
		ID:                 repo.ID,
		Repo:               repo.Name,
		URL:                repo.URL,
		Description:        repo.Description,
		Languages:          langs,
		AllLanguagesJoined: domain.JoinLanguages(langs),
	}
}
