// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/naka-gawa/portfolio/internal/domain"
)

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	ListRepositories(ctx context.Context, user string) ([]domain.RepositorySummary, error)
	FetchLanguages(ctx context.Context, owner, repo string) (domain.LanguageUsage, error)
	FetchGists(ctx context.Context, user string) ([]domain.Gist, error)
	FetchGist(ctx context.Context, id string) (*domain.Gist, error)
}

// Options configures the HTTP stack shared by the REST and GraphQL clients.
type Options struct {
	// Token is the bearer credential. Empty means unauthenticated, rate-limited access.
	Token string
	// BaseURL overrides https://api.github.com/, for GitHub Enterprise or tests.
	BaseURL string
	// RateLimitWait is the longest single sleep allowed on a secondary rate limit.
	// Zero surfaces the limit to the caller immediately.
	RateLimitWait time.Duration
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	// graphqlGists lists gists in one GraphQL round trip. GitHub only serves GraphQL
	// to authenticated callers, so it is off without a token.
	graphqlGists bool
	logger       *slog.Logger
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(opts Options, logger *slog.Logger) (*GitHubGateway, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil,
		github_ratelimit.WithSingleSleepLimit(opts.RateLimitWait, nil),
		github_ratelimit.WithLimitDetectedCallback(func(cbCtx *github_ratelimit.CallbackContext) {
			logger.Warn("secondary rate limit detected", "sleep_until", cbCtx.SleepUntil)
		}),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create rate limit waiter")
	}

	var transport http.RoundTripper = rateLimitWaiter
	if opts.Token != "" {
		transport = &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}),
		}
	} else {
		logger.Warn("no GitHub token configured, upstream rate limits will be low")
	}
	httpClient := &http.Client{Transport: transport}
	graphqlHTTPClient := &http.Client{Transport: &statusTransport{base: transport}}

	restClient := github.NewClient(httpClient)
	graphqlClient := githubv4.NewClient(graphqlHTTPClient)
	if opts.BaseURL != "" {
		baseURL, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
		if err != nil {
			return nil, goerr.Wrap(err, "invalid GitHub API URL", goerr.V("url", opts.BaseURL))
		}
		restClient.BaseURL = baseURL
		graphqlClient = githubv4.NewEnterpriseClient(baseURL.String()+"graphql", graphqlHTTPClient)
	}

	return &GitHubGateway{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		graphqlGists:  opts.Token != "",
		logger:        logger,
	}, nil
}

// ListRepositories returns every repository owned by user, in upstream order, forks included.
func (g *GitHubGateway) ListRepositories(ctx context.Context, user string) ([]domain.RepositorySummary, error) {
	g.logger.Debug("listing repositories", "user", user)
	opts := &github.RepositoryListByUserOptions{
		Type:        "owner",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var repos []domain.RepositorySummary
	for {
		page, resp, err := g.restClient.Repositories.ListByUser(ctx, user, opts)
		if err != nil {
			return nil, goerr.Wrap(classify(err), "failed to list repositories", goerr.V("user", user))
		}
		for _, r := range page {
			owner := r.GetOwner().GetLogin()
			if owner == "" {
				owner = user
			}
			repos = append(repos, domain.RepositorySummary{
				ID:          r.GetID(),
				Owner:       owner,
				Name:        r.GetName(),
				URL:         r.GetHTMLURL(),
				Description: r.Description,
				IsFork:      r.GetFork(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Debug("fetching next page of repositories", "page", resp.NextPage)
	}
	g.logger.Debug("completed listing repositories", "user", user, "count", len(repos))
	return repos, nil
}

// FetchLanguages returns the byte count per language of a single repository.
func (g *GitHubGateway) FetchLanguages(ctx context.Context, owner, repo string) (domain.LanguageUsage, error) {
	langs, _, err := g.restClient.Repositories.ListLanguages(ctx, owner, repo)
	if err != nil {
		return nil, goerr.Wrap(classify(err), "failed to fetch languages",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
		)
	}
	if langs == nil {
		langs = map[string]int{}
	}
	return domain.LanguageUsage(langs), nil
}
