package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/portfolio/internal/domain"
	"github.com/naka-gawa/portfolio/internal/logging"
)

func hasDeadline(ctx context.Context) bool {
	_, ok := ctx.Deadline()
	return ok
}

// TestAggregator_Aggregate uses a table-driven approach to test the aggregator.
func TestAggregator_Aggregate(t *testing.T) {
	testCases := []struct {
		name              string
		repos             []domain.RepositorySummary
		languages         map[string]domain.LanguageUsage
		expectedProjects  []*domain.AggregatedProject
		expectedLanguages []string
	}{
		{
			name: "forks are dropped and order is preserved",
			repos: []domain.RepositorySummary{
				repo(1, "A", false),
				repo(2, "B", true),
				repo(3, "C", false),
			},
			languages: map[string]domain.LanguageUsage{
				"A": {"Python": 100},
				"C": {"Go": 50, "Python": 10},
			},
			expectedProjects: []*domain.AggregatedProject{
				{
					ID: 1, Repo: "A", URL: "https://github.com/octocat/A",
					Languages:          []domain.Language{{Name: "Python", Icon: "python-logo", UseRate: 100}},
					AllLanguagesJoined: "Python",
				},
				{
					ID: 3, Repo: "C", URL: "https://github.com/octocat/C",
					Languages: []domain.Language{
						{Name: "Go", Icon: "go-logo", UseRate: 50},
						{Name: "Python", Icon: "python-logo", UseRate: 10},
					},
					AllLanguagesJoined: "Go, Python",
				},
			},
			expectedLanguages: []string{"python", "go"},
		},
		{
			name: "icons only fold case",
			repos: []domain.RepositorySummary{
				repo(7, "engine", false),
			},
			languages: map[string]domain.LanguageUsage{
				"engine": {"C++": 300, "CMake": 20},
			},
			expectedProjects: []*domain.AggregatedProject{
				{
					ID: 7, Repo: "engine", URL: "https://github.com/octocat/engine",
					Languages: []domain.Language{
						{Name: "C++", Icon: "c++-logo", UseRate: 300},
						{Name: "CMake", Icon: "cmake-logo", UseRate: 20},
					},
					AllLanguagesJoined: "C++, CMake",
				},
			},
			expectedLanguages: []string{"c++", "cmake"},
		},
		{
			name: "empty language lookup yields an empty breakdown",
			repos: []domain.RepositorySummary{
				repo(9, "docs", false),
			},
			languages: map[string]domain.LanguageUsage{
				"docs": {},
			},
			expectedProjects: []*domain.AggregatedProject{
				{
					ID: 9, Repo: "docs", URL: "https://github.com/octocat/docs",
					Languages: []domain.Language{},
				},
			},
			expectedLanguages: []string{},
		},
		{
			name:              "no repositories",
			repos:             []domain.RepositorySummary{},
			expectedProjects:  []*domain.AggregatedProject{},
			expectedLanguages: []string{},
		},
		{
			name: "only forks",
			repos: []domain.RepositorySummary{
				repo(1, "fork-a", true),
				repo(2, "fork-b", true),
			},
			expectedProjects:  []*domain.AggregatedProject{},
			expectedLanguages: []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			fetcher := new(mockFetcher)
			fetcher.On("ListRepositories", mock.MatchedBy(hasDeadline), "octocat").Return(tc.repos, nil)
			for name, usage := range tc.languages {
				fetcher.On("FetchLanguages", mock.MatchedBy(hasDeadline), "octocat", name).Return(usage, nil)
			}

			aggregator := NewAggregator(fetcher, logging.Discard())
			result, err := aggregator.Aggregate(ctx, "octocat")

			require.NoError(t, err)
			assert.Equal(t, tc.expectedProjects, result.Projects)
			assert.ElementsMatch(t, tc.expectedLanguages, result.Languages)
			assert.Nil(t, result.Pagination)

			fetcher.AssertExpectations(t)
			fetcher.AssertNumberOfCalls(t, "FetchLanguages", len(tc.languages))
		})
	}
}

func TestAggregator_JoinIsKeyedNotPositional(t *testing.T) {
	// Lookups finish in reverse order; each project must still get its own languages.
	fetcher := new(mockFetcher)
	fetcher.On("ListRepositories", mock.Anything, "octocat").Return([]domain.RepositorySummary{
		repo(10, "first", false),
		repo(20, "second", false),
		repo(30, "third", false),
	}, nil)
	fetcher.On("FetchLanguages", mock.Anything, "octocat", "first").Return(domain.LanguageUsage{"Go": 1}, nil).After(60 * time.Millisecond)
	fetcher.On("FetchLanguages", mock.Anything, "octocat", "second").Return(domain.LanguageUsage{"Rust": 2}, nil).After(30 * time.Millisecond)
	fetcher.On("FetchLanguages", mock.Anything, "octocat", "third").Return(domain.LanguageUsage{"Zig": 3}, nil)

	result, err := NewAggregator(fetcher, logging.Discard()).Aggregate(context.Background(), "octocat")
	require.NoError(t, err)
	require.Len(t, result.Projects, 3)

	assert.Equal(t, "first", result.Projects[0].Repo)
	assert.Equal(t, "Go", result.Projects[0].Languages[0].Name)
	assert.Equal(t, "second", result.Projects[1].Repo)
	assert.Equal(t, "Rust", result.Projects[1].Languages[0].Name)
	assert.Equal(t, "third", result.Projects[2].Repo)
	assert.Equal(t, "Zig", result.Projects[2].Languages[0].Name)
}

func TestAggregator_ListingRateLimitedSkipsFanOut(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("ListRepositories", mock.Anything, "octocat").
		Return(nil, &domain.UpstreamUnavailableError{StatusCode: 429})

	result, err := NewAggregator(fetcher, logging.Discard()).Aggregate(context.Background(), "octocat")

	require.Error(t, err)
	assert.Nil(t, result)
	var unavailable *domain.UpstreamUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, 429, unavailable.StatusCode)
	fetcher.AssertNotCalled(t, "FetchLanguages", mock.Anything, mock.Anything, mock.Anything)
}

func TestAggregator_AnyFailedLookupFailsTheCall(t *testing.T) {
	names := []string{"A", "B", "C"}
	for failing := range names {
		t.Run("failure at position "+names[failing], func(t *testing.T) {
			fetcher := new(mockFetcher)
			fetcher.On("ListRepositories", mock.Anything, "octocat").Return([]domain.RepositorySummary{
				repo(1, "A", false),
				repo(2, "B", false),
				repo(3, "C", false),
			}, nil)
			for i, name := range names {
				if i == failing {
					fetcher.On("FetchLanguages", mock.Anything, "octocat", name).
						Return(nil, &domain.UpstreamError{StatusCode: 500, Body: "boom"})
					continue
				}
				fetcher.On("FetchLanguages", mock.Anything, "octocat", name).Return(domain.LanguageUsage{"Go": 1}, nil)
			}

			result, err := NewAggregator(fetcher, logging.Discard()).Aggregate(context.Background(), "octocat")

			require.Error(t, err)
			assert.Nil(t, result)
			var upstream *domain.UpstreamError
			require.True(t, errors.As(err, &upstream))
			assert.Equal(t, 500, upstream.StatusCode)
		})
	}
}

func TestAggregator_SiblingsAreNotCancelled(t *testing.T) {
	var mu sync.Mutex
	var siblingErr error
	siblingDone := false

	fetcher := new(mockFetcher)
	fetcher.On("ListRepositories", mock.Anything, "octocat").Return([]domain.RepositorySummary{
		repo(1, "fails", false),
		repo(2, "slow", false),
	}, nil)
	fetcher.On("FetchLanguages", mock.Anything, "octocat", "fails").
		Return(nil, &domain.UpstreamUnavailableError{StatusCode: 403})
	fetcher.On("FetchLanguages", mock.Anything, "octocat", "slow").
		Run(func(args mock.Arguments) {
			time.Sleep(50 * time.Millisecond)
			ctx := args.Get(0).(context.Context)
			mu.Lock()
			siblingErr = ctx.Err()
			siblingDone = true
			mu.Unlock()
		}).
		Return(domain.LanguageUsage{"Go": 1}, nil)

	_, err := NewAggregator(fetcher, logging.Discard()).Aggregate(context.Background(), "octocat")
	require.Error(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, siblingDone, "aggregation must wait for every branch")
	assert.NoError(t, siblingErr)
}

func TestAggregator_FanoutLimit(t *testing.T) {
	var mu sync.Mutex
	inFlight, peak := 0, 0

	fetcher := new(mockFetcher)
	repos := []domain.RepositorySummary{repo(1, "a", false), repo(2, "b", false), repo(3, "c", false), repo(4, "d", false)}
	fetcher.On("ListRepositories", mock.Anything, "octocat").Return(repos, nil)
	fetcher.On("FetchLanguages", mock.Anything, "octocat", mock.Anything).
		Run(func(args mock.Arguments) {
			mu.Lock()
			inFlight++
			peak = max(peak, inFlight)
			mu.Unlock()
			time.Sleep(20 * time.Millisecond)
			mu.Lock()
			inFlight--
			mu.Unlock()
		}).
		Return(domain.LanguageUsage{"Go": 1}, nil)

	result, err := NewAggregator(fetcher, logging.Discard(), WithFanoutLimit(2)).Aggregate(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Len(t, result.Projects, 4)
	assert.LessOrEqual(t, peak, 2)
}

func TestJoinProjects_ConsistencyViolations(t *testing.T) {
	repos := []domain.RepositorySummary{repo(1, "A", false), repo(2, "B", false)}

	testCases := []struct {
		name    string
		results []languageResult
	}{
		{
			name:    "count mismatch",
			results: []languageResult{{repoID: 1, usage: domain.LanguageUsage{}}},
		},
		{
			name:    "duplicate key",
			results: []languageResult{{repoID: 1}, {repoID: 1}},
		},
		{
			name:    "unknown key",
			results: []languageResult{{repoID: 1}, {repoID: 99}},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			projects, err := joinProjects(repos, tc.results)
			require.Error(t, err)
			assert.Nil(t, projects)
			assert.True(t, errors.Is(err, domain.ErrInternalConsistency))
		})
	}
}

func TestBuildProject_KeepsDescription(t *testing.T) {
	r := repo(5, "site", false)
	r.Description = strPtr("my site")

	p := buildProject(r, domain.LanguageUsage{"HTML": 5, "CSS": 5})

	require.NotNil(t, p.Description)
	assert.Equal(t, "my site", *p.Description)
	assert.Equal(t, "CSS, HTML", p.AllLanguagesJoined)
}
