package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/naka-gawa/portfolio/internal/domain"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It allows us to simulate the behavior of the GitHub gateway without making real API calls.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) ListRepositories(ctx context.Context, user string) ([]domain.RepositorySummary, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RepositorySummary), args.Error(1)
}

func (m *mockFetcher) FetchLanguages(ctx context.Context, owner, repo string) (domain.LanguageUsage, error) {
	args := m.Called(ctx, owner, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.LanguageUsage), args.Error(1)
}

func (m *mockFetcher) FetchGists(ctx context.Context, user string) ([]domain.Gist, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Gist), args.Error(1)
}

func (m *mockFetcher) FetchGist(ctx context.Context, id string) (*domain.Gist, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Gist), args.Error(1)
}

// mockSource stands in for any ProjectSource.
type mockSource struct {
	mock.Mock
}

func (m *mockSource) Aggregate(ctx context.Context, user string) (*domain.AggregateResult, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AggregateResult), args.Error(1)
}

func repo(id int64, name string, fork bool) domain.RepositorySummary {
	return domain.RepositorySummary{
		ID:     id,
		Owner:  "octocat",
		Name:   name,
		URL:    "https://github.com/octocat/" + name,
		IsFork: fork,
	}
}

func strPtr(s string) *string { return &s }
