package usecase

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/naka-gawa/portfolio/internal/domain"
)

func projects(n int) []*domain.AggregatedProject {
	out := make([]*domain.AggregatedProject, n)
	for i := range out {
		out[i] = &domain.AggregatedProject{ID: int64(i + 1), Repo: fmt.Sprintf("repo-%d", i+1)}
	}
	return out
}

func TestPaginate(t *testing.T) {
	result := &domain.AggregateResult{
		Projects:  projects(12),
		Languages: []string{"go", "python"},
	}

	testCases := []struct {
		name       string
		page       int
		wantIDs    []int64
		wantPages  int
		wantLength int
	}{
		{name: "first page", page: 1, wantIDs: []int64{1, 2, 3, 4, 5}, wantPages: 3, wantLength: 5},
		{name: "middle page", page: 2, wantIDs: []int64{6, 7, 8, 9, 10}, wantPages: 3, wantLength: 5},
		{name: "last partial page", page: 3, wantIDs: []int64{11, 12}, wantPages: 3, wantLength: 2},
		{name: "past the end", page: 4, wantIDs: []int64{}, wantPages: 3, wantLength: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Paginate(result, tc.page, 5)

			ids := make([]int64, 0, len(got.Projects))
			for _, p := range got.Projects {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tc.wantIDs, ids)
			assert.Len(t, got.Projects, tc.wantLength)
			assert.Equal(t, []string{"go", "python"}, got.Languages)
			assert.Equal(t, &domain.Pagination{
				Page:          tc.page,
				PerPage:       5,
				TotalProjects: 12,
				TotalPages:    tc.wantPages,
			}, got.Pagination)
		})
	}
}

func TestPaginateEmpty(t *testing.T) {
	got := Paginate(&domain.AggregateResult{Projects: []*domain.AggregatedProject{}, Languages: []string{}}, 1, 5)
	assert.Empty(t, got.Projects)
	assert.Equal(t, 0, got.Pagination.TotalPages)
	assert.Equal(t, 0, got.Pagination.TotalProjects)
}
