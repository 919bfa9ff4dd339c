package usecase

import "github.com/naka-gawa/portfolio/internal/domain"

// Paginate returns the page-th slice (1-based) of result's projects.
// The language set still describes every project, not just the page.
// A page past the end yields no projects.
func Paginate(result *domain.AggregateResult, page, perPage int) *domain.AggregateResult {
	total := len(result.Projects)
	totalPages := (total + perPage - 1) / perPage

	start := min((page-1)*perPage, total)
	end := min(start+perPage, total)

	return &domain.AggregateResult{
		Projects:  result.Projects[start:end],
		Languages: result.Languages,
		Pagination: &domain.Pagination{
			Page:          page,
			PerPage:       perPage,
			TotalProjects: total,
			TotalPages:    totalPages,
		},
	}
}
