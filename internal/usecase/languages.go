package usecase

import (
	"sort"

	"github.com/go-enry/go-enry/v2"
	"github.com/m-mizutani/goerr/v2"
	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/portfolio/internal/domain"
)

// LanguageStats summarises language usage across projects, largest total first.
// Languages are grouped by their exact upstream name.
func LanguageStats(projects []*domain.AggregatedProject) ([]domain.LanguageStat, error) {
	perRepo := make(map[string]stats.Float64Data)
	var order []string
	var all stats.Float64Data

	for _, p := range projects {
		for _, l := range p.Languages {
			if _, ok := perRepo[l.Name]; !ok {
				order = append(order, l.Name)
			}
			perRepo[l.Name] = append(perRepo[l.Name], float64(l.UseRate))
			all = append(all, float64(l.UseRate))
		}
	}
	if len(all) == 0 {
		return []domain.LanguageStat{}, nil
	}

	grandTotal, err := all.Sum()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to sum language bytes")
	}

	result := make([]domain.LanguageStat, 0, len(order))
	for _, name := range order {
		data := perRepo[name]
		total, err := data.Sum()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to sum language bytes", goerr.V("language", name))
		}
		median, err := data.Median()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to compute median", goerr.V("language", name))
		}

		var share float64
		if grandTotal > 0 {
			if share, err = stats.Round(total/grandTotal*100, 2); err != nil {
				return nil, goerr.Wrap(err, "failed to round share", goerr.V("language", name))
			}
		}

		lang := domain.NewLanguage(name, 0)
		result = append(result, domain.LanguageStat{
			Name:        name,
			Icon:        lang.Icon,
			Kind:        languageKind(name),
			TotalBytes:  int(total),
			Share:       share,
			Repos:       len(data),
			MedianBytes: median,
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TotalBytes > result[j].TotalBytes
	})
	return result, nil
}

func languageKind(name string) string {
	switch enry.GetLanguageType(name) {
	case enry.Programming:
		return "programming"
	case enry.Markup:
		return "markup"
	case enry.Data:
		return "data"
	case enry.Prose:
		return "prose"
	default:
		return "unknown"
	}
}
