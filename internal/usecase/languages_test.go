package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/portfolio/internal/domain"
)

func project(langs ...domain.Language) *domain.AggregatedProject {
	return &domain.AggregatedProject{Languages: langs}
}

func TestLanguageStats(t *testing.T) {
	input := []*domain.AggregatedProject{
		project(domain.NewLanguage("Go", 600), domain.NewLanguage("HTML", 100)),
		project(domain.NewLanguage("Go", 200)),
		project(domain.NewLanguage("Python", 100), domain.NewLanguage("Go", 0)),
	}

	got, err := LanguageStats(input)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, domain.LanguageStat{
		Name:        "Go",
		Icon:        "go-logo",
		Kind:        "programming",
		TotalBytes:  800,
		Share:       80,
		Repos:       3,
		MedianBytes: 200,
	}, got[0])

	// equal totals keep first-seen order
	assert.Equal(t, "HTML", got[1].Name)
	assert.Equal(t, "markup", got[1].Kind)
	assert.Equal(t, 10.0, got[1].Share)
	assert.Equal(t, "Python", got[2].Name)
	assert.Equal(t, "programming", got[2].Kind)
	assert.Equal(t, 1, got[2].Repos)
}

func TestLanguageStatsRoundsShare(t *testing.T) {
	got, err := LanguageStats([]*domain.AggregatedProject{
		project(domain.NewLanguage("Go", 1), domain.NewLanguage("Python", 2)),
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 66.67, got[0].Share)
	assert.Equal(t, 33.33, got[1].Share)
}

func TestLanguageStatsEmpty(t *testing.T) {
	got, err := LanguageStats(nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got, err = LanguageStats([]*domain.AggregatedProject{project()})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLanguageStatsAllZero(t *testing.T) {
	got, err := LanguageStats([]*domain.AggregatedProject{project(domain.NewLanguage("Go", 0))})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 0.0, got[0].Share)
}

func TestLanguageKind(t *testing.T) {
	testCases := map[string]string{
		"Go":           "programming",
		"Markdown":     "prose",
		"JSON":         "data",
		"HTML":         "markup",
		"NotALanguage": "unknown",
	}
	for name, want := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, languageKind(name))
		})
	}
}
