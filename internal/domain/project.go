// Package domain contains the core data structures and domain logic for the application.
package domain

import "strings"

// RepositorySummary is the part of an upstream repository listing the aggregator needs.
// It is a per-request snapshot and is never mutated after being fetched.
type RepositorySummary struct {
	ID          int64
	Owner       string
	Name        string
	URL         string
	Description *string
	IsFork      bool
}

// LanguageUsage maps a language name, as spelled upstream, to the number of bytes written in it.
type LanguageUsage map[string]int

// Language is one entry of a project's language breakdown.
type Language struct {
	Name    string `json:"name"`
	Icon    string `json:"icon"`
	UseRate int    `json:"use_rate"`
}

// NewLanguage builds a Language entry. The icon is the lowercased name with a "-logo" suffix;
// no other character substitution happens, so "C++" becomes "c++-logo".
func NewLanguage(name string, useRate int) Language {
	return Language{
		Name:    name,
		Icon:    strings.ToLower(name) + "-logo",
		UseRate: useRate,
	}
}

// AggregatedProject is a repository merged with its language breakdown.
type AggregatedProject struct {
	ID                 int64      `json:"id"`
	Repo               string     `json:"repo"`
	URL                string     `json:"url"`
	Description        *string    `json:"description"`
	Languages          []Language `json:"languages"`
	AllLanguagesJoined string     `json:"string_languages"`
}

// JoinLanguages renders the language names of a breakdown as a comma separated list.
func JoinLanguages(langs []Language) string {
	names := make([]string, len(langs))
	for i, l := range langs {
		names[i] = l.Name
	}
	return strings.Join(names, ", ")
}

// Pagination describes which slice of the project list a response holds.
type Pagination struct {
	Page          int `json:"page"`
	PerPage       int `json:"per_page"`
	TotalProjects int `json:"total_projects"`
	TotalPages    int `json:"total_pages"`
}

// AggregateResult is the payload returned to API consumers.
// Languages is a set of lowercase names; its order carries no meaning.
type AggregateResult struct {
	Projects   []*AggregatedProject `json:"projects"`
	Languages  []string             `json:"languages"`
	Pagination *Pagination          `json:"pagination,omitempty"`
}

// LanguageSet returns the deduplicated lowercase union of every project's language names.
func LanguageSet(projects []*AggregatedProject) []string {
	seen := make(map[string]struct{})
	set := make([]string, 0)
	for _, p := range projects {
		for _, l := range p.Languages {
			name := strings.ToLower(l.Name)
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			set = append(set, name)
		}
	}
	return set
}

// LanguageStat summarises how one language is used across all aggregated projects.
type LanguageStat struct {
	Name        string  `json:"name"`
	Icon        string  `json:"icon"`
	Kind        string  `json:"kind"`
	TotalBytes  int     `json:"total_bytes"`
	Share       float64 `json:"share"`
	Repos       int     `json:"repos"`
	MedianBytes float64 `json:"median_bytes"`
}
