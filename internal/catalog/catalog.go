// Package catalog serves the hand-curated part of the portfolio: projects, skills
// and the tools the site itself is built with.
package catalog

import (
	"encoding/json"
	"io"
	"os"
	"runtime"
	"runtime/debug"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"

	"github.com/naka-gawa/portfolio/internal/domain"
)

// file is the on-disk layout. Projects reference languages by index into Languages.
type file struct {
	Languages []struct {
		Name string `json:"name"`
		Icon string `json:"icon"`
	} `json:"languages"`
	Projects []struct {
		Repo        string  `json:"repo"`
		URL         string  `json:"url"`
		Description *string `json:"description"`
		Languages   []struct {
			Index   int `json:"index"`
			UseRate int `json:"use_rate"`
		} `json:"languages"`
	} `json:"projects"`
	Skills []domain.Skill `json:"skills"`
}

// Catalog is the decoded data file with language indexes resolved.
type Catalog struct {
	projects []*domain.AggregatedProject
	skills   []domain.Skill
}

// Load reads the data file at path.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open data file", goerr.V("path", path))
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load data file", goerr.V("path", path))
	}
	return c, nil
}

// Parse decodes a data file and resolves every language index.
func Parse(r io.Reader) (*Catalog, error) {
	var raw file
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, goerr.Wrap(domain.ErrInvalidData, "failed to decode data file", goerr.V("cause", err.Error()))
	}

	projects := make([]*domain.AggregatedProject, 0, len(raw.Projects))
	for i, p := range raw.Projects {
		langs := make([]domain.Language, 0, len(p.Languages))
		for _, ref := range p.Languages {
			if ref.Index < 0 || ref.Index >= len(raw.Languages) {
				return nil, goerr.Wrap(domain.ErrInvalidData, "language index out of range",
					goerr.V("project", p.Repo),
					goerr.V("index", ref.Index),
				)
			}
			def := raw.Languages[ref.Index]
			lang := domain.NewLanguage(def.Name, ref.UseRate)
			if def.Icon != "" {
				lang.Icon = def.Icon
			}
			langs = append(langs, lang)
		}
		projects = append(projects, &domain.AggregatedProject{
			ID:                 int64(i + 1),
			Repo:               p.Repo,
			URL:                p.URL,
			Description:        p.Description,
			Languages:          langs,
			AllLanguagesJoined: domain.JoinLanguages(langs),
		})
	}

	skills := make([]domain.Skill, 0, len(raw.Skills))
	for _, s := range raw.Skills {
		s.Name = capitalize(s.Name)
		skills = append(skills, s)
	}

	return &Catalog{projects: projects, skills: skills}, nil
}

// Projects returns the curated projects in file order.
func (c *Catalog) Projects() *domain.AggregateResult {
	return &domain.AggregateResult{
		Projects:  c.projects,
		Languages: domain.LanguageSet(c.projects),
	}
}

// Skills returns the skills with capitalised names.
func (c *Catalog) Skills() []domain.Skill {
	return c.skills
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// Tools reports the Go runtime version and the versions of the given modules
// as recorded in the binary's build info. Unknown modules report "unknown".
func Tools(modules []string) domain.Tools {
	versions := make(map[string]string)
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, dep := range info.Deps {
			if dep.Replace != nil {
				versions[dep.Path] = dep.Replace.Version
				continue
			}
			versions[dep.Path] = dep.Version
		}
	}

	libs := make([]domain.Library, 0, len(modules))
	for _, m := range modules {
		v, ok := versions[m]
		if !ok || v == "" {
			v = "unknown"
		}
		libs = append(libs, domain.Library{Name: m, Version: v})
	}
	return domain.Tools{Go: runtime.Version(), Libs: libs}
}
