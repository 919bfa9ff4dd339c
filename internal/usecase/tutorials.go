package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/naka-gawa/portfolio/internal/domain"
	"github.com/naka-gawa/portfolio/internal/gateway"
)

var markdownImage = regexp.MustCompile(`!\[[^\]]+\]\(([^)\s]+)\)`)

// Tutorials turns a user's gists into tutorials.
type Tutorials struct {
	fetcher gateway.Fetcher
	logger  *slog.Logger
}

func NewTutorials(fetcher gateway.Fetcher, logger *slog.Logger) *Tutorials {
	return &Tutorials{fetcher: fetcher, logger: logger}
}

// List returns every public gist of user as a tutorial, in upstream order.
func (t *Tutorials) List(ctx context.Context, user string) ([]domain.Tutorial, error) {
	gists, err := t.fetcher.FetchGists(ctx, user)
	if err != nil {
		return nil, err
	}
	tutorials := make([]domain.Tutorial, 0, len(gists))
	for _, g := range gists {
		tutorials = append(tutorials, ToTutorial(g))
	}
	return tutorials, nil
}

// Gist returns the raw gist with the given id. Gists owned by someone other
// than user are reported as domain.ErrNotFound.
func (t *Tutorials) Gist(ctx context.Context, user, id string) (*domain.Gist, error) {
	gist, err := t.fetcher.FetchGist(ctx, id)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(gist.Owner, user) {
		t.logger.Debug("gist belongs to another user", "user", user, "id", id, "owner", gist.Owner)
		return nil, goerr.Wrap(domain.ErrNotFound, "gist not found", goerr.V("id", id))
	}
	return gist, nil
}

// ToTutorial shapes a gist for display.
func ToTutorial(g domain.Gist) domain.Tutorial {
	files := make([]domain.TutorialFile, 0, len(g.Files))
	for _, f := range g.Files {
		files = append(files, domain.TutorialFile{
			Name:   f.Name,
			Type:   f.Language,
			Images: ParseImages(f.Text),
		})
	}

	var title string
	if len(g.Files) > 0 {
		title = TitleFromFilename(g.Files[0].Name)
	}

	return domain.Tutorial{
		ID:          g.ID,
		Title:       title,
		Author:      g.Owner,
		Description: g.Description,
		Files:       files,
		EmbedURL:    fmt.Sprintf("https://gist.github.com/%s/%s.js", g.Owner, g.ID),
	}
}

// ParseImages returns the URLs of the markdown images in text.
func ParseImages(text string) []string {
	images := make([]string, 0)
	for _, m := range markdownImage.FindAllStringSubmatch(text, -1) {
		images = append(images, m[1])
	}
	return images
}

// TitleFromFilename derives a title: "getting_started.md" becomes "Getting Started".
func TitleFromFilename(name string) string {
	name = strings.TrimSuffix(name, ".md")
	name = strings.ReplaceAll(name, "_", " ")
	return cases.Title(language.Und).String(name)
}
