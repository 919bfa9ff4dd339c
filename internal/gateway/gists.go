package gateway

import (
	"context"
	"errors"
	"net/http"
	"sort"

	"github.com/google/go-github/v62/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/shurcooL/githubv4"

	"github.com/naka-gawa/portfolio/internal/domain"
)

// gistsQuery fetches gists with their file contents in a single round trip,
// which the REST listing endpoint cannot do.
type gistsQuery struct {
	User struct {
		Gists struct {
			PageInfo struct {
				HasNextPage bool
				EndCursor   githubv4.String
			}
			Nodes []struct {
				Name        string
				Description string
				Owner       struct {
					Login string
				}
				Files []struct {
					Name     string
					Language *struct {
						Name string
					}
					Text string
				} `graphql:"files(limit: 10)"`
			}
		} `graphql:"gists(first: 50, after: $cursor, privacy: PUBLIC)"`
	} `graphql:"user(login: $login)"`
}

// FetchGists returns every public gist of user together with its file texts.
// Authenticated gateways use a single GraphQL query; anonymous ones fall back to
// the REST listing plus one request per gist.
func (g *GitHubGateway) FetchGists(ctx context.Context, user string) ([]domain.Gist, error) {
	if g.graphqlGists {
		return g.fetchGistsGraphQL(ctx, user)
	}
	return g.fetchGistsREST(ctx, user)
}

func (g *GitHubGateway) fetchGistsGraphQL(ctx context.Context, user string) ([]domain.Gist, error) {
	g.logger.Debug("fetching gists over GraphQL", "user", user)
	variables := map[string]interface{}{
		"login":  githubv4.String(user),
		"cursor": (*githubv4.String)(nil),
	}

	gists := make([]domain.Gist, 0)
	for {
		var q gistsQuery
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return nil, goerr.Wrap(classify(err), "failed to execute GraphQL query for gists",
				goerr.V("user", user),
			)
		}
		for _, node := range q.User.Gists.Nodes {
			gist := domain.Gist{
				ID:          node.Name,
				Owner:       node.Owner.Login,
				Description: node.Description,
			}
			if gist.Owner == "" {
				gist.Owner = user
			}
			for _, f := range node.Files {
				file := domain.GistFile{Name: f.Name, Text: f.Text}
				if f.Language != nil {
					file.Language = f.Language.Name
				}
				gist.Files = append(gist.Files, file)
			}
			gists = append(gists, gist)
		}
		if !q.User.Gists.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(q.User.Gists.PageInfo.EndCursor)
		g.logger.Debug("fetching next page of gists")
	}
	g.logger.Debug("completed fetching gists", "user", user, "count", len(gists))
	return gists, nil
}

func (g *GitHubGateway) fetchGistsREST(ctx context.Context, user string) ([]domain.Gist, error) {
	g.logger.Debug("fetching gists over REST", "user", user)
	opts := &github.GistListOptions{ListOptions: github.ListOptions{PerPage: 100}}

	// the listing carries no file contents, only ids
	var ids []string
	for {
		page, resp, err := g.restClient.Gists.List(ctx, user, opts)
		if err != nil {
			return nil, goerr.Wrap(classify(err), "failed to list gists", goerr.V("user", user))
		}
		for _, gist := range page {
			ids = append(ids, gist.GetID())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	gists := make([]domain.Gist, 0, len(ids))
	for _, id := range ids {
		gist, err := g.FetchGist(ctx, id)
		if err != nil {
			return nil, err
		}
		if gist.Owner == "" {
			gist.Owner = user
		}
		gists = append(gists, *gist)
	}
	g.logger.Debug("completed fetching gists", "user", user, "count", len(gists))
	return gists, nil
}

// FetchGist returns a single gist with its file texts, or domain.ErrNotFound.
// Files are ordered by name, as GitHub lists them.
func (g *GitHubGateway) FetchGist(ctx context.Context, id string) (*domain.Gist, error) {
	gist, _, err := g.restClient.Gists.Get(ctx, id)
	if err != nil {
		var respErr *github.ErrorResponse
		if errors.As(err, &respErr) && respErr.Response != nil && respErr.Response.StatusCode == http.StatusNotFound {
			return nil, goerr.Wrap(domain.ErrNotFound, "gist not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(classify(err), "failed to fetch gist", goerr.V("id", id))
	}

	names := make([]string, 0, len(gist.Files))
	for name := range gist.Files {
		names = append(names, string(name))
	}
	sort.Strings(names)

	result := &domain.Gist{
		ID:          gist.GetID(),
		Owner:       gist.GetOwner().GetLogin(),
		Description: gist.GetDescription(),
		Files:       make([]domain.GistFile, 0, len(names)),
	}
	for _, name := range names {
		f := gist.Files[github.GistFilename(name)]
		filename := f.GetFilename()
		if filename == "" {
			filename = name
		}
		result.Files = append(result.Files, domain.GistFile{
			Name:     filename,
			Language: f.GetLanguage(),
			Text:     f.GetContent(),
		})
	}
	return result, nil
}
