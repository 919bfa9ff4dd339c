package store

import (
	"context"
	"database/sql"

	"github.com/m-mizutani/goerr/v2"

	"github.com/naka-gawa/portfolio/internal/domain"
)

// SaveProjects replaces every mirrored project with projects, keeping their order.
func (s *Store) SaveProjects(ctx context.Context, projects []*domain.AggregatedProject) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `delete from projects`); err != nil {
			return goerr.Wrap(err, "failed to clear projects")
		}

		for pos, p := range projects {
			_, err := tx.ExecContext(ctx, s.rebind(
				`insert into projects (id, repo, url, description, string_languages, position) values (?, ?, ?, ?, ?, ?)`),
				p.ID, p.Repo, p.URL, p.Description, p.AllLanguagesJoined, pos,
			)
			if err != nil {
				return goerr.Wrap(err, "failed to insert project", goerr.V("id", p.ID), goerr.V("repo", p.Repo))
			}

			for lpos, l := range p.Languages {
				langID, err := s.languageID(ctx, tx, l.Name)
				if err != nil {
					return err
				}
				_, err = tx.ExecContext(ctx, s.rebind(
					`insert into project_languages (project_id, language_id, use_rate, position) values (?, ?, ?, ?)`),
					p.ID, langID, l.UseRate, lpos,
				)
				if err != nil {
					return goerr.Wrap(err, "failed to insert project language",
						goerr.V("id", p.ID),
						goerr.V("language", l.Name),
					)
				}
			}
		}

		if _, err := tx.ExecContext(ctx,
			`delete from languages where id not in (select language_id from project_languages)`); err != nil {
			return goerr.Wrap(err, "failed to prune languages")
		}
		return nil
	})
}

func (s *Store) languageID(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	if _, err := tx.ExecContext(ctx, s.rebind(
		`insert into languages (name) values (?) on conflict (name) do nothing`), name); err != nil {
		return 0, goerr.Wrap(err, "failed to upsert language", goerr.V("language", name))
	}
	var id int64
	if err := tx.QueryRowContext(ctx, s.rebind(`select id from languages where name = ?`), name).Scan(&id); err != nil {
		return 0, goerr.Wrap(err, "failed to look up language", goerr.V("language", name))
	}
	return id, nil
}

// ListProjects reads the mirrored projects back in the order they were saved.
func (s *Store) ListProjects(ctx context.Context) (*domain.AggregateResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, repo, url, description, string_languages from projects order by position`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query projects")
	}
	defer rows.Close()

	projects := make([]*domain.AggregatedProject, 0)
	byID := make(map[int64]*domain.AggregatedProject)
	for rows.Next() {
		var (
			p    domain.AggregatedProject
			desc sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Repo, &p.URL, &desc, &p.AllLanguagesJoined); err != nil {
			return nil, goerr.Wrap(err, "failed to scan project")
		}
		if desc.Valid {
			p.Description = &desc.String
		}
		p.Languages = make([]domain.Language, 0)
		projects = append(projects, &p)
		byID[p.ID] = &p
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate projects")
	}

	langRows, err := s.db.QueryContext(ctx, `
		select pl.project_id, l.name, pl.use_rate
		from project_languages pl
		join languages l on l.id = pl.language_id
		order by pl.project_id, pl.position`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query project languages")
	}
	defer langRows.Close()

	for langRows.Next() {
		var (
			projectID int64
			name      string
			useRate   int
		)
		if err := langRows.Scan(&projectID, &name, &useRate); err != nil {
			return nil, goerr.Wrap(err, "failed to scan project language")
		}
		p, ok := byID[projectID]
		if !ok {
			return nil, goerr.Wrap(domain.ErrInternalConsistency, "language row without project", goerr.V("project_id", projectID))
		}
		p.Languages = append(p.Languages, domain.NewLanguage(name, useRate))
	}
	if err := langRows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate project languages")
	}

	return &domain.AggregateResult{
		Projects:  projects,
		Languages: domain.LanguageSet(projects),
	}, nil
}
