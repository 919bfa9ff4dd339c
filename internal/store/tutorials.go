package store

import (
	"context"
	"database/sql"

	"github.com/m-mizutani/goerr/v2"

	"github.com/naka-gawa/portfolio/internal/domain"
)

// SaveTutorials replaces every mirrored tutorial, its files and their images.
func (s *Store) SaveTutorials(ctx context.Context, tutorials []domain.Tutorial) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `delete from gists`); err != nil {
			return goerr.Wrap(err, "failed to clear gists")
		}

		for pos, t := range tutorials {
			_, err := tx.ExecContext(ctx, s.rebind(
				`insert into gists (id, owner, title, description, embed_url, position) values (?, ?, ?, ?, ?, ?)`),
				t.ID, t.Author, t.Title, t.Description, t.EmbedURL, pos,
			)
			if err != nil {
				return goerr.Wrap(err, "failed to insert gist", goerr.V("id", t.ID))
			}

			for fpos, f := range t.Files {
				var fileID int64
				err := tx.QueryRowContext(ctx, s.rebind(
					`insert into gist_files (gist_id, name, type, position) values (?, ?, ?, ?) returning id`),
					t.ID, f.Name, f.Type, fpos,
				).Scan(&fileID)
				if err != nil {
					return goerr.Wrap(err, "failed to insert gist file", goerr.V("id", t.ID), goerr.V("file", f.Name))
				}

				for ipos, url := range f.Images {
					if _, err := tx.ExecContext(ctx, s.rebind(
						`insert into gist_file_images (file_id, url, position) values (?, ?, ?)`),
						fileID, url, ipos,
					); err != nil {
						return goerr.Wrap(err, "failed to insert gist image", goerr.V("file", f.Name), goerr.V("url", url))
					}
				}
			}
		}
		return nil
	})
}

// ListTutorials reads the mirrored tutorials back in the order they were saved.
func (s *Store) ListTutorials(ctx context.Context) ([]domain.Tutorial, error) {
	rows, err := s.db.QueryContext(ctx, `
		select g.id, g.owner, g.title, g.description, g.embed_url, f.id, f.name, f.type
		from gists g
		left join gist_files f on f.gist_id = g.id
		order by g.position, f.position`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query gists")
	}
	defer rows.Close()

	tutorials := make([]domain.Tutorial, 0)
	fileIndex := make(map[int64][2]int)
	for rows.Next() {
		var (
			t        domain.Tutorial
			fileID   sql.NullInt64
			fileName sql.NullString
			fileType sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.Author, &t.Title, &t.Description, &t.EmbedURL, &fileID, &fileName, &fileType); err != nil {
			return nil, goerr.Wrap(err, "failed to scan gist")
		}
		if n := len(tutorials); n == 0 || tutorials[n-1].ID != t.ID {
			t.Files = make([]domain.TutorialFile, 0)
			tutorials = append(tutorials, t)
		}
		if !fileID.Valid {
			continue
		}
		ti := len(tutorials) - 1
		tutorials[ti].Files = append(tutorials[ti].Files, domain.TutorialFile{
			Name:   fileName.String,
			Type:   fileType.String,
			Images: make([]string, 0),
		})
		fileIndex[fileID.Int64] = [2]int{ti, len(tutorials[ti].Files) - 1}
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate gists")
	}

	imgRows, err := s.db.QueryContext(ctx, `select file_id, url from gist_file_images order by file_id, position`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query gist images")
	}
	defer imgRows.Close()

	for imgRows.Next() {
		var (
			fileID int64
			url    string
		)
		if err := imgRows.Scan(&fileID, &url); err != nil {
			return nil, goerr.Wrap(err, "failed to scan gist image")
		}
		idx, ok := fileIndex[fileID]
		if !ok {
			return nil, goerr.Wrap(domain.ErrInternalConsistency, "image row without file", goerr.V("file_id", fileID))
		}
		f := &tutorials[idx[0]].Files[idx[1]]
		f.Images = append(f.Images, url)
	}
	if err := imgRows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate gist images")
	}

	return tutorials, nil
}
