// Package store mirrors aggregated projects and tutorials into a relational database.
// sqlite3 and postgres share one schema; only key generation and placeholders differ.
package store

import (
	"context"
	"database/sql"
	"log/slog"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	"github.com/m-mizutani/goerr/v2"
	_ "github.com/mattn/go-sqlite3"

	"github.com/naka-gawa/portfolio/internal/domain"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

type Store struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
}

// Open connects to the database and creates the schema if needed.
func Open(ctx context.Context, driver, dsn string, logger *slog.Logger) (*Store, error) {
	switch driver {
	case DriverSQLite:
		// https://github.com/mattn/go-sqlite3#connection-string
		opts := []string{"_foreign_keys=1", "_journal_mode=WAL", "_busy_timeout=5000"}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn = dsn + sep + strings.Join(opts, "&")
	case DriverPostgres:
	default:
		return nil, goerr.Wrap(domain.ErrInvalidConfig, "unsupported database driver", goerr.V("driver", driver))
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database", goerr.V("driver", driver))
	}
	if driver == DriverSQLite {
		// a single writer avoids SQLITE_BUSY between concurrent transactions
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, goerr.Wrap(err, "failed to ping database", goerr.V("driver", driver))
	}

	s := &Store{db: db, driver: driver, logger: logger}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	serial := "integer primary key autoincrement"
	if s.driver == DriverPostgres {
		serial = "bigserial primary key"
	}

	ddl := []string{
		`create table if not exists projects (
			id bigint primary key,
			repo text not null,
			url text not null,
			description text,
			string_languages text not null default '',
			position integer not null
		)`,
		`create table if not exists languages (
			id ` + serial + `,
			name text not null unique
		)`,
		`create table if not exists project_languages (
			project_id bigint not null references projects(id) on delete cascade,
			language_id bigint not null references languages(id) on delete cascade,
			use_rate bigint not null,
			position integer not null,
			primary key (project_id, language_id)
		)`,
		`create table if not exists gists (
			id text primary key,
			owner text not null,
			title text not null,
			description text not null default '',
			embed_url text not null,
			position integer not null
		)`,
		`create table if not exists gist_files (
			id ` + serial + `,
			gist_id text not null references gists(id) on delete cascade,
			name text not null,
			type text not null default '',
			position integer not null,
			unique (gist_id, name)
		)`,
		`create table if not exists gist_file_images (
			file_id bigint not null references gist_files(id) on delete cascade,
			url text not null,
			position integer not null,
			primary key (file_id, position)
		)`,
	}

	for _, q := range ddl {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return goerr.Wrap(err, "failed to migrate schema", goerr.V("query", q))
		}
	}
	return nil
}

// rebind rewrites ? placeholders into the driver's syntax.
func (s *Store) rebind(q string) string {
	if s.driver != DriverPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// inTx runs fn inside a transaction and commits when fn succeeds.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction")
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("failed to rollback transaction", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit transaction")
	}
	return nil
}
