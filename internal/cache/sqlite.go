package cache

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mithrel/cosense/pkg/api"
)

type sqliteStore struct{ db *sql.DB }

// openSQLite connects with the modernc.org/sqlite driver and ensures the schema exists.
func openSQLite(ctx context.Context, dsn string) (*sqliteStore, error) {
	path := strings.TrimPrefix(dsn, "sqlite://")
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	dbh, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := dbh.ExecContext(ctx, `PRAGMA journal_mode=WAL;`); err != nil {
		_ = dbh.Close()
		return nil, err
	}
	if err := migrate(ctx, dbh); err != nil {
		_ = dbh.Close()
		return nil, err
	}
	return &sqliteStore{db: dbh}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS pages (
  project TEXT NOT NULL,
  title TEXT NOT NULL,
  text TEXT NOT NULL,
  hash TEXT NOT NULL,
  fetched_at TIMESTAMP NOT NULL,
  PRIMARY KEY(project, title)
);
CREATE TABLE IF NOT EXISTS titles (
  project TEXT NOT NULL,
  title TEXT NOT NULL,
  seen_at TIMESTAMP NOT NULL,
  PRIMARY KEY(project, title)
);
CREATE INDEX IF NOT EXISTS idx_titles_project_seen ON titles(project, seen_at DESC);
CREATE VIRTUAL TABLE IF NOT EXISTS pages_fts USING fts5(
  title, text,
  project UNINDEXED,
  tokenize='unicode61'
);
`)
	return err
}

func (s *sqliteStore) GetPage(ctx context.Context, project, title string) (api.CachedPage, error) {
	var p api.CachedPage
	row := s.db.QueryRowContext(ctx, `SELECT project, title, text, hash, fetched_at FROM pages WHERE project=? AND title=?`, project, title)
	if err := row.Scan(&p.Project, &p.Title, &p.Text, &p.Hash, &p.FetchedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return api.CachedPage{}, ErrNotFound
		}
		return api.CachedPage{}, err
	}
	return p, nil
}

func (s *sqliteStore) PutPage(ctx context.Context, p api.CachedPage) error {
	if p.Hash == "" {
		p.Hash = p.PageText.Hash()
	}
	if p.FetchedAt.IsZero() {
		p.FetchedAt = time.Now()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO pages(project, title, text, hash, fetched_at) VALUES(?,?,?,?,?)
ON CONFLICT(project, title) DO UPDATE SET text=excluded.text, hash=excluded.hash, fetched_at=excluded.fetched_at`,
		p.Project, p.Title, p.Text, p.Hash, p.FetchedAt.UTC()); err != nil {
		return err
	}
	if err := touchTitleTx(ctx, tx, p.Project, p.Title, p.FetchedAt); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM pages_fts WHERE project=? AND title=?`, p.Project, p.Title); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO pages_fts(title, text, project) VALUES(?,?,?)`, p.Title, p.Text, p.Project); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *sqliteStore) RememberTitles(ctx context.Context, project string, titles []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	now := time.Now()
	for _, t := range titles {
		if t == "" {
			continue
		}
		if err := touchTitleTx(ctx, tx, project, t, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func touchTitleTx(ctx context.Context, tx *sql.Tx, project, title string, at time.Time) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO titles(project, title, seen_at) VALUES(?,?,?)
ON CONFLICT(project, title) DO UPDATE SET seen_at=excluded.seen_at`, project, title, at.UTC())
	return err
}

func (s *sqliteStore) Titles(ctx context.Context, project string, limit int) ([]string, error) {
	q := `SELECT title FROM titles WHERE project=? ORDER BY seen_at DESC, title ASC`
	args := []any{project}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *sqliteStore) SearchText(ctx context.Context, project, query string, limit int) ([]api.PageSummary, error) {
	match := ftsQuery(query)
	if match == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT title, text FROM pages_fts
WHERE pages_fts MATCH ? AND project = ?
ORDER BY rank
LIMIT ?`, match, project, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []api.PageSummary
	for rows.Next() {
		var title, text string
		if err := rows.Scan(&title, &text); err != nil {
			return nil, err
		}
		out = append(out, api.PageSummary{Title: title, Lines: snippetLines(text, query, 3)})
	}
	return out, rows.Err()
}

// ftsQuery quotes every word so user input cannot inject FTS5 syntax.
func ftsQuery(q string) string {
	words := strings.Fields(q)
	for i, w := range words {
		words[i] = `"` + strings.ReplaceAll(w, `"`, `""`) + `"`
	}
	return strings.Join(words, " ")
}

func (s *sqliteStore) Close() error { return s.db.Close() }
