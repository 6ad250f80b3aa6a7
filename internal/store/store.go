// Package store is the sqlite-backed article cache. It holds the last good
// article set fetched from the CMS so the site keeps serving (marked stale)
// when the CMS is down or slow at startup.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mithrel/foliage/pkg/api"
)

var ErrNotFound = errors.New("not found")

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the cache at path. ":memory:" is supported for
// tests.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimPrefix(path, "sqlite://")
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, err
		}
	}
	dbh, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// Each pooled connection would otherwise get its own empty
		// in-memory database.
		dbh.SetMaxOpenConns(1)
	}
	// set WAL mode
	if _, err := dbh.ExecContext(ctx, `PRAGMA journal_mode=WAL;`); err != nil {
		_ = dbh.Close()
		return nil, err
	}
	if err := migrate(ctx, dbh); err != nil {
		_ = dbh.Close()
		return nil, err
	}
	return &Store{db: dbh}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS articles (
  id TEXT PRIMARY KEY,
  hash TEXT NOT NULL,
  published_at TIMESTAMP NOT NULL,
  payload TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_articles_published ON articles(published_at DESC, id);
CREATE TABLE IF NOT EXISTS meta (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`)
	return err
}

// UpsertArticles replaces the cached article set with the given one in a
// single transaction: stale rows are deleted, changed rows rewritten, and
// the refresh timestamp recorded.
func (s *Store) UpsertArticles(ctx context.Context, articles []api.Article) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM articles`); err != nil {
		return fmt.Errorf("clear articles: %w", err)
	}
	for _, a := range articles {
		payload, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("encode article %s: %w", a.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO articles (id, hash, published_at, payload) VALUES (?, ?, ?, ?)`,
			a.ID, a.Hash(), a.PublishedAt.UTC(), string(payload))
		if err != nil {
			return fmt.Errorf("insert article %s: %w", a.ID, err)
		}
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES ('refreshed_at', ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record refresh time: %w", err)
	}
	return tx.Commit()
}

// ListArticles returns the cached articles newest first.
func (s *Store) ListArticles(ctx context.Context) ([]api.Article, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM articles ORDER BY published_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []api.Article
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var a api.Article
		if err := json.Unmarshal([]byte(payload), &a); err != nil {
			return nil, fmt.Errorf("decode cached article: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetArticle returns one cached article by ID.
func (s *Store) GetArticle(ctx context.Context, id string) (api.Article, error) {
	var payload string
	row := s.db.QueryRowContext(ctx, `SELECT payload FROM articles WHERE id=?`, id)
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return api.Article{}, ErrNotFound
		}
		return api.Article{}, err
	}
	var a api.Article
	if err := json.Unmarshal([]byte(payload), &a); err != nil {
		return api.Article{}, fmt.Errorf("decode cached article: %w", err)
	}
	return a, nil
}

// LastRefreshed returns when the cache was last written; zero when never.
func (s *Store) LastRefreshed(ctx context.Context) (time.Time, error) {
	var value string
	row := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key='refreshed_at'`)
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse refreshed_at: %w", err)
	}
	return t, nil
}
