// Package cache persists fetched posts in a local SQLite database so
// repeated runs accumulate an archive instead of overwriting export files.
package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/blackmichael/bluesky-posts/internal/domain"
)

// Store archives fetched posts keyed by AT-URI.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the archive database at dbPath and ensures the
// schema exists. The caller should Close the store when done.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open archive db: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS posts (
			uri                 TEXT PRIMARY KEY,
			cid                 TEXT NOT NULL DEFAULT '',
			user_handle         TEXT NOT NULL,
			author_did          TEXT NOT NULL,
			author_handle       TEXT NOT NULL,
			author_display_name TEXT NOT NULL DEFAULT '',
			text                TEXT NOT NULL DEFAULT '',
			created_at          TEXT NOT NULL,
			post_type           TEXT NOT NULL,
			web_url             TEXT NOT NULL,
			likes               INTEGER NOT NULL DEFAULT 0,
			reposts             INTEGER NOT NULL DEFAULT 0,
			replies             INTEGER NOT NULL DEFAULT 0,
			urls                TEXT NOT NULL DEFAULT '[]',
			images              TEXT NOT NULL DEFAULT '[]',
			mentions            TEXT NOT NULL DEFAULT '[]',
			lang                TEXT NOT NULL DEFAULT '',
			fetched_at          DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_posts_user_handle ON posts(user_handle);
	`)
	if err != nil {
		return fmt.Errorf("initialize archive schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SavePosts upserts records fetched under one identity. Engagement counts
// and fetched_at are refreshed for records already archived. Returns the
// number of rows written.
func (s *Store) SavePosts(userHandle string, posts []domain.Record) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin archive tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO posts (
			uri, cid, user_handle, author_did, author_handle,
			author_display_name, text, created_at, post_type, web_url,
			likes, reposts, replies, urls, images, mentions, lang, fetched_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uri) DO UPDATE SET
			likes = excluded.likes,
			reposts = excluded.reposts,
			replies = excluded.replies,
			fetched_at = excluded.fetched_at
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare archive insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	written := 0
	for _, p := range posts {
		_, err := stmt.Exec(
			p.URI, p.CID, userHandle, p.Author.DID, p.Author.Handle,
			p.Author.DisplayName, p.Text, p.CreatedAt, string(p.PostType), p.WebURL,
			p.Likes, p.Reposts, p.Replies,
			jsonArray(p.URLs), jsonArray(p.Images), jsonArray(p.Mentions),
			p.Lang, now,
		)
		if err != nil {
			return written, fmt.Errorf("archive post %s: %w", p.URI, err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return written, fmt.Errorf("commit archive tx: %w", err)
	}
	return written, nil
}

// SaveResultSet archives every record in the set under the identity it was
// fetched for.
func (s *Store) SaveResultSet(rs *domain.ResultSet) (int, error) {
	total := 0
	for _, up := range rs.Keyed() {
		n, err := s.SavePosts(up.Handle, up.Posts)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// CountPosts returns the number of archived posts.
func (s *Store) CountPosts() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM posts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count archived posts: %w", err)
	}
	return n, nil
}

func jsonArray(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}
