// Package sqlite implements the repository interfaces on an embedded SQLite
// database via the pure-Go modernc.org/sqlite driver (no CGo, so the binary
// cross-compiles anywhere Go runs).
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool. Per-entity stores (Users, Posts, ...)
// share the pool and each implements the matching repository interface; the
// server injects them wherever a repository is needed.
type DB struct {
	conn *sql.DB
}

// Users returns the user store backed by this database.
func (db *DB) Users() *UserStore { return &UserStore{conn: db.conn} }

// Posts returns the post store backed by this database.
func (db *DB) Posts() *PostStore { return &PostStore{conn: db.conn} }

// Comments returns the comment store backed by this database.
func (db *DB) Comments() *CommentStore { return &CommentStore{conn: db.conn} }

// Reports returns the report store backed by this database.
func (db *DB) Reports() *ReportStore { return &ReportStore{conn: db.conn} }

// Announcements returns the announcement store backed by this database.
func (db *DB) Announcements() *AnnouncementStore { return &AnnouncementStore{conn: db.conn} }

// Tags returns the curated-tag store backed by this database.
func (db *DB) Tags() *TagStore { return &TagStore{conn: db.conn} }

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for an in-memory database in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Each pooled connection to ":memory:" gets its own separate database, so
	// an in-memory database must stay on a single connection or the schema
	// exists on only one of them.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in progress; SQLite's
	// default journal mode locks the whole file for every write.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite; the comment/post_tags
	// cascade constraints need them on.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool, flushing the WAL and releasing the file
// lock. Always defer this next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it safe to run
// on every start.
//
// Uniqueness of users.email lives here, in the store, rather than as a
// check-then-insert in application code: under concurrent registration with
// the same email the constraint is the only reliable arbiter.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL DEFAULT '',
			email         TEXT NOT NULL UNIQUE,
			role          TEXT NOT NULL DEFAULT 'user',
			badges        TEXT NOT NULL DEFAULT '[]',
			avatar_url    TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS posts (
			id          TEXT PRIMARY KEY,
			owner_email TEXT NOT NULL,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			upvotes     INTEGER NOT NULL DEFAULT 0,
			downvotes   INTEGER NOT NULL DEFAULT 0,
			comments    INTEGER NOT NULL DEFAULT 0,
			edited      INTEGER NOT NULL DEFAULT 0,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_posts_owner_email ON posts(owner_email);
		CREATE INDEX IF NOT EXISTS idx_posts_created_at  ON posts(created_at);

		CREATE TABLE IF NOT EXISTS post_tags (
			post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
			tag     TEXT NOT NULL,
			PRIMARY KEY (post_id, tag)
		);
		CREATE INDEX IF NOT EXISTS idx_post_tags_tag ON post_tags(tag);

		CREATE TABLE IF NOT EXISTS comments (
			id           TEXT PRIMARY KEY,
			post_id      TEXT NOT NULL,
			author_email TEXT NOT NULL DEFAULT '',
			author_name  TEXT NOT NULL DEFAULT '',
			body         TEXT NOT NULL,
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments(post_id);

		CREATE TABLE IF NOT EXISTS reports (
			id         TEXT PRIMARY KEY,
			comment_id TEXT NOT NULL,
			post_id    TEXT NOT NULL DEFAULT '',
			reason     TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS announcements (
			id           TEXT PRIMARY KEY,
			author_email TEXT NOT NULL,
			title        TEXT NOT NULL,
			body         TEXT NOT NULL DEFAULT '',
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS tags (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL UNIQUE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
