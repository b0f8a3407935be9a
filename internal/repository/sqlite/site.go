package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/rahat/chatterpoint/internal/apperror"
	"github.com/rahat/chatterpoint/internal/model"
	"github.com/rahat/chatterpoint/internal/repository"
)

// AnnouncementStore implements repository.AnnouncementRepository on SQLite.
type AnnouncementStore struct {
	conn *sql.DB
}

var _ repository.AnnouncementRepository = (*AnnouncementStore)(nil)

func (s *AnnouncementStore) Create(ctx context.Context, a *model.Announcement) error {
	a.ID = xid.New().String()
	a.CreatedAt = time.Now()

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO announcements (id, author_email, title, body, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		a.ID,
		a.AuthorEmail,
		a.Title,
		a.Body,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting announcement: %w", err)
	}
	return nil
}

func (s *AnnouncementStore) List(ctx context.Context, opts repository.ListOptions) ([]model.Announcement, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, author_email, title, body, created_at FROM announcements
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing announcements: %w", err)
	}
	defer rows.Close()

	announcements := make([]model.Announcement, 0, opts.Limit)
	for rows.Next() {
		var a model.Announcement
		if err := rows.Scan(&a.ID, &a.AuthorEmail, &a.Title, &a.Body, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning announcement row: %w", err)
		}
		announcements = append(announcements, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating announcements: %w", err)
	}

	return announcements, nil
}

func (s *AnnouncementStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM announcements`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting announcements: %w", err)
	}
	return n, nil
}

// TagStore implements repository.TagRepository on SQLite.
type TagStore struct {
	conn *sql.DB
}

var _ repository.TagRepository = (*TagStore)(nil)

// Create inserts a curated tag. Names are unique; inserting a duplicate
// returns ErrConflict.
func (s *TagStore) Create(ctx context.Context, tag *model.Tag) error {
	tag.ID = xid.New().String()
	tag.CreatedAt = time.Now()

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO tags (id, name, created_at) VALUES (?, ?, ?)`,
		tag.ID, tag.Name, tag.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: tags.name") {
			return apperror.Conflict("name", "Tag already exists")
		}
		return fmt.Errorf("sqlite: inserting tag %q: %w", tag.Name, err)
	}
	return nil
}

// List returns the whole curated tag list alphabetically; the list is small
// and append-only, so it is not paginated.
func (s *TagStore) List(ctx context.Context) ([]model.Tag, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, name, created_at FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tags: %w", err)
	}
	defer rows.Close()

	tags := []model.Tag{}
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tag row: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tags: %w", err)
	}
	return tags, nil
}
