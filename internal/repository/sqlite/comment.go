package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/rahat/chatterpoint/internal/apperror"
	"github.com/rahat/chatterpoint/internal/model"
	"github.com/rahat/chatterpoint/internal/repository"
)

// CommentStore implements repository.CommentRepository on SQLite.
type CommentStore struct {
	conn *sql.DB
}

// compile-time check that *CommentStore implements repository.CommentRepository
var _ repository.CommentRepository = (*CommentStore)(nil)

// Create inserts the comment and increments the parent post's comment counter
// in one transaction. If the increment matches zero rows the post is gone;
// the whole transaction rolls back (no orphaned comment) and the caller gets
// ErrNotFound.
func (s *CommentStore) Create(ctx context.Context, comment *model.Comment) error {
	comment.ID = xid.New().String()
	comment.CreatedAt = time.Now()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning comment transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO comments (id, post_id, author_email, author_name, body, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		comment.ID,
		comment.PostID,
		comment.AuthorEmail,
		comment.AuthorName,
		comment.Body,
		comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting comment: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE posts SET comments = comments + 1 WHERE id = ?`, comment.PostID)
	if err != nil {
		return fmt.Errorf("sqlite: incrementing comment count for post %s: %w", comment.PostID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("Post")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing comment transaction: %w", err)
	}
	return nil
}

const commentColumns = `id, post_id, author_email, author_name, body, created_at`

func scanComment(row interface{ Scan(...any) error }) (*model.Comment, error) {
	var c model.Comment
	err := row.Scan(
		&c.ID,
		&c.PostID,
		&c.AuthorEmail,
		&c.AuthorName,
		&c.Body,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CommentStore) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = ?`, id)

	c, err := scanComment(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Comment")
		}
		return nil, fmt.Errorf("sqlite: getting comment %s: %w", id, err)
	}
	return c, nil
}

// ListByPost returns a page of a post's comments, newest first.
func (s *CommentStore) ListByPost(ctx context.Context, postID string, opts repository.ListOptions) ([]model.Comment, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+commentColumns+` FROM comments
		 WHERE post_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		postID, opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments for post %s: %w", postID, err)
	}
	defer rows.Close()

	comments := make([]model.Comment, 0, opts.Limit)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}

	return comments, nil
}

// CountByPost counts comments under one post, the same filter ListByPost
// pages over.
func (s *CommentStore) CountByPost(ctx context.Context, postID string) (int, error) {
	var n int
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comments WHERE post_id = ?`, postID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting comments for post %s: %w", postID, err)
	}
	return n, nil
}

func (s *CommentStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting comments: %w", err)
	}
	return n, nil
}
