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

// PostStore implements repository.PostRepository on SQLite.
type PostStore struct {
	conn *sql.DB
}

// compile-time check that *PostStore implements repository.PostRepository
var _ repository.PostRepository = (*PostStore)(nil)

// Create inserts a post and its tag rows in one transaction.
func (s *PostStore) Create(ctx context.Context, post *model.Post) error {
	post.ID = xid.New().String()
	post.CreatedAt = time.Now()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning post transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO posts (id, owner_email, title, description, upvotes, downvotes, comments, edited, created_at)
		 VALUES (?, ?, ?, ?, 0, 0, 0, 0, ?)`,
		post.ID,
		post.OwnerEmail,
		post.Title,
		post.Description,
		post.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting post: %w", err)
	}

	if err := replaceTagsTx(ctx, tx, post.ID, post.Tags); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing post transaction: %w", err)
	}
	return nil
}

const postColumns = `id, owner_email, title, description, upvotes, downvotes, comments, edited, created_at`

func scanPost(row interface{ Scan(...any) error }) (*model.Post, error) {
	var p model.Post
	err := row.Scan(
		&p.ID,
		&p.OwnerEmail,
		&p.Title,
		&p.Description,
		&p.Upvotes,
		&p.Downvotes,
		&p.Comments,
		&p.Edited,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostStore) GetByID(ctx context.Context, id string) (*model.Post, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = ?`, id)

	p, err := scanPost(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Post")
		}
		return nil, fmt.Errorf("sqlite: getting post %s: %w", id, err)
	}

	if p.Tags, err = s.tagsForPost(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

// postFilterSQL builds the shared WHERE clause for List and Count. Both go
// through it so a filtered page always reports totals over the same filtered
// set.
func postFilterSQL(filter repository.PostFilter) (where string, args []any) {
	var clauses []string
	if filter.Tag != "" {
		clauses = append(clauses, `id IN (SELECT post_id FROM post_tags WHERE tag = ?)`)
		args = append(args, filter.Tag)
	}
	if filter.OwnerEmail != "" {
		clauses = append(clauses, `owner_email = ?`)
		args = append(args, filter.OwnerEmail)
	}
	for i, c := range clauses {
		if i == 0 {
			where = ` WHERE ` + c
		} else {
			where += ` AND ` + c
		}
	}
	return where, args
}

// List returns a page of posts matching the filter.
//
// Ordering: newest first by default; SortPopularity orders by the computed
// (upvotes - downvotes), ties broken newest first.
func (s *PostStore) List(ctx context.Context, filter repository.PostFilter, opts repository.ListOptions) ([]model.Post, error) {
	where, args := postFilterSQL(filter)

	order := ` ORDER BY created_at DESC, id DESC`
	if opts.Sort == repository.SortPopularity {
		order = ` ORDER BY (upvotes - downvotes) DESC, created_at DESC, id DESC`
	}

	args = append(args, opts.Limit, opts.Offset)
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts`+where+order+` LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.Post, 0, opts.Limit)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	ids := make([]string, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}
	tags, err := s.tagsForPosts(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i].Tags = tags[posts[i].ID]
		if posts[i].Tags == nil {
			posts[i].Tags = []string{}
		}
	}

	return posts, nil
}

// Count counts the posts matching the filter, the same filter List pages
// over.
func (s *PostStore) Count(ctx context.Context, filter repository.PostFilter) (int, error) {
	where, args := postFilterSQL(filter)

	var n int
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts`+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting posts: %w", err)
	}
	return n, nil
}

// Update rewrites the mutable fields (title, description, edited flag) and
// replaces the tag rows. Ownership is the service layer's concern; this
// method trusts its caller.
func (s *PostStore) Update(ctx context.Context, post *model.Post) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning post update transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE posts SET title = ?, description = ?, edited = ? WHERE id = ?`,
		post.Title,
		post.Description,
		post.Edited,
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating post %s: %w", post.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("Post")
	}

	if err := replaceTagsTx(ctx, tx, post.ID, post.Tags); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing post update: %w", err)
	}
	return nil
}

// Delete removes the post and cascades to its comments and tag rows in a
// single transaction, so no orphaned comments survive a successful delete.
func (s *PostStore) Delete(ctx context.Context, id string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning post delete transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("Post")
	}

	// post_tags rows go via the ON DELETE CASCADE constraint; comments
	// reference posts without a constraint, so delete them here.
	if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE post_id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting comments of post %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing post delete: %w", err)
	}
	return nil
}

// Vote bumps one vote counter. vote must be +1 (upvote) or -1 (downvote);
// the service validates before calling.
func (s *PostStore) Vote(ctx context.Context, id string, vote int) error {
	column := "upvotes"
	if vote == -1 {
		column = "downvotes"
	}

	result, err := s.conn.ExecContext(ctx,
		`UPDATE posts SET `+column+` = `+column+` + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: voting on post %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("Post")
	}

	return nil
}

// tagsForPost loads the tag strings of one post, alphabetically.
func (s *PostStore) tagsForPost(ctx context.Context, postID string) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT tag FROM post_tags WHERE post_id = ? ORDER BY tag`, postID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading tags for post %s: %w", postID, err)
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tag row: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tags: %w", err)
	}
	return tags, nil
}

// tagsForPosts loads the tags of a whole page of posts in one query, keyed
// by post ID and alphabetical within each post. Posts without tags are
// absent from the map.
func (s *PostStore) tagsForPosts(ctx context.Context, postIDs []string) (map[string][]string, error) {
	if len(postIDs) == 0 {
		return map[string][]string{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(postIDs)), ",")
	args := make([]any, len(postIDs))
	for i, id := range postIDs {
		args[i] = id
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT post_id, tag FROM post_tags WHERE post_id IN (`+placeholders+`) ORDER BY tag`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading tags for posts: %w", err)
	}
	defer rows.Close()

	tags := make(map[string][]string, len(postIDs))
	for rows.Next() {
		var postID, tag string
		if err := rows.Scan(&postID, &tag); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tag row: %w", err)
		}
		tags[postID] = append(tags[postID], tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tags: %w", err)
	}
	return tags, nil
}

// replaceTagsTx rewrites the post_tags rows for a post inside an open
// transaction.
func replaceTagsTx(ctx context.Context, tx *sql.Tx, postID string, tags []string) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM post_tags WHERE post_id = ?`, postID); err != nil {
		return fmt.Errorf("sqlite: clearing tags for post %s: %w", postID, err)
	}
	for _, tag := range tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO post_tags (post_id, tag) VALUES (?, ?)`,
			postID, tag); err != nil {
			return fmt.Errorf("sqlite: inserting tag %q for post %s: %w", tag, postID, err)
		}
	}
	return nil
}
