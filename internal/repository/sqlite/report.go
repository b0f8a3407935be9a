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

// ReportStore implements repository.ReportRepository on SQLite.
type ReportStore struct {
	conn *sql.DB
}

// compile-time check that *ReportStore implements repository.ReportRepository
var _ repository.ReportRepository = (*ReportStore)(nil)

func (s *ReportStore) Create(ctx context.Context, report *model.Report) error {
	report.ID = xid.New().String()
	report.CreatedAt = time.Now()

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO reports (id, comment_id, post_id, reason, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		report.ID,
		report.CommentID,
		report.PostID,
		report.Reason,
		report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting report: %w", err)
	}
	return nil
}

const reportColumns = `id, comment_id, post_id, reason, created_at`

func scanReport(row interface{ Scan(...any) error }) (*model.Report, error) {
	var r model.Report
	err := row.Scan(
		&r.ID,
		&r.CommentID,
		&r.PostID,
		&r.Reason,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *ReportStore) GetByID(ctx context.Context, id string) (*model.Report, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE id = ?`, id)

	r, err := scanReport(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Report")
		}
		return nil, fmt.Errorf("sqlite: getting report %s: %w", id, err)
	}
	return r, nil
}

func (s *ReportStore) List(ctx context.Context, opts repository.ListOptions) ([]model.Report, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+reportColumns+` FROM reports
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing reports: %w", err)
	}
	defer rows.Close()

	reports := make([]model.Report, 0, opts.Limit)
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning report row: %w", err)
		}
		reports = append(reports, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating reports: %w", err)
	}

	return reports, nil
}

func (s *ReportStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting reports: %w", err)
	}
	return n, nil
}

// Resolve deletes the report and, when deleteComment is set, also deletes the
// referenced comment and decrements its post's comment counter, all in one
// transaction. The report must exist; the comment may already be gone (the
// post was deleted underneath the report), which is not an error.
func (s *ReportStore) Resolve(ctx context.Context, reportID, commentID string, deleteComment bool) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning report resolution: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, reportID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting report %s: %w", reportID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("Report")
	}

	if deleteComment {
		var postID string
		err := tx.QueryRowContext(ctx,
			`SELECT post_id FROM comments WHERE id = ?`, commentID).Scan(&postID)
		switch {
		case err == sql.ErrNoRows:
			// Comment already removed; resolving the report is still fine.
		case err != nil:
			return fmt.Errorf("sqlite: looking up comment %s: %w", commentID, err)
		default:
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM comments WHERE id = ?`, commentID); err != nil {
				return fmt.Errorf("sqlite: deleting comment %s: %w", commentID, err)
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE posts SET comments = comments - 1 WHERE id = ? AND comments > 0`,
				postID); err != nil {
				return fmt.Errorf("sqlite: decrementing comment count for post %s: %w", postID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing report resolution: %w", err)
	}
	return nil
}
