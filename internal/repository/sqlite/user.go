package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/rahat/chatterpoint/internal/apperror"
	"github.com/rahat/chatterpoint/internal/model"
	"github.com/rahat/chatterpoint/internal/repository"
)

// UserStore implements repository.UserRepository on SQLite.
type UserStore struct {
	conn *sql.DB
}

// compile-time check that *UserStore implements repository.UserRepository
var _ repository.UserRepository = (*UserStore)(nil)

// Create inserts a new user. The UNIQUE index on email is the authoritative
// uniqueness guard; a constraint violation is translated to the same
// validation error the service's friendly pre-check produces, so concurrent
// registration of the same email cannot slip a duplicate through.
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	user.CreatedAt = time.Now()
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	if user.Badges == nil {
		user.Badges = []string{}
	}

	badges, err := json.Marshal(user.Badges)
	if err != nil {
		return fmt.Errorf("sqlite: encoding badges: %w", err)
	}

	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO users (id, name, email, role, badges, avatar_url, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Name,
		user.Email,
		user.Role,
		string(badges),
		user.AvatarURL,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			return apperror.ValidationFailed("email", "Email already exists")
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Email, err)
	}

	return nil
}

const userColumns = `id, name, email, role, badges, avatar_url, password_hash, created_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var (
		u      model.User
		badges string
	)
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Role,
		&badges,
		&u.AvatarURL,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(badges), &u.Badges); err != nil {
		return nil, fmt.Errorf("sqlite: decoding badges for user %s: %w", u.ID, err)
	}
	return &u, nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("User")
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)

	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("User")
		}
		return nil, fmt.Errorf("sqlite: getting user by email %s: %w", email, err)
	}
	return u, nil
}

// List returns users in descending insertion order (newest first).
func (s *UserStore) List(ctx context.Context, opts repository.ListOptions) ([]model.User, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0, opts.Limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}

	return users, nil
}

func (s *UserStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting users: %w", err)
	}
	return n, nil
}

// UpdateRole sets the user's role. RowsAffected == 0 means the user does not
// exist.
func (s *UserStore) UpdateRole(ctx context.Context, id, role string) error {
	result, err := s.conn.ExecContext(ctx,
		`UPDATE users SET role = ? WHERE id = ?`, role, id)
	if err != nil {
		return fmt.Errorf("sqlite: updating role for user %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("User")
	}

	return nil
}

// AddBadge appends the badge to the user's badge set if not already present.
// Read-modify-write of the JSON column runs in a transaction so two
// concurrent awards can't lose one another's badge.
func (s *UserStore) AddBadge(ctx context.Context, email, badge string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning badge transaction: %w", err)
	}
	defer tx.Rollback()

	var raw string
	err = tx.QueryRowContext(ctx,
		`SELECT badges FROM users WHERE email = ?`, email).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return apperror.NotFound("User")
		}
		return fmt.Errorf("sqlite: reading badges for %s: %w", email, err)
	}

	var badges []string
	if err := json.Unmarshal([]byte(raw), &badges); err != nil {
		return fmt.Errorf("sqlite: decoding badges for %s: %w", email, err)
	}
	for _, b := range badges {
		if b == badge {
			return nil // already awarded, nothing to write
		}
	}
	badges = append(badges, badge)

	encoded, err := json.Marshal(badges)
	if err != nil {
		return fmt.Errorf("sqlite: encoding badges: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET badges = ? WHERE email = ?`, string(encoded), email); err != nil {
		return fmt.Errorf("sqlite: writing badges for %s: %w", email, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing badge transaction: %w", err)
	}
	return nil
}
