package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/sakif/github-profiles/internal/apperror"
	"github.com/sakif/github-profiles/internal/model"
	"github.com/sakif/github-profiles/internal/repository"
)

// compile-time checks that *DB implements both repository interfaces
var (
	_ repository.UserReader = (*DB)(nil)
	_ repository.UserWriter = (*DB)(nil)
)

const userColumns = `user_id, name, login, avatar, user_type, profile`

// sortColumns maps the allowed orderings to SQL. ORDER BY cannot take a bound
// parameter, so the column text always comes from this table.
var sortColumns = map[repository.SortColumn]string{
	repository.SortByID:      "user_id",
	repository.SortByName:    "name",
	repository.SortByLogin:   "login",
	repository.SortByProfile: "profile",
}

// ReplaceAll drops the users table, recreates it and bulk-inserts users, all in
// one transaction. It returns the number of rows inserted.
//
// An empty slice is a no-op: the current table is left untouched.
//
// SQLite DDL is transactional, so if anything fails after the DROP the rollback
// restores the previous table and its rows. The deferred Rollback releases the
// connection on every exit path; after a successful Commit it is a harmless no-op.
func (db *DB) ReplaceAll(ctx context.Context, users []model.User) (int, error) {
	if len(users) == 0 {
		return 0, nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: beginning replace transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS users`); err != nil {
		return 0, fmt.Errorf("sqlite: dropping users table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(createUsersTable, "")); err != nil {
		return 0, fmt.Errorf("sqlite: creating users table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("sqlite: preparing user insert: %w", err)
	}
	defer stmt.Close()

	for _, u := range users {
		if _, err := stmt.ExecContext(ctx,
			u.ID,
			u.Name,
			u.Login,
			u.AvatarURL,
			u.Type,
			u.ProfileURL,
		); err != nil {
			return 0, fmt.Errorf("sqlite: inserting user %d (%s): %w", u.ID, u.Login, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: committing users: %w", err)
	}

	return len(users), nil
}

// GetByID retrieves a user by GitHub ID.
// Returns apperror.ErrNotFound if no user has that ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_id = ?`, id)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting user %d: %w", id, err)
	}
	return u, nil
}

// GetByLogin retrieves a user by login handle.
// Returns apperror.ErrNotFound if no user has that login.
func (db *DB) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE login = ? LIMIT 1`, login)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", login)
		}
		return nil, fmt.Errorf("sqlite: getting user by login %q: %w", login, err)
	}
	return u, nil
}

// List returns one page of users, optionally restricted to one user type.
//
// Rows are ordered by the requested column and then by user_id, so pages are
// stable even when the sort column has duplicates (many blank names, for example).
// Unknown sort columns fall back to user_id. A negative offset is an error.
func (db *DB) List(ctx context.Context, opts repository.ListOptions) ([]model.User, error) {
	column, ok := sortColumns[opts.OrderBy]
	if !ok {
		column = sortColumns[repository.SortByID]
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := opts.Offset
	if offset < 0 {
		return nil, fmt.Errorf("sqlite: listing users: negative offset %d", offset)
	}

	query := `SELECT ` + userColumns + ` FROM users`
	args := make([]any, 0, 3)
	if opts.UserType != "" {
		query += ` WHERE user_type = ?`
		args = append(args, opts.UserType)
	}
	query += ` ORDER BY ` + column + `, user_id LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0, limit)
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

// Count returns how many users are stored, optionally restricted to one user type.
func (db *DB) Count(ctx context.Context, userType string) (int, error) {
	query := `SELECT COUNT(*) FROM users`
	var args []any
	if userType != "" {
		query += ` WHERE user_type = ?`
		args = append(args, userType)
	}

	var n int
	if err := db.conn.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting users: %w", err)
	}
	return n, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (*model.User, error) {
	var u model.User
	if err := s.Scan(
		&u.ID,
		&u.Name,
		&u.Login,
		&u.AvatarURL,
		&u.Type,
		&u.ProfileURL,
	); err != nil {
		return nil, err
	}
	return &u, nil
}
