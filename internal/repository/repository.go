package repository

import (
	"context"

	"github.com/sakif/github-profiles/internal/model"
)

// SortColumn is a users-table column a listing may be ordered by.
// Only the constants below are valid; implementations must not interpolate
// anything else into SQL.
type SortColumn string

const (
	SortByID      SortColumn = "user_id"
	SortByName    SortColumn = "name"
	SortByLogin   SortColumn = "login"
	SortByProfile SortColumn = "profile"
)

// ListOptions selects one page of users.
// An empty UserType lists every user.
type ListOptions struct {
	UserType string
	OrderBy  SortColumn
	Limit    int
	Offset   int
}

// UserReader is the read-only side used by the HTTP services.
type UserReader interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByLogin(ctx context.Context, login string) (*model.User, error)
	List(ctx context.Context, opts ListOptions) ([]model.User, error)
	Count(ctx context.Context, userType string) (int, error)
}

// UserWriter replaces the whole users table in one transaction.
type UserWriter interface {
	ReplaceAll(ctx context.Context, users []model.User) (int, error)
}
