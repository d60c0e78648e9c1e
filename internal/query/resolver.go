// Package query turns the /Profiles query string into a storage plan.
//
// Two steps, kept apart so each can be tested on its own:
//
//	ParseParams(url.Values) → Params   (strings to typed values, rejects bad input)
//	Resolve(Params)         → Plan     (pure: filter precedence, defaults, clamping)
//
// FILTER PRECEDENCE:
// At most one filter applies. The first one present wins:
//
//	id → loginid → usertype → (none)
//
// id and loginid address one record, so paging and ordering are ignored for them.
// usertype and the no-filter listing return a page window.
package query

import (
	"fmt"

	"github.com/sakif/github-profiles/internal/repository"
)

// Page window bounds.
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
	DefaultPage    = 1

	// MaxPageNumber keeps (MaxPageNumber-1)*MaxPerPage inside a 32-bit int.
	// The pagenumber lte tag in Params must match it.
	MaxPageNumber = 10_000_000
)

// FilterKind says which single filter a Plan applies.
type FilterKind int

const (
	FilterNone FilterKind = iota
	FilterID
	FilterLogin
	FilterType
)

func (k FilterKind) String() string {
	switch k {
	case FilterID:
		return "id"
	case FilterLogin:
		return "login"
	case FilterType:
		return "type"
	default:
		return "none"
	}
}

// orderByColumns maps the public orderby values to store columns.
var orderByColumns = map[string]repository.SortColumn{
	"id":       repository.SortByID,
	"names":    repository.SortByName,
	"loginids": repository.SortByLogin,
	"profiles": repository.SortByProfile,
}

// Plan is a resolved query. Only the fields relevant to Kind are set.
type Plan struct {
	Kind FilterKind

	ID       int64  // FilterID
	Login    string // FilterLogin
	UserType string // FilterType

	// Page window, FilterType and FilterNone only.
	PerPage int
	Page    int
	OrderBy repository.SortColumn
}

// Offset is the number of rows skipped before the page window. Page must not
// exceed MaxPageNumber; ParseParams enforces that for request input.
func (p Plan) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}

// ListOptions converts a page-window plan into repository options.
func (p Plan) ListOptions() repository.ListOptions {
	return repository.ListOptions{
		UserType: p.UserType,
		OrderBy:  p.OrderBy,
		Limit:    p.PerPage,
		Offset:   p.Offset(),
	}
}

// Key identifies the plan for memoization. Two requests that resolve to the same
// plan share a key even if their raw query strings differ (e.g. pagination=500 and
// pagination=100).
func (p Plan) Key() string {
	switch p.Kind {
	case FilterID:
		return fmt.Sprintf("id:%d", p.ID)
	case FilterLogin:
		return "login:" + p.Login
	default:
		return fmt.Sprintf("%s:%s|%s|%d|%d", p.Kind, p.UserType, p.OrderBy, p.PerPage, p.Page)
	}
}

// Resolve applies filter precedence and page defaults to parsed parameters.
func Resolve(params Params) Plan {
	switch {
	case params.ID != nil:
		return Plan{Kind: FilterID, ID: *params.ID}
	case params.Login != "":
		return Plan{Kind: FilterLogin, Login: params.Login}
	}

	plan := Plan{
		Kind:    FilterNone,
		PerPage: DefaultPerPage,
		Page:    DefaultPage,
		OrderBy: repository.SortByID,
	}
	if params.UserType != "" {
		plan.Kind = FilterType
		plan.UserType = params.UserType
	}

	if params.PerPage != nil && *params.PerPage > 0 {
		plan.PerPage = min(*params.PerPage, MaxPerPage)
	}
	if params.Page != nil && *params.Page > 0 {
		plan.Page = *params.Page
	}
	if col, ok := orderByColumns[params.OrderBy]; ok {
		plan.OrderBy = col
	}
	return plan
}
