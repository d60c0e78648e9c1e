package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/sakif/github-profiles/internal/apperror"
	"github.com/sakif/github-profiles/internal/model"
	"github.com/sakif/github-profiles/internal/repository"
)

// UsersPerPage is the size of one HTML listing page.
const UsersPerPage = 25

// UserPage is one page of the HTML listing plus what the template needs to draw
// its navigation.
type UserPage struct {
	Users   []model.User
	Page    int
	PerPage int
	Total   int
	Pages   int
}

func (p *UserPage) HasPrev() bool { return p.Page > 1 }
func (p *UserPage) HasNext() bool { return p.Page < p.Pages }
func (p *UserPage) PrevNum() int  { return p.Page - 1 }
func (p *UserPage) NextNum() int  { return p.Page + 1 }

// PageNumbers lists every page number, for the numbered links under the table.
func (p *UserPage) PageNumbers() []int {
	nums := make([]int, p.Pages)
	for i := range nums {
		nums[i] = i + 1
	}
	return nums
}

// PageService builds pages of the user listing, ordered by id.
type PageService struct {
	repo   repository.UserReader
	logger *slog.Logger
}

// NewPageService creates a PageService.
func NewPageService(repo repository.UserReader, logger *slog.Logger) *PageService {
	return &PageService{repo: repo, logger: logger}
}

// Page returns page number num (1-based).
//
// Page 1 always exists, even when the table is empty, so a fresh install renders
// an empty table instead of an error. Any other page beyond the last one, and any
// number below 1, is apperror.ErrNotFound.
func (s *PageService) Page(ctx context.Context, num int) (*UserPage, error) {
	if num < 1 {
		return nil, apperror.NotFound("page", strconv.Itoa(num))
	}

	total, err := s.repo.Count(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}

	pages := (total + UsersPerPage - 1) / UsersPerPage
	if num > 1 && num > pages {
		s.logger.Warn("user page out of range", slog.Int("page", num), slog.Int("pages", pages))
		return nil, apperror.NotFound("page", strconv.Itoa(num))
	}

	users, err := s.repo.List(ctx, repository.ListOptions{
		OrderBy: repository.SortByID,
		Limit:   UsersPerPage,
		Offset:  (num - 1) * UsersPerPage,
	})
	if err != nil {
		return nil, fmt.Errorf("listing users for page %d: %w", num, err)
	}

	return &UserPage{
		Users:   users,
		Page:    num,
		PerPage: UsersPerPage,
		Total:   total,
		Pages:   pages,
	}, nil
}
