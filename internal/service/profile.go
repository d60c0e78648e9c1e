// Package service contains the business logic between the HTTP handlers and the
// store, plus the seed pipeline.
//
//	ProfileService → answers /Profiles plans, memoized
//	PageService    → builds the 25-per-page HTML listing
//	SeedService    → plan, harvest, load
//
// Services take repository interfaces, never *sqlite.DB, so tests pass in-memory
// fakes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/sakif/github-profiles/internal/apperror"
	"github.com/sakif/github-profiles/internal/model"
	"github.com/sakif/github-profiles/internal/query"
	"github.com/sakif/github-profiles/internal/repository"
)

// DefaultCacheTTL is how long a resolved /Profiles answer is reused.
const DefaultCacheTTL = 500 * time.Second

// ProfileNotFoundMessage is the message every empty /Profiles answer carries.
const ProfileNotFoundMessage = "Could not find user data in database"

// ProfileResult is the answer to one plan. ID and login lookups set User; page
// windows set Users.
type ProfileResult struct {
	User  *model.User
	Users []model.User
}

// Single reports whether the result addresses one record.
func (r ProfileResult) Single() bool {
	return r.User != nil
}

// ProfileService answers resolved /Profiles queries.
//
// MEMOIZATION:
// Answers are cached by plan key for a fixed TTL. The store only changes when
// the seed command replaces the table, and a stale page for a few minutes after
// a reseed is acceptable, so nothing invalidates the cache. Not-found answers
// are not cached.
type ProfileService struct {
	repo   repository.UserReader
	cache  *cache.Cache
	logger *slog.Logger
}

// NewProfileService creates a ProfileService. A non-positive ttl disables caching.
func NewProfileService(repo repository.UserReader, ttl time.Duration, logger *slog.Logger) *ProfileService {
	s := &ProfileService{repo: repo, logger: logger}
	if ttl > 0 {
		s.cache = cache.New(ttl, 2*ttl)
	}
	return s
}

// Find runs plan against the store. An empty answer of any kind is returned as
// apperror.ErrNotFound.
func (s *ProfileService) Find(ctx context.Context, plan query.Plan) (ProfileResult, error) {
	key := plan.Key()
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			s.logger.Debug("profiles cache hit", slog.String("key", key))
			return cached.(ProfileResult), nil
		}
	}

	result, err := s.find(ctx, plan)
	if err != nil {
		return ProfileResult{}, err
	}

	if s.cache != nil {
		s.cache.SetDefault(key, result)
	}
	return result, nil
}

func (s *ProfileService) find(ctx context.Context, plan query.Plan) (ProfileResult, error) {
	log := s.logger.With(slog.String("filter", plan.Kind.String()))

	var (
		user *model.User
		err  error
	)
	switch plan.Kind {
	case query.FilterID:
		log.Info("profile lookup", slog.Int64("id", plan.ID))
		user, err = s.repo.GetByID(ctx, plan.ID)
	case query.FilterLogin:
		log.Info("profile lookup", slog.String("login", plan.Login))
		user, err = s.repo.GetByLogin(ctx, plan.Login)
	default:
		return s.list(ctx, log, plan)
	}

	if err != nil {
		return ProfileResult{}, s.notFoundOr(log, err)
	}
	return ProfileResult{User: user}, nil
}

func (s *ProfileService) list(ctx context.Context, log *slog.Logger, plan query.Plan) (ProfileResult, error) {
	log.Info("profile listing",
		slog.String("user_type", plan.UserType),
		slog.String("order_by", string(plan.OrderBy)),
		slog.Int("per_page", plan.PerPage),
		slog.Int("page", plan.Page),
	)

	users, err := s.repo.List(ctx, plan.ListOptions())
	if err != nil {
		return ProfileResult{}, s.notFoundOr(log, err)
	}
	if len(users) == 0 {
		log.Warn("profile listing is empty")
		return ProfileResult{}, notFound()
	}
	return ProfileResult{Users: users}, nil
}

// notFoundOr rewrites a store not-found into the public message and wraps
// anything else.
func (s *ProfileService) notFoundOr(log *slog.Logger, err error) error {
	if isNotFound(err) {
		log.Warn("profile not found", slog.String("error", err.Error()))
		return notFound()
	}
	log.Error("profile query failed", slog.String("error", err.Error()))
	return fmt.Errorf("querying profiles: %w", err)
}

func notFound() *apperror.AppError {
	return &apperror.AppError{Err: apperror.ErrNotFound, Message: ProfileNotFoundMessage}
}

func isNotFound(err error) bool {
	return errors.Is(err, apperror.ErrNotFound)
}
