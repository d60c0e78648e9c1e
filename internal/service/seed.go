package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/github-profiles/internal/harvest"
	"github.com/sakif/github-profiles/internal/model"
	"github.com/sakif/github-profiles/internal/repository"
)

// Harvester is the part of *harvest.Harvester the seed pipeline uses.
type Harvester interface {
	Harvest(ctx context.Context, descriptors []harvest.Descriptor) ([]model.User, error)
}

// SeedReport summarises one seed run.
type SeedReport struct {
	RunID     string
	Requested int
	Requests  int
	Harvested int
	Loaded    int
	Duration  time.Duration
}

// SeedService runs the seed pipeline: plan the upstream requests, harvest the
// records, then replace the users table with them.
type SeedService struct {
	harvester  Harvester
	store      repository.UserWriter
	maxPerPage int
	logger     *slog.Logger
}

// NewSeedService creates a SeedService. maxPerPage is the largest page one
// upstream request may ask for.
func NewSeedService(h Harvester, store repository.UserWriter, maxPerPage int, logger *slog.Logger) *SeedService {
	return &SeedService{
		harvester:  h,
		store:      store,
		maxPerPage: maxPerPage,
		logger:     logger,
	}
}

// Run harvests up to total users and loads them.
//
// Upstream failures never fail the run: the harvester logs them and returns what
// it could build. Run only returns an error when ctx is cancelled (nothing is
// persisted then) or when the load itself fails (the previous table is kept).
// A harvest that yields nothing leaves the table untouched.
func (s *SeedService) Run(ctx context.Context, total int) (*SeedReport, error) {
	start := time.Now()
	report := &SeedReport{RunID: xid.New().String(), Requested: total}
	log := s.logger.With(slog.String("run_id", report.RunID))

	plan := harvest.Plan(total, s.maxPerPage)
	report.Requests = len(plan)

	log.Info("seed planned",
		slog.Int("total", total),
		slog.Int("max_per_page", s.maxPerPage),
		slog.Int("requests", len(plan)),
	)
	for i, d := range plan {
		log.Info("planned request", slog.Int("batch", i), slog.String("request", "/users?"+d.String()))
	}

	users, err := s.harvester.Harvest(ctx, plan)
	if err != nil {
		log.Error("harvest interrupted, nothing persisted",
			slog.Int("harvested", len(users)),
			slog.String("error", err.Error()),
		)
		return report, fmt.Errorf("harvesting users: %w", err)
	}
	report.Harvested = len(users)

	if len(users) == 0 {
		log.Warn("nothing harvested, users table left untouched")
		report.Duration = time.Since(start)
		return report, nil
	}

	loaded, err := s.store.ReplaceAll(ctx, users)
	if err != nil {
		log.Error("loading users failed, previous table kept", slog.String("error", err.Error()))
		return report, fmt.Errorf("loading users: %w", err)
	}
	report.Loaded = loaded
	report.Duration = time.Since(start)

	log.Info("seed finished",
		slog.Int("harvested", report.Harvested),
		slog.Int("loaded", report.Loaded),
		slog.Duration("duration", report.Duration),
	)
	return report, nil
}
