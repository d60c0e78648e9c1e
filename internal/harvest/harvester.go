package harvest

import (
	"context"
	"log/slog"

	"github.com/sakif/github-profiles/internal/github"
	"github.com/sakif/github-profiles/internal/model"
)

// Source is the upstream the harvester reads from. *github.Client implements it.
type Source interface {
	ListUsers(ctx context.Context, perPage int, since int64) ([]github.UserSummary, error)
	GetUser(ctx context.Context, login string) (*github.UserDetail, error)
}

var _ Source = (*github.Client)(nil)

// Harvester turns planned descriptors into user records.
type Harvester struct {
	source Source
	logger *slog.Logger
}

// NewHarvester creates a Harvester reading from source.
func NewHarvester(source Source, logger *slog.Logger) *Harvester {
	return &Harvester{source: source, logger: logger}
}

// Harvest walks descriptors in order and returns every record it could build.
//
// CURSOR REWRITE:
// The planned cursors (0, 100, 200, ...) assume GitHub ids are dense, which they are
// not. Once any record has been harvested, each later descriptor is sent with
// since = the id of the most recent record instead, so batches neither overlap nor
// leave gaps.
//
// FAILURE POLICY:
// An upstream or parse failure on any call is logged and abandons the rest of the
// current descriptor. Records already built are kept and the next descriptor is
// tried. Nothing is retried.
//
// The only error returned is the context's, when ctx is cancelled; the records
// gathered so far are returned alongside it.
func (h *Harvester) Harvest(ctx context.Context, descriptors []Descriptor) ([]model.User, error) {
	var (
		users  []model.User
		seen   = make(map[int64]struct{})
		lastID int64
	)

	for i, d := range descriptors {
		if err := ctx.Err(); err != nil {
			return users, err
		}

		if lastID > 0 {
			d.Since = lastID
			h.logger.Debug("cursor moved to last harvested id",
				slog.Int("batch", i),
				slog.Int64("since", d.Since),
			)
		}

		batch, last := h.harvestBatch(ctx, i, d, seen)
		users = append(users, batch...)
		if last > 0 {
			lastID = last
		}
	}

	if err := ctx.Err(); err != nil {
		return users, err
	}

	h.logger.Info("harvest finished",
		slog.Int("batches", len(descriptors)),
		slog.Int("records", len(users)),
	)
	return users, nil
}

// harvestBatch fetches one descriptor's page and enriches every entry with its
// detail record. It returns the records built and the last id seen (0 if none).
// On failure it stops and returns what it had so far.
func (h *Harvester) harvestBatch(ctx context.Context, batch int, d Descriptor, seen map[int64]struct{}) ([]model.User, int64) {
	log := h.logger.With(slog.Int("batch", batch), slog.String("request", d.String()))

	summaries, err := h.source.ListUsers(ctx, d.PerPage, d.Since)
	if err != nil {
		log.Error("listing users failed, skipping batch", slog.String("error", err.Error()))
		return nil, 0
	}

	var (
		users  = make([]model.User, 0, len(summaries))
		lastID int64
	)
	for _, s := range summaries {
		detail, err := h.source.GetUser(ctx, s.Login)
		if err != nil {
			log.Error("fetching user detail failed, abandoning rest of batch",
				slog.String("login", s.Login),
				slog.Int("kept", len(users)),
				slog.String("error", err.Error()),
			)
			return users, lastID
		}

		u := normalize(s, detail)
		lastID = u.ID

		if _, dup := seen[u.ID]; dup {
			log.Warn("duplicate user id skipped", slog.Int64("id", u.ID), slog.String("login", u.Login))
			continue
		}
		seen[u.ID] = struct{}{}

		log.Debug("user harvested",
			slog.Int64("id", u.ID),
			slog.String("login", u.Login),
			slog.String("type", u.Type),
		)
		users = append(users, u)
	}

	return users, lastID
}

// normalize merges a listing entry with its detail record. The id and display name
// come from the detail; everything else from the listing.
func normalize(s github.UserSummary, d *github.UserDetail) model.User {
	name := model.BlankName
	if d.Name != nil && *d.Name != "" {
		name = *d.Name
	}

	return model.User{
		ID:         d.ID,
		Name:       name,
		Login:      s.Login,
		AvatarURL:  s.AvatarURL,
		Type:       s.Type,
		ProfileURL: s.HTMLURL,
	}
}
