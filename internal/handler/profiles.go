// Package handler contains the HTTP handlers for the pages and API services.
//
// Handlers only translate: they parse the request, call one service method and
// write the response. Business rules live in internal/service and internal/query.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/github-profiles/internal/query"
	"github.com/sakif/github-profiles/internal/service"
)

// ProfileFinder answers a resolved /Profiles plan. *service.ProfileService
// implements it.
type ProfileFinder interface {
	Find(ctx context.Context, plan query.Plan) (service.ProfileResult, error)
}

// ProfilesHandler serves the JSON profile lookup.
type ProfilesHandler struct {
	profiles ProfileFinder
	logger   *slog.Logger
}

// NewProfilesHandler creates a ProfilesHandler.
func NewProfilesHandler(profiles ProfileFinder, logger *slog.Logger) *ProfilesHandler {
	return &ProfilesHandler{profiles: profiles, logger: logger}
}

// HandleProfiles looks up users.
//
// HTTP: GET /Profiles
//
// QUERY PARAMETERS (first filter present wins):
//
//	id=<int>          one user by GitHub id
//	loginid=<string>  one user by login
//	usertype=<string> a page of users of that type ("User", "Organization")
//	pagination=<int>  page size, default 20, capped at 100
//	pagenumber=<int>  1-based page, default 1
//	orderby=<string>  id | names | loginids | profiles, default id
//
// With no filter at all, a page across every user is returned.
//
// RESPONSES:
//
//	200 {"user_id":1,"name":"...","login":"mojombo",...}   id / loginid
//	200 [{...},{...}]                                      usertype / no filter
//	400 {"error":"validation_error",...}                   non-integer or < 1 numbers
//	404 {"error":"not_found","message":"Could not find user data in database"}
func (h *ProfilesHandler) HandleProfiles(w http.ResponseWriter, r *http.Request) {
	params, err := query.ParseParams(r.URL.Query())
	if err != nil {
		h.logger.Warn("invalid profiles query",
			slog.String("query", r.URL.RawQuery),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	plan := query.Resolve(params)

	result, err := h.profiles.Find(r.Context(), plan)
	if err != nil {
		writeError(w, err)
		return
	}

	if result.Single() {
		writeJSON(w, http.StatusOK, result.User)
		return
	}
	writeJSON(w, http.StatusOK, result.Users)
}
