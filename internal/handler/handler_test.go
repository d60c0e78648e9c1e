package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/github-profiles/internal/apperror"
	"github.com/sakif/github-profiles/internal/handler"
	"github.com/sakif/github-profiles/internal/model"
	"github.com/sakif/github-profiles/internal/query"
	"github.com/sakif/github-profiles/internal/service"
	"github.com/sakif/github-profiles/web"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockFinder records the plan it was asked for and returns a canned answer.
type MockFinder struct {
	CapturedPlan query.Plan
	Calls        int
	ReturnRes    service.ProfileResult
	ReturnErr    error
}

func (m *MockFinder) Find(_ context.Context, plan query.Plan) (service.ProfileResult, error) {
	m.Calls++
	m.CapturedPlan = plan
	return m.ReturnRes, m.ReturnErr
}

var mojombo = model.User{
	ID:         1,
	Name:       "Tom Preston-Werner",
	Login:      "mojombo",
	AvatarURL:  "https://avatars.githubusercontent.com/u/1?v=4",
	Type:       "User",
	ProfileURL: "https://github.com/mojombo",
}

func serveProfiles(h *handler.ProfilesHandler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	h.HandleProfiles(rr, req)
	return rr
}

func TestProfilesHandler_SingleRecord(t *testing.T) {
	finder := &MockFinder{ReturnRes: service.ProfileResult{User: &mojombo}}
	h := handler.NewProfilesHandler(finder, quietLogger())

	rr := serveProfiles(h, "/Profiles?id=1&usertype=User")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, query.Plan{Kind: query.FilterID, ID: 1}, finder.CapturedPlan)

	var got map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, map[string]any{
		"user_id":   float64(1),
		"name":      "Tom Preston-Werner",
		"login":     "mojombo",
		"avatar":    "https://avatars.githubusercontent.com/u/1?v=4",
		"user_type": "User",
		"profile":   "https://github.com/mojombo",
	}, got)
}

func TestProfilesHandler_List(t *testing.T) {
	second := mojombo
	second.ID, second.Login = 2, "defunkt"
	finder := &MockFinder{ReturnRes: service.ProfileResult{Users: []model.User{mojombo, second}}}
	h := handler.NewProfilesHandler(finder, quietLogger())

	rr := serveProfiles(h, "/Profiles?usertype=User&pagination=500&orderby=loginids")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, query.FilterType, finder.CapturedPlan.Kind)
	assert.Equal(t, 100, finder.CapturedPlan.PerPage)

	var got []model.User
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, []model.User{mojombo, second}, got)
}

func TestProfilesHandler_NotFound(t *testing.T) {
	finder := &MockFinder{ReturnErr: &apperror.AppError{
		Err:     apperror.ErrNotFound,
		Message: service.ProfileNotFoundMessage,
	}}
	h := handler.NewProfilesHandler(finder, quietLogger())

	rr := serveProfiles(h, "/Profiles?id=424242")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	var got handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, handler.ErrorResponse{
		Error:   "not_found",
		Message: "Could not find user data in database",
	}, got)
}

func TestProfilesHandler_BadParameter(t *testing.T) {
	finder := &MockFinder{}
	h := handler.NewProfilesHandler(finder, quietLogger())

	rr := serveProfiles(h, "/Profiles?usertype=User&pagination=lots")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 0, finder.Calls, "service is not called for invalid input")

	var got handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, "validation_error", got.Error)
	assert.Equal(t, "pagination", got.Field)
}

func TestProfilesHandler_InternalErrorHidesDetails(t *testing.T) {
	finder := &MockFinder{ReturnErr: errors.New("sqlite: no such column: secret")}
	h := handler.NewProfilesHandler(finder, quietLogger())

	rr := serveProfiles(h, "/Profiles?loginid=mojombo")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "secret")
}

// MockPages returns a canned page or error.
type MockPages struct {
	Requested int
	ReturnRes *service.UserPage
	ReturnErr error
}

func (m *MockPages) Page(_ context.Context, num int) (*service.UserPage, error) {
	m.Requested = num
	return m.ReturnRes, m.ReturnErr
}

// pagesRouter mounts the handler on a chi router so {page_num} is populated.
func pagesRouter(t *testing.T, pages handler.PageLister) http.Handler {
	t.Helper()
	h, err := handler.NewPagesHandler(pages, web.Templates, quietLogger())
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Get("/", h.HandleIndex)
	r.Get("/user/{page_num}", h.HandleUsers)
	return r
}

func TestPagesHandler_RendersPage(t *testing.T) {
	pages := &MockPages{ReturnRes: &service.UserPage{
		Users:   []model.User{mojombo},
		Page:    2,
		PerPage: 25,
		Total:   60,
		Pages:   3,
	}}
	router := pagesRouter(t, pages)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/user/2", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 2, pages.Requested)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))

	body := rr.Body.String()
	assert.Contains(t, body, "Tom Preston-Werner")
	assert.Contains(t, body, `href="https://github.com/mojombo"`)
	assert.Contains(t, body, `href="/user/1"`)
	assert.Contains(t, body, `href="/user/3"`)
	assert.Contains(t, body, "page 2 of 3")
}

func TestPagesHandler_NotFound(t *testing.T) {
	tests := []struct {
		name string
		path string
		err  error
	}{
		{"past the last page", "/user/9", apperror.NotFound("page", "9")},
		{"not a number", "/user/abc", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := pagesRouter(t, &MockPages{ReturnErr: tt.err})
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, http.StatusNotFound, rr.Code)
		})
	}
}

func TestPagesHandler_StoreFailure(t *testing.T) {
	router := pagesRouter(t, &MockPages{ReturnErr: errors.New("database is locked")})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/user/1", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestPagesHandler_IndexRedirects(t *testing.T) {
	router := pagesRouter(t, &MockPages{})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/user/1", rr.Header().Get("Location"))
}

func TestNewPagesHandler_MissingTemplates(t *testing.T) {
	fsys := fstest.MapFS{
		"templates/base.html": {Data: []byte(`{{define "base"}}{{template "content" .}}{{end}}`)},
	}
	_, err := handler.NewPagesHandler(&MockPages{}, fsys, quietLogger())
	assert.Error(t, err)
}

type fakePinger struct{ err error }

func (f fakePinger) HealthCheck(context.Context) error { return f.err }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"healthy", nil, http.StatusOK},
		{"database down", errors.New("closed"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewHealthHandler(fakePinger{err: tt.err}, quietLogger())
			rr := httptest.NewRecorder()
			h.HandleHealth(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}
