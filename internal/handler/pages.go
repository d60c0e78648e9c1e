package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/github-profiles/internal/apperror"
	"github.com/sakif/github-profiles/internal/service"
)

// PageLister returns one page of the user listing. *service.PageService
// implements it.
type PageLister interface {
	Page(ctx context.Context, num int) (*service.UserPage, error)
}

// PagesHandler renders the paginated HTML user table.
// Templates are parsed once in the constructor and reused for every request.
type PagesHandler struct {
	pages     PageLister
	templates *template.Template
	logger    *slog.Logger
}

// NewPagesHandler parses templates/base.html and templates/users.html from
// templates. base.html lays out the page and pulls in the "content" block that
// users.html defines.
func NewPagesHandler(pages PageLister, templates fs.FS, logger *slog.Logger) (*PagesHandler, error) {
	tmpl, err := template.ParseFS(templates, "templates/base.html", "templates/users.html")
	if err != nil {
		return nil, fmt.Errorf("parsing page templates: %w", err)
	}

	return &PagesHandler{
		pages:     pages,
		templates: tmpl,
		logger:    logger,
	}, nil
}

// HandleIndex sends visitors to the first page.
//
// HTTP: GET /
func (h *PagesHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/user/1", http.StatusFound)
}

// HandleUsers renders one page of 25 users.
//
// HTTP: GET /user/{page_num}
//
// A page number that is not a positive integer, or that lies past the last page,
// is a 404.
func (h *PagesHandler) HandleUsers(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "page_num")
	num, err := strconv.Atoi(raw)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	page, err := h.pages.Page(r.Context(), num)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("failed to load user page",
			slog.Int("page", num),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := map[string]any{
		"Title": fmt.Sprintf("GitHub users, page %d", page.Page),
		"Page":  page,
	}

	// Render into memory first so a template error can still become a clean 500.
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, "base", data); err != nil {
		h.logger.Error("failed to render template",
			slog.Int("page", num),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
