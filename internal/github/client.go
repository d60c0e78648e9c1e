// Package github is a small client for the two GitHub REST endpoints the harvest uses:
//
//	GET /users?per_page=N&since=C   → a page of user summaries, ids greater than C
//	GET /users/{login}              → one user's full profile
//
// API docs: https://docs.github.com/en/rest/users/users
//
// The client is built on resty for request plumbing. When a token is configured the
// underlying *http.Client comes from golang.org/x/oauth2, which adds an
// "Authorization: Bearer <token>" header to every request. Calls are paced by a token
// bucket so a large harvest stays under GitHub's secondary rate limits.
//
// No call is retried. Failures come back as *UpstreamError (network, timeout,
// non-2xx) or *ParseError (body did not decode into the expected shape).
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public GitHub REST API.
const DefaultBaseURL = "https://api.github.com"

// MaxPerPage is the largest page GitHub serves from the users listing.
const MaxPerPage = 100

// Options configures a Client. Zero values get defaults in New.
type Options struct {
	BaseURL           string
	Token             string        // personal access token; empty means anonymous
	Timeout           time.Duration // per request
	RequestsPerSecond float64       // <= 0 disables pacing
	UserAgent         string
}

// Client calls the GitHub users API.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates a Client.
func New(opts Options, logger *slog.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return nil, fmt.Errorf("github: invalid base URL %q", opts.BaseURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = "github-profiles-seed/1.0"
	}

	// oauth2.NewClient returns an *http.Client whose transport injects the bearer
	// token. Anonymous access uses a plain client.
	hc := &http.Client{}
	if opts.Token != "" {
		hc = oauth2.NewClient(context.Background(),
			oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}))
	}

	rc := resty.NewWithClient(hc).
		SetBaseURL(base).
		SetTimeout(timeout).
		SetHeader("Accept", "application/vnd.github+json").
		SetHeader("User-Agent", ua)

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &Client{
		http:    rc,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}, nil
}

// ListUsers fetches up to perPage users whose ID is greater than since.
func (c *Client) ListUsers(ctx context.Context, perPage int, since int64) ([]UserSummary, error) {
	const path = "/users"

	req := c.http.R().SetQueryParams(map[string]string{
		"per_page": strconv.Itoa(perPage),
		"since":    strconv.FormatInt(since, 10),
	})
	resp, err := c.get(ctx, req, path, path)
	if err != nil {
		return nil, err
	}

	var wire []summaryWire
	if err := json.Unmarshal(resp.Body(), &wire); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	users := make([]UserSummary, 0, len(wire))
	for i, w := range wire {
		u, err := w.toSummary()
		if err != nil {
			err.Path = fmt.Sprintf("%s[%d]", path, i)
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// GetUser fetches the full profile for login.
func (c *Client) GetUser(ctx context.Context, login string) (*UserDetail, error) {
	path := "/users/" + login

	req := c.http.R().SetPathParam("login", login)
	resp, err := c.get(ctx, req, "/users/{login}", path)
	if err != nil {
		return nil, err
	}

	var wire detailWire
	if err := json.Unmarshal(resp.Body(), &wire); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	d, perr := wire.toDetail()
	if perr != nil {
		perr.Path = path
		return nil, perr
	}
	return d, nil
}

// get paces, sends and status-checks one GET of endpoint (which may contain resty
// path parameters). path is the resolved path that errors and logs report.
func (c *Client) get(ctx context.Context, req *resty.Request, endpoint, path string) (*resty.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &UpstreamError{Path: path, Err: err}
	}

	start := time.Now()
	resp, err := req.SetContext(ctx).Get(endpoint)
	if err != nil {
		return nil, &UpstreamError{Path: path, Err: err}
	}

	c.logger.Debug("github request",
		slog.String("path", path),
		slog.Int("status", resp.StatusCode()),
		slog.Duration("duration", time.Since(start)),
		slog.String("rate_limit_remaining", resp.Header().Get("X-RateLimit-Remaining")),
	)

	if !resp.IsSuccess() {
		return nil, &UpstreamError{Path: path, StatusCode: resp.StatusCode()}
	}
	return resp, nil
}
