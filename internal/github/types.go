package github

import (
	"errors"
	"fmt"

	"github.com/sakif/github-profiles/internal/apperror"
)

// UserSummary is one entry of the GET /users listing.
// GitHub returns a much larger object; only the fields the harvest keeps are decoded.
type UserSummary struct {
	ID        int64  // listing id; the harvest takes the authoritative id from GetUser
	Login     string // GitHub username, e.g. "mojombo"
	AvatarURL string
	Type      string // "User", "Organization", ...
	HTMLURL   string // link to the GitHub profile page
}

// UserDetail is the part of GET /users/{login} the listing does not carry.
type UserDetail struct {
	ID    int64
	Login string
	Name  *string // nil when the user never set a display name
}

// Wire shapes use pointers so a missing field can be told apart from an empty one.

type summaryWire struct {
	ID        *int64  `json:"id"`
	Login     *string `json:"login"`
	AvatarURL *string `json:"avatar_url"`
	Type      *string `json:"type"`
	HTMLURL   *string `json:"html_url"`
}

func (w summaryWire) toSummary() (UserSummary, *ParseError) {
	switch {
	case w.Login == nil || *w.Login == "":
		return UserSummary{}, &ParseError{Field: "login", Err: errMissing}
	case w.AvatarURL == nil:
		return UserSummary{}, &ParseError{Field: "avatar_url", Err: errMissing}
	case w.Type == nil:
		return UserSummary{}, &ParseError{Field: "type", Err: errMissing}
	case w.HTMLURL == nil:
		return UserSummary{}, &ParseError{Field: "html_url", Err: errMissing}
	}

	s := UserSummary{
		Login:     *w.Login,
		AvatarURL: *w.AvatarURL,
		Type:      *w.Type,
		HTMLURL:   *w.HTMLURL,
	}
	if w.ID != nil {
		s.ID = *w.ID
	}
	return s, nil
}

type detailWire struct {
	ID    *int64  `json:"id"`
	Login *string `json:"login"`
	Name  *string `json:"name"`
}

func (w detailWire) toDetail() (*UserDetail, *ParseError) {
	if w.ID == nil {
		return nil, &ParseError{Field: "id", Err: errMissing}
	}
	if *w.ID <= 0 {
		return nil, &ParseError{Field: "id", Err: fmt.Errorf("must be positive, got %d", *w.ID)}
	}

	d := &UserDetail{ID: *w.ID, Name: w.Name}
	if w.Login != nil {
		d.Login = *w.Login
	}
	return d, nil
}

var errMissing = errors.New("field is missing")

// UpstreamError is a failed call: transport error, timeout, or a non-2xx status.
// errors.Is(err, apperror.ErrUpstream) matches it, and so does the transport error
// it carries (context.DeadlineExceeded, for example).
type UpstreamError struct {
	Path       string
	StatusCode int   // 0 when no response was received
	Err        error // nil for a status failure
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("github: GET %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("github: GET %s returned status %d", e.Path, e.StatusCode)
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{apperror.ErrUpstream}
	}
	return []error{apperror.ErrUpstream, e.Err}
}

// ParseError is a response body that did not decode into the expected shape.
// errors.Is(err, apperror.ErrMalformed) matches it.
type ParseError struct {
	Path  string
	Field string // empty when the body was not valid JSON of the right type
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("github: decoding %s: %s: %v", e.Path, e.Field, e.Err)
	}
	return fmt.Sprintf("github: decoding %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{apperror.ErrMalformed, e.Err}
}
