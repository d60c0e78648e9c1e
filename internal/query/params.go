package query

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/github-profiles/internal/apperror"
)

// Params are the typed /Profiles query parameters. A nil pointer or empty string
// means the parameter was not supplied.
type Params struct {
	ID       *int64 `query:"id" validate:"omitempty,gte=1"`
	Login    string `query:"loginid" validate:"omitempty,max=100"`
	UserType string `query:"usertype" validate:"omitempty,max=100"`
	PerPage  *int   `query:"pagination" validate:"omitempty,gte=1"`
	Page     *int   `query:"pagenumber" validate:"omitempty,gte=1,lte=10000000"`
	OrderBy  string `query:"orderby"`
}

// validate is safe for concurrent use and caches struct metadata, so one instance
// serves every request.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report the public parameter name instead of the Go field name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("query"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// ParseParams reads and validates the /Profiles query string. Every failure is an
// apperror validation error naming the offending parameter.
//
// Surrounding whitespace is trimmed and blank values count as absent, so
// "?usertype=" behaves like no usertype at all.
func ParseParams(values url.Values) (Params, error) {
	get := func(name string) string { return strings.TrimSpace(values.Get(name)) }

	var (
		p   Params
		err error
	)

	if p.ID, err = parseInt64(get("id"), "id"); err != nil {
		return Params{}, err
	}
	if p.PerPage, err = parseInt(get("pagination"), "pagination"); err != nil {
		return Params{}, err
	}
	if p.Page, err = parseInt(get("pagenumber"), "pagenumber"); err != nil {
		return Params{}, err
	}
	p.Login = get("loginid")
	p.UserType = get("usertype")
	p.OrderBy = strings.ToLower(get("orderby"))

	if err := validate.Struct(p); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			fe := ve[0]
			return Params{}, apperror.ValidationFailed(fe.Field(),
				fmt.Sprintf("%s %s", fe.Field(), formatValidationError(fe)))
		}
		return Params{}, fmt.Errorf("validating query parameters: %w", err)
	}
	return p, nil
}

func parseInt64(raw, name string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, apperror.ValidationFailed(name, name+" must be an integer")
	}
	return &n, nil
}

func parseInt(raw, name string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperror.ValidationFailed(name, name+" must be an integer")
	}
	return &n, nil
}

func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "max":
		return fmt.Sprintf("must have a maximum of %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}
