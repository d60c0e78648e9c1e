// Package apperror defines the error kinds shared by every layer.
//
// Each constructor returns an *AppError that wraps one sentinel. Callers test the
// kind with errors.Is and read the human-readable text with Error():
//
//	if errors.Is(err, apperror.ErrNotFound) { ... }
//
// Four kinds exist:
//   - ErrNotFound:   an exact lookup matched nothing (expected, common)
//   - ErrValidation: caller-supplied input was rejected (client error)
//   - ErrUpstream:   a call to the upstream API failed (transient, batch-aborting)
//   - ErrMalformed:  an upstream payload did not have the expected shape
//
// The last two are produced by the github package's typed errors, which unwrap to
// these sentinels.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrUpstream   = errors.New("upstream failure")
	ErrMalformed  = errors.New("malformed payload")
)

type AppError struct {
	Err     error  // sentinel kind
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}
