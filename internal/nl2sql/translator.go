package nl2sql

import (
	"context"
	"errors"
	"fmt"
)

// Translator turns a natural-language question into a candidate SQL string.
// The returned SQL is untrusted and must pass validation before execution.
type Translator interface {
	Translate(ctx context.Context, question string) (string, error)
}

// ErrEmptyGeneration reports that the service answered but produced nothing
// usable as SQL.
var ErrEmptyGeneration = errors.New("model produced no usable SQL")

// ServiceError reports a failure to reach the text-generation service or a
// non-success response from it.
type ServiceError struct {
	Status int
	Err    error
}

func (e *ServiceError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("generation service status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("generation service: %v", e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}
