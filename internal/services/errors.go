// Package services holds the business operations behind the HTTP handlers
// and the CLI. Every operation returns one of the error kinds below so
// callers can map failures without inspecting messages.
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/CodingDyl/virtec-crm/validation"
	"gorm.io/gorm"
)

var (
	ErrValidation             = errors.New("validation failed")
	ErrNotFound               = errors.New("not found")
	ErrExternalService        = errors.New("external service failure")
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrInvalidCredentials     = errors.New("invalid credentials")

	// ErrInvalidTransition is a validation failure on a status change.
	ErrInvalidTransition = fmt.Errorf("%w: status transition not allowed", ErrValidation)
)

// ValidationError carries per-field violation codes.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for f, code := range e.Violations {
		fields = append(fields, f+"="+code)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, code string) error {
	return &ValidationError{Violations: validation.Violations{field: code}}
}

// NotFoundError names the missing record.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func conflict(resource string, id uint) error {
	return fmt.Errorf("%s %d: %w", resource, id, ErrConcurrentModification)
}

func transition(resource string, id uint, from, to string) error {
	if from == "" {
		from = "none"
	}
	return fmt.Errorf("%s %d %s -> %s: %w", resource, id, from, to, ErrInvalidTransition)
}

func external(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrExternalService, err)
}

// lookup turns gorm's not-found into a NotFoundError and anything else
// into an external failure.
func lookup(err error, resource string, id uint) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Resource: resource, ID: id}
	}
	return external("load "+resource, err)
}

// classify leaves typed errors alone and wraps the rest, such as a failed commit.
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrExternalService),
		errors.Is(err, ErrConcurrentModification),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return external(op, err)
}
