// Package gate implements profile based authorization.
//
// Subjects (usually user IDs) resolve to a Profile holding "resource:action"
// permissions with "*" wildcards on either side. The package knows nothing
// about the domain models; callers plug in a ProfileResolver.
package gate

import (
	"context"
	"errors"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Gate answers permission questions for subjects of type U.
type Gate[U comparable] struct {
	resolver ProfileResolver[U]
}

func New[U comparable](resolver ProfileResolver[U]) *Gate[U] {
	return &Gate[U]{resolver: resolver}
}

// Authorize returns ErrUnauthorized for the zero subject, ErrForbidden when
// the subject's profile lacks resource:action, and resolver errors as is.
func (g *Gate[U]) Authorize(ctx context.Context, subject U, resource string, action Action) error {
	var zero U
	if subject == zero {
		return ErrUnauthorized
	}
	p, err := g.resolver.Resolve(ctx, subject)
	if err != nil {
		return err
	}
	if !Allows(p, NewPermission(resource, action)) {
		return ErrForbidden
	}
	return nil
}

func (g *Gate[U]) Can(ctx context.Context, subject U, resource string, action Action) bool {
	return g.Authorize(ctx, subject, resource, action) == nil
}

// IsSuperAdmin reports whether subject holds "*:*".
func (g *Gate[U]) IsSuperAdmin(ctx context.Context, subject U) bool {
	var zero U
	if subject == zero {
		return false
	}
	p, err := g.resolver.Resolve(ctx, subject)
	if err != nil || p == nil {
		return false
	}
	for _, granted := range p.Permissions() {
		if granted == PermissionSuperAdmin {
			return true
		}
	}
	return false
}
