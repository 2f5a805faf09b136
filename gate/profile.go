package gate

import "context"

// Profile is a named set of granted permissions.
type Profile interface {
	ID() uint
	Name() string
	Permissions() []Permission
}

// Allows reports whether any permission of p covers requested.
func Allows(p Profile, requested Permission) bool {
	if p == nil {
		return false
	}
	for _, granted := range p.Permissions() {
		if granted.Matches(requested) {
			return true
		}
	}
	return false
}

// ProfileResolver finds the profile assigned to a subject.
// A nil profile with a nil error means the subject has no profile.
type ProfileResolver[U comparable] interface {
	Resolve(ctx context.Context, subject U) (Profile, error)
}

// ResolverFunc adapts a function to ProfileResolver.
type ResolverFunc[U comparable] func(ctx context.Context, subject U) (Profile, error)

func (f ResolverFunc[U]) Resolve(ctx context.Context, subject U) (Profile, error) {
	return f(ctx, subject)
}

// StaticProfile is an in-memory Profile.
type StaticProfile struct {
	id    uint
	name  string
	perms []Permission
}

func NewStaticProfile(id uint, name string, perms ...Permission) *StaticProfile {
	return &StaticProfile{id: id, name: name, perms: perms}
}

func (p *StaticProfile) ID() uint                  { return p.id }
func (p *StaticProfile) Name() string              { return p.name }
func (p *StaticProfile) Permissions() []Permission { return p.perms }
