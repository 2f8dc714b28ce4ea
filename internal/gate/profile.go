package gate

import "context"

// Profile is a role with a set of permissions.
type Profile interface {
	ID() uint
	Name() string
	HasPermission(permission Permission) bool
	Permissions() []Permission
}

// ProfileResolver resolves a user id to its profile.
type ProfileResolver interface {
	Resolve(ctx context.Context, userID uint) (Profile, error)
}

// StaticProfile is an in-memory profile, used in tests and for static
// role tables.
type StaticProfile struct {
	id          uint
	name        string
	permissions map[Permission]bool
}

// NewStaticProfile creates a profile holding the given permissions.
func NewStaticProfile(id uint, name string, permissions ...Permission) *StaticProfile {
	p := &StaticProfile{id: id, name: name, permissions: make(map[Permission]bool, len(permissions))}
	for _, perm := range permissions {
		p.permissions[perm] = true
	}
	return p
}

func (p *StaticProfile) ID() uint     { return p.id }
func (p *StaticProfile) Name() string { return p.name }

func (p *StaticProfile) Permissions() []Permission {
	perms := make([]Permission, 0, len(p.permissions))
	for perm := range p.permissions {
		perms = append(perms, perm)
	}
	return perms
}

// HasPermission checks the requested permission against the granted set,
// including wildcard grants.
func (p *StaticProfile) HasPermission(requested Permission) bool {
	for perm := range p.permissions {
		if perm.Matches(requested) {
			return true
		}
	}
	return false
}

// StaticResolver maps user ids to profiles in memory.
type StaticResolver struct {
	profiles map[uint]Profile
}

// NewStaticResolver creates an empty in-memory resolver.
func NewStaticResolver() *StaticResolver {
	return &StaticResolver{profiles: make(map[uint]Profile)}
}

// Set assigns a profile to a user.
func (r *StaticResolver) Set(userID uint, profile Profile) {
	r.profiles[userID] = profile
}

// Resolve returns the profile for the given user, nil when unassigned.
func (r *StaticResolver) Resolve(_ context.Context, userID uint) (Profile, error) {
	return r.profiles[userID], nil
}
