// Package gate is the authorization checkpoint of the application.
// A Gate resolves the caller's profile, checks the profile permission for
// resource:action, then consults an optional per-resource Policy. The
// permission strings double as the role-to-transition table: a profile that
// holds "commande:advance:MONTAGE" may move commandes into MONTAGE.
package gate

import (
	"context"
	"errors"
)

// Sentinel errors returned by Gate.Authorize.
var (
	ErrUnauthorized = errors.New("unauthorized")
)

// Policy is an extra per-resource check applied after the profile
// permission passed (e.g. restricting an action to specific records).
type Policy interface {
	// Can returns true if the user may perform action on resource.
	// resource may be nil for list/create checks.
	Can(ctx context.Context, userID uint, action Action, resource any) bool
}

// Gate combines profile permissions with optional resource policies.
type Gate struct {
	resolver ProfileResolver
	policies map[string]Policy
}

// New creates a gate using the given profile resolver.
func New(resolver ProfileResolver) *Gate {
	return &Gate{resolver: resolver, policies: make(map[string]Policy)}
}

// Register adds a resource policy for a resource type, replacing any
// existing one.
func (g *Gate) Register(resourceType string, p Policy) {
	g.policies[resourceType] = p
}

// Authorize checks, in order: the user is valid, the user's profile grants
// resource:action, and the registered policy (if any, and if a resource is
// given) allows it. Returns ErrUnauthorized on any denial.
func (g *Gate) Authorize(ctx context.Context, userID uint, action Action, resourceType string, resource any) error {
	if userID == 0 {
		return ErrUnauthorized
	}
	profile, err := g.resolver.Resolve(ctx, userID)
	if err != nil || profile == nil {
		return ErrUnauthorized
	}
	if !profile.HasPermission(NewPermission(resourceType, action)) {
		return ErrUnauthorized
	}
	if resource != nil {
		if p, ok := g.policies[resourceType]; ok && !p.Can(ctx, userID, action, resource) {
			return ErrUnauthorized
		}
	}
	return nil
}

// Can is a convenience wrapper returning bool instead of error.
func (g *Gate) Can(ctx context.Context, userID uint, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, userID, action, resourceType, resource) == nil
}

// CanProfile checks only the profile permission, without any resource
// policy. Used by templates to show or hide action buttons.
func (g *Gate) CanProfile(ctx context.Context, userID uint, action Action, resourceType string) bool {
	if userID == 0 {
		return false
	}
	profile, err := g.resolver.Resolve(ctx, userID)
	if err != nil || profile == nil {
		return false
	}
	return profile.HasPermission(NewPermission(resourceType, action))
}
