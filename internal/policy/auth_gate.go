// Package policy wires the authorization gate to the database and to the
// HTTP layer. The role-to-transition table is data: profiles hold
// stage-qualified permissions ("commande:advance:MONTAGE"), seeded in the
// db package and editable from the admin screens.
package policy

import (
	"context"
	"net/http"
	"time"

	"gorm.io/gorm"

	"autoparc/internal/auth"
	"autoparc/internal/gate"
)

// AuthGate is the central authorization point: a gate over a TTL-cached
// DB profile resolver.
type AuthGate struct {
	Gate          *gate.Gate
	CacheResolver *gate.CachedResolver
}

// NewAuthGate creates a fully configured authorization gate.
func NewAuthGate(db *gorm.DB, cacheTTL time.Duration) *AuthGate {
	cached := gate.NewCachedResolver(NewDBProfileResolver(db), cacheTTL)
	return &AuthGate{
		Gate:          gate.New(cached),
		CacheResolver: cached,
	}
}

// Authorize checks whether the user in ctx may perform action on the
// resource type. Services call this before every state transition.
func (ag *AuthGate) Authorize(ctx context.Context, action gate.Action, resourceType string, resource any) error {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return gate.ErrUnauthorized
	}
	return ag.Gate.Authorize(ctx, userID, action, resourceType, resource)
}

// Can is a convenience wrapper returning bool instead of error.
func (ag *AuthGate) Can(ctx context.Context, action gate.Action, resourceType string, resource any) bool {
	return ag.Authorize(ctx, action, resourceType, resource) == nil
}

// CanProfile checks only the profile permission. Used by templates to
// show or hide buttons before a specific resource is loaded.
func (ag *AuthGate) CanProfile(ctx context.Context, action gate.Action, resourceType string) bool {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return false
	}
	return ag.Gate.CanProfile(ctx, userID, action, resourceType)
}

// InvalidateUser clears the cached profile of a user after reassignment.
func (ag *AuthGate) InvalidateUser(userID uint) {
	ag.CacheResolver.Invalidate(userID)
}

// InvalidateAll clears the profile cache after permission edits.
func (ag *AuthGate) InvalidateAll() {
	ag.CacheResolver.InvalidateAll()
}

// RequirePermission returns middleware that blocks requests whose user
// lacks the profile permission.
func (ag *AuthGate) RequirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ag.CanProfile(r.Context(), action, resourceType) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin returns middleware that only lets through users whose
// profile carries the superadmin permission.
func (ag *AuthGate) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := auth.UserIDFromContext(r.Context())
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			profile, err := ag.CacheResolver.Resolve(r.Context(), userID)
			if err != nil || profile == nil || !profile.HasPermission(gate.PermissionSuperAdmin) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
