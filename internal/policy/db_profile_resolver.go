package policy

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"autoparc/internal/gate"
	"autoparc/internal/models"
)

// DBProfileResolver fetches user profiles from the database.
type DBProfileResolver struct {
	DB *gorm.DB
}

// NewDBProfileResolver creates a database-backed profile resolver.
func NewDBProfileResolver(db *gorm.DB) *DBProfileResolver {
	return &DBProfileResolver{DB: db}
}

// Resolve looks up the user's profile, preloading its permissions.
// Returns nil (no error) when the user has no profile assigned.
func (r *DBProfileResolver) Resolve(ctx context.Context, userID uint) (gate.Profile, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Preload("Profile.Permissions").First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if user.Profile == nil {
		return nil, nil
	}
	return &dbProfileAdapter{profile: user.Profile}, nil
}

// dbProfileAdapter wraps a models.Profile as a gate.Profile.
type dbProfileAdapter struct {
	profile *models.Profile
}

func (a *dbProfileAdapter) ID() uint     { return a.profile.ID }
func (a *dbProfileAdapter) Name() string { return a.profile.Name }

// HasPermission checks the requested permission against the profile's
// grants, including wildcards.
func (a *dbProfileAdapter) HasPermission(perm gate.Permission) bool {
	for _, p := range a.profile.Permissions {
		if gate.NewPermission(p.ResourceType, gate.Action(p.Action)).Matches(perm) {
			return true
		}
	}
	return false
}

// Permissions returns all grants as gate.Permission values.
func (a *dbProfileAdapter) Permissions() []gate.Permission {
	result := make([]gate.Permission, len(a.profile.Permissions))
	for i, p := range a.profile.Permissions {
		result[i] = gate.NewPermission(p.ResourceType, gate.Action(p.Action))
	}
	return result
}
