package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"autoparc/internal/httpx"
	"autoparc/internal/logger"
	"autoparc/internal/models"
	"autoparc/internal/policy"
)

// AdminHandler manages profiles, their permissions and user assignment.
// Editing the permission rows is how the role-to-transition table is
// changed at runtime.
type AdminHandler struct {
	DB   *gorm.DB
	Gate *policy.AuthGate
}

func NewAdminHandler(db *gorm.DB, ag *policy.AuthGate) *AdminHandler {
	return &AdminHandler{DB: db, Gate: ag}
}

func (h *AdminHandler) Profiles(w http.ResponseWriter, r *http.Request) {
	var profiles []models.Profile
	if err := h.DB.WithContext(r.Context()).Preload("Permissions").Order("name").Find(&profiles).Error; err != nil {
		writeServiceError(w, r, err)
		return
	}
	var permissions []models.Permission
	if err := h.DB.WithContext(r.Context()).Order("resource_type, action").Find(&permissions).Error; err != nil {
		writeServiceError(w, r, err)
		return
	}
	var users []models.User
	if err := h.DB.WithContext(r.Context()).Preload("Profile").Order("email").Find(&users).Error; err != nil {
		writeServiceError(w, r, err)
		return
	}

	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"profiles": profiles, "permissions": permissions})
		return
	}
	renderTemplate(w, r, "admin_profiles", map[string]any{
		"Profiles":    profiles,
		"Permissions": permissions,
		"Users":       users,
	})
}

// UpdatePermissions replaces a profile's permission set with the checked
// rows and flushes the resolver cache so the change is effective at once.
func (h *AdminHandler) UpdatePermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}

	var profile models.Profile
	if err := h.DB.WithContext(r.Context()).First(&profile, id).Error; err != nil {
		writeServiceError(w, r, err)
		return
	}
	if profile.IsSystem {
		httpx.JSONError(w, http.StatusConflict, "system_profile_readonly", nil)
		return
	}

	permIDs := make([]uint, 0, len(r.Form["permission_ids"]))
	for _, v := range r.Form["permission_ids"] {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			permIDs = append(permIDs, uint(n))
		}
	}
	var perms []models.Permission
	if len(permIDs) > 0 {
		if err := h.DB.WithContext(r.Context()).Where("id IN ?", permIDs).Find(&perms).Error; err != nil {
			writeServiceError(w, r, err)
			return
		}
	}
	if err := h.DB.WithContext(r.Context()).Model(&profile).Association("Permissions").Replace(perms); err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.Gate.InvalidateAll()
	logger.L().Info("profile permissions updated",
		zap.Uint("profile_id", profile.ID),
		zap.Int("permissions", len(perms)))

	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"profile_id": profile.ID, "permissions": len(perms)})
		return
	}
	http.Redirect(w, r, "/admin/profiles", http.StatusSeeOther)
}

// AssignProfile sets a user's profile.
func (h *AdminHandler) AssignProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}

	var user models.User
	if err := h.DB.WithContext(r.Context()).First(&user, id).Error; err != nil {
		writeServiceError(w, r, err)
		return
	}

	var profileID *uint
	if v := r.FormValue("profile_id"); v != "" && v != "0" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_profile_id", nil)
			return
		}
		var profile models.Profile
		if err := h.DB.WithContext(r.Context()).First(&profile, n).Error; err != nil {
			writeServiceError(w, r, err)
			return
		}
		profileID = &profile.ID
	}

	if err := h.DB.WithContext(r.Context()).Model(&user).Update("profile_id", profileID).Error; err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.Gate.InvalidateUser(user.ID)
	logger.L().Info("user profile assigned", zap.Uint("user_id", user.ID))

	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"user_id": user.ID})
		return
	}
	http.Redirect(w, r, "/admin/profiles", http.StatusSeeOther)
}
