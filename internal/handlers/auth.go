package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"autoparc/internal/auth"
	"autoparc/internal/httpx"
	"autoparc/internal/logger"
	"autoparc/internal/models"
)

// AuthHandler serves login, signup and logout. New accounts get no
// profile; an admin assigns one before the user can do anything.
type AuthHandler struct {
	DB *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler { return &AuthHandler{DB: db} }

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if uid, ok := auth.UserIDFromContext(r.Context()); ok && uid != 0 {
		var count int64
		if err := h.DB.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err == nil && count > 0 {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		auth.ClearSession(w)
	}
	renderTemplate(w, r, "login", nil)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	pass := r.FormValue("password")
	if email == "" || pass == "" {
		renderTemplate(w, r, "login", map[string]any{"Error": "email and password required"})
		return
	}

	var user models.User
	err := h.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !user.CheckPassword(pass)) {
		logger.L().Warn("login rejected", zap.String("email", email))
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		renderTemplate(w, r, "login", map[string]any{"Error": "invalid credentials"})
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := auth.CreateSession(w, user.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	logger.L().Info("user logged in", zap.Uint("user_id", user.ID))
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"user_id": user.ID})
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *AuthHandler) SignupPage(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, "signup", nil)
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	pass := r.FormValue("password")
	nom := strings.TrimSpace(r.FormValue("nom"))
	if email == "" || pass == "" {
		renderTemplate(w, r, "signup", map[string]any{"Error": "email and password required"})
		return
	}

	user := models.User{Email: email, Nom: nom}
	if err := user.SetPassword(pass); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.DB.Create(&user).Error; err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			renderTemplate(w, r, "signup", map[string]any{"Error": "email already registered"})
			return
		}
		writeServiceError(w, r, err)
		return
	}

	if err := auth.CreateSession(w, user.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	logger.L().Info("user signed up", zap.Uint("user_id", user.ID))
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
