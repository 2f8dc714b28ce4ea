// Package handlers contains the HTTP endpoints of the dashboard. Pages are
// server-rendered; every mutating endpoint also answers JSON when the
// client asks for it.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"autoparc/internal/auth"
	"autoparc/internal/gate"
	"autoparc/internal/httpx"
	"autoparc/internal/lifecycle"
	"autoparc/internal/logger"
	"autoparc/internal/services"
	"autoparc/internal/view"
)

// renderTemplate renders a page through the shared view layer.
func renderTemplate(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.Render(w, r, name+".html", data); err != nil {
		logger.L().Error("template render failed", zap.String("template", name), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("template error"))
	}
}

// userID returns the authenticated user of a request, if any.
func userID(r *http.Request) (uint, bool) {
	return auth.UserIDFromContext(r.Context())
}

// pathID parses the {id} path value of a request.
func pathID(r *http.Request) (uint, bool) {
	n, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || n <= 0 {
		return 0, false
	}
	return uint(n), true
}

// writeServiceError maps a service error onto an HTTP status. Validation
// failures are the caller's fault, transition and state conflicts are 409,
// everything unmapped is a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *services.ValidationError
	var terr *lifecycle.InvalidTransitionError
	var ferr *lifecycle.InvalidFlagTransitionError
	var cerr *services.ConflictError

	switch {
	case errors.As(err, &verr):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", verr.Violations)
	case errors.As(err, &terr):
		httpx.JSONError(w, http.StatusConflict, "invalid_transition", map[string]any{
			"from":    terr.From,
			"to":      terr.To,
			"allowed": terr.Allowed,
		})
	case errors.As(err, &ferr):
		httpx.JSONError(w, http.StatusConflict, "invalid_flag", map[string]any{
			"flag":  ferr.Flag,
			"etape": ferr.Etape,
		})
	case errors.As(err, &cerr):
		httpx.JSONError(w, http.StatusConflict, "conflict", map[string]any{"reason": cerr.Reason})
	case errors.Is(err, gate.ErrUnauthorized):
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
	case errors.Is(err, gorm.ErrRecordNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	default:
		logger.L().Error("request failed",
			zap.String("path", r.URL.Path), zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
