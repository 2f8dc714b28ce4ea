package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"autoparc/internal/httpx"
	"autoparc/internal/models"
	"autoparc/internal/services"
)

// PieceHandler serves the spare parts screens.
type PieceHandler struct {
	DB  *gorm.DB
	Svc *services.PieceService
}

func NewPieceHandler(db *gorm.DB, svc *services.PieceService) *PieceHandler {
	return &PieceHandler{DB: db, Svc: svc}
}

func (h *PieceHandler) List(w http.ResponseWriter, r *http.Request) {
	dbq := h.DB.WithContext(r.Context()).Order("code")
	if v := r.URL.Query().Get("conteneur_id"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			dbq = dbq.Where("conteneur_id = ?", n)
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("traitement")); v != "" {
		dbq = dbq.Where("traitement = ?", v)
	}
	var pieces []models.PieceDetachee
	if err := dbq.Find(&pieces).Error; err != nil {
		writeServiceError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": pieces, "total": len(pieces)})
		return
	}
	renderTemplate(w, r, "pieces", map[string]any{"Pieces": pieces})
}

// SetTraitement moves a part between TRANSITE, VERIFIE and STOCKAGE.
func (h *PieceHandler) SetTraitement(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	t := strings.TrimSpace(r.FormValue("traitement"))
	if t == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_traitement", nil)
		return
	}
	piece, err := h.Svc.SetTraitement(r.Context(), id, models.EtapeTraitement(t))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, piece)
		return
	}
	http.Redirect(w, r, "/pieces", http.StatusSeeOther)
}

// SetVerification records a part's verification outcome.
func (h *PieceHandler) SetVerification(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	v := strings.TrimSpace(r.FormValue("verification"))
	if v == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_verification", nil)
		return
	}
	piece, err := h.Svc.SetVerification(r.Context(), id, models.StatutVerification(v))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, piece)
		return
	}
	http.Redirect(w, r, "/pieces", http.StatusSeeOther)
}
