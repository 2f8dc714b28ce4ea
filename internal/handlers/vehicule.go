package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"autoparc/internal/httpx"
	"autoparc/internal/models"
	"autoparc/internal/validation"
)

// VehiculeHandler manages the vehicle model catalogue.
type VehiculeHandler struct {
	DB *gorm.DB
}

func NewVehiculeHandler(db *gorm.DB) *VehiculeHandler { return &VehiculeHandler{DB: db} }

func (h *VehiculeHandler) List(w http.ResponseWriter, r *http.Request) {
	var vehicules []models.Vehicule
	err := h.DB.WithContext(r.Context()).Order("marque, modele").Find(&vehicules).Error
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": vehicules, "total": len(vehicules)})
		return
	}
	renderTemplate(w, r, "vehicules", map[string]any{"Vehicules": vehicules})
}

func (h *VehiculeHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	annee, _ := strconv.Atoi(r.FormValue("annee"))
	vehicule := models.Vehicule{
		Marque: strings.TrimSpace(r.FormValue("marque")),
		Modele: strings.TrimSpace(r.FormValue("modele")),
		Annee:  annee,
	}

	v := make(validation.Violations)
	validation.Required("marque", vehicule.Marque, v)
	validation.Required("modele", vehicule.Modele, v)
	if !v.Empty() {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		renderTemplate(w, r, "vehicules", map[string]any{"Errors": v})
		return
	}

	if err := h.DB.WithContext(r.Context()).Create(&vehicule).Error; err != nil {
		writeServiceError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, vehicule)
		return
	}
	http.Redirect(w, r, "/vehicules", http.StatusSeeOther)
}
