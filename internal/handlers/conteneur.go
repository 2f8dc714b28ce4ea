package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"autoparc/internal/httpx"
	"autoparc/internal/lifecycle"
	"autoparc/internal/models"
	"autoparc/internal/services"
)

// ConteneurHandler serves the container pages, lifecycle endpoints and the
// bulk ARRIVE cascade.
type ConteneurHandler struct {
	DB  *gorm.DB
	Svc *services.ConteneurService
}

func NewConteneurHandler(db *gorm.DB, svc *services.ConteneurService) *ConteneurHandler {
	return &ConteneurHandler{DB: db, Svc: svc}
}

func (h *ConteneurHandler) List(w http.ResponseWriter, r *http.Request) {
	etape := models.EtapeConteneur(strings.TrimSpace(r.URL.Query().Get("etape")))

	q := h.DB.WithContext(r.Context()).Order("created_at DESC")
	if etape != "" {
		q = q.Where("etape = ?", etape)
	}
	var ctrs []models.Conteneur
	if err := q.Find(&ctrs).Error; err != nil {
		writeServiceError(w, r, err)
		return
	}

	// Days until probable arrival, for containers still at sea.
	now := time.Now()
	jours := make(map[uint]int, len(ctrs))
	for _, c := range ctrs {
		if c.DateArriveeProbable != nil && !c.EstArrive() {
			jours[c.ID] = services.JoursAvantArrivee(*c.DateArriveeProbable, now)
		}
	}

	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": ctrs, "total": len(ctrs)})
		return
	}
	renderTemplate(w, r, "conteneurs", map[string]any{
		"Conteneurs": ctrs,
		"Jours":      jours,
		"Etape":      string(etape),
		"Etapes":     lifecycle.EtapesConteneur,
	})
}

func (h *ConteneurHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var ctr models.Conteneur
	err := h.DB.WithContext(r.Context()).
		Preload("Commandes").Preload("Commandes.Client").Preload("Commandes.Vehicule").
		Preload("Subcases").Preload("Subcases.Pieces").Preload("Subcases.Outils").
		Preload("Verifications").
		First(&ctr, id).Error
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, ctr)
		return
	}
	renderTemplate(w, r, "conteneur", map[string]any{"Conteneur": ctr})
}

func (h *ConteneurHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateConteneurInput
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Numero       string  `json:"numero"`
			NumeroScelle string  `json:"numero_scelle"`
			NombreColis  int     `json:"nombre_colis"`
			PoidsBrut    float64 `json:"poids_brut"`
			PoidsNet     float64 `json:"poids_net"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
		in = services.CreateConteneurInput(body)
	} else {
		if err := r.ParseForm(); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
			return
		}
		colis, _ := strconv.Atoi(r.FormValue("nombre_colis"))
		brut, _ := strconv.ParseFloat(r.FormValue("poids_brut"), 64)
		net, _ := strconv.ParseFloat(r.FormValue("poids_net"), 64)
		in = services.CreateConteneurInput{
			Numero:       strings.TrimSpace(r.FormValue("numero")),
			NumeroScelle: strings.TrimSpace(r.FormValue("numero_scelle")),
			NombreColis:  colis,
			PoidsBrut:    brut,
			PoidsNet:     net,
		}
	}

	ctr, err := h.Svc.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, ctr)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/conteneurs/%d", ctr.ID), http.StatusSeeOther)
}

func (h *ConteneurHandler) Advance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	target, ok := targetEtape(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "missing_target", nil)
		return
	}

	ctr, err := h.Svc.Advance(r.Context(), id, models.EtapeConteneur(target))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, ctr)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/conteneurs/%d", ctr.ID), http.StatusSeeOther)
}

// Cascade advances every eligible commande of the container to ARRIVE.
func (h *ConteneurHandler) Cascade(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	res, err := h.Svc.CascadeArrive(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, res)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/conteneurs/%d", id), http.StatusSeeOther)
}

// CreateSubcase registers a subcase with its pieces and tools.
func (h *ConteneurHandler) CreateSubcase(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}

	var numero string
	var pieceIDs []uint
	var outils []services.OutilInput
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Numero   string                `json:"numero"`
			PieceIDs []uint                `json:"piece_ids"`
			Outils   []services.OutilInput `json:"outils"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
		numero, pieceIDs, outils = body.Numero, body.PieceIDs, body.Outils
	} else {
		if err := r.ParseForm(); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
			return
		}
		numero = strings.TrimSpace(r.FormValue("numero"))
		for _, v := range r.Form["piece_ids"] {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				pieceIDs = append(pieceIDs, uint(n))
			}
		}
	}

	sub, err := h.Svc.CreateSubcase(r.Context(), id, numero, pieceIDs, outils)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, sub)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/conteneurs/%d", id), http.StatusSeeOther)
}

// RecordVerification appends a verification pass on the container.
func (h *ConteneurHandler) RecordVerification(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	rec := models.VerificationConteneur{
		ConteneurID: id,
		Date:        time.Now(),
		Conforme:    r.FormValue("conforme") != "false",
		Remarques:   strings.TrimSpace(r.FormValue("remarques")),
	}
	if uid, ok := userID(r); ok {
		rec.UserID = uid
	}
	if err := h.Svc.RecordVerification(r.Context(), rec); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, rec)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/conteneurs/%d", id), http.StatusSeeOther)
}
