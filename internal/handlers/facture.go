package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"autoparc/internal/httpx"
	"autoparc/internal/models"
	"autoparc/internal/services"
)

// FactureHandler issues proformas and final invoices from a commande page.
type FactureHandler struct {
	DB  *gorm.DB
	Svc *services.FactureService
}

func NewFactureHandler(db *gorm.DB, svc *services.FactureService) *FactureHandler {
	return &FactureHandler{DB: db, Svc: svc}
}

// Create issues a facture against the commande in the path.
func (h *FactureHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}

	in := services.CreateFactureInput{CommandeID: id}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Type      string  `json:"type"`
			MontantHT float64 `json:"montant_ht"`
			TauxTVA   float64 `json:"taux_tva"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
		in.Type = models.TypeFacture(body.Type)
		in.MontantHT = body.MontantHT
		in.TauxTVA = body.TauxTVA
	} else {
		if err := r.ParseForm(); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
			return
		}
		in.Type = models.TypeFacture(r.FormValue("type"))
		in.MontantHT, _ = strconv.ParseFloat(r.FormValue("montant_ht"), 64)
		in.TauxTVA, _ = strconv.ParseFloat(r.FormValue("taux_tva"), 64)
	}
	if in.Type == "" {
		in.Type = models.FactureProforma
	}

	facture, err := h.Svc.CreateForCommande(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, facture)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/commandes/%d", id), http.StatusSeeOther)
}
