package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"autoparc/internal/blob"
	"autoparc/internal/httpx"
	"autoparc/internal/lifecycle"
	"autoparc/internal/models"
	"autoparc/internal/services"
)

// CommandeHandler serves the commande pages and lifecycle endpoints.
type CommandeHandler struct {
	DB    *gorm.DB
	Svc   *services.CommandeService
	Blobs blob.Store
}

func NewCommandeHandler(db *gorm.DB, svc *services.CommandeService, blobs blob.Store) *CommandeHandler {
	return &CommandeHandler{DB: db, Svc: svc, Blobs: blobs}
}

// List shows all commandes, optionally filtered by ?etape=.
func (h *CommandeHandler) List(w http.ResponseWriter, r *http.Request) {
	etape := models.EtapeCommande(strings.TrimSpace(r.URL.Query().Get("etape")))

	q := h.DB.WithContext(r.Context()).
		Preload("Client").Preload("Vehicule").
		Order("created_at DESC")
	if etape != "" {
		q = q.Where("etape = ?", etape)
	}
	var cmds []models.Commande
	if err := q.Find(&cmds).Error; err != nil {
		writeServiceError(w, r, err)
		return
	}

	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": cmds, "total": len(cmds)})
		return
	}
	renderTemplate(w, r, "commandes", map[string]any{
		"Commandes": cmds,
		"Etape":     string(etape),
		"Etapes":    lifecycle.EtapesCommande,
	})
}

// Show renders one commande with its relations.
func (h *CommandeHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var cmd models.Commande
	err := h.DB.WithContext(r.Context()).
		Preload("Client").Preload("Vehicule").Preload("Conteneur").
		Preload("Fournisseurs").Preload("Montage").Preload("Facture").
		First(&cmd, id).Error
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, cmd)
		return
	}
	renderTemplate(w, r, "commande", map[string]any{"Commande": cmd})
}

func (h *CommandeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateCommandeInput
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			ClientID          uint   `json:"client_id"`
			VehiculeID        *uint  `json:"vehicule_id"`
			CommandeGroupeeID *uint  `json:"commande_groupee_id"`
			NombrePortes      int    `json:"nombre_portes"`
			Transmission      string `json:"transmission"`
			Moteur            string `json:"moteur"`
			Couleur           string `json:"couleur"`
			DateLivraison     string `json:"date_livraison"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
		in = services.CreateCommandeInput{
			ClientID:          body.ClientID,
			VehiculeID:        body.VehiculeID,
			CommandeGroupeeID: body.CommandeGroupeeID,
			NombrePortes:      body.NombrePortes,
			Transmission:      models.Transmission(body.Transmission),
			Moteur:            models.Moteur(body.Moteur),
			Couleur:           body.Couleur,
		}
		in.DateLivraison, _ = time.Parse("2006-01-02", body.DateLivraison)
	} else {
		if err := r.ParseForm(); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
			return
		}
		clientID, _ := strconv.Atoi(r.FormValue("client_id"))
		portes, _ := strconv.Atoi(r.FormValue("nombre_portes"))
		in = services.CreateCommandeInput{
			ClientID:     uint(clientID),
			NombrePortes: portes,
			Transmission: models.Transmission(r.FormValue("transmission")),
			Moteur:       models.Moteur(r.FormValue("moteur")),
			Couleur:      r.FormValue("couleur"),
		}
		if v := r.FormValue("vehicule_id"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				vid := uint(n)
				in.VehiculeID = &vid
			}
		}
		if v := r.FormValue("commande_groupee_id"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				gid := uint(n)
				in.CommandeGroupeeID = &gid
			}
		}
		in.DateLivraison, _ = time.Parse("2006-01-02", r.FormValue("date_livraison"))
	}

	cmd, err := h.Svc.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, cmd)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/commandes/%d", cmd.ID), http.StatusSeeOther)
}

// Advance moves a commande to the requested target stage.
func (h *CommandeHandler) Advance(w http.ResponseWriter, r *http.Request) {
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

	cmd, err := h.Svc.Advance(r.Context(), id, models.EtapeCommande(target))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, cmd)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/commandes/%d", cmd.ID), http.StatusSeeOther)
}

// SetFlag toggles the availability flag.
func (h *CommandeHandler) SetFlag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	flag := r.FormValue("flag")
	if flag == "" && strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Flag string `json:"flag"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			flag = body.Flag
		}
	}
	if flag == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_flag", nil)
		return
	}

	cmd, err := h.Svc.SetFlag(r.Context(), id, models.FlagCommande(flag))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, cmd)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/commandes/%d", cmd.ID), http.StatusSeeOther)
}

func (h *CommandeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
		return
	}
	http.Redirect(w, r, "/commandes", http.StatusSeeOther)
}

// UploadFiche stores the fiche technique file and links it to the commande.
func (h *CommandeHandler) UploadFiche(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_multipart", nil)
		return
	}
	file, header, err := r.FormFile("fiche")
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "missing_file", nil)
		return
	}
	defer file.Close()

	var cmd models.Commande
	if err := h.DB.WithContext(r.Context()).First(&cmd, id).Error; err != nil {
		writeServiceError(w, r, err)
		return
	}

	url, err := h.Blobs.Store(r.Context(), header.Filename, file)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	old := cmd.FicheTechniqueURL
	if err := h.DB.WithContext(r.Context()).Model(&cmd).Update("fiche_technique_url", url).Error; err != nil {
		writeServiceError(w, r, err)
		return
	}
	if old != "" {
		_ = h.Blobs.Delete(r.Context(), old)
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"fiche_technique_url": url})
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/commandes/%d", id), http.StatusSeeOther)
}

// targetEtape reads the target stage from form or JSON body.
func targetEtape(r *http.Request) (string, bool) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Etape string `json:"etape"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.Etape != "" {
			return body.Etape, true
		}
		return "", false
	}
	if err := r.ParseForm(); err != nil {
		return "", false
	}
	target := strings.TrimSpace(r.FormValue("etape"))
	return target, target != ""
}
