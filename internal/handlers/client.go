package handlers

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"autoparc/internal/httpx"
	"autoparc/internal/models"
	"autoparc/internal/validation"
)

// ClientHandler manages the client directory.
type ClientHandler struct {
	DB *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler { return &ClientHandler{DB: db} }

var clientSearchSafe = regexp.MustCompile(`[^a-zA-Z0-9À-ÿ \-_@.]`)

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	dbq := h.DB.WithContext(r.Context()).Order("created_at DESC")
	if query != "" {
		safe := clientSearchSafe.ReplaceAllString(query, "")
		like := "%" + strings.ToLower(safe) + "%"
		dbq = dbq.Where(
			"lower(nom) LIKE ? OR lower(prenom) LIKE ? OR lower(raison_sociale) LIKE ? OR lower(email) LIKE ?",
			like, like, like, like)
	}
	var clients []models.Client
	if err := dbq.Find(&clients).Error; err != nil {
		writeServiceError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": clients, "total": len(clients)})
		return
	}
	renderTemplate(w, r, "clients", map[string]any{"Clients": clients, "Query": query})
}

func (h *ClientHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var client models.Client
	err := h.DB.WithContext(r.Context()).
		Preload("Commandes").Preload("Commandes.Vehicule").
		First(&client, id).Error
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, client)
		return
	}
	renderTemplate(w, r, "client", map[string]any{"Client": client})
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}

	client := models.Client{
		Type:          models.TypeClient(r.FormValue("type")),
		Nom:           strings.TrimSpace(r.FormValue("nom")),
		Prenom:        strings.TrimSpace(r.FormValue("prenom")),
		RaisonSociale: strings.TrimSpace(r.FormValue("raison_sociale")),
		Email:         strings.ToLower(strings.TrimSpace(r.FormValue("email"))),
		Telephone:     strings.TrimSpace(r.FormValue("telephone")),
		Ville:         strings.TrimSpace(r.FormValue("ville")),
		Pays:          strings.TrimSpace(r.FormValue("pays")),
	}
	if client.Type == "" {
		client.Type = models.ClientParticulier
	}

	v := make(validation.Violations)
	if client.Type == models.ClientEntreprise {
		validation.Required("raison_sociale", client.RaisonSociale, v)
	} else {
		validation.Required("nom", client.Nom, v)
	}
	if !v.Empty() {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		renderTemplate(w, r, "clients", map[string]any{"Errors": v, "Query": ""})
		return
	}

	if err := h.DB.WithContext(r.Context()).Create(&client).Error; err != nil {
		writeServiceError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, client)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/clients/%d", client.ID), http.StatusSeeOther)
}
