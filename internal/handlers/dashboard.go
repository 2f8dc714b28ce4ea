package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"autoparc/internal/httpx"
	"autoparc/internal/lifecycle"
	"autoparc/internal/models"
	"autoparc/internal/services"
)

// DashboardHandler renders the landing dashboard and the stock report.
// Each role sees the same data filtered to the stages it works on; the
// filtering is a read concern, the permission gate only guards mutations.
type DashboardHandler struct {
	DB *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler { return &DashboardHandler{DB: db} }

// etapesParRole maps a profile name to the stages its dashboard shows.
// Unknown profiles (and the superviseur/gerant) see everything.
var etapesParRole = map[string][]models.EtapeCommande{
	"commercial": {models.EtapeProposition, models.EtapeParking, models.EtapeVente},
	"comptable":  {models.EtapeValide, models.EtapeTransite, models.EtapeRenseignee, models.EtapeArrive},
	"chef-usine": {models.EtapeVerifier, models.EtapeMontage, models.EtapeTeste, models.EtapeCorrection},
	"magasinier": {models.EtapeArrive, models.EtapeVerifier},
}

// Home renders the per-stage board.
func (h *DashboardHandler) Home(w http.ResponseWriter, r *http.Request) {
	var cmds []models.Commande
	err := h.DB.WithContext(r.Context()).
		Preload("Client").Preload("Vehicule").
		Order("created_at DESC").
		Find(&cmds).Error
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	groups := services.GroupByEtape(cmds)
	etapes := lifecycle.EtapesCommande
	if name := h.profileName(r); name != "" {
		if scoped, ok := etapesParRole[name]; ok {
			etapes = scoped
		}
	}

	if httpx.WantsJSON(r) {
		out := make(map[string]int, len(groups))
		for etape, g := range groups {
			out[string(etape)] = len(g)
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"par_etape": out, "total": len(cmds)})
		return
	}
	renderTemplate(w, r, "dashboard", map[string]any{
		"Groupes": groups,
		"Etapes":  etapes,
		"Total":   len(cmds),
	})
}

// Stock renders the per-batch, per-model aggregation.
func (h *DashboardHandler) Stock(w http.ResponseWriter, r *http.Request) {
	var cmds []models.Commande
	err := h.DB.WithContext(r.Context()).
		Preload("Vehicule").Preload("CommandeGroupee").
		Find(&cmds).Error
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	report := services.AggregateCommandesGroupees(cmds)
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, report)
		return
	}
	renderTemplate(w, r, "stock", map[string]any{"Groupes": report})
}

func (h *DashboardHandler) profileName(r *http.Request) string {
	uid, ok := userID(r)
	if !ok {
		return ""
	}
	var user models.User
	if err := h.DB.WithContext(r.Context()).Preload("Profile").First(&user, uid).Error; err != nil {
		return ""
	}
	if user.Profile == nil {
		return ""
	}
	return user.Profile.Name
}
