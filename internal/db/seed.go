package db

import (
	"fmt"

	"gorm.io/gorm"

	"autoparc/internal/gate"
	"autoparc/internal/lifecycle"
	"autoparc/internal/models"
)

// Seed inserts the permission rows and the role profiles. Safe to run
// repeatedly: existing rows are reused, profile permission sets are only
// written on first creation so runtime edits survive restarts.
func Seed(dbi *gorm.DB) error {
	perms, err := seedPermissions(dbi)
	if err != nil {
		return err
	}
	return seedProfiles(dbi, perms)
}

func seedPermissions(dbi *gorm.DB) (map[string]models.Permission, error) {
	type permDef struct {
		resource, action, desc string
	}
	defs := []permDef{
		{"*", "*", "accès total"},
	}
	for _, res := range []string{"commande", "conteneur", "piece", "client", "facture", "vehicule"} {
		defs = append(defs,
			permDef{res, string(gate.ActionView), ""},
			permDef{res, string(gate.ActionList), ""},
			permDef{res, string(gate.ActionCreate), ""},
			permDef{res, string(gate.ActionUpdate), ""},
		)
	}
	defs = append(defs,
		permDef{"commande", string(gate.ActionDelete), "suppression d'une commande sans référence"},
		permDef{"commande", string(gate.ActionFlag), "marquer disponible/vendu"},
		permDef{"conteneur", string(gate.ActionCascade), "cascade ARRIVE sur les commandes"},
	)
	// Stage-qualified advance permissions: the role-to-transition table.
	for _, etape := range lifecycle.EtapesCommande[1:] {
		defs = append(defs, permDef{"commande", string(gate.AdvanceAction(string(etape))), ""})
	}
	for _, etape := range lifecycle.EtapesConteneur[1:] {
		defs = append(defs, permDef{"conteneur", string(gate.AdvanceAction(string(etape))), ""})
	}

	out := make(map[string]models.Permission, len(defs))
	for _, d := range defs {
		key := d.resource + ":" + d.action
		if _, dup := out[key]; dup {
			continue
		}
		perm := models.Permission{ResourceType: d.resource, Action: d.action, Description: d.desc}
		err := dbi.Where("resource_type = ? AND action = ?", d.resource, d.action).
			FirstOrCreate(&perm).Error
		if err != nil {
			return nil, fmt.Errorf("seed permission %s: %w", key, err)
		}
		out[key] = perm
	}
	return out, nil
}

func seedProfiles(dbi *gorm.DB, perms map[string]models.Permission) error {
	advance := func(etape models.EtapeCommande) string {
		return "commande:" + string(gate.AdvanceAction(string(etape)))
	}
	advanceCtr := func(etape models.EtapeConteneur) string {
		return "conteneur:" + string(gate.AdvanceAction(string(etape)))
	}

	profiles := []struct {
		name, desc string
		system     bool
		permKeys   []string
	}{
		{
			name: "commercial",
			desc: "création des commandes et suivi des ventes",
			permKeys: []string{
				"commande:view", "commande:list", "commande:create", "commande:delete",
				"commande:flag", advance(models.EtapeVente),
				"client:view", "client:list", "client:create", "client:update",
				"vehicule:view", "vehicule:list",
			},
		},
		{
			name: "comptable",
			desc: "validation, transit et facturation",
			permKeys: []string{
				"commande:view", "commande:list",
				advance(models.EtapeValide), advance(models.EtapeTransite),
				advance(models.EtapeRenseignee), advance(models.EtapeArrive),
				"facture:view", "facture:list", "facture:create", "facture:update",
				"conteneur:view", "conteneur:list",
			},
		},
		{
			name: "chef-usine",
			desc: "atelier: montage, tests, corrections",
			permKeys: []string{
				"commande:view", "commande:list",
				advance(models.EtapeMontage), advance(models.EtapeTeste),
				advance(models.EtapeCorrection), advance(models.EtapeParking),
				"piece:view", "piece:list",
			},
		},
		{
			name: "magasinier",
			desc: "conteneurs, déchargement et pièces détachées",
			permKeys: []string{
				"conteneur:view", "conteneur:list", "conteneur:create", "conteneur:update",
				"conteneur:cascade",
				advanceCtr(models.ConteneurCharge), advanceCtr(models.ConteneurTransite),
				advanceCtr(models.ConteneurRenseigne), advanceCtr(models.ConteneurArrive),
				advanceCtr(models.ConteneurDecharge), advanceCtr(models.ConteneurVerifie),
				"piece:view", "piece:list", "piece:create", "piece:update",
				"commande:view", "commande:list", advance(models.EtapeVerifier),
			},
		},
		{
			name: "superviseur",
			desc: "lecture complète de toutes les vues",
			permKeys: []string{
				"commande:view", "commande:list",
				"conteneur:view", "conteneur:list",
				"piece:view", "piece:list",
				"client:view", "client:list",
				"facture:view", "facture:list",
				"vehicule:view", "vehicule:list",
			},
		},
		{
			name:     "gerant",
			desc:     "administrateur",
			system:   true,
			permKeys: []string{"*:*"},
		},
	}

	for _, p := range profiles {
		var existing models.Profile
		err := dbi.Where("name = ?", p.name).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("lookup profile %s: %w", p.name, err)
		}

		profile := models.Profile{Name: p.name, Description: p.desc, IsSystem: p.system}
		for _, key := range p.permKeys {
			perm, ok := perms[key]
			if !ok {
				return fmt.Errorf("profile %s references unseeded permission %s", p.name, key)
			}
			profile.Permissions = append(profile.Permissions, perm)
		}
		if err := dbi.Create(&profile).Error; err != nil {
			return fmt.Errorf("seed profile %s: %w", p.name, err)
		}
	}
	return nil
}
