package services

import (
	"math"
	"sort"
	"strings"
	"time"

	"autoparc/internal/models"
)

// ModeleInconnu labels commandes whose vehicle model is not yet
// catalogued in the aggregate report.
const ModeleInconnu = "Modèle Inconnu"

// The aggregation below is pure: it runs on a caller-supplied snapshot,
// performs no I/O, and returns identical output for identical input.

// GroupByEtape groups commandes by lifecycle stage. Empty groups are
// omitted. Every role dashboard is a read-side filter over this map.
func GroupByEtape(cmds []models.Commande) map[models.EtapeCommande][]models.Commande {
	out := make(map[models.EtapeCommande][]models.Commande)
	for _, c := range cmds {
		out[c.Etape] = append(out[c.Etape], c)
	}
	return out
}

// DetailVariante is one (couleur, moteur, transmission) tuple with its
// count inside a model bucket. Couleur keeps the first-seen casing;
// merging is case-insensitive.
type DetailVariante struct {
	Couleur      string              `json:"couleur"`
	Moteur       models.Moteur       `json:"moteur"`
	Transmission models.Transmission `json:"transmission"`
	Count        int                 `json:"count"`
}

// ModeleAggregate is the per-model stock summary within a batch.
type ModeleAggregate struct {
	Modele      string           `json:"modele"`
	Stock       int              `json:"stock"`
	Vendus      int              `json:"vendus"`
	Disponibles int              `json:"disponibles"`
	Details     []DetailVariante `json:"details"`
}

// GroupeAggregate is the aggregate of one commande groupée batch.
// GroupeID 0 collects commandes that belong to no batch.
type GroupeAggregate struct {
	GroupeID  uint              `json:"groupe_id"`
	Reference string            `json:"reference,omitempty"`
	Modeles   []ModeleAggregate `json:"modeles"`
}

type varianteKey struct {
	couleur      string
	moteur       models.Moteur
	transmission models.Transmission
}

// AggregateCommandesGroupees partitions commandes by batch, then by model
// name, and computes stock/sold/available tallies plus the per-variant
// breakdown. Output ordering is fully determined by the input values, so
// two calls on the same snapshot return deep-equal results.
func AggregateCommandesGroupees(cmds []models.Commande) []GroupeAggregate {
	type modeleAcc struct {
		agg     *ModeleAggregate
		details map[varianteKey]int
		casing  map[varianteKey]string
	}
	type groupeAcc struct {
		reference string
		modeles   map[string]*modeleAcc
	}

	groupes := make(map[uint]*groupeAcc)
	for _, c := range cmds {
		var gid uint
		var ref string
		if c.CommandeGroupeeID != nil {
			gid = *c.CommandeGroupeeID
		}
		if c.CommandeGroupee != nil {
			ref = c.CommandeGroupee.Reference
		}
		g, ok := groupes[gid]
		if !ok {
			g = &groupeAcc{reference: ref, modeles: make(map[string]*modeleAcc)}
			groupes[gid] = g
		}

		modele := c.NomModele()
		if modele == "" {
			modele = ModeleInconnu
		}
		m, ok := g.modeles[modele]
		if !ok {
			m = &modeleAcc{
				agg:     &ModeleAggregate{Modele: modele},
				details: make(map[varianteKey]int),
				casing:  make(map[varianteKey]string),
			}
			g.modeles[modele] = m
		}

		m.agg.Stock++
		switch c.Flag {
		case models.FlagVendu:
			m.agg.Vendus++
		case models.FlagDisponible:
			m.agg.Disponibles++
		}

		key := varianteKey{
			couleur:      strings.ToLower(c.Couleur),
			moteur:       c.Moteur,
			transmission: c.Transmission,
		}
		if _, seen := m.casing[key]; !seen {
			m.casing[key] = c.Couleur
		}
		m.details[key]++
	}

	out := make([]GroupeAggregate, 0, len(groupes))
	for gid, g := range groupes {
		ga := GroupeAggregate{GroupeID: gid, Reference: g.reference}
		for _, m := range g.modeles {
			for key, count := range m.details {
				m.agg.Details = append(m.agg.Details, DetailVariante{
					Couleur:      m.casing[key],
					Moteur:       key.moteur,
					Transmission: key.transmission,
					Count:        count,
				})
			}
			sort.Slice(m.agg.Details, func(i, j int) bool {
				a, b := m.agg.Details[i], m.agg.Details[j]
				ca, cb := strings.ToLower(a.Couleur), strings.ToLower(b.Couleur)
				if ca != cb {
					return ca < cb
				}
				if a.Moteur != b.Moteur {
					return a.Moteur < b.Moteur
				}
				return a.Transmission < b.Transmission
			})
			ga.Modeles = append(ga.Modeles, *m.agg)
		}
		sort.Slice(ga.Modeles, func(i, j int) bool {
			return ga.Modeles[i].Modele < ga.Modeles[j].Modele
		})
		out = append(out, ga)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GroupeID < out[j].GroupeID })
	return out
}

// JoursAvantArrivee returns the number of whole days between now and the
// probable arrival date, rounding partial days up. Negative once the date
// has passed.
func JoursAvantArrivee(target, now time.Time) int {
	return int(math.Ceil(target.Sub(now).Hours() / 24))
}
