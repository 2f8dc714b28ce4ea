package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoparc/internal/models"
)

func cmdWith(modele, couleur string, flag models.FlagCommande) models.Commande {
	var v *models.Vehicule
	if modele != "" {
		v = &models.Vehicule{Modele: modele}
	}
	return models.Commande{
		Vehicule:     v,
		Couleur:      couleur,
		Moteur:       models.MoteurEssence,
		Transmission: models.TransmissionManuelle,
		Flag:         flag,
	}
}

func TestGroupByEtape(t *testing.T) {
	cmds := []models.Commande{
		{Etape: models.EtapeMontage},
		{Etape: models.EtapeMontage},
		{Etape: models.EtapeVente},
	}
	groups := GroupByEtape(cmds)
	assert.Len(t, groups, 2)
	assert.Len(t, groups[models.EtapeMontage], 2)
	assert.Len(t, groups[models.EtapeVente], 1)
	_, ok := groups[models.EtapeParking]
	assert.False(t, ok, "empty groups must be omitted")
}

func TestAggregateCaseInsensitiveCouleur(t *testing.T) {
	cmds := []models.Commande{
		cmdWith("Tunland", "Rouge", models.FlagDisponible),
		cmdWith("Tunland", "rouge", models.FlagVendu),
		cmdWith("Sauvana", "Bleu", models.FlagDisponible),
	}

	out := AggregateCommandesGroupees(cmds)
	require.Len(t, out, 1)
	require.Len(t, out[0].Modeles, 2)

	sauvana := out[0].Modeles[0]
	tunland := out[0].Modeles[1]
	assert.Equal(t, "Sauvana", sauvana.Modele)
	assert.Equal(t, "Tunland", tunland.Modele)

	assert.Equal(t, 2, tunland.Stock)
	assert.Equal(t, 1, tunland.Vendus)
	assert.Equal(t, 1, tunland.Disponibles)
	require.Len(t, tunland.Details, 1)
	assert.Equal(t, "Rouge", tunland.Details[0].Couleur, "first-seen casing wins")
	assert.Equal(t, 2, tunland.Details[0].Count)

	assert.Equal(t, 1, sauvana.Stock)
	assert.Equal(t, 0, sauvana.Vendus)
	assert.Equal(t, 1, sauvana.Disponibles)
}

func TestAggregateModeleInconnu(t *testing.T) {
	cmds := []models.Commande{
		cmdWith("", "Noir", models.FlagDisponible),
		cmdWith("", "Blanc", models.FlagDisponible),
	}
	out := AggregateCommandesGroupees(cmds)
	require.Len(t, out, 1)
	require.Len(t, out[0].Modeles, 1)
	assert.Equal(t, ModeleInconnu, out[0].Modeles[0].Modele)
	assert.Equal(t, 2, out[0].Modeles[0].Stock)
}

func TestAggregatePartitionsByGroupe(t *testing.T) {
	g1, g2 := uint(1), uint(2)
	a := cmdWith("Tunland", "Gris", models.FlagDisponible)
	a.CommandeGroupeeID = &g1
	b := cmdWith("Tunland", "Gris", models.FlagDisponible)
	b.CommandeGroupeeID = &g2
	c := cmdWith("Tunland", "Gris", models.FlagDisponible)

	out := AggregateCommandesGroupees([]models.Commande{a, b, c})
	require.Len(t, out, 3)
	assert.Equal(t, uint(0), out[0].GroupeID)
	assert.Equal(t, g1, out[1].GroupeID)
	assert.Equal(t, g2, out[2].GroupeID)
	for _, g := range out {
		assert.Equal(t, 1, g.Modeles[0].Stock)
	}
}

func TestAggregateDeterministic(t *testing.T) {
	cmds := []models.Commande{
		cmdWith("Zeta", "vert", models.FlagVendu),
		cmdWith("Alpha", "Rouge", models.FlagDisponible),
		cmdWith("Alpha", "bleu", models.FlagDisponible),
		cmdWith("Zeta", "Vert", models.FlagDisponible),
		cmdWith("", "Noir", models.FlagVendu),
	}
	first := AggregateCommandesGroupees(cmds)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, AggregateCommandesGroupees(cmds))
	}
}

func TestAggregateArithmetic(t *testing.T) {
	cmds := []models.Commande{
		cmdWith("Alpha", "Rouge", models.FlagDisponible),
		cmdWith("Alpha", "Rouge", models.FlagVendu),
		cmdWith("Alpha", "Bleu", models.FlagVendu),
		cmdWith("Beta", "Gris", models.FlagDisponible),
	}
	out := AggregateCommandesGroupees(cmds)
	for _, g := range out {
		for _, m := range g.Modeles {
			assert.Equal(t, m.Stock, m.Vendus+m.Disponibles, m.Modele)
			sum := 0
			for _, d := range m.Details {
				sum += d.Count
			}
			assert.Equal(t, m.Stock, sum, m.Modele)
		}
	}
}

func TestJoursAvantArrivee(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, JoursAvantArrivee(now, now))
	assert.Equal(t, 5, JoursAvantArrivee(now.AddDate(0, 0, 5), now))
	assert.Equal(t, 1, JoursAvantArrivee(now.Add(6*time.Hour), now), "partial day rounds up")
	assert.Equal(t, -2, JoursAvantArrivee(now.AddDate(0, 0, -2), now))
}
