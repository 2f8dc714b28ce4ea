package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoparc/internal/lifecycle"
	"autoparc/internal/models"
)

func seedConteneur(t *testing.T, svc *ConteneurService, numero string) *models.Conteneur {
	t.Helper()
	ctr, err := svc.Create(context.Background(), CreateConteneurInput{Numero: numero, NombreColis: 12})
	require.NoError(t, err)
	return ctr
}

func TestCreateConteneur(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewConteneurService(db, AllowAll{})

	ctr := seedConteneur(t, svc, "MSKU-200")
	assert.Equal(t, models.ConteneurEnAttente, ctr.Etape)

	_, err := svc.Create(context.Background(), CreateConteneurInput{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Violations, "numero")
}

func TestAdvanceConteneurForwardOnly(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewConteneurService(db, AllowAll{})
	ctx := context.Background()

	ctr := seedConteneur(t, svc, "MSKU-201")

	_, err := svc.MarkArrive(ctx, ctr.ID)
	var terr *lifecycle.InvalidTransitionError
	require.ErrorAs(t, err, &terr, "EN_ATTENTE cannot jump to ARRIVE")

	for _, next := range lifecycle.EtapesConteneur[1:] {
		ctr, err = svc.Advance(ctx, ctr.ID, next)
		require.NoError(t, err, "advance to %s", next)
	}
	assert.Equal(t, models.ConteneurVerifie, ctr.Etape)

	_, err = svc.Advance(ctx, ctr.ID, models.ConteneurArrive)
	require.ErrorAs(t, err, &terr, "no going back from terminal stage")
}

func TestCascadeArriveRequiresArrivedConteneur(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewConteneurService(db, AllowAll{})

	ctr := seedConteneur(t, svc, "MSKU-202")
	_, err := svc.CascadeArrive(context.Background(), ctr.ID)
	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
}

func TestCascadeArrive(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewConteneurService(db, AllowAll{})
	ctx := context.Background()

	ctr := seedConteneur(t, svc, "MSKU-203")
	require.NoError(t, db.Model(ctr).Update("etape", models.ConteneurArrive).Error)

	client := seedClient(t, db)
	stages := []models.EtapeCommande{
		models.EtapeTransite,
		models.EtapeRenseignee,
		models.EtapeArrive,
		models.EtapeMontage,
	}
	ids := make([]uint, 0, len(stages))
	for _, etape := range stages {
		cmd := models.Commande{
			ClientID:      client.ID,
			NombrePortes:  4,
			Transmission:  models.TransmissionManuelle,
			Moteur:        models.MoteurDiesel,
			Couleur:       "Blanc",
			Etape:         etape,
			Flag:          models.FlagDisponible,
			ConteneurID:   &ctr.ID,
			DateLivraison: ctr.CreatedAt,
		}
		require.NoError(t, db.Create(&cmd).Error)
		ids = append(ids, cmd.ID)
	}

	res, err := svc.CascadeArrive(ctx, ctr.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Advanced, "TRANSITE and RENSEIGNEE advance")
	assert.Equal(t, 2, res.Skipped, "ARRIVE and MONTAGE are left alone")

	var cmds []models.Commande
	require.NoError(t, db.Where("id IN ?", ids[:3]).Find(&cmds).Error)
	for _, c := range cmds {
		assert.Equal(t, models.EtapeArrive, c.Etape)
	}
	var untouched models.Commande
	require.NoError(t, db.First(&untouched, ids[3]).Error)
	assert.Equal(t, models.EtapeMontage, untouched.Etape)

	// Re-running the cascade is a no-op, not an error.
	res, err = svc.CascadeArrive(ctx, ctr.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Advanced)
	assert.Equal(t, 4, res.Skipped)
}

func TestCreateSubcase(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewConteneurService(db, AllowAll{})
	ctx := context.Background()

	ctr := seedConteneur(t, svc, "MSKU-204")

	pieces := []models.PieceDetachee{
		{Code: "P-001", Nom: "Filtre à huile", Quantite: 10, ConteneurID: &ctr.ID},
		{Code: "P-002", Nom: "Plaquettes", Quantite: 4, ConteneurID: &ctr.ID},
	}
	for i := range pieces {
		require.NoError(t, db.Create(&pieces[i]).Error)
	}

	sub, err := svc.CreateSubcase(ctx, ctr.ID, "SC-1",
		[]uint{pieces[0].ID, pieces[1].ID},
		[]OutilInput{{Code: "T-01", Nom: "Clé dynamométrique"}, {Code: "T-02", Nom: "Cric", Quantite: 2}})
	require.NoError(t, err)

	attached, err := NewPieceService(db, AllowAll{}).ParSubcase(ctx, sub.ID)
	require.NoError(t, err)
	assert.Len(t, attached, 2)

	var outils []models.Outil
	require.NoError(t, db.Where("subcase_id = ?", sub.ID).Order("code").Find(&outils).Error)
	require.Len(t, outils, 2)
	assert.Equal(t, 1, outils[0].Quantite, "missing quantity defaults to 1")
	assert.Equal(t, 2, outils[1].Quantite)

	_, err = svc.CreateSubcase(ctx, ctr.ID, "SC-1", nil, nil)
	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr, "duplicate numero within the conteneur")

	other := seedConteneur(t, svc, "MSKU-205")
	_, err = svc.CreateSubcase(ctx, other.ID, "SC-1", nil, nil)
	require.NoError(t, err, "same numero in another conteneur is fine")
}

func TestPieceTraitementAndVerification(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewPieceService(db, AllowAll{})
	ctx := context.Background()

	piece := models.PieceDetachee{Code: "P-100", Nom: "Alternateur", Quantite: 1}
	require.NoError(t, db.Create(&piece).Error)

	updated, err := svc.SetTraitement(ctx, piece.ID, models.TraitementStockage)
	require.NoError(t, err)
	assert.True(t, updated.EnStock())

	updated, err = svc.SetVerification(ctx, piece.ID, models.VerificationRejete)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationRejete, updated.Verification)
	assert.True(t, updated.EnStock(), "verification does not touch the processing stage")
}
