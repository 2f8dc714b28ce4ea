package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"autoparc/internal/lifecycle"
	"autoparc/internal/models"
)

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:svc_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.Client{}, &models.Vehicule{}, &models.CommandeGroupee{},
		&models.Fournisseur{}, &models.Commande{}, &models.Montage{},
		&models.Conteneur{}, &models.Subcase{}, &models.Outil{},
		&models.VerificationConteneur{}, &models.PieceDetachee{},
		&models.Facture{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedClient(t *testing.T, db *gorm.DB) models.Client {
	t.Helper()
	client := models.Client{Type: models.ClientParticulier, Nom: "Diallo", Prenom: "Aminata"}
	require.NoError(t, db.Create(&client).Error)
	return client
}

func validInput(clientID uint) CreateCommandeInput {
	return CreateCommandeInput{
		ClientID:      clientID,
		NombrePortes:  4,
		Transmission:  models.TransmissionAutomatique,
		Moteur:        models.MoteurEssence,
		Couleur:       "Rouge",
		DateLivraison: time.Now().AddDate(0, 2, 0),
	}
}

func TestCreateCommande(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewCommandeService(db, AllowAll{})
	client := seedClient(t, db)

	cmd, err := svc.Create(context.Background(), validInput(client.ID))
	require.NoError(t, err)
	assert.Equal(t, models.EtapeProposition, cmd.Etape)
	assert.Equal(t, models.FlagDisponible, cmd.Flag)
	assert.Equal(t, client.ID, cmd.ClientID)
}

func TestCreateCommandeValidation(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewCommandeService(db, AllowAll{})

	_, err := svc.Create(context.Background(), CreateCommandeInput{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Violations, "client_id")
	assert.Contains(t, verr.Violations, "couleur")
	assert.Contains(t, verr.Violations, "nombre_portes")
	assert.Contains(t, verr.Violations, "date_livraison")
}

func TestCreateCommandeUnknownClient(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewCommandeService(db, AllowAll{})

	_, err := svc.Create(context.Background(), validInput(9999))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "unknown_reference", verr.Violations["client_id"])
}

func TestAdvanceCommandeFullLifecycle(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewCommandeService(db, AllowAll{})
	client := seedClient(t, db)

	cmd, err := svc.Create(context.Background(), validInput(client.ID))
	require.NoError(t, err)

	for _, next := range lifecycle.EtapesCommande[1:] {
		cmd, err = svc.Advance(context.Background(), cmd.ID, next)
		require.NoError(t, err, "advance to %s", next)
		assert.Equal(t, next, cmd.Etape)
	}
	assert.Equal(t, models.EtapeVente, cmd.Etape)
}

func TestAdvanceCommandeRejectsSkip(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewCommandeService(db, AllowAll{})
	client := seedClient(t, db)

	cmd, err := svc.Create(context.Background(), validInput(client.ID))
	require.NoError(t, err)

	_, err = svc.Advance(context.Background(), cmd.ID, models.EtapeMontage)
	var terr *lifecycle.InvalidTransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, string(models.EtapeProposition), terr.From)

	var reloaded models.Commande
	require.NoError(t, db.First(&reloaded, cmd.ID).Error)
	assert.Equal(t, models.EtapeProposition, reloaded.Etape, "rejected transition must not persist")
}

func TestAdvanceCommandeCorrectionLoop(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewCommandeService(db, AllowAll{})
	client := seedClient(t, db)

	cmd, err := svc.Create(context.Background(), validInput(client.ID))
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Commande{}).Where("id = ?", cmd.ID).
		Update("etape", models.EtapeMontage).Error)

	cmd, err = svc.Advance(context.Background(), cmd.ID, models.EtapeCorrection)
	require.NoError(t, err)
	cmd, err = svc.Advance(context.Background(), cmd.ID, models.EtapeMontage)
	require.NoError(t, err)
	cmd, err = svc.Advance(context.Background(), cmd.ID, models.EtapeTeste)
	require.NoError(t, err)
	assert.Equal(t, models.EtapeTeste, cmd.Etape)
}

func TestSetFlagVenduOnlyAtVente(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewCommandeService(db, AllowAll{})
	client := seedClient(t, db)

	cmd, err := svc.Create(context.Background(), validInput(client.ID))
	require.NoError(t, err)

	_, err = svc.SetFlag(context.Background(), cmd.ID, models.FlagVendu)
	var ferr *lifecycle.InvalidFlagTransitionError
	require.ErrorAs(t, err, &ferr)

	require.NoError(t, db.Model(&models.Commande{}).Where("id = ?", cmd.ID).
		Update("etape", models.EtapeVente).Error)

	cmd, err = svc.SetFlag(context.Background(), cmd.ID, models.FlagVendu)
	require.NoError(t, err)
	assert.True(t, cmd.EstVendue())
}

func TestDeleteCommandeConflicts(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewCommandeService(db, AllowAll{})
	client := seedClient(t, db)
	ctx := context.Background()

	ctr := models.Conteneur{Numero: "MSKU-100", Etape: models.ConteneurEnAttente}
	require.NoError(t, db.Create(&ctr).Error)

	assigned, err := svc.Create(ctx, validInput(client.ID))
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Commande{}).Where("id = ?", assigned.ID).
		Update("conteneur_id", ctr.ID).Error)

	var cerr *ConflictError
	require.ErrorAs(t, svc.Delete(ctx, assigned.ID), &cerr)

	invoiced, err := svc.Create(ctx, validInput(client.ID))
	require.NoError(t, err)
	facture := models.Facture{CommandeID: invoiced.ID, Numero: "FAC-2026-0001", Type: models.FactureProforma}
	require.NoError(t, db.Create(&facture).Error)
	require.ErrorAs(t, svc.Delete(ctx, invoiced.ID), &cerr)

	free, err := svc.Create(ctx, validInput(client.ID))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, free.ID))

	var gone models.Commande
	err = db.First(&gone, free.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound, "soft delete hides the row")
}

func TestParEtape(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewCommandeService(db, AllowAll{})
	client := seedClient(t, db)
	ctx := context.Background()

	a, err := svc.Create(ctx, validInput(client.ID))
	require.NoError(t, err)
	_, err = svc.Create(ctx, validInput(client.ID))
	require.NoError(t, err)
	_, err = svc.Advance(ctx, a.ID, models.EtapeValide)
	require.NoError(t, err)

	props, err := svc.ParEtape(ctx, models.EtapeProposition)
	require.NoError(t, err)
	assert.Len(t, props, 1)

	valides, err := svc.ParEtape(ctx, models.EtapeValide)
	require.NoError(t, err)
	require.Len(t, valides, 1)
	require.NotNil(t, valides[0].Client)
	assert.Equal(t, "Aminata Diallo", valides[0].Client.NomAffiche())
}
