package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"autoparc/internal/gate"
	"autoparc/internal/logger"
	"autoparc/internal/models"
	"autoparc/internal/validation"
)

// FactureService issues proformas and final invoices against commandes.
type FactureService struct {
	db    *gorm.DB
	authz Authorizer
}

func NewFactureService(db *gorm.DB, authz Authorizer) *FactureService {
	return &FactureService{db: db, authz: authz}
}

// CreateFactureInput carries the amounts of a new facture or proforma.
type CreateFactureInput struct {
	CommandeID uint
	Type       models.TypeFacture
	MontantHT  float64
	TauxTVA    float64
}

// CreateForCommande issues a facture against a commande. A proforma can be
// issued at any stage; the final facture only once the commande reached
// VENTE. One facture per commande.
func (s *FactureService) CreateForCommande(ctx context.Context, in CreateFactureInput) (*models.Facture, error) {
	if err := s.authz.Authorize(ctx, gate.ActionCreate, "facture", nil); err != nil {
		return nil, err
	}

	v := make(validation.Violations)
	validation.PositiveFloat("montant_ht", in.MontantHT, v)
	if in.TauxTVA < 0 || in.TauxTVA >= 1 {
		v["taux_tva"] = "out_of_range"
	}
	if in.Type != models.FactureProforma && in.Type != models.FactureFinale {
		v["type"] = "required"
	}
	if !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}

	var facture models.Facture
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cmd models.Commande
		if err := tx.First(&cmd, in.CommandeID).Error; err != nil {
			return fmt.Errorf("load commande %d: %w", in.CommandeID, err)
		}
		if in.Type == models.FactureFinale && cmd.Etape != models.EtapeVente {
			return &ConflictError{Reason: "facture requires a commande at VENTE"}
		}
		var existing int64
		if err := tx.Model(&models.Facture{}).Where("commande_id = ?", cmd.ID).Count(&existing).Error; err != nil {
			return fmt.Errorf("count factures: %w", err)
		}
		if existing > 0 {
			return &ConflictError{Reason: "commande already has a facture"}
		}

		now := time.Now()
		numero, err := models.GenerateNumeroFacture(tx, now.Year())
		if err != nil {
			return fmt.Errorf("generate numero: %w", err)
		}
		facture = models.Facture{
			CommandeID: cmd.ID,
			Numero:     numero,
			Type:       in.Type,
			MontantHT:  in.MontantHT,
			TauxTVA:    in.TauxTVA,
			MontantTTC: in.MontantHT * (1 + in.TauxTVA),
			Date:       now,
		}
		if err := tx.Create(&facture).Error; err != nil {
			return fmt.Errorf("create facture: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.L().Info("facture created",
		zap.Uint("commande_id", facture.CommandeID),
		zap.String("numero", facture.Numero),
		zap.String("type", string(facture.Type)))
	return &facture, nil
}

// ParCommande returns the facture of a commande, if any.
func (s *FactureService) ParCommande(ctx context.Context, commandeID uint) (*models.Facture, error) {
	var facture models.Facture
	err := s.db.WithContext(ctx).Where("commande_id = ?", commandeID).First(&facture).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load facture for commande %d: %w", commandeID, err)
	}
	return &facture, nil
}
