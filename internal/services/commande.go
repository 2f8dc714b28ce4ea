package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"autoparc/internal/gate"
	"autoparc/internal/lifecycle"
	"autoparc/internal/logger"
	"autoparc/internal/models"
	"autoparc/internal/validation"
)

// Authorizer is the injected permission check consulted by the services
// before every mutation. *policy.AuthGate satisfies it.
type Authorizer interface {
	Authorize(ctx context.Context, action gate.Action, resourceType string, resource any) error
}

// AllowAll is an Authorizer that permits everything; used in tests and
// one-off maintenance commands.
type AllowAll struct{}

func (AllowAll) Authorize(context.Context, gate.Action, string, any) error { return nil }

// CommandeService owns the commande lifecycle: creation, stage
// transitions, the availability flag and deletion. Every mutation runs in
// one transaction so a rejected transition leaves no partial state.
type CommandeService struct {
	db    *gorm.DB
	authz Authorizer
}

func NewCommandeService(db *gorm.DB, authz Authorizer) *CommandeService {
	return &CommandeService{db: db, authz: authz}
}

// CreateCommandeInput carries the attributes of a new commande.
type CreateCommandeInput struct {
	ClientID          uint
	VehiculeID        *uint
	CommandeGroupeeID *uint
	NombrePortes      int
	Transmission      models.Transmission
	Moteur            models.Moteur
	Couleur           string
	DateLivraison     time.Time
}

// Create registers a new commande at stage PROPOSITION.
func (s *CommandeService) Create(ctx context.Context, in CreateCommandeInput) (*models.Commande, error) {
	if err := s.authz.Authorize(ctx, gate.ActionCreate, "commande", nil); err != nil {
		return nil, err
	}

	v := make(validation.Violations)
	validation.PositiveInt("nombre_portes", in.NombrePortes, v)
	validation.Required("couleur", in.Couleur, v)
	validation.RequiredDate("date_livraison", in.DateLivraison, v)
	if in.ClientID == 0 {
		v["client_id"] = "required"
	} else {
		var client models.Client
		if err := s.db.WithContext(ctx).First(&client, in.ClientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				v["client_id"] = "unknown_reference"
			} else {
				return nil, fmt.Errorf("resolve client: %w", err)
			}
		}
	}
	if !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}

	cmd := models.Commande{
		ClientID:          in.ClientID,
		VehiculeID:        in.VehiculeID,
		CommandeGroupeeID: in.CommandeGroupeeID,
		NombrePortes:      in.NombrePortes,
		Transmission:      in.Transmission,
		Moteur:            in.Moteur,
		Couleur:           in.Couleur,
		DateLivraison:     in.DateLivraison,
		Etape:             models.EtapeProposition,
		Flag:              models.FlagDisponible,
	}
	if err := s.db.WithContext(ctx).Create(&cmd).Error; err != nil {
		return nil, fmt.Errorf("create commande: %w", err)
	}

	logger.L().Info("commande created",
		zap.Uint("commande_id", cmd.ID),
		zap.Uint("client_id", cmd.ClientID))
	return &cmd, nil
}

// Advance moves a commande to target if the transition table allows it.
// The current stage is re-read inside the transaction, so racing calls
// serialize at the database and the loser fails the successor check.
func (s *CommandeService) Advance(ctx context.Context, id uint, target models.EtapeCommande) (*models.Commande, error) {
	if err := s.authz.Authorize(ctx, gate.AdvanceAction(string(target)), "commande", nil); err != nil {
		return nil, err
	}

	var cmd models.Commande
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&cmd, id).Error; err != nil {
			return fmt.Errorf("load commande %d: %w", id, err)
		}
		if err := lifecycle.CheckAdvanceCommande(cmd.Etape, target); err != nil {
			return err
		}
		from := cmd.Etape
		cmd.Etape = target
		if err := tx.Model(&cmd).Update("etape", target).Error; err != nil {
			return fmt.Errorf("update commande %d: %w", id, err)
		}
		logger.L().Info("commande advanced",
			zap.Uint("commande_id", cmd.ID),
			zap.String("from", string(from)),
			zap.String("to", string(target)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cmd, nil
}

// SetFlag sets the availability flag. VENDU is only accepted at VENTE.
func (s *CommandeService) SetFlag(ctx context.Context, id uint, flag models.FlagCommande) (*models.Commande, error) {
	if err := s.authz.Authorize(ctx, gate.ActionFlag, "commande", nil); err != nil {
		return nil, err
	}

	var cmd models.Commande
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&cmd, id).Error; err != nil {
			return fmt.Errorf("load commande %d: %w", id, err)
		}
		if err := lifecycle.CheckFlag(cmd.Etape, flag); err != nil {
			return err
		}
		cmd.Flag = flag
		if err := tx.Model(&cmd).Update("flag", flag).Error; err != nil {
			return fmt.Errorf("update commande %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.L().Info("commande flag set",
		zap.Uint("commande_id", cmd.ID),
		zap.String("flag", string(flag)))
	return &cmd, nil
}

// Delete soft-deletes a commande. A commande referencing a conteneur or
// carrying a facture is kept for traceability and cannot be deleted.
func (s *CommandeService) Delete(ctx context.Context, id uint) error {
	if err := s.authz.Authorize(ctx, gate.ActionDelete, "commande", nil); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cmd models.Commande
		if err := tx.First(&cmd, id).Error; err != nil {
			return fmt.Errorf("load commande %d: %w", id, err)
		}
		if cmd.ConteneurID != nil {
			return &ConflictError{Reason: "commande is assigned to a conteneur"}
		}
		var factures int64
		if err := tx.Model(&models.Facture{}).Where("commande_id = ?", id).Count(&factures).Error; err != nil {
			return fmt.Errorf("count factures: %w", err)
		}
		if factures > 0 {
			return &ConflictError{Reason: "commande has a facture"}
		}
		if err := tx.Delete(&cmd).Error; err != nil {
			return fmt.Errorf("delete commande %d: %w", id, err)
		}
		logger.L().Info("commande deleted", zap.Uint("commande_id", id))
		return nil
	})
}

// ParEtape lists commandes at the given stage, newest first. This is the
// read-side filter behind every role dashboard.
func (s *CommandeService) ParEtape(ctx context.Context, etape models.EtapeCommande) ([]models.Commande, error) {
	var cmds []models.Commande
	err := s.db.WithContext(ctx).
		Where("etape = ?", etape).
		Preload("Client").Preload("Vehicule").
		Order("created_at DESC").
		Find(&cmds).Error
	if err != nil {
		return nil, fmt.Errorf("list commandes at %s: %w", etape, err)
	}
	return cmds, nil
}
