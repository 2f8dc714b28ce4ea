package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"autoparc/internal/gate"
	"autoparc/internal/lifecycle"
	"autoparc/internal/logger"
	"autoparc/internal/models"
	"autoparc/internal/validation"
)

// ConteneurService owns the container lifecycle, the ARRIVE cascade onto
// commandes and subcase management.
type ConteneurService struct {
	db    *gorm.DB
	authz Authorizer
}

func NewConteneurService(db *gorm.DB, authz Authorizer) *ConteneurService {
	return &ConteneurService{db: db, authz: authz}
}

// CreateConteneurInput carries the attributes of a new container.
type CreateConteneurInput struct {
	Numero       string
	NumeroScelle string
	NombreColis  int
	PoidsBrut    float64
	PoidsNet     float64
}

// Create registers a container at stage EN_ATTENTE.
func (s *ConteneurService) Create(ctx context.Context, in CreateConteneurInput) (*models.Conteneur, error) {
	if err := s.authz.Authorize(ctx, gate.ActionCreate, "conteneur", nil); err != nil {
		return nil, err
	}

	v := make(validation.Violations)
	validation.Required("numero", in.Numero, v)
	if !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}

	ctr := models.Conteneur{
		Numero:       in.Numero,
		NumeroScelle: in.NumeroScelle,
		NombreColis:  in.NombreColis,
		PoidsBrut:    in.PoidsBrut,
		PoidsNet:     in.PoidsNet,
		Etape:        models.ConteneurEnAttente,
	}
	if err := s.db.WithContext(ctx).Create(&ctr).Error; err != nil {
		return nil, fmt.Errorf("create conteneur: %w", err)
	}
	logger.L().Info("conteneur created",
		zap.Uint("conteneur_id", ctr.ID),
		zap.String("numero", ctr.Numero))
	return &ctr, nil
}

// Advance moves a container to target if it is the immediate successor.
func (s *ConteneurService) Advance(ctx context.Context, id uint, target models.EtapeConteneur) (*models.Conteneur, error) {
	if err := s.authz.Authorize(ctx, gate.AdvanceAction(string(target)), "conteneur", nil); err != nil {
		return nil, err
	}

	var ctr models.Conteneur
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&ctr, id).Error; err != nil {
			return fmt.Errorf("load conteneur %d: %w", id, err)
		}
		if err := lifecycle.CheckAdvanceConteneur(ctr.Etape, target); err != nil {
			return err
		}
		from := ctr.Etape
		ctr.Etape = target
		if err := tx.Model(&ctr).Update("etape", target).Error; err != nil {
			return fmt.Errorf("update conteneur %d: %w", id, err)
		}
		logger.L().Info("conteneur advanced",
			zap.Uint("conteneur_id", ctr.ID),
			zap.String("from", string(from)),
			zap.String("to", string(target)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ctr, nil
}

// MarkArrive advances the container to ARRIVE.
func (s *ConteneurService) MarkArrive(ctx context.Context, id uint) (*models.Conteneur, error) {
	return s.Advance(ctx, id, models.ConteneurArrive)
}

// MarkDecharge advances the container to DECHARGE.
func (s *ConteneurService) MarkDecharge(ctx context.Context, id uint) (*models.Conteneur, error) {
	return s.Advance(ctx, id, models.ConteneurDecharge)
}

// Validate advances the container to its terminal stage VERIFIE.
func (s *ConteneurService) Validate(ctx context.Context, id uint) (*models.Conteneur, error) {
	return s.Advance(ctx, id, models.ConteneurVerifie)
}

// CascadeResult summarizes a bulk ARRIVE cascade.
type CascadeResult struct {
	Advanced int `json:"advanced"`
	Skipped  int `json:"skipped"`
}

// CascadeArrive advances every commande of the container sitting in
// TRANSITE or RENSEIGNEE to ARRIVE, as one explicit bulk action. Commandes
// already at ARRIVE or beyond are skipped, not errored, so repeating the
// cascade is idempotent. TRANSITE commandes jump over RENSEIGNEE here;
// that shortcut is part of the cascade contract, not of Advance.
func (s *ConteneurService) CascadeArrive(ctx context.Context, id uint) (CascadeResult, error) {
	var res CascadeResult
	if err := s.authz.Authorize(ctx, gate.ActionCascade, "conteneur", nil); err != nil {
		return res, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ctr models.Conteneur
		if err := tx.First(&ctr, id).Error; err != nil {
			return fmt.Errorf("load conteneur %d: %w", id, err)
		}
		if !ctr.EstArrive() {
			return &ConflictError{Reason: "conteneur has not reached ARRIVE"}
		}

		var cmds []models.Commande
		if err := tx.Where("conteneur_id = ?", id).Find(&cmds).Error; err != nil {
			return fmt.Errorf("list commandes of conteneur %d: %w", id, err)
		}
		for i := range cmds {
			switch cmds[i].Etape {
			case models.EtapeTransite, models.EtapeRenseignee:
				if err := tx.Model(&cmds[i]).Update("etape", models.EtapeArrive).Error; err != nil {
					return fmt.Errorf("advance commande %d: %w", cmds[i].ID, err)
				}
				res.Advanced++
			default:
				res.Skipped++
			}
		}
		return nil
	})
	if err != nil {
		return CascadeResult{}, err
	}

	logger.L().Info("conteneur cascade",
		zap.Uint("conteneur_id", id),
		zap.Int("advanced", res.Advanced),
		zap.Int("skipped", res.Skipped))
	return res, nil
}

// OutilInput describes a tool packed into a new subcase.
type OutilInput struct {
	Code     string
	Nom      string
	Quantite int
}

// CreateSubcase creates a subcase in the container, attaches the given
// pieces and records its tools. The subcase number must be unique within
// the container.
func (s *ConteneurService) CreateSubcase(ctx context.Context, conteneurID uint, numero string, pieceIDs []uint, outils []OutilInput) (*models.Subcase, error) {
	if err := s.authz.Authorize(ctx, gate.ActionUpdate, "conteneur", nil); err != nil {
		return nil, err
	}

	v := make(validation.Violations)
	validation.Required("numero", numero, v)
	if !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}

	var sub models.Subcase
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ctr models.Conteneur
		if err := tx.First(&ctr, conteneurID).Error; err != nil {
			return fmt.Errorf("load conteneur %d: %w", conteneurID, err)
		}

		var existing models.Subcase
		err := tx.Where("conteneur_id = ? AND numero = ?", conteneurID, numero).First(&existing).Error
		if err == nil {
			return &ConflictError{Reason: fmt.Sprintf("subcase %s already exists in conteneur %s", numero, ctr.Numero)}
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check subcase number: %w", err)
		}

		sub = models.Subcase{ConteneurID: conteneurID, Numero: numero}
		if err := tx.Create(&sub).Error; err != nil {
			return fmt.Errorf("create subcase: %w", err)
		}

		if len(pieceIDs) > 0 {
			if err := tx.Model(&models.PieceDetachee{}).
				Where("id IN ?", pieceIDs).
				Update("subcase_id", sub.ID).Error; err != nil {
				return fmt.Errorf("attach pieces: %w", err)
			}
		}
		for _, o := range outils {
			outil := models.Outil{SubcaseID: sub.ID, Code: o.Code, Nom: o.Nom, Quantite: o.Quantite}
			if outil.Quantite <= 0 {
				outil.Quantite = 1
			}
			if err := tx.Create(&outil).Error; err != nil {
				return fmt.Errorf("create outil: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.L().Info("subcase created",
		zap.Uint("conteneur_id", conteneurID),
		zap.String("numero", numero),
		zap.Int("pieces", len(pieceIDs)))
	return &sub, nil
}

// RecordVerification appends a verification pass on an unloaded container.
func (s *ConteneurService) RecordVerification(ctx context.Context, rec models.VerificationConteneur) error {
	if err := s.authz.Authorize(ctx, gate.ActionUpdate, "conteneur", nil); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("record verification: %w", err)
	}
	return nil
}
