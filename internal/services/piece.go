package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"autoparc/internal/gate"
	"autoparc/internal/logger"
	"autoparc/internal/models"
)

// PieceService manages spare parts once a container is unpacked. The
// processing stage and the verification status are independent axes.
type PieceService struct {
	db    *gorm.DB
	authz Authorizer
}

func NewPieceService(db *gorm.DB, authz Authorizer) *PieceService {
	return &PieceService{db: db, authz: authz}
}

// ParConteneur lists the parts of a container, subcase parts included.
func (s *PieceService) ParConteneur(ctx context.Context, conteneurID uint) ([]models.PieceDetachee, error) {
	var pieces []models.PieceDetachee
	err := s.db.WithContext(ctx).
		Where("conteneur_id = ?", conteneurID).
		Order("code").
		Find(&pieces).Error
	if err != nil {
		return nil, fmt.Errorf("list pieces of conteneur %d: %w", conteneurID, err)
	}
	return pieces, nil
}

// ParSubcase lists the parts attached to a subcase.
func (s *PieceService) ParSubcase(ctx context.Context, subcaseID uint) ([]models.PieceDetachee, error) {
	var pieces []models.PieceDetachee
	err := s.db.WithContext(ctx).
		Where("subcase_id = ?", subcaseID).
		Order("code").
		Find(&pieces).Error
	if err != nil {
		return nil, fmt.Errorf("list pieces of subcase %d: %w", subcaseID, err)
	}
	return pieces, nil
}

// SetTraitement moves a part to the given processing stage.
func (s *PieceService) SetTraitement(ctx context.Context, id uint, t models.EtapeTraitement) (*models.PieceDetachee, error) {
	if err := s.authz.Authorize(ctx, gate.ActionUpdate, "piece", nil); err != nil {
		return nil, err
	}

	var piece models.PieceDetachee
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&piece, id).Error; err != nil {
			return fmt.Errorf("load piece %d: %w", id, err)
		}
		piece.Traitement = t
		if err := tx.Model(&piece).Update("traitement", t).Error; err != nil {
			return fmt.Errorf("update piece %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.L().Info("piece traitement set",
		zap.Uint("piece_id", id), zap.String("traitement", string(t)))
	return &piece, nil
}

// SetVerification records the verification outcome of a part.
func (s *PieceService) SetVerification(ctx context.Context, id uint, v models.StatutVerification) (*models.PieceDetachee, error) {
	if err := s.authz.Authorize(ctx, gate.ActionUpdate, "piece", nil); err != nil {
		return nil, err
	}

	var piece models.PieceDetachee
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&piece, id).Error; err != nil {
			return fmt.Errorf("load piece %d: %w", id, err)
		}
		piece.Verification = v
		if err := tx.Model(&piece).Update("verification", v).Error; err != nil {
			return fmt.Errorf("update piece %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &piece, nil
}
