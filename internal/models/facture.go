package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// TypeFacture distinguishes the proforma sent before sale from the final invoice.
type TypeFacture string

const (
	FactureProforma TypeFacture = "PROFORMA"
	FactureFinale   TypeFacture = "FACTURE"
)

// Facture is the invoice (or proforma) record attached to a commande.
// A commande carrying a facture can no longer be deleted.
type Facture struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CommandeID uint        `gorm:"uniqueIndex;not null" json:"commande_id"`
	Numero     string      `gorm:"size:50;uniqueIndex;not null" json:"numero"`
	Type       TypeFacture `gorm:"size:20;not null;default:'PROFORMA'" json:"type"`

	MontantHT  float64   `gorm:"type:decimal(12,2);not null" json:"montant_ht"`
	TauxTVA    float64   `gorm:"type:decimal(5,4);not null" json:"taux_tva"`
	MontantTTC float64   `gorm:"type:decimal(12,2);not null" json:"montant_ttc"`
	Date       time.Time `gorm:"not null" json:"date"`
}

// GenerateNumeroFacture generates a sequential invoice number FAC-YYYY-NNNN.
func GenerateNumeroFacture(db *gorm.DB, year int) (string, error) {
	var count int64
	err := db.Model(&Facture{}).
		Where("numero LIKE ?", fmt.Sprintf("FAC-%d-%%", year)).
		Count(&count).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("FAC-%d-%04d", year, count+1), nil
}
