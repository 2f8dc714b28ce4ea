package models

import (
	"time"

	"gorm.io/gorm"
)

// CommandeGroupee is a batch of commandes validated together, used for
// aggregate stock and sales reporting.
type CommandeGroupee struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Reference      string     `gorm:"size:50;uniqueIndex;not null" json:"reference"`
	Libelle        string     `gorm:"size:255" json:"libelle,omitempty"`
	DateValidation *time.Time `json:"date_validation,omitempty"`

	Commandes []Commande `gorm:"foreignKey:CommandeGroupeeID" json:"commandes,omitempty"`
}
