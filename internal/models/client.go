package models

import (
	"time"

	"gorm.io/gorm"
)

// TypeClient distinguishes individual and corporate clients.
// A commande belongs to exactly one client of either type.
type TypeClient string

const (
	ClientParticulier TypeClient = "PARTICULIER"
	ClientEntreprise  TypeClient = "ENTREPRISE"
)

// Client is an individual or corporate buyer.
type Client struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Type TypeClient `gorm:"size:20;not null;default:'PARTICULIER'" json:"type"`

	// Individual fields
	Nom    string `gorm:"size:255" json:"nom,omitempty"`
	Prenom string `gorm:"size:255" json:"prenom,omitempty"`

	// Corporate fields
	RaisonSociale string `gorm:"size:255" json:"raison_sociale,omitempty"`

	Email     string `gorm:"size:255;index" json:"email,omitempty"`
	Telephone string `gorm:"size:50" json:"telephone,omitempty"`
	Ville     string `gorm:"size:100" json:"ville,omitempty"`
	Pays      string `gorm:"size:100" json:"pays,omitempty"`

	Commandes []Commande `gorm:"foreignKey:ClientID" json:"commandes,omitempty"`
}

// NomAffiche returns the display name depending on the client type.
func (c Client) NomAffiche() string {
	if c.Type == ClientEntreprise && c.RaisonSociale != "" {
		return c.RaisonSociale
	}
	if c.Prenom != "" {
		return c.Prenom + " " + c.Nom
	}
	return c.Nom
}
