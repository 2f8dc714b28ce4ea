package models

import (
	"time"

	"gorm.io/gorm"
)

// EtapeConteneur is the lifecycle stage of a shipping container.
type EtapeConteneur string

const (
	ConteneurEnAttente EtapeConteneur = "EN_ATTENTE"
	ConteneurCharge    EtapeConteneur = "CHARGE"
	ConteneurTransite  EtapeConteneur = "TRANSITE"
	ConteneurRenseigne EtapeConteneur = "RENSEIGNE"
	ConteneurArrive    EtapeConteneur = "ARRIVE"
	ConteneurDecharge  EtapeConteneur = "DECHARGE"
	ConteneurVerifie   EtapeConteneur = "VERIFIE"
)

// Conteneur represents one physical shipping container of parts/vehicles.
type Conteneur struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Numero       string  `gorm:"size:50;uniqueIndex;not null" json:"numero"`
	NumeroScelle string  `gorm:"size:50" json:"numero_scelle,omitempty"`
	NombreColis  int     `gorm:"not null;default:0" json:"nombre_colis"`
	PoidsBrut    float64 `gorm:"type:decimal(12,3)" json:"poids_brut"`
	PoidsNet     float64 `gorm:"type:decimal(12,3)" json:"poids_net"`

	Etape EtapeConteneur `gorm:"size:20;not null;default:'EN_ATTENTE';index" json:"etape"`

	DateEmbarquement    *time.Time `json:"date_embarquement,omitempty"`
	DateArriveeProbable *time.Time `json:"date_arrivee_probable,omitempty"`

	Commandes     []Commande              `gorm:"foreignKey:ConteneurID" json:"commandes,omitempty"`
	Subcases      []Subcase               `gorm:"foreignKey:ConteneurID" json:"subcases,omitempty"`
	Verifications []VerificationConteneur `gorm:"foreignKey:ConteneurID" json:"verifications,omitempty"`
}

// EstArrive returns true once the container has reached port or beyond.
func (c *Conteneur) EstArrive() bool {
	switch c.Etape {
	case ConteneurArrive, ConteneurDecharge, ConteneurVerifie:
		return true
	}
	return false
}

// Subcase is a child grouping of parts and tools within a container.
// Numero is unique within the parent container.
type Subcase struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ConteneurID uint   `gorm:"not null;uniqueIndex:idx_subcase_numero" json:"conteneur_id"`
	Numero      string `gorm:"size:50;not null;uniqueIndex:idx_subcase_numero" json:"numero"`

	Pieces []PieceDetachee `gorm:"foreignKey:SubcaseID" json:"pieces,omitempty"`
	Outils []Outil         `gorm:"foreignKey:SubcaseID" json:"outils,omitempty"`
}

// Outil is a tool packed inside a subcase.
type Outil struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	SubcaseID uint   `gorm:"index;not null" json:"subcase_id"`
	Code      string `gorm:"size:50;not null" json:"code"`
	Nom       string `gorm:"size:255;not null" json:"nom"`
	Quantite  int    `gorm:"not null;default:1" json:"quantite"`
}

// VerificationConteneur is one verification pass over an unloaded container.
type VerificationConteneur struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	ConteneurID uint      `gorm:"index;not null" json:"conteneur_id"`
	UserID      uint      `gorm:"index" json:"user_id"`
	Date        time.Time `gorm:"not null" json:"date"`
	Conforme    bool      `gorm:"not null;default:true" json:"conforme"`
	Remarques   string    `gorm:"type:text" json:"remarques,omitempty"`
}
