package models

import (
	"time"

	"gorm.io/gorm"
)

// EtapeCommande is the lifecycle stage of a commande.
type EtapeCommande string

const (
	EtapeProposition EtapeCommande = "PROPOSITION"
	EtapeValide      EtapeCommande = "VALIDE"
	EtapeTransite    EtapeCommande = "TRANSITE"
	EtapeRenseignee  EtapeCommande = "RENSEIGNEE"
	EtapeArrive      EtapeCommande = "ARRIVE"
	EtapeVerifier    EtapeCommande = "VERIFIER"
	EtapeMontage     EtapeCommande = "MONTAGE"
	EtapeTeste       EtapeCommande = "TESTE"
	EtapeParking     EtapeCommande = "PARKING"
	EtapeCorrection  EtapeCommande = "CORRECTION"
	EtapeVente       EtapeCommande = "VENTE"
)

// FlagCommande is the availability axis, orthogonal to the lifecycle stage.
type FlagCommande string

const (
	FlagDisponible FlagCommande = "DISPONIBLE"
	FlagVendu      FlagCommande = "VENDU"
)

// Transmission of the ordered vehicle.
type Transmission string

const (
	TransmissionAutomatique Transmission = "AUTOMATIQUE"
	TransmissionManuelle    Transmission = "MANUELLE"
)

// Moteur is the engine type of the ordered vehicle.
type Moteur string

const (
	MoteurElectrique Moteur = "ELECTRIQUE"
	MoteurEssence    Moteur = "ESSENCE"
	MoteurDiesel     Moteur = "DIESEL"
	MoteurHybride    Moteur = "HYBRIDE"
)

// Commande represents one vehicle being procured, assembled and sold.
type Commande struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// Vehicle attributes
	NombrePortes  int           `gorm:"not null" json:"nombre_portes"`
	Transmission  Transmission  `gorm:"size:20;not null" json:"transmission"`
	Moteur        Moteur        `gorm:"size:20;not null" json:"moteur"`
	Couleur       string        `gorm:"size:100;not null" json:"couleur"`
	DateLivraison time.Time     `gorm:"not null" json:"date_livraison"`
	Etape         EtapeCommande `gorm:"size:20;not null;default:'PROPOSITION';index" json:"etape"`
	Flag          FlagCommande  `gorm:"size:20;not null;default:'DISPONIBLE'" json:"flag"`

	// Client relationship (exactly one client)
	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	// Optional references
	VehiculeID        *uint            `gorm:"index" json:"vehicule_id,omitempty"`
	Vehicule          *Vehicule        `gorm:"foreignKey:VehiculeID" json:"vehicule,omitempty"`
	ConteneurID       *uint            `gorm:"index" json:"conteneur_id,omitempty"`
	Conteneur         *Conteneur       `gorm:"foreignKey:ConteneurID" json:"-"`
	CommandeGroupeeID *uint            `gorm:"index" json:"commande_groupee_id,omitempty"`
	CommandeGroupee   *CommandeGroupee `gorm:"foreignKey:CommandeGroupeeID" json:"-"`

	// Uploaded fiche technique (blob store URL)
	FicheTechniqueURL string `gorm:"size:500" json:"fiche_technique_url,omitempty"`

	Fournisseurs []Fournisseur `gorm:"many2many:commande_fournisseurs" json:"fournisseurs,omitempty"`
	Montage      *Montage      `gorm:"foreignKey:CommandeID" json:"montage,omitempty"`
	Facture      *Facture      `gorm:"foreignKey:CommandeID" json:"facture,omitempty"`
}

// EstVendue returns true once the commande has been flagged sold.
func (c *Commande) EstVendue() bool {
	return c.Flag == FlagVendu
}

// EnAtelier returns true while the vehicle sits in the assembly workshop.
func (c *Commande) EnAtelier() bool {
	return c.Etape == EtapeMontage || c.Etape == EtapeTeste || c.Etape == EtapeCorrection
}

// NomModele returns the vehicle model label, empty when no model is linked.
func (c *Commande) NomModele() string {
	if c.Vehicule == nil {
		return ""
	}
	return c.Vehicule.Libelle()
}

// Fournisseur is a parts/vehicle supplier linked to commandes.
type Fournisseur struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Nom     string `gorm:"size:255;not null" json:"nom"`
	Pays    string `gorm:"size:100" json:"pays,omitempty"`
	Contact string `gorm:"size:255" json:"contact,omitempty"`
}

// Montage is the assembly record of a commande (one per commande).
type Montage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CommandeID uint       `gorm:"uniqueIndex;not null" json:"commande_id"`
	ChefEquipe string     `gorm:"size:255" json:"chef_equipe,omitempty"`
	DateDebut  time.Time  `json:"date_debut"`
	DateFin    *time.Time `json:"date_fin,omitempty"`
	Remarques  string     `gorm:"type:text" json:"remarques,omitempty"`
}
