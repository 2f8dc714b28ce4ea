package models

import "time"

// EtapeTraitement is the processing stage of a spare part once unpacked.
type EtapeTraitement string

const (
	TraitementTransite EtapeTraitement = "TRANSITE"
	TraitementVerifie  EtapeTraitement = "VERIFIE"
	TraitementStockage EtapeTraitement = "STOCKAGE"
)

// StatutVerification is the verification outcome of a spare part.
// Independent axis from the processing stage: a part can be in STOCKAGE
// while its verification is still EN_ATTENTE.
type StatutVerification string

const (
	VerificationEnAttente StatutVerification = "EN_ATTENTE"
	VerificationVerifie   StatutVerification = "VERIFIE"
	VerificationRejete    StatutVerification = "REJETE"
)

// PieceDetachee is one line item of spare parts tracked independently of
// the container once unpacked.
type PieceDetachee struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Code        string `gorm:"size:50;not null;index" json:"code"`
	Nom         string `gorm:"size:255;not null" json:"nom"`
	NomLocalise string `gorm:"size:255" json:"nom_localise,omitempty"`
	Quantite    int    `gorm:"not null;default:0" json:"quantite"`

	Traitement   EtapeTraitement    `gorm:"size:20;not null;default:'TRANSITE';index" json:"traitement"`
	Verification StatutVerification `gorm:"size:20;not null;default:'EN_ATTENTE'" json:"verification"`

	// Optional attachments
	CommandeID  *uint  `gorm:"index" json:"commande_id,omitempty"`
	VehiculeID  *uint  `gorm:"index" json:"vehicule_id,omitempty"`
	ConteneurID *uint  `gorm:"index" json:"conteneur_id,omitempty"`
	SubcaseID   *uint  `gorm:"index" json:"subcase_id,omitempty"`
	Emplacement string `gorm:"size:100" json:"emplacement,omitempty"`
}

// EnStock returns true once the part has been moved to storage.
func (p *PieceDetachee) EnStock() bool {
	return p.Traitement == TraitementStockage
}
