package models

import "time"

// Vehicule is a catalogue entry for a vehicle model.
type Vehicule struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Marque string `gorm:"size:100;not null" json:"marque"`
	Modele string `gorm:"size:100;not null" json:"modele"`
	Annee  int    `json:"annee,omitempty"`

	PhotoURL string `gorm:"size:500" json:"photo_url,omitempty"`
}

// Libelle returns the display label "Marque Modele".
func (v *Vehicule) Libelle() string {
	if v.Marque == "" {
		return v.Modele
	}
	return v.Marque + " " + v.Modele
}
