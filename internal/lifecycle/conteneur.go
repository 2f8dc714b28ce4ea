package lifecycle

import "autoparc/internal/models"

// EtapesConteneur is the strictly ordered container stage sequence.
// Unlike commandes there is no loop-back.
var EtapesConteneur = []models.EtapeConteneur{
	models.ConteneurEnAttente,
	models.ConteneurCharge,
	models.ConteneurTransite,
	models.ConteneurRenseigne,
	models.ConteneurArrive,
	models.ConteneurDecharge,
	models.ConteneurVerifie,
}

var rangConteneur = func() map[models.EtapeConteneur]int {
	m := make(map[models.EtapeConteneur]int, len(EtapesConteneur))
	for i, e := range EtapesConteneur {
		m[e] = i
	}
	return m
}()

// RangConteneur returns the position of a stage in the sequence, -1 if unknown.
func RangConteneur(e models.EtapeConteneur) int {
	if r, ok := rangConteneur[e]; ok {
		return r
	}
	return -1
}

// NextEtapeConteneur returns the immediate successor of a stage.
// ok is false for VERIFIE (terminal) and unknown stages.
func NextEtapeConteneur(cur models.EtapeConteneur) (models.EtapeConteneur, bool) {
	r, ok := rangConteneur[cur]
	if !ok || r+1 >= len(EtapesConteneur) {
		return "", false
	}
	return EtapesConteneur[r+1], true
}

// CanAdvanceConteneur reports whether cur -> target is the immediate successor.
func CanAdvanceConteneur(cur, target models.EtapeConteneur) bool {
	next, ok := NextEtapeConteneur(cur)
	return ok && next == target
}

// CheckAdvanceConteneur returns an *InvalidTransitionError when cur -> target
// is not the immediate successor, nil otherwise.
func CheckAdvanceConteneur(cur, target models.EtapeConteneur) error {
	if CanAdvanceConteneur(cur, target) {
		return nil
	}
	var allowed []string
	if next, ok := NextEtapeConteneur(cur); ok {
		allowed = []string{string(next)}
	}
	return &InvalidTransitionError{
		Entity:  "conteneur",
		From:    string(cur),
		To:      string(target),
		Allowed: allowed,
	}
}
