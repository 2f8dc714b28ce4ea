package lifecycle

import "autoparc/internal/models"

// EtapesCommande is the ordered forward sequence of commande stages.
var EtapesCommande = []models.EtapeCommande{
	models.EtapeProposition,
	models.EtapeValide,
	models.EtapeTransite,
	models.EtapeRenseignee,
	models.EtapeArrive,
	models.EtapeVerifier,
	models.EtapeMontage,
	models.EtapeTeste,
	models.EtapeParking,
	models.EtapeCorrection,
	models.EtapeVente,
}

// rangCommande maps each stage to its position in EtapesCommande.
var rangCommande = func() map[models.EtapeCommande]int {
	m := make(map[models.EtapeCommande]int, len(EtapesCommande))
	for i, e := range EtapesCommande {
		m[e] = i
	}
	return m
}()

// Defect loop-back: a vehicle failing in the workshop goes back to
// CORRECTION, and re-enters at MONTAGE once fixed.
var commandeLoopbacks = map[models.EtapeCommande]models.EtapeCommande{
	models.EtapeMontage:    models.EtapeCorrection,
	models.EtapeTeste:      models.EtapeCorrection,
	models.EtapeCorrection: models.EtapeMontage,
}

// RangCommande returns the position of a stage in the forward sequence,
// or -1 for an unknown stage.
func RangCommande(e models.EtapeCommande) int {
	if r, ok := rangCommande[e]; ok {
		return r
	}
	return -1
}

// NextEtapeCommande returns the immediate successor of a stage.
// ok is false for the terminal stage (VENTE) and unknown stages.
func NextEtapeCommande(cur models.EtapeCommande) (models.EtapeCommande, bool) {
	r, ok := rangCommande[cur]
	if !ok || r+1 >= len(EtapesCommande) {
		return "", false
	}
	return EtapesCommande[r+1], true
}

// AllowedCommande lists every stage reachable in one step from cur.
func AllowedCommande(cur models.EtapeCommande) []models.EtapeCommande {
	var out []models.EtapeCommande
	if next, ok := NextEtapeCommande(cur); ok {
		out = append(out, next)
	}
	if loop, ok := commandeLoopbacks[cur]; ok && (len(out) == 0 || out[0] != loop) {
		out = append(out, loop)
	}
	return out
}

// CanAdvanceCommande reports whether cur -> target is a legal transition:
// the immediate successor, or one of the explicit correction loop-backs.
func CanAdvanceCommande(cur, target models.EtapeCommande) bool {
	for _, a := range AllowedCommande(cur) {
		if a == target {
			return true
		}
	}
	return false
}

// CheckAdvanceCommande returns an *InvalidTransitionError when cur -> target
// is not legal, nil otherwise.
func CheckAdvanceCommande(cur, target models.EtapeCommande) error {
	if CanAdvanceCommande(cur, target) {
		return nil
	}
	allowed := AllowedCommande(cur)
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	return &InvalidTransitionError{
		Entity:  "commande",
		From:    string(cur),
		To:      string(target),
		Allowed: names,
	}
}

// CheckFlag verifies that a flag may be set at the given stage.
// VENDU is only reachable from VENTE; DISPONIBLE has no stage constraint.
func CheckFlag(etape models.EtapeCommande, flag models.FlagCommande) error {
	if flag == models.FlagVendu && etape != models.EtapeVente {
		return &InvalidFlagTransitionError{Flag: string(flag), Etape: string(etape)}
	}
	return nil
}
