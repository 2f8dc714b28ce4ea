package lifecycle

import (
	"errors"
	"testing"

	"autoparc/internal/models"
)

// A container may only ever move to its immediate successor.
func TestCheckAdvanceConteneur_ForwardOnly(t *testing.T) {
	for i, from := range EtapesConteneur {
		for j, to := range EtapesConteneur {
			err := CheckAdvanceConteneur(from, to)
			if j == i+1 {
				if err != nil {
					t.Errorf("advance %s -> %s: %v, want nil", from, to, err)
				}
				continue
			}
			var ite *InvalidTransitionError
			if !errors.As(err, &ite) {
				t.Errorf("advance %s -> %s should fail with InvalidTransitionError, got %v", from, to, err)
			}
		}
	}
}

func TestCheckAdvanceConteneur_SkipAllStages(t *testing.T) {
	// EN_ATTENTE -> VERIFIE skips five stages and must fail.
	err := CheckAdvanceConteneur(models.ConteneurEnAttente, models.ConteneurVerifie)
	var ite *InvalidTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if len(ite.Allowed) != 1 || ite.Allowed[0] != string(models.ConteneurCharge) {
		t.Errorf("allowed = %v, want [CHARGE]", ite.Allowed)
	}
	if err := CheckAdvanceConteneur(models.ConteneurEnAttente, models.ConteneurCharge); err != nil {
		t.Errorf("EN_ATTENTE -> CHARGE should succeed, got %v", err)
	}
}

func TestNextEtapeConteneur_Terminal(t *testing.T) {
	if _, ok := NextEtapeConteneur(models.ConteneurVerifie); ok {
		t.Error("VERIFIE should have no successor")
	}
}

func TestRangConteneur(t *testing.T) {
	if RangConteneur(models.ConteneurEnAttente) != 0 {
		t.Error("EN_ATTENTE should be rank 0")
	}
	if RangConteneur(models.ConteneurArrive) >= RangConteneur(models.ConteneurDecharge) {
		t.Error("ARRIVE must come before DECHARGE")
	}
	if RangConteneur(models.EtapeConteneur("BOGUS")) != -1 {
		t.Error("unknown stage should be rank -1")
	}
}
