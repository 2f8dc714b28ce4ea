// Package lifecycle defines the legal stage sequences of commandes and
// conteneurs as explicit transition tables, so the rule lives in one place
// instead of string comparisons scattered across handlers.
package lifecycle

import (
	"fmt"
	"strings"
)

// InvalidTransitionError reports a stage jump the transition table forbids.
// It carries the requested and allowed targets so callers can surface the
// rejection verbatim.
type InvalidTransitionError struct {
	Entity  string
	From    string
	To      string
	Allowed []string
}

func (e *InvalidTransitionError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("%s: invalid transition %s -> %s (terminal stage)", e.Entity, e.From, e.To)
	}
	return fmt.Sprintf("%s: invalid transition %s -> %s (allowed: %s)",
		e.Entity, e.From, e.To, strings.Join(e.Allowed, ", "))
}

// InvalidFlagTransitionError reports a flag set outside its allowed stage.
type InvalidFlagTransitionError struct {
	Flag  string
	Etape string
}

func (e *InvalidFlagTransitionError) Error() string {
	return fmt.Sprintf("commande: flag %s cannot be set at stage %s", e.Flag, e.Etape)
}
