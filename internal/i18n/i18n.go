// Package i18n provides the fr/en message catalog. French is the default
// language of the business; English is a best-effort fallback.
package i18n

import (
	"context"
	"strings"
)

type langKey struct{}

// WithLang stores the language code in the context.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langKey{}, lang)
}

// LangFromContext returns the language from the context, defaulting to "fr".
func LangFromContext(ctx context.Context) string {
	if l, ok := ctx.Value(langKey{}).(string); ok && l != "" {
		return l
	}
	return "fr"
}

// DetectLanguage picks a supported language from an Accept-Language header.
func DetectLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		code := strings.ToLower(strings.TrimSpace(part))
		if i := strings.IndexAny(code, "-;"); i >= 0 {
			code = code[:i]
		}
		switch code {
		case "en":
			return "en"
		case "fr":
			return "fr"
		}
	}
	return "fr"
}

var messages = map[string]map[string]string{
	"fr": {
		"required":             "Requis",
		"must_be_positive":     "Doit être positif",
		"out_of_range":         "Hors limites",
		"welcome":              "Bienvenue",
		"dashboard":            "Tableau de bord",
		"commandes":            "Commandes",
		"conteneurs":           "Conteneurs",
		"clients":              "Clients",
		"pieces":               "Pièces détachées",
		"vehicules":            "Véhicules",
		"stock":                "Stock",
		"vendus":               "Vendus",
		"disponibles":          "Disponibles",
		"modele_inconnu":       "Modèle Inconnu",
		"etape":                "Étape",
		"avancer":              "Avancer",
		"transition_invalide":  "Transition invalide",
		"flag_invalide":        "Indisponible à cette étape",
		"conflit":              "Conflit : références existantes",
		"subcase_duplique":     "Numéro de subcase déjà utilisé",
		"supprimer":            "Supprimer",
		"creer":                "Créer",
		"connexion":            "Connexion",
		"deconnexion":          "Déconnexion",
		"administration":       "Administration",
		"email":                "Email",
		"mot_de_passe":         "Mot de passe",
		"identifiants_invalides": "Identifiants invalides",
	},
	"en": {
		"required":             "Required",
		"must_be_positive":     "Must be positive",
		"out_of_range":         "Out of range",
		"welcome":              "Welcome",
		"dashboard":            "Dashboard",
		"commandes":            "Orders",
		"conteneurs":           "Containers",
		"clients":              "Clients",
		"pieces":               "Spare parts",
		"vehicules":            "Vehicles",
		"stock":                "Stock",
		"vendus":               "Sold",
		"disponibles":          "Available",
		"modele_inconnu":       "Unknown Model",
		"etape":                "Stage",
		"avancer":              "Advance",
		"transition_invalide":  "Invalid transition",
		"flag_invalide":        "Not available at this stage",
		"conflit":              "Conflict: existing references",
		"subcase_duplique":     "Subcase number already in use",
		"supprimer":            "Delete",
		"creer":                "Create",
		"connexion":            "Log in",
		"deconnexion":          "Log out",
		"administration":       "Administration",
		"email":                "Email",
		"mot_de_passe":         "Password",
		"identifiants_invalides": "Invalid credentials",
	},
}

// T translates a message code for the given language. Unknown languages
// fall back to French; unknown codes fall back to the code itself.
func T(lang, code string) string {
	if m, ok := messages[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := messages["fr"][code]; ok {
		return s
	}
	return code
}
