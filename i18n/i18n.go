// Package i18n holds the message catalog used for API error details.
package i18n

import (
	"context"

	"golang.org/x/text/language"
)

const DefaultLang = "en"

type ctxKey struct{}

var supported = []language.Tag{language.English, language.French, language.Afrikaans}

var matcher = language.NewMatcher(supported)

var catalog = map[string]map[string]string{
	"en": {
		"required":             "Required",
		"must_be_positive":     "Must be greater than zero",
		"must_not_be_negative": "Must not be negative",
		"out_of_range":         "Out of range",
		"invalid_choice":       "Not an accepted value",
		"invalid_email":        "Invalid email address",
		"too_long":             "Too long",
		"unknown_feature":      "Unknown feature",
		"invalid_transition":   "Status change not allowed",
		"not_found":            "Not found",
		"concurrent_update":    "Record was changed by someone else, reload and retry",
		"external_service":     "A dependent service failed, please try again",
		"not_pdf":              "Only PDF documents are accepted",
		"quote_required":       "Project has no quote",
		"unauthorized":         "Sign in required",
		"forbidden":            "You do not have access to this resource",
		"internal":             "Internal server error",
		"bad_request":          "Malformed request",
		"invalid_credentials":  "Invalid email or password",
		"file_too_large":       "File is too large",
		"validation_failed":    "Some fields are invalid",
	},
	"fr": {
		"required":             "Requis",
		"must_be_positive":     "Doit être supérieur à zéro",
		"must_not_be_negative": "Ne doit pas être négatif",
		"out_of_range":         "Hors limites",
		"invalid_choice":       "Valeur non acceptée",
		"invalid_email":        "Adresse e-mail invalide",
		"too_long":             "Trop long",
		"unknown_feature":      "Fonctionnalité inconnue",
		"invalid_transition":   "Changement de statut interdit",
		"not_found":            "Introuvable",
		"concurrent_update":    "Enregistrement modifié entre-temps, rechargez et réessayez",
		"external_service":     "Un service dépendant a échoué, réessayez",
		"not_pdf":              "Seuls les documents PDF sont acceptés",
		"quote_required":       "Le projet n'a pas de devis",
		"unauthorized":         "Connexion requise",
		"forbidden":            "Accès refusé",
		"internal":             "Erreur interne du serveur",
		"bad_request":          "Requête invalide",
		"invalid_credentials":  "E-mail ou mot de passe invalide",
		"file_too_large":       "Fichier trop volumineux",
		"validation_failed":    "Certains champs sont invalides",
	},
	"af": {
		"required":             "Verpligtend",
		"must_be_positive":     "Moet groter as nul wees",
		"must_not_be_negative": "Mag nie negatief wees nie",
		"out_of_range":         "Buite grense",
		"invalid_choice":       "Nie 'n aanvaarde waarde nie",
		"invalid_email":        "Ongeldige e-posadres",
		"not_found":            "Nie gevind nie",
	},
}

// T translates code for lang, falling back to English and then to the code itself.
func T(lang, code string) string {
	if m, ok := catalog[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := catalog[DefaultLang][code]; ok {
		return s
	}
	return code
}

// TranslateAll maps every value of details through T.
func TranslateAll(lang string, details map[string]string) map[string]string {
	out := make(map[string]string, len(details))
	for k, code := range details {
		out[k] = T(lang, code)
	}
	return out
}

// DetectLanguage picks the best supported language for an Accept-Language header.
func DetectLanguage(header string) string {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return DefaultLang
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return DefaultLang
	}
	base, _ := supported[idx].Base()
	return base.String()
}

func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

func LangFrom(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
		return v
	}
	return DefaultLang
}

// Supported reports whether lang has a catalog.
func Supported(lang string) bool {
	_, ok := catalog[lang]
	return ok
}
