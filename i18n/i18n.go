// Package i18n holds the user-facing messages of the API and the import CLI.
// Portuguese is the default language; English is the only alternative.
package i18n

import (
	"context"

	"golang.org/x/text/language"
)

const (
	PT = "pt"
	EN = "en"

	Default = PT
)

var matcher = language.NewMatcher([]language.Tag{
	language.BrazilianPortuguese, // first entry is the fallback
	language.English,
})

var messages = map[string]map[string]string{
	PT: {
		"service_name":            "API de PIs",
		"pi_not_found":            "Nenhum PI encontrado",
		"pi_matriz_not_found":     "Nenhum PI vinculado a este PI Matriz",
		"record_not_found":        "PI não encontrado",
		"invalid_id":              "Identificador inválido",
		"invalid_body":            "Corpo da requisição inválido",
		"validation_failed":       "Parâmetros inválidos",
		"internal_error":          "Erro interno",
		"invalid_number":          "Valor numérico inválido; ignorado",
		"invalid_date":            "Data inválida; ignorada",
		"missing_order_number":    "Sem número de PI; linha ignorada",
		"import_summary":          "Linhas processadas: %d | Inseridos: %d | Atualizados: %d | Ignorados: %d | Avisos: %d",
		"import_dry_run":          "Simulação: nenhuma alteração foi gravada.",
		"import_warnings_written": "Avisos exportados para: %s",
		"import_no_warnings":      "Nenhum aviso.",
	},
	EN: {
		"service_name":            "PI API",
		"pi_not_found":            "No PI found",
		"pi_matriz_not_found":     "No PI linked to this parent PI",
		"record_not_found":        "PI not found",
		"invalid_id":              "Invalid identifier",
		"invalid_body":            "Invalid request body",
		"validation_failed":       "Invalid parameters",
		"internal_error":          "Internal error",
		"invalid_number":          "Invalid numeric value, ignored",
		"invalid_date":            "Invalid date, ignored",
		"missing_order_number":    "Missing PI number, row skipped",
		"import_summary":          "Rows processed: %d | Inserted: %d | Updated: %d | Skipped: %d | Warnings: %d",
		"import_dry_run":          "Dry run: nothing was written.",
		"import_warnings_written": "Warnings exported to: %s",
		"import_no_warnings":      "No warnings.",
	},
}

// T returns the message for code in lang, falling back to Portuguese and then to the code itself.
func T(lang, code string) string {
	if m, ok := messages[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := messages[Default][code]; ok {
		return s
	}
	return code
}

// Normalize maps any language tag ("en-GB", "pt_BR", "es") onto a supported language.
func Normalize(tag string) string {
	return DetectLanguage(tag)
}

// DetectLanguage picks a supported language from an Accept-Language header.
func DetectLanguage(header string) string {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	if idx == 1 {
		return EN
	}
	return PT
}

type ctxKey struct{}

// WithLang stores lang in ctx.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// LangFrom returns the language stored in ctx, or Default.
func LangFrom(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
		return v
	}
	return Default
}
