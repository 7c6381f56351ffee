package i18nbackend

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// parseLanguage accepts both "pt-BR" and "pt_BR" spellings.
func parseLanguage(code string) (language.Tag, error) {
	return language.Parse(strings.ReplaceAll(code, "_", "-"))
}

// CanonicalLanguage returns the canonical BCP 47 form of a language code
// (e.g., "pt_br" → "pt-BR"). Codes that do not parse are returned unchanged.
func CanonicalLanguage(code string) string {
	tag, err := parseLanguage(code)
	if err != nil {
		return code
	}
	return tag.String()
}

// SameLanguage reports whether two codes name the same language tag.
func SameLanguage(a, b string) bool {
	return CanonicalLanguage(a) == CanonicalLanguage(b)
}

// BaseLanguage extracts the base language (e.g., "en" from "en_US").
func BaseLanguage(code string) string {
	tag, err := parseLanguage(code)
	if err != nil {
		if i := strings.IndexAny(code, "-_"); i >= 0 {
			code = code[:i]
		}
		return strings.ToLower(code)
	}
	base, _ := tag.Base()
	return base.String()
}

// LanguageName returns the English name for a language code, for prompts and
// reports. Falls back to the code itself if unknown.
func LanguageName(code string) string {
	tag, err := parseLanguage(code)
	if err != nil {
		return code
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return code
}
