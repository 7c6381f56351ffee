package i18nbackend

import "strings"

// fingerprintSeparator joins the language and namespace components of a cache key.
const fingerprintSeparator = "|"

var fingerprintEscaper = strings.NewReplacer("%", "%25", fingerprintSeparator, "%7C")

// Fingerprint generates the cache key for a language and namespace.
// Both components are escaped so neither can embed the separator.
func Fingerprint(language, namespace string) string {
	return LanguagePrefix(language) + fingerprintEscaper.Replace(namespace)
}

// LanguagePrefix returns the key prefix shared by every namespace of a language.
func LanguagePrefix(language string) string {
	return fingerprintEscaper.Replace(language) + fingerprintSeparator
}
