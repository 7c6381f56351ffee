package i18nbackend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalLanguage(t *testing.T) {
	assert.Equal(t, "pt-BR", CanonicalLanguage("pt_br"))
	assert.Equal(t, "en-US", CanonicalLanguage("en-us"))
	assert.Equal(t, "es", CanonicalLanguage("es"))
	assert.Equal(t, "not a tag!", CanonicalLanguage("not a tag!"))
}

func TestSameLanguage(t *testing.T) {
	assert.True(t, SameLanguage("en_US", "en-US"))
	assert.True(t, SameLanguage("EN", "en"))
	assert.False(t, SameLanguage("en", "en-US"))
	assert.False(t, SameLanguage("es", "en"))
}

func TestBaseLanguage(t *testing.T) {
	tests := map[string]string{
		"en_US":      "en",
		"pt-BR":      "pt",
		"ja":         "ja",
		"zh_Hant_TW": "zh",
	}
	for code, want := range tests {
		assert.Equal(t, want, BaseLanguage(code), code)
	}
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "Spanish", LanguageName("es"))
	assert.Equal(t, "German", LanguageName("de"))
	assert.Equal(t, "Brazilian Portuguese", LanguageName("pt_BR"))
	assert.Equal(t, "not a tag!", LanguageName("not a tag!"))
}
