package i18nbackend

import (
	"context"
	"encoding/json"
)

// Resource is a translation namespace: keys map to strings or nested resources.
type Resource map[string]any

// MissingKey is a translation key the localization framework could not resolve.
type MissingKey struct {
	Key          string `json:"key"`
	DefaultValue string `json:"defaultValue"`
	Namespace    string `json:"namespace"`
	Language     string `json:"language"`
}

// TranslateRequest asks a Translator to translate a whole namespace.
type TranslateRequest struct {
	Resource   Resource
	SourceLang string
	TargetLang string
	Namespace  string
}

// Translator produces a translated namespace for the target language.
type Translator interface {
	Translate(ctx context.Context, req TranslateRequest) (Resource, error)
}

// ResponseParser decodes a fetched payload into a Resource.
type ResponseParser func(data []byte) (Resource, error)

// LoadPathFunc resolves the location of a namespace for a language.
type LoadPathFunc func(language, namespace string) string

// LoadErrorFunc is invoked when loading a namespace fails for a reason other than absence.
type LoadErrorFunc func(err error, language, namespace string)

// MissingKeysSavedFunc is invoked after a batch of missing keys was delivered.
type MissingKeysSavedFunc func(keys []MissingKey)

// ParseJSON is the default ResponseParser.
func ParseJSON(data []byte) (Resource, error) {
	var res Resource
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, err
	}
	if res == nil {
		res = Resource{}
	}
	return res, nil
}
