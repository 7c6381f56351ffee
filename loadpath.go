package i18nbackend

import (
	"net/url"
	"strings"
)

const (
	languagePlaceholder  = "{{lng}}"
	namespacePlaceholder = "{{ns}}"
)

// InterpolateLoadPath substitutes the language and namespace into a load path
// template. Values are path-escaped so they cannot introduce new segments.
func InterpolateLoadPath(template, language, namespace string) string {
	r := strings.NewReplacer(
		languagePlaceholder, url.PathEscape(language),
		namespacePlaceholder, url.PathEscape(namespace),
	)
	return r.Replace(template)
}

// resolveURL makes a resolved load path absolute against base. Paths that
// already carry a scheme are returned as is.
func resolveURL(base, path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", &ConfigError{Message: "invalid load path " + path, Cause: err}
	}
	if ref.IsAbs() {
		return path, nil
	}
	if base == "" {
		return "", &ConfigError{Message: "relative load path " + path + " requires a base URL"}
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return "", &ConfigError{Message: "invalid base URL " + base, Cause: err}
	}
	if !strings.HasSuffix(baseURL.Path, "/") {
		baseURL.Path += "/"
	}
	rel := &url.URL{
		Path:     strings.TrimPrefix(ref.Path, "/"),
		RawPath:  strings.TrimPrefix(ref.RawPath, "/"),
		RawQuery: ref.RawQuery,
	}
	return baseURL.ResolveReference(rel).String(), nil
}
