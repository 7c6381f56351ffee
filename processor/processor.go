// Package processor provides resource parsers and HTML key extraction.
package processor

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ZaguanLabs/i18nbackend"
)

// Resource is an alias to the main package type.
type Resource = i18nbackend.Resource

// Error indicates content could not be processed.
type Error struct {
	Message     string
	Cause       error
	ContentType string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s processing error: %s: %v", e.ContentType, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s processing error: %s", e.ContentType, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ParseYAML decodes a YAML namespace. It satisfies i18nbackend.ResponseParser.
// Mapping keys are stringified so nested values are always map[string]any.
func ParseYAML(data []byte) (Resource, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &Error{Message: "failed to parse YAML", Cause: err, ContentType: "yaml"}
	}
	if doc == nil {
		return Resource{}, nil
	}

	root, ok := normalizeYAML(doc).(map[string]any)
	if !ok {
		return nil, &Error{Message: fmt.Sprintf("top level is %T, want a mapping", doc), ContentType: "yaml"}
	}
	return Resource(root), nil
}

func normalizeYAML(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			val[k] = normalizeYAML(child)
		}
		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[fmt.Sprint(k)] = normalizeYAML(child)
		}
		return out
	case []any:
		for i, child := range val {
			val[i] = normalizeYAML(child)
		}
		return val
	default:
		return v
	}
}

var _ i18nbackend.ResponseParser = ParseYAML
