package provider

import (
	"context"
	"sync"
)

// MockProvider is a mock translator for testing.
type MockProvider struct {
	mu sync.Mutex

	Translations map[string]Resource // Canned results by target language
	Err          error               // Returned from every call when set
	CallCount    int                 // Number of times Translate was called
	LastRequest  *TranslateRequest   // Last request received
}

// NewMockProvider creates a new mock provider with a Spanish translation of
// a small "common" namespace.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]Resource{
			"es": {
				"greeting": "Hola",
				"farewell": "Adiós",
			},
		},
	}
}

// Translate returns the canned resource for the target language. Unknown
// languages get every string leaf of the source wrapped in brackets.
func (m *MockProvider) Translate(ctx context.Context, req TranslateRequest) (Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	m.LastRequest = &req

	if m.Err != nil {
		return nil, m.Err
	}
	if res, ok := m.Translations[req.TargetLang]; ok {
		return res, nil
	}
	return bracket(req.Resource), nil
}

// Calls returns the number of Translate calls so far.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount
}

// Reset resets the call count and last request.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount = 0
	m.LastRequest = nil
}

func bracket(node map[string]any) Resource {
	out := make(Resource, len(node))
	for k, v := range node {
		switch val := v.(type) {
		case string:
			out[k] = "[" + val + "]"
		case map[string]any:
			out[k] = map[string]any(bracket(val))
		case Resource:
			out[k] = map[string]any(bracket(val))
		default:
			out[k] = v
		}
	}
	return out
}

// Verify MockProvider implements Translator
var _ Translator = (*MockProvider)(nil)
