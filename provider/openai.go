package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/ZaguanLabs/i18nbackend"
)

// OpenAIProvider translates whole namespaces using OpenAI's JSON mode.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
	context     string
	glossary    map[string]string
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string            // OpenAI API key
	Model       string            // Model to use (default: "gpt-4o-mini")
	Temperature float32           // Temperature for generation (default: 0.3)
	BaseURL     string            // Custom base URL (optional)
	Context     string            // What the application is, e.g. "e-commerce checkout"
	Glossary    map[string]string // Preferred translations for recurring phrases
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
		context:     cfg.Context,
		glossary:    cfg.Glossary,
	}
}

// Translate translates a namespace into the target language. Every key of the
// source must come back; otherwise a *KeyMismatchError is returned.
func (p *OpenAIProvider) Translate(ctx context.Context, req TranslateRequest) (Resource, error) {
	if len(req.Resource) == 0 {
		return Resource{}, nil
	}

	userMessage, err := json.Marshal(req.Resource)
	if err != nil {
		return nil, &Error{Message: "encoding source namespace", Cause: err}
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.buildSystemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: string(userMessage)},
		},
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, &Error{
			Message:   "OpenAI API call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	if len(resp.Choices) == 0 {
		return nil, &Error{
			Message:   "no response from OpenAI",
			Retryable: true,
		}
	}

	return parseResponse(resp.Choices[0].Message.Content, req.Resource)
}

func (p *OpenAIProvider) buildSystemPrompt(req TranslateRequest) string {
	sourceLang := req.SourceLang
	if sourceLang == "" {
		sourceLang = i18nbackend.DefaultSourceLanguage
	}
	sourceName := i18nbackend.LanguageName(sourceLang)
	targetName := i18nbackend.LanguageName(req.TargetLang)

	contextText := "The strings are user interface text of a web application."
	if p.context != "" {
		contextText = fmt.Sprintf("The strings are user interface text for: %s. Adapt the tone to this context.", p.context)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `# Role
You are an expert software localizer translating from %s to %s with the fluency of a native speaker.

# Context
%s`, sourceName, targetName, contextText)

	if req.Namespace != "" {
		fmt.Fprintf(&b, "\nThe strings belong to the %q namespace.", req.Namespace)
	}

	fmt.Fprintf(&b, `

# Task
You receive a JSON object of translation keys. Translate every string value into idiomatic %s.

# Rules
- **Keys**: Never translate, rename, add or drop keys. Keep the exact nesting.
- **Interpolation**: Keep placeholders such as {{name}}, {count}, %%s and $t(key) untouched.
- **Plurals**: Keys ending in _zero, _one, _two, _few, _many or _other are plural forms. Translate each form naturally.
- **Markup**: Do NOT translate HTML tags, attributes, URLs or email addresses.
- **Natural Flow**: Avoid literal translations and keep labels short.`, targetName)

	if len(p.glossary) > 0 {
		b.WriteString("\n\n# Glossary\nPrefer these translations:")
		terms := make([]string, 0, len(p.glossary))
		for term := range p.glossary {
			terms = append(terms, term)
		}
		sort.Strings(terms)
		for _, term := range terms {
			fmt.Fprintf(&b, "\n- %q → %s", term, p.glossary[term])
		}
	}

	b.WriteString(`

# Format
Return only the translated JSON object with the same keys as the input.
- Do NOT wrap in Markdown code blocks.`)

	return b.String()
}

// parseResponse decodes the model output and checks it covers source.
// A lone "translation" or "translations" wrapper object is unwrapped.
func parseResponse(content string, source Resource) (Resource, error) {
	res, err := i18nbackend.ParseJSON([]byte(strings.TrimSpace(content)))
	if err != nil {
		return nil, &Error{Message: "invalid response format from OpenAI", Cause: err}
	}

	if len(res) == 1 {
		for _, wrapper := range []string{"translation", "translations"} {
			if inner, ok := res[wrapper].(map[string]any); ok {
				if _, isKey := source[wrapper]; !isKey {
					res = Resource(inner)
				}
			}
		}
	}

	if missing := i18nbackend.MissingKeys(source, res); len(missing) > 0 {
		keys := make([]string, 0, len(missing))
		for k := range missing {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return nil, &KeyMismatchError{Missing: keys}
	}

	return res, nil
}

func isRetryableError(err error) bool {
	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"rate limit",
		"timeout",
		"connection refused",
		"temporary",
		"503",
		"502",
		"429",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// Verify OpenAIProvider implements Translator
var _ Translator = (*OpenAIProvider)(nil)
