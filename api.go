package i18nbackend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	translateEndpoint   = "/translate"
	missingKeysEndpoint = "/missing-keys"
	apiKeyHeader        = "x-api-key"
)

// APIClient talks to the remote translation API. It implements Translator.
type APIClient struct {
	fetcher *Fetcher
	baseURL string
	apiKey  string
}

// NewAPIClient creates a client for the API rooted at baseURL.
func NewAPIClient(fetcher *Fetcher, baseURL, apiKey string) *APIClient {
	return &APIClient{
		fetcher: fetcher,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// translateBody is the wire format of a translation request. Nested values
// are sent as JSON-encoded strings and flags as "true" strings.
type translateBody struct {
	InputMethod          string `json:"inputMethod"`
	Text                 string `json:"text"`
	SourceLanguage       string `json:"sourceLanguage"`
	TargetLanguages      string `json:"targetLanguages"`
	OutputFormat         string `json:"outputFormat"`
	PreservePlaceholders string `json:"preservePlaceholders"`
	EnablePluralization  string `json:"enablePluralization"`
	Namespace            string `json:"namespace"`
}

type missingKeysBody struct {
	Keys []MissingKey `json:"keys"`
}

// Translate submits a namespace for translation and returns the subtree for
// the target language.
func (c *APIClient) Translate(ctx context.Context, req TranslateRequest) (Resource, error) {
	text, err := json.Marshal(req.Resource)
	if err != nil {
		return nil, fmt.Errorf("encoding source resource: %w", err)
	}
	targets, err := json.Marshal([]string{req.TargetLang})
	if err != nil {
		return nil, fmt.Errorf("encoding target languages: %w", err)
	}

	body, err := json.Marshal(translateBody{
		InputMethod:          "text",
		Text:                 string(text),
		SourceLanguage:       req.SourceLang,
		TargetLanguages:      string(targets),
		OutputFormat:         "json",
		PreservePlaceholders: "true",
		EnablePluralization:  "true",
		Namespace:            req.Namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding translate request: %w", err)
	}

	url := c.baseURL + translateEndpoint
	resp, err := c.post(ctx, url, body)
	if err != nil {
		return nil, err
	}

	return ExtractTranslation(resp.Body, req.TargetLang, url)
}

// SaveMissingKeys delivers a batch of missing keys.
func (c *APIClient) SaveMissingKeys(ctx context.Context, keys []MissingKey) error {
	body, err := json.Marshal(missingKeysBody{Keys: keys})
	if err != nil {
		return fmt.Errorf("encoding missing keys: %w", err)
	}

	_, err = c.post(ctx, c.baseURL+missingKeysEndpoint, body)
	return err
}

func (c *APIClient) post(ctx context.Context, url string, body []byte) (*FetchResponse, error) {
	resp, err := c.fetcher.Fetch(ctx, FetchRequest{
		Method:  http.MethodPost,
		URL:     url,
		Body:    body,
		Headers: map[string]string{apiKeyHeader: c.apiKey},
	})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &HTTPError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return resp, nil
}

// ExtractTranslation pulls the subtree for language out of a translation
// response. The API has been seen to return the subtree both as an object and
// as a JSON-encoded string; both are accepted.
func ExtractTranslation(body []byte, language, url string) (Resource, error) {
	if !gjson.ValidBytes(body) {
		return nil, &ParseError{URL: url, Cause: errors.New("response is not valid JSON")}
	}

	result := gjson.GetBytes(body, gjson.Escape(language))

	var raw string
	switch {
	case !result.Exists():
		return nil, &ParseError{URL: url, Cause: fmt.Errorf("response has no %q translation", language)}
	case result.Type == gjson.String:
		raw = result.Str
	case result.IsObject():
		raw = result.Raw
	default:
		return nil, &ParseError{URL: url, Cause: fmt.Errorf("unexpected %s value for %q", result.Type, language)}
	}

	res, err := ParseJSON([]byte(raw))
	if err != nil {
		return nil, &ParseError{URL: url, Cause: err}
	}
	return res, nil
}

var _ Translator = (*APIClient)(nil)
