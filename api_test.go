package i18nbackend

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTranslation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		lang    string
		want    Resource
		wantErr bool
	}{
		{
			name: "object subtree",
			body: `{"es":{"greeting":"Hola","nested":{"bye":"Adiós"}}}`,
			lang: "es",
			want: Resource{"greeting": "Hola", "nested": map[string]any{"bye": "Adiós"}},
		},
		{
			name: "string encoded subtree",
			body: `{"es":"{\"greeting\":\"Hola\"}"}`,
			lang: "es",
			want: Resource{"greeting": "Hola"},
		},
		{
			name: "language with dot",
			body: `{"x.y":{"k":"v"}}`,
			lang: "x.y",
			want: Resource{"k": "v"},
		},
		{
			name: "region subtag",
			body: `{"pt-BR":{"k":"v"},"pt":{"k":"w"}}`,
			lang: "pt-BR",
			want: Resource{"k": "v"},
		},
		{
			name:    "missing language",
			body:    `{"fr":{"k":"v"}}`,
			lang:    "es",
			wantErr: true,
		},
		{
			name:    "unexpected type",
			body:    `{"es":42}`,
			lang:    "es",
			wantErr: true,
		},
		{
			name:    "string that is not JSON",
			body:    `{"es":"Hola"}`,
			lang:    "es",
			wantErr: true,
		},
		{
			name:    "invalid body",
			body:    `<html>`,
			lang:    "es",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractTranslation([]byte(tt.body), tt.lang, "http://api/translate")
			if tt.wantErr {
				var pe *ParseError
				require.ErrorAs(t, err, &pe)
				assert.Equal(t, "http://api/translate", pe.URL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAPIClient_TranslateHTTPError(t *testing.T) {
	srv := newFakeServer(t)
	srv.route("/v1/translate", status(http.StatusUnauthorized))

	c := NewAPIClient(NewFetcher(nil, time.Second, nil, discardLogger()), srv.URL+"/v1/", "bad")
	_, err := c.Translate(context.Background(), TranslateRequest{
		Resource:   Resource{"k": "v"},
		SourceLang: "en",
		TargetLang: "es",
		Namespace:  "common",
	})

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
	assert.Equal(t, srv.URL+"/v1/translate", httpErr.URL)
}

func TestAPIClient_SaveMissingKeys(t *testing.T) {
	srv := newFakeServer(t)
	srv.route("/v1/missing-keys", ok(`{"saved":1}`))

	c := NewAPIClient(NewFetcher(nil, time.Second, nil, discardLogger()), srv.URL+"/v1", "secret")
	err := c.SaveMissingKeys(context.Background(), []MissingKey{
		{Key: "k", DefaultValue: "v", Namespace: "common", Language: "es"},
	})
	require.NoError(t, err)

	assert.JSONEq(t,
		`{"keys":[{"key":"k","defaultValue":"v","namespace":"common","language":"es"}]}`,
		string(srv.body("/v1/missing-keys", 0)))
	assert.Equal(t, "secret", srv.header("/v1/missing-keys", 0).Get("x-api-key"))
	assert.Equal(t, "application/json", srv.header("/v1/missing-keys", 0).Get("Content-Type"))
}
