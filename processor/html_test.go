package processor

import (
	"strings"
	"testing"

	"github.com/ZaguanLabs/i18nbackend"
)

func TestHTMLKeyExtractor_Extract_Basic(t *testing.T) {
	p := NewHTMLKeyExtractor("common")

	html := `<div><h1 data-i18n="title">Hello World</h1><p data-i18n="checkout:pay">Pay now</p></div>`
	keys, err := p.Extract(html)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(keys) != 2 {
		t.Fatalf("Expected 2 keys, got %d", len(keys))
	}

	if keys[0].Namespace != "common" || keys[0].Key != "title" {
		t.Errorf("Unexpected first key: %+v", keys[0])
	}
	if keys[0].Default != "Hello World" {
		t.Errorf("Expected default 'Hello World', got %q", keys[0].Default)
	}
	if keys[0].Target != "text" || keys[0].Element != "h1" {
		t.Errorf("Unexpected target/element: %+v", keys[0])
	}

	if keys[1].ID() != "checkout:pay" {
		t.Errorf("Expected 'checkout:pay', got %q", keys[1].ID())
	}
}

func TestHTMLKeyExtractor_Extract_AttributeTargets(t *testing.T) {
	p := NewHTMLKeyExtractor("common")

	html := `<input data-i18n="[placeholder]form.email;[title]form.emailHint" placeholder="Email" title="Your email">`
	keys, err := p.Extract(html)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(keys) != 2 {
		t.Fatalf("Expected 2 keys, got %d", len(keys))
	}
	if keys[0].Target != "placeholder" || keys[0].Key != "form.email" || keys[0].Default != "Email" {
		t.Errorf("Unexpected placeholder key: %+v", keys[0])
	}
	if keys[1].Target != "title" || keys[1].Default != "Your email" {
		t.Errorf("Unexpected title key: %+v", keys[1])
	}
}

func TestHTMLKeyExtractor_Extract_IgnoredTags(t *testing.T) {
	p := NewHTMLKeyExtractor("common")

	html := `<div>
		<p data-i18n="keep">Translate me</p>
		<pre><span data-i18n="skipped.pre">x</span></pre>
		<code data-i18n="skipped.code">const x = 1;</code>
		<div data-no-translate><span data-i18n="skipped.marked">y</span></div>
	</div>`

	keys, err := p.Extract(html)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(keys) != 1 || keys[0].Key != "keep" {
		t.Fatalf("Expected only 'keep', got %+v", keys)
	}
}

func TestHTMLKeyExtractor_Extract_Deduplication(t *testing.T) {
	p := NewHTMLKeyExtractor("common")

	html := `<div>
		<p data-i18n="hello">Hello</p>
		<p data-i18n="hello">Hello</p>
		<p data-i18n="common:hello">Hello</p>
		<p data-i18n="[title]hello" title="Hello">Hi</p>
	</div>`

	keys, err := p.Extract(html)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	// The text reference appears once; the title reference is separate.
	if len(keys) != 2 {
		t.Fatalf("Expected 2 unique keys, got %d: %+v", len(keys), keys)
	}
}

func TestHTMLKeyExtractor_WithAttribute(t *testing.T) {
	p := NewHTMLKeyExtractor("").WithAttribute("data-t")

	keys, err := p.Extract(`<span data-t="a">A</span><span data-i18n="b">B</span>`)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(keys) != 1 || keys[0].ID() != "a" {
		t.Fatalf("Expected only 'a', got %+v", keys)
	}
}

func TestNamespaces(t *testing.T) {
	keys := []HTMLKey{
		{Namespace: "common", Key: "a"},
		{Namespace: "checkout", Key: "b"},
		{Namespace: "common", Key: "c"},
	}

	got := Namespaces(keys)
	if strings.Join(got, ",") != "checkout,common" {
		t.Errorf("Unexpected namespaces: %v", got)
	}
}

func TestHTMLKeyExtractor_Apply(t *testing.T) {
	p := NewHTMLKeyExtractor("common")

	html := `<div><p data-i18n="greeting">Hello</p><p data-i18n="nav.home">Home</p><p data-i18n="missing">Keep</p></div>`
	resources := map[string]i18nbackend.Resource{
		"common": {
			"greeting": "Hola",
			"nav":      map[string]any{"home": "Inicio"},
		},
	}

	result, missing, err := p.Apply(html, resources)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if !strings.Contains(result, ">Hola<") {
		t.Errorf("Result should contain 'Hola', got: %s", result)
	}
	if !strings.Contains(result, ">Inicio<") {
		t.Errorf("Result should contain nested 'Inicio', got: %s", result)
	}
	if !strings.Contains(result, ">Keep<") {
		t.Errorf("Missing key should keep its markup, got: %s", result)
	}

	if len(missing) != 1 || missing[0].Key != "missing" {
		t.Errorf("Expected 'missing' to be reported, got %+v", missing)
	}
}

func TestHTMLKeyExtractor_Apply_Targets(t *testing.T) {
	p := NewHTMLKeyExtractor("common")

	html := `<a data-i18n="[title]tip;[html]rich;[append]suffix" title="Tip">Old</a>`
	resources := map[string]i18nbackend.Resource{
		"common": {
			"tip":    "Consejo",
			"rich":   "<b>Nuevo</b>",
			"suffix": " & más",
		},
	}

	result, missing, err := p.Apply(html, resources)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("Expected no missing keys, got %+v", missing)
	}

	if !strings.Contains(result, `title="Consejo"`) {
		t.Errorf("Title attribute not replaced: %s", result)
	}
	if !strings.Contains(result, "<b>Nuevo</b> &amp; más") {
		t.Errorf("HTML and appended text not applied: %s", result)
	}
	if strings.Contains(result, "Old") {
		t.Errorf("Old content should be replaced: %s", result)
	}
}

func TestHTMLKeyExtractor_Apply_PreservesWhitespace(t *testing.T) {
	p := NewHTMLKeyExtractor("common")

	result, _, err := p.Apply(`<p data-i18n="hello">  Hello  </p>`, map[string]i18nbackend.Resource{
		"common": {"hello": "Hola"},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if !strings.Contains(result, "  Hola  ") {
		t.Errorf("Result should preserve whitespace, got: %s", result)
	}
}

func TestHTMLKeyExtractor_Apply_ReplacesMixedContent(t *testing.T) {
	p := NewHTMLKeyExtractor("common")

	result, _, err := p.Apply(`<p data-i18n="hello">Hello <b>there</b></p>`, map[string]i18nbackend.Resource{
		"common": {"hello": "Hola"},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if !strings.Contains(result, "<p data-i18n=\"hello\">Hola</p>") {
		t.Errorf("Expected element text to be replaced, got: %s", result)
	}
}

func TestPreserveWhitespace(t *testing.T) {
	tests := []struct {
		original   string
		translated string
		expected   string
	}{
		{"Hello", "Hola", "Hola"},
		{"  Hello", "Hola", "  Hola"},
		{"Hello  ", "Hola", "Hola  "},
		{"\n\tHello\n", "Hola", "\n\tHola\n"},
		{"   ", "Hola", "   Hola"},
	}

	for _, tt := range tests {
		result := preserveWhitespace(tt.original, tt.translated)
		if result != tt.expected {
			t.Errorf("preserveWhitespace(%q, %q) = %q, want %q", tt.original, tt.translated, result, tt.expected)
		}
	}
}
