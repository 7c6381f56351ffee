package processor

import (
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/ZaguanLabs/i18nbackend"
)

// DefaultKeyAttribute is the attribute that carries translation keys.
const DefaultKeyAttribute = "data-i18n"

// Pseudo attributes that target element content rather than an attribute.
const (
	targetText    = "text"
	targetHTML    = "html"
	targetPrepend = "prepend"
	targetAppend  = "append"
)

// ignoredTags contains HTML tags whose content is never localized.
var ignoredTags = map[string]bool{
	"script":   true,
	"style":    true,
	"code":     true,
	"pre":      true,
	"noscript": true,
}

// HTMLKey is one translation key referenced from markup.
type HTMLKey struct {
	Namespace string // Empty when the key names none and no default is set
	Key       string
	Target    string // "text", "html", "prepend", "append" or an attribute name
	Default   string // Current text or attribute value in the markup
	Element   string // Tag name of the element carrying the key
}

// ID returns "namespace:key", or just the key without a namespace.
func (k HTMLKey) ID() string {
	if k.Namespace == "" {
		return k.Key
	}
	return k.Namespace + ":" + k.Key
}

// HTMLKeyExtractor finds translation keys in data-i18n attributes and renders
// localized markup. Attribute values follow the "[title]ns:key;other.key" form.
type HTMLKeyExtractor struct {
	attribute        string
	defaultNamespace string
}

// NewHTMLKeyExtractor creates an extractor for DefaultKeyAttribute.
// Keys without a namespace prefix get defaultNamespace.
func NewHTMLKeyExtractor(defaultNamespace string) *HTMLKeyExtractor {
	return &HTMLKeyExtractor{
		attribute:        DefaultKeyAttribute,
		defaultNamespace: defaultNamespace,
	}
}

// WithAttribute changes the attribute that carries keys.
func (p *HTMLKeyExtractor) WithAttribute(attr string) *HTMLKeyExtractor {
	p.attribute = attr
	return p
}

// Extract returns every key referenced in content in document order.
// A key repeated on several elements is returned once.
func (p *HTMLKeyExtractor) Extract(content string) ([]HTMLKey, error) {
	doc, err := p.parse(content)
	if err != nil {
		return nil, err
	}

	var keys []HTMLKey
	seen := make(map[string]bool)
	p.each(doc, func(s *goquery.Selection, refs []HTMLKey) {
		for _, ref := range refs {
			id := ref.ID() + "\x00" + ref.Target
			if seen[id] {
				continue
			}
			seen[id] = true
			keys = append(keys, ref)
		}
	})
	return keys, nil
}

// Namespaces returns the sorted distinct namespaces of keys.
func Namespaces(keys []HTMLKey) []string {
	set := make(map[string]bool)
	for _, k := range keys {
		set[k.Namespace] = true
	}
	out := make([]string, 0, len(set))
	for ns := range set {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// Apply replaces referenced text and attributes with values from resources,
// indexed by namespace. Keys resolve through nested resources with dotted
// paths. Keys with no value keep their markup and are returned as missing.
func (p *HTMLKeyExtractor) Apply(content string, resources map[string]i18nbackend.Resource) (string, []HTMLKey, error) {
	doc, err := p.parse(content)
	if err != nil {
		return "", nil, err
	}

	flat := make(map[string]map[string]string, len(resources))
	for ns, res := range resources {
		flat[ns] = i18nbackend.Flatten(res)
	}

	var missing []HTMLKey
	p.each(doc, func(s *goquery.Selection, refs []HTMLKey) {
		for _, ref := range refs {
			value, ok := flat[ref.Namespace][ref.Key]
			if !ok {
				missing = append(missing, ref)
				continue
			}
			applyValue(s, ref.Target, value)
		}
	})

	out, err := doc.Html()
	if err != nil {
		return "", nil, &Error{Message: "failed to serialize HTML", Cause: err, ContentType: "html"}
	}
	return out, missing, nil
}

func (p *HTMLKeyExtractor) parse(content string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, &Error{Message: "failed to parse HTML", Cause: err, ContentType: "html"}
	}
	return doc, nil
}

// each visits every element carrying the key attribute outside ignored
// subtrees, with its parsed key references.
func (p *HTMLKeyExtractor) each(doc *goquery.Document, fn func(*goquery.Selection, []HTMLKey)) {
	doc.Find("[" + p.attribute + "]").Each(func(_ int, s *goquery.Selection) {
		if insideIgnored(s.Nodes[0]) {
			return
		}
		value, _ := s.Attr(p.attribute)
		fn(s, p.parseRefs(s, value))
	})
}

// parseRefs splits "[title]ns:key;other" into key references.
func (p *HTMLKeyExtractor) parseRefs(s *goquery.Selection, value string) []HTMLKey {
	var refs []HTMLKey
	for _, part := range strings.Split(value, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		target := targetText
		if strings.HasPrefix(part, "[") {
			if end := strings.Index(part, "]"); end > 0 {
				target = strings.ToLower(part[1:end])
				part = strings.TrimSpace(part[end+1:])
			}
		}
		if part == "" {
			continue
		}

		ns, key := p.defaultNamespace, part
		if i := strings.Index(part, ":"); i > 0 {
			ns, key = part[:i], part[i+1:]
		}

		refs = append(refs, HTMLKey{
			Namespace: ns,
			Key:       key,
			Target:    target,
			Default:   currentValue(s, target),
			Element:   goquery.NodeName(s),
		})
	}
	return refs
}

func currentValue(s *goquery.Selection, target string) string {
	switch target {
	case targetText, targetPrepend, targetAppend:
		return strings.TrimSpace(s.Text())
	case targetHTML:
		inner, _ := s.Html()
		return strings.TrimSpace(inner)
	default:
		v, _ := s.Attr(target)
		return v
	}
}

func applyValue(s *goquery.Selection, target, value string) {
	switch target {
	case targetText:
		setText(s.Nodes[0], value)
	case targetHTML:
		s.SetHtml(value)
	case targetPrepend:
		s.PrependHtml(html.EscapeString(value))
	case targetAppend:
		s.AppendHtml(html.EscapeString(value))
	default:
		s.SetAttr(target, value)
	}
}

// setText replaces the element's text. When the element holds a single text
// node its surrounding whitespace is kept.
func setText(n *html.Node, value string) {
	if n.FirstChild != nil && n.FirstChild == n.LastChild && n.FirstChild.Type == html.TextNode {
		n.FirstChild.Data = preserveWhitespace(n.FirstChild.Data, value)
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: value})
}

func insideIgnored(n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type != html.ElementNode {
			continue
		}
		if ignoredTags[strings.ToLower(cur.Data)] {
			return true
		}
		for _, attr := range cur.Attr {
			if attr.Key == "data-no-translate" {
				return true
			}
		}
	}
	return false
}

// preserveWhitespace preserves the original leading/trailing whitespace.
func preserveWhitespace(original, translated string) string {
	leadingLen := len(original) - len(strings.TrimLeft(original, " \t\n\r"))
	leading := original[:leadingLen]

	trailing := ""
	if trimmed := strings.TrimRight(original, " \t\n\r"); len(trimmed) > leadingLen {
		trailing = original[len(trimmed):]
	}

	return leading + translated + trailing
}
