package transport

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// maxSanitizePasses bounds the strip loop; values that still change after
// this many passes lose their angle brackets.
const maxSanitizePasses = 8

var (
	stripPolicyOnce sync.Once
	stripPolicy     *bluemonday.Policy

	tagPattern = regexp.MustCompile(
		`<(/?)([a-zA-Z][a-zA-Z0-9-]*)` +
			`(?:\s+[^\s/>"'=]+(?:\s*=\s*(?:"[^"]*"|'[^']*'|[^\s"'=<>` + "`" + `]+))?)*` +
			`\s*(/?)>`)
	commentPattern = regexp.MustCompile(`<!--[\s\S]*?-->`)

	voidElements = map[string]bool{
		"area": true, "base": true, "br": true, "col": true, "embed": true,
		"hr": true, "img": true, "input": true, "link": true, "meta": true,
		"source": true, "track": true, "wbr": true,
	}
)

// SanitizePayload strips HTML elements from every value so the spreadsheet
// only ever receives plain text. Entity-encoded markup is decoded first and
// stripped like literal markup. A "<" that does not open an element is kept,
// so "a<b and c>d" and "R&D <3" arrive as typed.
func SanitizePayload(payload Payload) Payload {
	if payload == nil {
		return nil
	}
	policy := stripSanitizer()
	out := make(Payload, len(payload))
	for key, value := range payload {
		out[key] = sanitizeValue(policy, value)
	}
	return out
}

func sanitizeValue(policy *bluemonday.Policy, value string) string {
	if !strings.ContainsAny(value, "<>&") {
		return value
	}
	current := value
	for pass := 0; pass < maxSanitizePasses; pass++ {
		next := sanitizeOnce(policy, current)
		if next == current {
			return next
		}
		current = next
	}
	return strings.NewReplacer("<", "", ">", "").Replace(current)
}

// sanitizeOnce decodes entities until stable, escapes every "<" that does
// not start an element or comment, strips what remains with the policy and
// decodes the policy's escaping.
func sanitizeOnce(policy *bluemonday.Policy, value string) string {
	decoded := unescapeAll(value)
	return html.UnescapeString(policy.Sanitize(escapeStrayBrackets(decoded)))
}

func unescapeAll(value string) string {
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(value)
		if next == value {
			break
		}
		value = next
	}
	return value
}

// escapeStrayBrackets keeps comments, void or self-closing tags and tags
// with a matching open/close partner; every other "<" becomes "&lt;".
func escapeStrayBrackets(value string) string {
	markup := make(map[int]bool)
	for _, loc := range commentPattern.FindAllStringIndex(value, -1) {
		markup[loc[0]] = true
	}

	type tag struct {
		start   int
		name    string
		closing bool
	}
	var tags []tag
	for _, loc := range tagPattern.FindAllStringSubmatchIndex(value, -1) {
		name := strings.ToLower(value[loc[4]:loc[5]])
		closing := loc[3] > loc[2]
		selfClosing := loc[7] > loc[6]
		if !closing && (selfClosing || voidElements[name]) {
			markup[loc[0]] = true
			continue
		}
		tags = append(tags, tag{start: loc[0], name: name, closing: closing})
	}
	for i, open := range tags {
		if open.closing {
			continue
		}
		for _, end := range tags[i+1:] {
			if end.closing && end.name == open.name {
				markup[open.start] = true
				markup[end.start] = true
				break
			}
		}
	}

	var b strings.Builder
	b.Grow(len(value))
	for i := 0; i < len(value); i++ {
		if value[i] == '<' && !markup[i] {
			b.WriteString("&lt;")
			continue
		}
		b.WriteByte(value[i])
	}
	return b.String()
}

func stripSanitizer() *bluemonday.Policy {
	stripPolicyOnce.Do(func() {
		stripPolicy = bluemonday.StrictPolicy()
	})
	return stripPolicy
}
