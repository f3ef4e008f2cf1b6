// Package keygen derives stable dotted i18n keys from design-tree node
// paths and text content.
//
// A key is built from the normalized names of the node's closest ancestors
// plus the normalized first line of the text itself:
//
//	path ["Page 1", "Checkout", "Footer"], text "Save changes"
//	  -> "page_1.checkout.footer.save_changes"
//
// Key generation is deterministic for a fixed traversal order: re-running
// extraction on an unchanged design yields identical keys. Duplicate base
// keys are disambiguated with a numeric suffix (_2, _3, ...) in encounter
// order.
package keygen

import (
	"strconv"
	"strings"
)

const (
	// maxTokenLen is the maximum length of a single normalized token.
	maxTokenLen = 40
	// maxPathDepth is how many ancestors (closest to the leaf) contribute
	// to the key prefix.
	maxPathDepth = 4

	// placeholderPath is the fallback token for unnameable path segments.
	// Segments that normalize to this are dropped from the prefix.
	placeholderPath = "unknown"
	// placeholderText is the fallback token for text that normalizes to
	// nothing (e.g. emoji-only or punctuation-only strings).
	placeholderText = "text"
)

// Generator produces dotted keys and tracks base-key collisions for one
// extraction run. It is not safe for concurrent use; each run owns its own
// Generator so independent runs never cross-contaminate.
type Generator struct {
	counts map[string]int
}

// New returns a Generator with an empty collision table.
func New() *Generator {
	return &Generator{counts: make(map[string]int)}
}

// Derive builds the dotted key for a text node. path holds the ancestor
// names ordered root-first; text is the node's raw content (only the first
// line contributes).
func (g *Generator) Derive(path []string, text string) string {
	token := Normalize(firstLine(text), placeholderText)

	prefix := prefixFromPath(path)
	key := token
	if prefix != "" {
		key = prefix + "." + token
	}

	g.counts[key]++
	if n := g.counts[key]; n > 1 {
		return key + "_" + strconv.Itoa(n)
	}
	return key
}

// prefixFromPath joins the normalized last maxPathDepth ancestors with dots,
// dropping segments that carry no usable name.
func prefixFromPath(path []string) string {
	if len(path) > maxPathDepth {
		path = path[len(path)-maxPathDepth:]
	}
	segs := make([]string, 0, len(path))
	for _, p := range path {
		s := Normalize(p, placeholderPath)
		if s == "" || s == placeholderPath {
			continue
		}
		segs = append(segs, s)
	}
	return strings.Join(segs, ".")
}

// Normalize reduces s to a lowercase token of [a-z0-9_]: characters outside
// [a-z0-9] and whitespace are treated as separators, separator runs collapse
// to a single underscore, and the result is truncated to maxTokenLen. When
// nothing survives, fallback is returned.
func Normalize(s, fallback string) string {
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	token := strings.Join(strings.Fields(b.String()), "_")
	if len(token) > maxTokenLen {
		token = token[:maxTokenLen]
		token = strings.TrimRight(token, "_")
	}
	if token == "" {
		return fallback
	}
	return token
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
