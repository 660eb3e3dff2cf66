package searcher

import (
	"strings"
)

// snippetRadius bounds how much context surrounds the first match
const snippetRadius = 120

// makeSnippet extracts a bounded excerpt of content centered on the first
// case-insensitive occurrence of the query, falling back to the first query
// token, then to the head of the content. When highlight is set, matched
// terms are wrapped in ** markers.
func makeSnippet(content, queryText string, highlight bool) string {
	if content == "" {
		return ""
	}

	lower := strings.ToLower(content)
	pos := strings.Index(lower, strings.ToLower(queryText))
	if pos < 0 {
		for _, token := range Tokenize(queryText) {
			if p := strings.Index(lower, token); p >= 0 {
				pos = p
				break
			}
		}
	}
	if pos < 0 {
		pos = 0
	}

	start := pos - snippetRadius
	if start < 0 {
		start = 0
	}
	end := pos + snippetRadius
	if end > len(content) {
		end = len(content)
	}

	// Align to rune boundaries so multi-byte characters never split
	for start > 0 && !isRuneStart(content[start]) {
		start--
	}
	for end < len(content) && !isRuneStart(content[end]) {
		end++
	}

	snippet := content[start:end]
	if highlight {
		snippet = highlightTerms(snippet, queryText)
	}

	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(content) {
		snippet += "..."
	}
	return snippet
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// highlightTerms wraps case-insensitive occurrences of the whole query, or
// failing that each query token, in ** markers
func highlightTerms(snippet, queryText string) string {
	out := wrapMatches(snippet, queryText)
	if out != snippet {
		return out
	}
	for _, token := range Tokenize(queryText) {
		out = wrapMatches(out, token)
	}
	return out
}

// wrapMatches surrounds every case-insensitive occurrence of needle in **
func wrapMatches(text, needle string) string {
	if needle == "" {
		return text
	}

	lower := strings.ToLower(text)
	lowerNeedle := strings.ToLower(needle)

	var b strings.Builder
	i := 0
	for {
		j := strings.Index(lower[i:], lowerNeedle)
		if j < 0 {
			b.WriteString(text[i:])
			break
		}
		j += i
		b.WriteString(text[i:j])
		b.WriteString("**")
		b.WriteString(text[j : j+len(needle)])
		b.WriteString("**")
		i = j + len(needle)
	}
	return b.String()
}
