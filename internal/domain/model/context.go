package model

import "strings"

// Context is a named scan scope held by the engine
type Context struct {
	Name            string
	ID              string
	InScope         bool
	IncludePatterns []string
	ExcludePatterns []string
}

// ScopePattern is either a caller regex or a URL subtree
type ScopePattern struct {
	value   string
	subtree bool
}

// Regex wraps a caller-provided regex, submitted unchanged
func Regex(expr string) ScopePattern {
	return ScopePattern{value: expr}
}

// URLTree matches everything under the given URL as a literal prefix
func URLTree(url string) ScopePattern {
	return ScopePattern{value: url, subtree: true}
}

// IsSubtree reports whether the pattern is a URL subtree
func (p ScopePattern) IsSubtree() bool {
	return p.subtree
}

// Raw returns the pattern as given by the caller
func (p ScopePattern) Raw() string {
	return p.value
}

// Expand returns the regex text submitted to the engine
func (p ScopePattern) Expand() string {
	if p.subtree {
		return QuoteLiteral(p.value) + ".*"
	}
	return p.value
}

// QuoteLiteral quotes s with \Q...\E so every character matches literally.
// Embedded \E sequences are split out the same way the engine's regex
// dialect expects.
func QuoteLiteral(s string) string {
	if !strings.Contains(s, `\E`) {
		return `\Q` + s + `\E`
	}
	var b strings.Builder
	b.WriteString(`\Q`)
	rest := s
	for {
		idx := strings.Index(rest, `\E`)
		if idx < 0 {
			break
		}
		b.WriteString(rest[:idx])
		b.WriteString(`\E\\E\Q`)
		rest = rest[idx+2:]
	}
	b.WriteString(rest)
	b.WriteString(`\E`)
	return b.String()
}
