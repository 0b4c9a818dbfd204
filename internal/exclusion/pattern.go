package exclusion

import "strings"

// Pattern is a parsed wildcard exclusion. It always behaves like "*text*":
// a case-insensitive substring match. The zero Pattern matches nothing.
type Pattern struct {
	raw  string
	text string // lowercased, wildcards stripped
}

// ParsePattern trims surrounding whitespace and any leading/trailing '*'
// from s. Inner '*' characters are kept literally.
func ParsePattern(s string) Pattern {
	text := strings.Trim(strings.TrimSpace(s), "*")
	return Pattern{raw: s, text: strings.ToLower(text)}
}

// Empty reports whether the pattern matches nothing.
func (p Pattern) Empty() bool { return p.text == "" }

// Matches reports whether s contains the pattern text.
func (p Pattern) Matches(s string) bool {
	if p.text == "" || s == "" {
		return false
	}
	return strings.Contains(strings.ToLower(s), p.text)
}

// String returns the normalized "*text*" form, or "" for an empty pattern.
func (p Pattern) String() string {
	if p.text == "" {
		return ""
	}
	return "*" + p.text + "*"
}
