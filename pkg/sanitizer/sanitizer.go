package sanitizer

import (
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

func trimAndLower(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return s
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func dropControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// SanitizeEmail lowercases and trims an address. The result doubles as the username.
func SanitizeEmail(input string) string {
	return Pipeline{trimAndLower}.Apply(input)
}

func SanitizeUsername(input string) string {
	return SanitizeEmail(input)
}

// SanitizeDescription keeps line breaks and tabs but drops other control characters.
func SanitizeDescription(input string) string {
	p := Pipeline{
		normalizeNewlines,
		dropControl,
		strings.TrimSpace,
	}
	return p.Apply(input)
}
