// Package sanitize cleans identifiers that arrive from remote callers (MCP
// tools, the HTTP inject endpoint) before they reach the network, the
// recorder or a terminal.
package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxSymbolLength is the maximum number of runes kept in a stimulus symbol.
const MaxSymbolLength = 16

// MaxNameLength is the maximum length of a modality name.
const MaxNameLength = 32

var (
	reRepeatedHyphens     = regexp.MustCompile(`-{2,}`)
	reRepeatedUnderscores = regexp.MustCompile(`_{2,}`)
)

// Symbol strips control characters and invalid UTF-8 from a stimulus symbol
// and truncates it to MaxSymbolLength runes. Whitespace other than control
// characters is kept, since a space can be part of an alphabet.
func Symbol(input string) string {
	if input == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(input))
	n := 0
	for _, r := range stripControlChars(input) {
		if r == utf8.RuneError {
			continue
		}
		if n == MaxSymbolLength {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}

// Name normalizes a modality name to lowercase [a-z0-9_-], collapses repeated
// separators and truncates to MaxNameLength.
func Name(input string) string {
	if input == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range strings.ToLower(input) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	s := reRepeatedHyphens.ReplaceAllString(b.String(), "-")
	s = reRepeatedUnderscores.ReplaceAllString(s, "_")

	if len(s) > MaxNameLength {
		s = s[:MaxNameLength]
	}
	return s
}

// stripControlChars removes C0 control characters and DEL.
func stripControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
