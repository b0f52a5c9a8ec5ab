package http

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// MaxSourceLength bounds the source tag, in runes.
const MaxSourceLength = 64

// Sanitizer cleans caller-supplied labels before they reach logs and history.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer creates a sanitizer that strips all markup.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// Source strips markup and control characters, trims whitespace and caps
// the length.
func (s *Sanitizer) Source(raw string) string {
	if raw == "" {
		return ""
	}

	clean := html.UnescapeString(s.policy.Sanitize(raw))
	clean = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, clean)
	clean = strings.TrimSpace(clean)

	if utf8.RuneCountInString(clean) > MaxSourceLength {
		clean = string([]rune(clean)[:MaxSourceLength])
		clean = strings.TrimSpace(clean)
	}
	return clean
}
