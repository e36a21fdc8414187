package slug

import (
	"crypto/rand"
	"strings"
	"unicode"
)

const (
	separator = "-"
	alphabet  = "abcdefghijklmnopqrstuvwxyz0123456789"
)

type Option func(*config)

type config struct {
	maxLength    int
	suffixLength int
}

// MaxLength truncates the slug, suffix included, to n runes.
func MaxLength(n int) Option {
	return func(c *config) { c.maxLength = n }
}

// WithSuffix appends a random lowercase alphanumeric suffix of length n.
func WithSuffix(n int) Option {
	return func(c *config) { c.suffixLength = n }
}

// Make turns s into a lowercase, hyphen-separated ASCII slug.
// Latin diacritics are folded; every other non-alphanumeric run collapses
// into a single hyphen.
func Make(s string, opts ...Option) string {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	limit := cfg.maxLength
	if limit > 0 && cfg.suffixLength > 0 {
		limit -= cfg.suffixLength + len(separator)
		if limit < 0 {
			limit = 0
		}
	}

	var b strings.Builder
	b.Grow(len(s))
	lastWasSep := true
	for _, r := range s {
		if cfg.maxLength > 0 && b.Len() >= limit {
			break
		}
		r = unicode.ToLower(r)
		if folded, ok := diacritics[r]; ok {
			r = folded
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastWasSep = false
			continue
		}
		if !lastWasSep {
			b.WriteString(separator)
			lastWasSep = true
		}
	}
	result := strings.Trim(b.String(), separator)

	if cfg.suffixLength == 0 {
		return result
	}
	suffix := randomSuffix(cfg.suffixLength)
	if result == "" {
		return suffix
	}
	return result + separator + suffix
}

// Lowercase only; Make lowers before lookup.
var diacritics = map[rune]rune{
	'à': 'a', 'á': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a', 'å': 'a', 'ā': 'a', 'ă': 'a', 'ą': 'a', 'æ': 'a',
	'ç': 'c', 'ć': 'c', 'č': 'c',
	'đ': 'd', 'ď': 'd',
	'è': 'e', 'é': 'e', 'ê': 'e', 'ë': 'e', 'ē': 'e', 'ė': 'e', 'ę': 'e', 'ě': 'e',
	'ì': 'i', 'í': 'i', 'î': 'i', 'ï': 'i', 'ī': 'i', 'į': 'i',
	'ł': 'l',
	'ñ': 'n', 'ń': 'n', 'ň': 'n',
	'ò': 'o', 'ó': 'o', 'ô': 'o', 'õ': 'o', 'ö': 'o', 'ø': 'o', 'ō': 'o', 'œ': 'o',
	'ř': 'r',
	'ś': 's', 'š': 's', 'ș': 's', 'ß': 's',
	'ť': 't', 'ț': 't',
	'ù': 'u', 'ú': 'u', 'û': 'u', 'ü': 'u', 'ū': 'u', 'ů': 'u', 'ų': 'u',
	'ý': 'y', 'ÿ': 'y',
	'ź': 'z', 'ž': 'z', 'ż': 'z',
}

func randomSuffix(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		for i := range b {
			b[i] = alphabet[i%len(alphabet)]
		}
		return string(b)
	}
	for i := range b {
		b[i] = alphabet[int(b[i])%len(alphabet)]
	}
	return string(b)
}
