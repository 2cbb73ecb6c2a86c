package extract

import (
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// collapseSpaces trims the value and collapses internal whitespace runs.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// normalizePhone reduces a phone value to its canonical digit sequence.
// Eleven-digit numbers with a leading country code 1 are reduced to ten.
func normalizePhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	return digits
}

// parsePriceCents parses a currency capture ("1,234", "1234.5", "$1,234.56")
// into cents. Fraction digits beyond two are rejected rather than rounded.
func parsePriceCents(s string) (int64, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, eris.New("extract: empty price")
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if len(frac) > 2 {
		return 0, eris.Errorf("extract: price %q has more than two fraction digits", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	var cents int64
	for _, part := range []string{whole, frac} {
		for _, r := range part {
			if r < '0' || r > '9' {
				return 0, eris.Errorf("extract: invalid price %q", s)
			}
			cents = cents*10 + int64(r-'0')
		}
	}
	return cents, nil
}

// normalizeName title-cases a display name ("JOHN DOE" -> "John Doe").
func normalizeName(s string) string {
	return titleCaser.String(strings.ToLower(collapseSpaces(s)))
}
