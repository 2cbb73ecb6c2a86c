package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"John A. Smith", "john a smith"},
		{"  JOHN   SMITH ", "john smith"},
		{"Estefanía Núñez", "estefania nunez"},
		{"O'Brien-Lee", "o brien lee"},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, normalizeName(c.in), "input %q", c.in)
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, similarity("john smith", "john smith"))
	assert.Zero(t, similarity("", "john smith"))

	// Dropped middle initial: token subset scores 1.
	assert.Equal(t, 1.0, similarity("john a smith", "john smith"))

	// Nickname against alias still clears the default threshold on edit
	// distance alone.
	s := similarity("john a smith", "johnny smith")
	assert.GreaterOrEqual(t, s, 0.80)

	// Unrelated names stay well below the threshold.
	assert.Less(t, similarity("xyz randomname", "john smith"), 0.5)
}

func TestSimilarity_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"john smith", "johnny smith"},
		{"ana lopez", "anna lopes"},
		{"chris park", "chris parker"},
	}
	for _, p := range pairs {
		assert.Equal(t, similarity(p[0], p[1]), similarity(p[1], p[0]), "%q vs %q", p[0], p[1])
	}
}

func TestLevenshteinRatio(t *testing.T) {
	assert.Equal(t, 1.0, levenshteinRatio("abc", "abc"))
	// One edit across ten characters.
	assert.InDelta(t, 0.9, levenshteinRatio("jon smith", "john smith"), 1e-9)
}

func TestTokenOverlap(t *testing.T) {
	assert.Equal(t, 1.0, tokenOverlap("john smith", "smith john"))
	assert.Equal(t, 0.5, tokenOverlap("jon smith", "john smith"))
	assert.Zero(t, tokenOverlap("abc def", "ghi jkl"))
}
