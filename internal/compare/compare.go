// Package compare aligns typed text against a reference character by character.
package compare

import "github.com/verte-zerg/digita/internal/model"

// Compare returns one entry per rune index over the longer of the two strings.
// Indexes past the end of either string carry an empty placeholder and are
// never correct.
func Compare(reference, typed string) []model.CharacterComparison {
	ref := []rune(reference)
	in := []rune(typed)
	n := len(ref)
	if len(in) > n {
		n = len(in)
	}
	out := make([]model.CharacterComparison, n)
	for i := 0; i < n; i++ {
		var expected, got string
		if i < len(ref) {
			expected = string(ref[i])
		}
		if i < len(in) {
			got = string(in[i])
		}
		out[i] = model.CharacterComparison{
			Index:     i,
			Expected:  expected,
			Typed:     got,
			IsCorrect: expected == got,
		}
	}
	return out
}

// CountCorrect returns the number of correct entries and the total.
func CountCorrect(comparisons []model.CharacterComparison) (correct, total int) {
	for _, c := range comparisons {
		if c.IsCorrect {
			correct++
		}
	}
	return correct, len(comparisons)
}
