package match

// Levenshtein returns the number of single-byte insertions, deletions and
// substitutions that turn a into b. Suggest ranks misspelled tag options
// and binding field names by it, so "atribute" is one edit from
// "attribute".
func Levenshtein(a, b string) int {
	if a == b {
		return 0
	}

	if len(a) == 0 {
		return len(b)
	}

	if len(b) == 0 {
		return len(a)
	}

	// keep one row per length of the shorter word
	if len(a) > len(b) {
		a, b = b, a
	}

	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)

	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(b); j++ {
		curr[0] = j

		for i := 1; i <= len(a); i++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}

			curr[i] = min(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)
		}

		prev, curr = curr, prev
	}

	return prev[len(a)]
}

// LevenshteinNormalized scales the distance by the longer word: 1 for
// equal words, 0 when no byte lines up.
func LevenshteinNormalized(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}

	distance := Levenshtein(a, b)

	return 1.0 - float64(distance)/float64(max(len(a), len(b)))
}

// NormalizedLevenshteinScore compares two field or option names with case
// and separators ignored, so "lunar_day" and "LunarDay" score 1.
func NormalizedLevenshteinScore(a, b string) float64 {
	return LevenshteinNormalized(NormalizeIdent(a), NormalizeIdent(b))
}
