package match

import (
	"sort"
)

// Candidate is a known name scored against a misspelled one.
type Candidate struct {
	Name     string
	Distance int     // raw edit distance
	Score    float64 // normalized similarity (0-1)
}

// CandidateList is a list of candidates with ranking functionality.
type CandidateList []Candidate

// RankCandidates scores every known name against word and returns them
// sorted by score (descending), ties broken by name.
func RankCandidates(word string, known []string) CandidateList {
	candidates := make(CandidateList, 0, len(known))

	for _, name := range known {
		candidates = append(candidates, Candidate{
			Name:     name,
			Distance: Levenshtein(NormalizeIdent(word), NormalizeIdent(name)),
			Score:    NormalizedLevenshteinScore(word, name),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}

		return candidates[i].Name < candidates[j].Name
	})

	return candidates
}

// Names returns the candidate names in order.
func (c CandidateList) Names() []string {
	names := make([]string, len(c))
	for i := range c {
		names[i] = c[i].Name
	}

	return names
}

// DefaultMinScore is the similarity below which a name is not suggested.
const DefaultMinScore = 0.5

// Suggest returns up to limit known names close enough to word to be a
// plausible "did you mean". A name at edit distance 1 is always close
// enough, which keeps short options like "txt" -> "text" suggestible.
func Suggest(word string, known []string, limit int) []string {
	var out CandidateList

	for _, c := range RankCandidates(word, known) {
		if c.Score < DefaultMinScore && c.Distance > 1 {
			continue
		}

		out = append(out, c)
		if limit > 0 && len(out) == limit {
			break
		}
	}

	if len(out) == 0 {
		return nil
	}

	return out.Names()
}
