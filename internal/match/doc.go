// Package match provides name normalization, Levenshtein distance
// calculation and candidate ranking for "did you mean" suggestions on
// misspelled tag options and binding-file field names.
//
// Key functions:
//   - NormalizeIdent: normalizes identifiers for fuzzy matching
//   - Levenshtein: computes edit distance between strings
//   - RankCandidates: ranks known names against a misspelled one
//   - Suggest: picks the plausible suggestions
package match
