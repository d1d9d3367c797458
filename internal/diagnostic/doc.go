// Package diagnostic provides structured errors, warnings and notes
// produced when checking xmlbind annotations and binding files.
//
// Key capabilities:
//   - Source positions and type/field locations
//   - Stable codes per finding kind
//   - "did you mean" suggestions for misspelled options
//   - A combined error for callers that only need pass/fail
package diagnostic
