// Package match resolves free-text ingredient references against the
// canonical catalog. It never errors: a reference that cannot be placed is a
// normal outcome reported through the returned confidence and reason.
package match

import (
	"regexp"
	"strings"
)

var (
	parenPattern = regexp.MustCompile(`\s*\([^)]*\)\s*`)
	dashPattern  = regexp.MustCompile(`\s+-\s.*$`)
	spacePattern = regexp.MustCompile(`\s+`)
	digitPattern = regexp.MustCompile(`^[\d.]+$`)
)

// metadataTokens are section headers and unit-of-measure labels that leak out
// of spreadsheet-derived recipe exports; they are never ingredients.
var metadataTokens = map[string]struct{}{
	"lunch":      {},
	"soup":       {},
	"breakfast":  {},
	"biscuit":    {},
	"prep table": {},
	"baked goods": {},
	"freezer":    {},
	"salads":     {},
	"dressing":   {},
	"unit = unit of measure for ingredients": {},
	"s":           {},
	"category":    {},
	"prep area":   {},
	"slow cooker": {},
	"drink":       {},
	"drinks":      {},
}

// Normalize canonicalizes an ingredient name for comparison: lowercase,
// parenthetical segments removed, a trailing " - qualifier" removed,
// whitespace collapsed. Normalize is idempotent.
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = parenPattern.ReplaceAllString(s, " ")
	s = dashPattern.ReplaceAllString(s, "")
	s = spacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Candidate reports whether a captured line is worth resolving at all.
// Blank names, known metadata tokens, bare numbers (spreadsheet formula
// residue) and lines carrying neither a quantity nor a unit cost are labels,
// not ingredients, and are rejected before resolution.
func Candidate(name string, quantity, unitCost *float64) bool {
	trimmed := strings.ToLower(strings.TrimSpace(name))
	if trimmed == "" {
		return false
	}
	if _, ok := metadataTokens[trimmed]; ok {
		return false
	}
	if digitPattern.MatchString(trimmed) {
		return false
	}
	if quantity == nil && unitCost == nil {
		return false
	}
	return true
}
