// README: Free-text normalization and canonical area name resolution.
package matching

import "strings"

// NormalizeText lowercases, trims, and collapses internal whitespace
// runs to single spaces.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// CanonicalName resolves free text to a canonical area name by checking
// every alias for a substring relationship in either direction. The
// first canonical entry in table order wins, so ambiguous overlapping
// aliases resolve by declaration order.
func CanonicalName(text string) (string, bool) {
	normalized := NormalizeText(text)
	if normalized == "" {
		return "", false
	}
	for _, entry := range areaAliases {
		for _, alias := range entry.aliases {
			if strings.Contains(normalized, alias) || strings.Contains(alias, normalized) {
				return entry.canonical, true
			}
		}
	}
	return "", false
}
