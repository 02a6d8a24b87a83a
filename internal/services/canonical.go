package services

import (
	"strconv"
	"strings"
)

// canonicalDelimiter joins key segments. It is not expected to appear in any
// identifying attribute; no escaping is performed, so a value that literally
// contains it can produce a false collision. Known limitation.
const canonicalDelimiter = "|"

// CanonicalKey is the single dedup fingerprint for a card, shared by the
// importer and every API write path. Attribute set and order are fixed:
// year, brand, set name, subset, card number, parallel, variant. Each part
// is trimmed and lower-cased; absent values contribute an empty segment.
func CanonicalKey(year *int, brand, setName, subset, cardNo, parallel, variant string) string {
	yearStr := ""
	if year != nil {
		yearStr = strconv.Itoa(*year)
	}
	parts := []string{yearStr, brand, setName, subset, cardNo, parallel, variant}
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(parts, canonicalDelimiter)
}
