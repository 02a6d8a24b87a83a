package services

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	leadingYearRe = regexp.MustCompile(`^\s*\d{4}(?:-\d{2})?\s+`)
	trailingSport = regexp.MustCompile(`(?i)\s+(Baseball|Basketball|Football|Hockey)\s*$`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// NormalizeTitle extracts the brand from a release title:
//
//	"1981 Donruss Baseball"     -> "Donruss"
//	"1990-91 Upper Deck Hockey" -> "Upper Deck"
//	"Topps Chrome Baseball"     -> "Topps Chrome"
//
// If stripping leaves nothing, the trimmed input is returned as-is.
func NormalizeTitle(releaseName string) string {
	s := strings.TrimSpace(releaseName)
	s = leadingYearRe.ReplaceAllString(s, "")
	s = trailingSport.ReplaceAllString(s, "")
	s = strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
	if s == "" {
		return strings.TrimSpace(releaseName)
	}
	return s
}

// CleanAndMerge builds a product label from a brand and set name, guarding
// against release names that already embed the brand:
//
//	("Donruss", "Donruss Baseball", 1981) -> "Donruss Baseball"
//	("Panini", "Flawless", 2023)         -> "Panini Flawless"
//
// A leading year token equal to the given year is stripped from both inputs.
// When both inputs are empty the label is "Unknown".
func CleanAndMerge(brand, setName string, year *int) string {
	brand = stripLeadingYear(strings.TrimSpace(brand), year)
	setName = stripLeadingYear(strings.TrimSpace(setName), year)

	var label string
	switch {
	case brand == "" && setName == "":
		return "Unknown"
	case brand == "":
		label = setName
	case setName == "":
		label = brand
	case strings.Contains(strings.ToLower(setName), strings.ToLower(brand)):
		label = setName
	default:
		label = brand + " " + setName
	}
	return collapseRepeatedWords(label)
}

// ProductLabels dedupes labels case-insensitively, keeping the first-seen
// casing, and returns them sorted.
func ProductLabels(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		key := strings.ToLower(l)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

func stripLeadingYear(s string, year *int) string {
	if year == nil || s == "" {
		return s
	}
	fields := strings.Fields(s)
	if len(fields) > 1 && strings.EqualFold(fields[0], yearString(year)) {
		return strings.Join(fields[1:], " ")
	}
	return s
}

func yearString(year *int) string {
	if year == nil {
		return ""
	}
	return strconv.Itoa(*year)
}

// collapseRepeatedWords folds a word immediately repeated into one
// occurrence: "Donruss Donruss Baseball" -> "Donruss Baseball".
func collapseRepeatedWords(s string) string {
	fields := strings.Fields(s)
	out := fields[:0]
	for i, f := range fields {
		if i > 0 && strings.EqualFold(f, fields[i-1]) {
			continue
		}
		out = append(out, f)
	}
	return strings.Join(out, " ")
}
