package resolve

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// generationalSuffixes lists name suffixes to strip during normalization.
// Providers are inconsistent about carrying them ("Gary Trent Jr." vs
// "Gary Trent"), so they only add noise to matching. Compared after
// punctuation has already been removed.
var generationalSuffixes = []string{
	" JR", " SR", " III", " IV", " II", " V",
}

var multiSpaceRe = regexp.MustCompile(`\s{2,}`)

// foldDiacritics strips combining marks after NFD decomposition, so
// "Dončić" and "Doncic" normalize identically.
var foldDiacritics = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// NormalizeName standardizes a raw player name for matching by:
//  1. Trimming whitespace
//  2. Folding diacritics (Dončić -> DONCIC)
//  3. Converting to uppercase
//  4. Stripping punctuation (periods, commas, apostrophes, hyphens)
//  5. Removing generational suffixes (Jr., Sr., II-V)
//  6. Collapsing multiple spaces into single spaces
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	if folded, _, err := transform.String(foldDiacritics, name); err == nil {
		name = folded
	}

	name = strings.ToUpper(name)

	name = strings.NewReplacer(
		".", "",
		",", "",
		"'", "",
		"\"", "",
		"-", " ",
	).Replace(name)

	name = multiSpaceRe.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)

	for _, suffix := range generationalSuffixes {
		if strings.HasSuffix(name, suffix) {
			name = strings.TrimSpace(strings.TrimSuffix(name, suffix))
			break
		}
	}

	return name
}

var nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slug converts a normalized name into a stable lowercase identifier,
// e.g. "STEPHEN CURRY" -> "stephen-curry".
func Slug(name string) string {
	s := strings.ToLower(NormalizeName(name))
	s = nonSlugRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
