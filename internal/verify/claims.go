// Package verify implements the citation-grounding verifier. It scans
// generated prose sentence by sentence, detects numeric claims, checks them
// against attached citation snippets, and patches unsupported sentences with
// explicit needs-evidence markers. Nothing here is fatal: every failure is
// surfaced as data.
package verify

import (
	"regexp"
	"strings"
)

// claimPattern flags a sentence as carrying a numeric claim.
type claimPattern struct {
	name string
	re   *regexp.Regexp
}

var claimPatterns = []claimPattern{
	{"currency", regexp.MustCompile(`\$\s?\d[\d,]*(?:\.\d+)?`)},
	{"spelled currency", regexp.MustCompile(`\b\d[\d,]*(?:\.\d+)?\s?(?:dollars|USD)\b`)},
	{"iso date", regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)},
	{"long date", regexp.MustCompile(`\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},\s+\d{4}\b`)},
	{"bounded count", regexp.MustCompile(`\b\d+\s+(?:sessions?|visits?|days?|units?|weeks?|months?|hours?|treatments?)\b`)},
	{"percentage", regexp.MustCompile(`\b\d+(?:\.\d+)?\s?%`)},
	{"deadline", regexp.MustCompile(`(?i)\bwithin\s+\d+\s+(?:business\s+|calendar\s+)?days?\b`)},
	{"limit", regexp.MustCompile(`(?i)\blimited\s+to\s+\d+\b`)},
	{"procedure code", regexp.MustCompile(`\b\d{5}\b`)},
	{"diagnosis code", regexp.MustCompile(`\b[A-TV-Z]\d{2}(?:\.\d{1,4})?\b`)},
}

var (
	currencyValue  = regexp.MustCompile(`\$\s?\d[\d,]*(?:\.\d+)?`)
	numericValue   = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
	procedureValue = regexp.MustCompile(`\b\d{5}\b`)
	countPhrase    = regexp.MustCompile(`\b\d+\s+(?:sessions?|visits?|days?|units?|weeks?|months?|hours?|treatments?)\b`)
)

// hasNumericClaim reports whether the sentence matches any claim pattern.
func hasNumericClaim(sentence string) bool {
	for _, p := range claimPatterns {
		if p.re.MatchString(sentence) {
			return true
		}
	}
	return false
}

// extractValues pulls the checkable values out of a sentence: dollar amounts,
// generic numeric tokens (comma-stripped) and procedure codes. An empty
// result means the sentence is self-evidently non-factual and needs no
// citation.
func extractValues(sentence string) []string {
	var values []string
	seen := make(map[string]bool)

	add := func(v string) {
		v = stripCommas(strings.TrimSpace(v))
		if v != "" && !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}

	for _, m := range currencyValue.FindAllString(sentence, -1) {
		add(m)
	}
	for _, m := range numericValue.FindAllString(sentence, -1) {
		add(m)
	}
	for _, m := range procedureValue.FindAllString(sentence, -1) {
		add(m)
	}

	return values
}

// describeMissing names the specific values a missing citation should cover:
// dollar amounts, count phrases and procedure codes found in the sentence.
// Returns empty when only generic numbers were found.
func describeMissing(sentence string) string {
	var parts []string
	seen := make(map[string]bool)

	add := func(v string) {
		v = strings.TrimSpace(v)
		if v != "" && !seen[v] {
			seen[v] = true
			parts = append(parts, v)
		}
	}

	for _, m := range currencyValue.FindAllString(sentence, -1) {
		add(m)
	}
	for _, m := range countPhrase.FindAllString(sentence, -1) {
		add(m)
	}
	for _, m := range procedureValue.FindAllString(sentence, -1) {
		add("code " + m)
	}

	return strings.Join(parts, ", ")
}

func stripCommas(s string) string {
	return strings.ReplaceAll(s, ",", "")
}
