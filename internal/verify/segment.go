package verify

import (
	"regexp"
	"strings"
)

// markerRe matches the needs-evidence marker literal. The same expression is
// used to insert-detect (idempotence) and to parse gap descriptions back out,
// keeping the two uses of the syntax in sync.
var markerRe = regexp.MustCompile(`\[NEEDS EVIDENCE: ([^\]]*)\]`)

// Marker builds the needs-evidence literal for a gap description.
func Marker(description string) string {
	return "[NEEDS EVIDENCE: " + description + "]"
}

type segmentKind int

const (
	segSentence segmentKind = iota
	segMarker
)

// segment is one piece of a section's content. Joining all segment texts in
// order reproduces the content exactly, which lets the verifier patch by
// rebuilding instead of splicing by string search.
type segment struct {
	text string
	kind segmentKind
}

// abbreviations that end with a period but do not end a sentence.
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "vs": true,
	"no": true, "inc": true, "st": true, "etc": true, "approx": true,
}

// splitSegments splits content into sentence and marker segments. Markers are
// isolated first so an already-patched sentence can never be re-flagged, then
// the remaining stretches are split on terminal punctuation followed by
// whitespace. The heuristic is best-effort: decimal numbers survive because a
// digit follows the period, and common abbreviations are checked explicitly.
func splitSegments(content string) []segment {
	var segments []segment

	markers := markerRe.FindAllStringIndex(content, -1)
	cursor := 0
	for _, loc := range markers {
		if loc[0] > cursor {
			segments = append(segments, splitSentences(content[cursor:loc[0]])...)
		}
		segments = append(segments, segment{text: content[loc[0]:loc[1]], kind: segMarker})
		cursor = loc[1]
	}
	if cursor < len(content) {
		segments = append(segments, splitSentences(content[cursor:])...)
	}

	return segments
}

// splitSentences splits a marker-free stretch into sentence segments,
// preserving every byte.
func splitSentences(text string) []segment {
	var segments []segment
	start := 0

	for i := 0; i < len(text); i++ {
		ch := text[i]
		if ch != '.' && ch != '!' && ch != '?' {
			continue
		}
		if i+1 >= len(text) {
			break
		}
		if text[i+1] != ' ' && text[i+1] != '\t' && text[i+1] != '\n' {
			continue
		}
		if ch == '.' && isAbbreviation(text[start:i]) {
			continue
		}
		segments = append(segments, segment{text: text[start : i+1], kind: segSentence})
		start = i + 1
	}

	if start < len(text) {
		segments = append(segments, segment{text: text[start:], kind: segSentence})
	}
	return segments
}

// isAbbreviation reports whether the text before a period ends in a known
// abbreviation.
func isAbbreviation(before string) bool {
	fields := strings.Fields(before)
	if len(fields) == 0 {
		return false
	}
	last := strings.ToLower(strings.Trim(fields[len(fields)-1], "(\"'"))
	return abbreviations[last]
}

// joinSegments reassembles section content from its segments.
func joinSegments(segments []segment) string {
	var b strings.Builder
	for _, seg := range segments {
		b.WriteString(seg.text)
	}
	return b.String()
}
