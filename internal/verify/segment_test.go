package verify

import (
	"testing"
)

func TestSplitSegments_RoundTrip(t *testing.T) {
	contents := []string{
		"One sentence. Another sentence! A third?",
		"Dr. Smith treated the patient. Treatment continued.",
		"A value of 1.5 units was recorded. Next sentence.",
		"Claim text. [NEEDS EVIDENCE: citation for $150] More text.",
		"",
		"No terminal punctuation at all",
	}

	for _, content := range contents {
		if got := joinSegments(splitSegments(content)); got != content {
			t.Errorf("round trip changed content:\n  in:  %q\n  out: %q", content, got)
		}
	}
}

func TestSplitSegments_IsolatesMarkers(t *testing.T) {
	content := "The plan covers 20 visits. [NEEDS EVIDENCE: citation for 20 visits] Coverage continues."

	segments := splitSegments(content)

	var markers, sentences int
	for _, seg := range segments {
		switch seg.kind {
		case segMarker:
			markers++
		case segSentence:
			sentences++
		}
	}
	if markers != 1 {
		t.Errorf("expected 1 marker segment, got %d", markers)
	}
	if sentences < 2 {
		t.Errorf("expected at least 2 sentence segments, got %d", sentences)
	}
}

func TestSplitSentences_AbbreviationGuard(t *testing.T) {
	segments := splitSentences("Dr. Smith saw the patient. A follow-up was scheduled.")

	count := 0
	for _, seg := range segments {
		if seg.kind == segSentence {
			count++
		}
	}
	if count != 2 {
		t.Errorf("expected 2 sentences ('Dr.' must not split), got %d: %+v", count, segments)
	}
}

func TestSplitSentences_DecimalsSurvive(t *testing.T) {
	segments := splitSentences("The dose was 2.5 units daily. Therapy continued.")

	if len(segments) != 2 {
		t.Errorf("expected 2 sentences (decimal must not split), got %d", len(segments))
	}
}

func TestMarker_ParsesBackOut(t *testing.T) {
	m := Marker("citation for $500")

	match := markerRe.FindStringSubmatch(m)
	if match == nil {
		t.Fatalf("markerRe does not match its own Marker output %q", m)
	}
	if match[1] != "citation for $500" {
		t.Errorf("expected description round trip, got %q", match[1])
	}
}
