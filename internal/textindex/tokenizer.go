// Package textindex implements the from-scratch TF-IDF retrieval engine:
// tokenization, term weighting, cosine scoring and the filtered search index.
// Every operation here is a pure function over in-memory data.
package textindex

import (
	"math"
	"regexp"
	"strings"

	"github.com/pkarels/appealsmith/internal/model"
)

// unseenTermIDF is the weight applied to query terms absent from the current
// corpus snapshot, so legitimate query terms never zero-score.
var unseenTermIDF = math.Log(2)

var nonTokenChars = regexp.MustCompile(`[^a-z0-9\s\-#]+`)

// stopwords is a fixed set of common English function words dropped during
// tokenization.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "been": true, "being": true, "but": true, "by": true,
	"can": true, "could": true, "did": true, "do": true, "does": true,
	"doing": true, "down": true, "during": true, "each": true, "few": true,
	"for": true, "from": true, "further": true, "had": true, "has": true,
	"have": true, "having": true, "he": true, "her": true, "here": true,
	"hers": true, "him": true, "his": true, "how": true, "if": true,
	"in": true, "into": true, "is": true, "it": true, "its": true,
	"just": true, "me": true, "more": true, "most": true, "my": true,
	"no": true, "nor": true, "not": true, "now": true, "of": true,
	"off": true, "on": true, "once": true, "only": true, "or": true,
	"other": true, "our": true, "out": true, "over": true, "own": true,
	"same": true, "she": true, "should": true, "so": true, "some": true,
	"such": true, "than": true, "that": true, "the": true, "their": true,
	"them": true, "then": true, "there": true, "these": true, "they": true,
	"this": true, "those": true, "through": true, "to": true, "too": true,
	"under": true, "until": true, "up": true, "very": true, "was": true,
	"we": true, "were": true, "what": true, "when": true, "where": true,
	"which": true, "while": true, "who": true, "whom": true, "why": true,
	"will": true, "with": true, "would": true, "you": true, "your": true,
}

// Tokenize lowercases the text, strips characters outside [a-z0-9\s\-#],
// splits on whitespace, drops stop words and single-character tokens, and
// appends an underscore-joined bigram for every adjacent token pair.
// Bigrams follow all unigrams; consumers rely on membership, not position.
func Tokenize(text string) []string {
	lower := strings.ToLower(text)
	cleaned := nonTokenChars.ReplaceAllString(lower, " ")

	var unigrams []string
	for _, field := range strings.Fields(cleaned) {
		if len(field) <= 1 || stopwords[field] {
			continue
		}
		unigrams = append(unigrams, field)
	}

	tokens := make([]string, 0, len(unigrams)*2)
	tokens = append(tokens, unigrams...)
	for i := 0; i+1 < len(unigrams); i++ {
		tokens = append(tokens, unigrams[i]+"_"+unigrams[i+1])
	}

	return tokens
}

// TermFrequency counts token occurrences and applies log damping:
// weight = ln(1 + count). A term seen 100x should not outweigh a term
// seen 3x by two orders of magnitude.
func TermFrequency(tokens []string) model.TermVector {
	if len(tokens) == 0 {
		return model.TermVector{}
	}

	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}

	tf := make(model.TermVector, len(counts))
	for term, count := range counts {
		tf[term] = math.Log(1 + float64(count))
	}
	return tf
}

// InverseDocumentFrequency computes smoothed IDF over a corpus of term
// vectors: idf(t) = ln((N+1)/(df(t)+1)) + 1. The result is always >= 1 and
// well-defined even when a term appears in every document. Returns an empty
// mapping for an empty corpus.
func InverseDocumentFrequency(vectors []model.TermVector) model.TermVector {
	n := len(vectors)
	if n == 0 {
		return model.TermVector{}
	}

	df := make(map[string]int)
	for _, vec := range vectors {
		for term := range vec {
			df[term]++
		}
	}

	idf := make(model.TermVector, len(df))
	for term, count := range df {
		idf[term] = math.Log(float64(n+1)/float64(count+1)) + 1
	}
	return idf
}

// BuildVector tokenizes text, computes log-damped term frequency, and
// multiplies each term by its corpus IDF. Terms unseen in the corpus get a
// small default weight of ln(2) instead of zero.
func BuildVector(text string, idf model.TermVector) model.TermVector {
	tf := TermFrequency(Tokenize(text))

	vec := make(model.TermVector, len(tf))
	for term, weight := range tf {
		if w, ok := idf[term]; ok {
			vec[term] = weight * w
		} else {
			vec[term] = weight * unseenTermIDF
		}
	}
	return vec
}

// ApplyIDF reweights a stored term-frequency vector by the given IDF.
// Terms missing from the IDF keep the unseen-term default.
func ApplyIDF(tf model.TermVector, idf model.TermVector) model.TermVector {
	vec := make(model.TermVector, len(tf))
	for term, weight := range tf {
		if w, ok := idf[term]; ok {
			vec[term] = weight * w
		} else {
			vec[term] = weight * unseenTermIDF
		}
	}
	return vec
}

// CosineSimilarity returns the normalized dot product of two sparse vectors,
// in [0,1] for non-negative weights. Returns 0 when either norm is zero.
func CosineSimilarity(a, b model.TermVector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	// Iterate the smaller vector for the dot product.
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}

	var dot float64
	for term, wa := range small {
		if wb, ok := large[term]; ok {
			dot += wa * wb
		}
	}
	if dot == 0 {
		return 0
	}

	var normA, normB float64
	for _, w := range a {
		normA += w * w
	}
	for _, w := range b {
		normB += w * w
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
