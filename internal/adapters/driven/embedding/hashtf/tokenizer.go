package hashtf

import "strings"

// minTokenLength drops short noise tokens.
const minTokenLength = 3

// Tokenize normalises text into a sequence of lowercase tokens.
// Any character outside [a-z0-9] acts as a separator, so punctuation
// never glues words together. Tokens shorter than minTokenLength,
// pure digit runs, and stop words are dropped.
//
// Pure function of its input: empty or all-punctuation text yields an
// empty sequence, not an error.
func Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		tok := current.String()
		current.Reset()
		if len(tok) < minTokenLength {
			return
		}
		if isAllDigits(tok) {
			return
		}
		if _, isStop := stopwords[tok]; isStop {
			return
		}
		tokens = append(tokens, tok)
	}

	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			current.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()

	return tokens
}

// isAllDigits reports whether the token is a pure digit sequence.
func isAllDigits(tok string) bool {
	for _, r := range tok {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// stopwords is a fixed set of common English function words excluded
// from embeddings.
var stopwords = func() map[string]struct{} {
	words := []string{
		"the", "and", "for", "are", "but", "not", "you", "all",
		"can", "had", "her", "was", "one", "our", "out", "day",
		"get", "has", "him", "his", "how", "man", "new", "now",
		"old", "see", "two", "way", "who", "did", "its", "let",
		"she", "too", "use", "that", "with", "have", "this", "will",
		"your", "from", "they", "know", "want", "been", "good", "much",
		"some", "time", "very", "when", "come", "here", "just", "like",
		"long", "make", "many", "more", "only", "over", "such", "take",
		"than", "them", "well", "were", "what", "would", "about", "could",
		"there", "their", "which", "other", "after", "these", "thing",
		"going", "gonna", "yeah", "okay", "dont", "didnt", "thats",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()
