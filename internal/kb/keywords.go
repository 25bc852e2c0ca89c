package kb

import "strings"

const maxKeywords = 10

var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for",
		"of", "with", "by", "from", "up", "about", "into", "through", "during",
		"before", "after", "above", "below", "between", "among", "within",
		"is", "are", "was", "were", "be", "been", "being", "have", "has", "had",
		"do", "does", "did", "will", "would", "could", "should", "may", "might",
		"must", "can", "i", "you", "he", "she", "it", "we", "they", "me", "him",
		"her", "us", "them", "my", "your", "his", "our", "their", "this", "that",
		"these", "those",
	} {
		stopwords[w] = struct{}{}
	}
}

// ExtractKeywords lowercases the text, strips punctuation, drops stopwords and
// tokens shorter than three characters, and returns at most ten tokens in
// their original order. Identical input always yields identical output.
func ExtractKeywords(text string) []string {
	keywords := make([]string, 0, maxKeywords)
	for _, token := range tokenize(text) {
		if len(token) <= 2 {
			continue
		}
		if _, stop := stopwords[token]; stop {
			continue
		}
		keywords = append(keywords, token)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

// tokenize lowercases and splits on anything that is not a letter, digit or
// underscore.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return false
		}
		return true
	})
}

// wordPairs returns consecutive non-overlapping two-word phrases of the text.
func wordPairs(text string) []string {
	words := tokenize(text)
	pairs := make([]string, 0, len(words)/2)
	for i := 0; i+1 < len(words); i += 2 {
		pairs = append(pairs, words[i]+" "+words[i+1])
	}
	return pairs
}
