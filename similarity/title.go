package similarity

import (
	"regexp"
	"strings"
)

// DefaultThreshold is the Hamming distance at or below which two title
// fingerprints are treated as the same product. Chosen empirically against
// retailer catalogs where titles differ in ordering and filler words.
const DefaultThreshold = 12

var reTitleJunk = regexp.MustCompile(`[^a-z0-9 ]+`)

// stopwords carry no product identity and only add fingerprint noise.
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "with": {}, "for": {},
	"new": {}, "sale": {}, "free": {}, "shipping": {},
}

// FingerprintTitle computes a SimHash over a normalized product title.
// Titles are lowercased, stripped of punctuation and stopwords, and shingled
// so that token order contributes to the fingerprint. Single-token titles
// fall back to hashing the bare token.
func FingerprintTitle(title string) uint64 {
	tokens := NormalizeTitle(title)
	if len(tokens) == 0 {
		return 0
	}

	if shingles := makeShingles(tokens, 2); len(shingles) > 0 {
		return Fingerprint(shingles)
	}
	return Fingerprint(tokens)
}

// SameProduct reports whether two titles likely describe the same product.
func SameProduct(titleA, titleB string) bool {
	fa := FingerprintTitle(titleA)
	fb := FingerprintTitle(titleB)
	if fa == 0 || fb == 0 {
		return false
	}
	return Similar(fa, fb, DefaultThreshold)
}

// NormalizeTitle lowercases, strips punctuation and stopwords, and returns
// the remaining tokens in order.
func NormalizeTitle(title string) []string {
	lower := strings.ToLower(title)
	cleaned := reTitleJunk.ReplaceAllString(lower, " ")

	var tokens []string
	for _, tok := range strings.Fields(cleaned) {
		if _, skip := stopwords[tok]; skip {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// makeShingles creates n-gram shingles from a slice of tokens.
func makeShingles(tokens []string, n int) []string {
	if len(tokens) < n {
		return nil
	}

	shingles := make([]string, 0, len(tokens)-n+1)
	for i := 0; i <= len(tokens)-n; i++ {
		shingles = append(shingles, strings.Join(tokens[i:i+n], "_"))
	}
	return shingles
}
