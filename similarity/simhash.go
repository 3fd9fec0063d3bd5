// Package similarity fingerprints product titles for fuzzy cross-site
// matching. Two listings of the same product on different sites rarely share
// exact titles, so matching compares 64-bit SimHash fingerprints by Hamming
// distance instead of string equality.
package similarity

import (
	"hash/fnv"
	"math/bits"
)

// Fingerprint computes a 64-bit SimHash over a token stream. Every token
// votes the bits of its FNV-64a hash up or down across a 64-slot tally; the
// sign of each slot becomes one fingerprint bit. Streams sharing most tokens
// land within a small Hamming distance of each other.
func Fingerprint(tokens []string) uint64 {
	if len(tokens) == 0 {
		return 0
	}

	var tally [64]int
	for _, tok := range tokens {
		castVotes(&tally, hashToken(tok))
	}
	return foldVotes(&tally)
}

func hashToken(tok string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(tok))
	return h.Sum64()
}

func castVotes(tally *[64]int, sum uint64) {
	for bit := range tally {
		if sum>>uint(bit)&1 == 1 {
			tally[bit]++
		} else {
			tally[bit]--
		}
	}
}

func foldVotes(tally *[64]int) uint64 {
	var fp uint64
	for bit, votes := range tally {
		if votes > 0 {
			fp |= 1 << uint(bit)
		}
	}
	return fp
}

// Distance returns the Hamming distance between two fingerprints.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// Similar reports whether two fingerprints are within threshold bits of
// each other.
func Similar(a, b uint64, threshold int) bool {
	return Distance(a, b) <= threshold
}
