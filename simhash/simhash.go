// Package simhash fingerprints page text so the crawler can skip
// near-duplicate pages, like paginated listings that share all their
// template chrome.
package simhash

import (
	"math/bits"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// shingleSize is the n-gram width. Word triples keep phrase order in the
// fingerprint, so reshuffled boilerplate does not collide.
const shingleSize = 3

// Fingerprint computes a 64-bit SimHash over word shingles of text.
// Texts short of one full shingle fall back to single words. Empty or
// whitespace-only input returns 0.
func Fingerprint(text string) uint64 {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return 0
	}

	var vector [64]int
	feed := func(feature string) {
		h := xxhash.Sum64String(feature)
		for i := 0; i < 64; i++ {
			if h&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}

	if len(words) < shingleSize {
		for _, w := range words {
			feed(w)
		}
	} else {
		for i := 0; i+shingleSize <= len(words); i++ {
			feed(strings.Join(words[i:i+shingleSize], " "))
		}
	}

	var fp uint64
	for i := 0; i < 64; i++ {
		if vector[i] > 0 {
			fp |= 1 << uint(i)
		}
	}
	return fp
}

// Distance returns the Hamming distance between two fingerprints.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// Similar reports whether two fingerprints are within the threshold
// Hamming distance.
func Similar(a, b uint64, threshold int) bool {
	return Distance(a, b) <= threshold
}
