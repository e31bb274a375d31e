package core

import "strings"

// Similarity returns a Ratcliff/Obershelp ratio between two strings: twice
// the total length of matching blocks divided by the combined length, in
// [0,1]. Comparison is case-insensitive and symmetric; identical strings
// score 1.0.
func Similarity(a, b string) float64 {
	la := strings.ToLower(a)
	lb := strings.ToLower(b)
	// Order the pair deterministically so block tie-breaks cannot make the
	// score depend on argument order.
	if len(la) > len(lb) || (len(la) == len(lb) && la > lb) {
		la, lb = lb, la
	}

	ra := []rune(la)
	rb := []rune(lb)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(matchingTotal(ra, rb)) / float64(total)
}

// matchingTotal sums the matching block lengths: take the longest common
// substring, then recurse on the pieces to its left and right.
func matchingTotal(a, b []rune) int {
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	return size + matchingTotal(a[:ai], b[:bi]) + matchingTotal(a[ai+size:], b[bi+size:])
}

// longestCommonSubstring finds the leftmost longest run of runes common to a
// and b, returning its start in each and its length.
func longestCommonSubstring(a, b []rune) (ai, bi, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}

	// prev[j+1] holds the length of the common suffix ending at a[i-1], b[j].
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 0; i < len(a); i++ {
		for j := 0; j < len(b); j++ {
			if a[i] == b[j] {
				cur[j+1] = prev[j] + 1
				if cur[j+1] > size {
					size = cur[j+1]
					ai = i - size + 1
					bi = j - size + 1
				}
			} else {
				cur[j+1] = 0
			}
		}
		prev, cur = cur, prev
	}
	return ai, bi, size
}
