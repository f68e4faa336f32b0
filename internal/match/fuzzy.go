package match

import (
	"strings"
	"unicode"
)

// Normalize uppercases a string and strips all whitespace. Both sides of
// every comparison in this package are normalized the same way.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToUpper(s) {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// PartialRatio returns the best sliding-window similarity between two
// strings as a percentage in [0, 100]. The shorter string is slid across
// every equal-length window of the longer one; each alignment is scored
// with a longest-common-subsequence ratio and the maximum wins.
func PartialRatio(a, b string) float64 {
	longer, shorter := a, b
	if len(shorter) > len(longer) {
		longer, shorter = shorter, longer
	}
	if len(shorter) == 0 {
		return 0
	}

	n := len(shorter)
	best := 0.0
	for i := 0; i+n <= len(longer); i++ {
		r := lcsRatio(longer[i:i+n], shorter)
		if r > best {
			best = r
		}
	}
	return best * 100
}

// lcsRatio is 2*LCS(a,b) / (len(a)+len(b)), in [0, 1].
func lcsRatio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}

	// Single-row LCS table; prev holds the row for a[:i].
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	lcs := prev[len(b)]
	return 2 * float64(lcs) / float64(len(a)+len(b))
}
