// Package similartext suggests names similar to a misspelled one.
package similartext

import (
	"fmt"
	"sort"
	"strings"
)

// distance is the Levenshtein distance between two strings.
func distance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}

	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// DistanceSkipped is the distance from which names are not considered
// similar at all.
const DistanceSkipped = 3

// Find returns a suggestion of the names closest to src, or an empty string
// if none is similar enough.
func Find(names []string, src string) string {
	if src == "" {
		return ""
	}

	minDistance := -1
	matches := make(map[int][]string)
	for _, name := range names {
		d := distance(name, src)
		if d > DistanceSkipped {
			continue
		}

		if minDistance == -1 || d < minDistance {
			minDistance = d
		}
		matches[d] = append(matches[d], name)
	}

	if len(matches) == 0 {
		return ""
	}

	return fmt.Sprintf(", maybe you mean %s?", strings.Join(matches[minDistance], " or "))
}

// FindFromMap is like Find but takes the keys of a map as names.
func FindFromMap[V any](names map[string]V, src string) string {
	keys := make([]string, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return Find(keys, src)
}
