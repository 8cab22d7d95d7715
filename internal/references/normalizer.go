// Package references renumbers bracketed citation markers and builds the
// minimal reference list shown alongside AI-generated analyses.
package references

import (
	"regexp"
	"sort"
	"strconv"
)

// Reference is a single cited source.
type Reference struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
	Date    string `json:"date,omitempty"`
}

// Result holds the rewritten text and the ordered reference list.
type Result struct {
	Text       string      `json:"text"`
	References []Reference `json:"references"`
}

// minReferences is the minimum number of references shown when enough sources
// exist. Shorter lists are padded with uncited sources.
const minReferences = 3

var markerRe = regexp.MustCompile(`\[(\d+)\]`)

// Normalize extracts the distinct `[n]` markers in text, drops markers whose
// index falls outside sources, and renumbers the survivors densely while
// preserving their relative order. Out-of-range markers stay in the text
// untouched. The returned reference list follows the renumbered order and is
// padded to minReferences entries from the unused sources when possible.
// Normalize never fails; with no valid markers and no sources it returns the
// input text and an empty list.
func Normalize(text string, sources []Reference) Result {
	// Collect the distinct in-range marker numbers, ascending.
	seen := make(map[int]bool)
	for _, m := range markerRe.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n >= 1 && n <= len(sources) {
			seen[n] = true
		}
	}
	valid := make([]int, 0, len(seen))
	for n := range seen {
		valid = append(valid, n)
	}
	sort.Ints(valid)

	// i-th smallest original marker becomes i+1.
	renumber := make(map[int]int, len(valid))
	for i, n := range valid {
		renumber[n] = i + 1
	}

	updated := markerRe.ReplaceAllStringFunc(text, func(marker string) string {
		n, err := strconv.Atoi(marker[1 : len(marker)-1])
		if err != nil {
			return marker
		}
		if newN, ok := renumber[n]; ok {
			return "[" + strconv.Itoa(newN) + "]"
		}
		return marker
	})

	ordered := make([]Reference, 0, len(valid))
	included := make(map[int]bool, len(valid))
	for _, n := range valid {
		ordered = append(ordered, sources[n-1])
		included[n-1] = true
	}

	// Pad with uncited sources, in original order, until the minimum is met
	// or the sources run out. Padding entries get no marker in the text.
	for i := 0; len(ordered) < minReferences && i < len(sources); i++ {
		if included[i] {
			continue
		}
		ordered = append(ordered, sources[i])
		included[i] = true
	}

	return Result{Text: updated, References: ordered}
}
