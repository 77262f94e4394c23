package elemsel

import (
	"slices"
	"strings"
)

// Ensure LegacySelectorSet implements Matcher.
var _ Matcher = LegacySelectorSet(nil)

// LegacySelectorSet is the exact-string selector engine used by early
// deployments. Entries take one of three forms: "type", "type#id" or
// "type.class", where class is the element's entire class attribute.
// There are no attribute selectors and no free compounds.
//
// It is kept as an explicitly named alternate mode for configurations that
// depend on its behaviour and is never mixed with SelectorSet.
type LegacySelectorSet []string

// NewLegacySelectorSet lower-cases and splits a comma-separated list and
// sorts it for binary search. Blank entries are skipped.
func NewLegacySelectorSet(list string) LegacySelectorSet {
	var set LegacySelectorSet
	for _, entry := range strings.Split(strings.ToLower(list), ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		set = append(set, entry)
	}
	slices.Sort(set)
	return set
}

// Match reports whether the element's type, type#id or type.class form is
// listed. The first form found wins.
func (s LegacySelectorSet) Match(n *Node) bool {
	if len(s) == 0 || !n.IsElement() {
		return false
	}

	typ := strings.ToLower(n.Data)
	if s.contains(typ) {
		return true
	}
	if id, ok := n.Attribute("id"); ok && s.contains(typ+"#"+strings.ToLower(id)) {
		return true
	}
	if class, ok := n.Attribute("class"); ok && s.contains(typ+"."+strings.ToLower(class)) {
		return true
	}
	return false
}

// Len returns the number of entries.
func (s LegacySelectorSet) Len() int {
	return len(s)
}

func (s LegacySelectorSet) contains(key string) bool {
	_, found := slices.BinarySearch(s, key)
	return found
}
