package area

import "strings"

// Resolver maps free-text addresses onto the canonical area vocabulary using
// case-insensitive substring containment. It is a pure function over the
// tables it was constructed with.
type Resolver struct {
	areas   []string
	lowered []string
	abbrs   []Abbreviation
}

// NewResolver builds a resolver over an ordered area list and abbreviation
// table. The slices are treated as immutable.
func NewResolver(areas []string, abbrs []Abbreviation) *Resolver {
	lowered := make([]string, len(areas))
	for i, a := range areas {
		lowered[i] = strings.ToLower(a)
	}
	return &Resolver{areas: areas, lowered: lowered, abbrs: abbrs}
}

// NewDefaultResolver builds a resolver over the canonical tables.
func NewDefaultResolver() *Resolver {
	return NewResolver(CanonicalAreas, Abbreviations)
}

// Resolve returns the first canonical area whose full name is contained in the
// address, then falls back to the abbreviation table. Enumeration order is the
// tie-break on ambiguous text. ok is false when nothing matches.
func (r *Resolver) Resolve(address string) (name string, ok bool) {
	if address == "" {
		return "", false
	}
	text := strings.ToLower(address)

	for i, a := range r.lowered {
		if strings.Contains(text, a) {
			return r.areas[i], true
		}
	}

	for _, abbr := range r.abbrs {
		if strings.Contains(text, abbr.Token) {
			return abbr.Area, true
		}
	}

	return "", false
}
