package target

import "bytes"

// CoverageSet is the set of concrete targets an identifier resolves to.
type CoverageSet map[string]struct{}

// ParseCoverage reads newline-delimited query output into a CoverageSet.
// Carriage returns are trimmed and empty entries are discarded.
func ParseCoverage(output []byte) CoverageSet {
	set := make(CoverageSet)
	for _, line := range bytes.Split(output, []byte("\n")) {
		line = bytes.TrimRight(line, "\r")
		if len(line) == 0 {
			continue
		}
		set[string(line)] = struct{}{}
	}
	return set
}

// NewCoverage builds a CoverageSet from identifiers.
func NewCoverage(ids ...string) CoverageSet {
	set := make(CoverageSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Len returns the number of targets covered.
func (c CoverageSet) Len() int {
	return len(c)
}

// Contains reports whether id is covered.
func (c CoverageSet) Contains(id string) bool {
	_, ok := c[id]
	return ok
}

// SubsetOf reports whether every target in c is also in other.
func (c CoverageSet) SubsetOf(other CoverageSet) bool {
	if len(c) > len(other) {
		return false
	}
	for id := range c {
		if _, ok := other[id]; !ok {
			return false
		}
	}
	return true
}

// IsLiteral reports whether c is exactly {id}, i.e. the query echoed the
// identifier back without expanding it.
func (c CoverageSet) IsLiteral(id string) bool {
	return len(c) == 1 && c.Contains(id)
}
