// Package model provides domain model for textscan
package model

// FilterAnywhere is the FilterSpec position that matches anywhere in the line
const FilterAnywhere = -1

// FilterSpec is one line filter rule
type FilterSpec struct {
	// Position is the character offset the match string must appear at; negative means anywhere
	Position int
	// Match is the string to look for
	Match string
	// StopOnMatch ends reading of the current file when an exclusion filter matches
	StopOnMatch bool
	// Positive turns the rule into an inclusion rule
	Positive bool
}

// MatchesAnywhere reports whether the filter ignores the position
func (f FilterSpec) MatchesAnywhere() bool {
	return f.Position < 0
}
