// Package model provides domain model for textscan
package model

// Layout describes how physical lines are grouped into header, data and footer blocks
type Layout struct {
	// HeaderLines is the number of header lines; 0 disables the header
	HeaderLines int
	// FooterLines is the number of footer lines; 0 disables the footer
	FooterLines int
	// Paged repeats header/data/footer blocks every LinesPerPage data lines
	Paged bool
	// LinesPerPage is the number of logical data lines of a page
	LinesPerPage int
	// DocHeaderLines is read once before the first page header in paged mode
	DocHeaderLines int
	// Wrapped joins NrWraps physical lines into one logical data line
	Wrapped bool
	NrWraps int
	// SkipBlankLines drops empty data lines
	SkipBlankLines bool
}

// HasHeader reports whether a header is configured
func (l Layout) HasHeader() bool {
	return l.HeaderLines > 0
}

// HasFooter reports whether a footer is configured
func (l Layout) HasFooter() bool {
	return l.FooterLines > 0
}

// IsPaged reports whether the layout repeats per page
func (l Layout) IsPaged() bool {
	return l.Paged && l.LinesPerPage > 0
}

// Wraps returns the number of physical lines making one logical data line
func (l Layout) Wraps() int {
	if !l.Wrapped || l.NrWraps < 2 {
		return 1
	}
	return l.NrWraps
}
