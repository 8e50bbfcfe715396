// Package filter decides which logical lines reach the tokenizer.
package filter

import (
	"strings"

	"github.com/nao1215/textscan/domain/model"
)

// Decision is the outcome of filtering one line
type Decision int

const (
	// Keep passes the line on
	Keep Decision = iota
	// Drop discards the line
	Drop
	// DropAndStop discards the line and ends the file
	DropAndStop
)

// String returns the name of the decision
func (d Decision) String() string {
	switch d {
	case Keep:
		return "keep"
	case Drop:
		return "drop"
	case DropAndStop:
		return "drop-and-stop"
	default:
		return "unknown"
	}
}

type rule struct {
	spec  model.FilterSpec
	match string
}

// Engine evaluates filter specs against lines.
// Matching is case-insensitive for positioned and anywhere specs.
type Engine struct {
	rules        []rule
	skipBlank    bool
	positiveMode bool
}

// New returns an engine over specs. Specs with an empty match string never match.
func New(specs []model.FilterSpec, skipBlankLines bool) *Engine {
	e := &Engine{skipBlank: skipBlankLines}
	for _, s := range specs {
		if s.Match == "" {
			continue
		}
		e.rules = append(e.rules, rule{spec: s, match: strings.ToLower(s.Match)})
		if s.Positive {
			e.positiveMode = true
		}
	}
	return e
}

// Accept decides what happens to line
func (e *Engine) Accept(line string) Decision {
	if e.skipBlank && line == "" {
		return Drop
	}
	if len(e.rules) == 0 {
		return Keep
	}

	lower := strings.ToLower(line)
	included := false
	for _, r := range e.rules {
		if !r.matches(line, lower) {
			continue
		}
		if r.spec.Positive {
			included = true
			continue
		}
		if r.spec.StopOnMatch {
			return DropAndStop
		}
		return Drop
	}

	if e.positiveMode && !included {
		return Drop
	}
	return Keep
}

func (r rule) matches(line, lower string) bool {
	if r.spec.MatchesAnywhere() {
		return strings.Contains(lower, r.match)
	}
	runes := []rune(line)
	want := []rune(r.spec.Match)
	pos := r.spec.Position
	if pos+len(want) > len(runes) {
		return false
	}
	return strings.EqualFold(string(runes[pos:pos+len(want)]), r.spec.Match)
}
