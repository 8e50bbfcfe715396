package filter

import (
	"testing"

	"github.com/nao1215/textscan/domain/model"
	"github.com/stretchr/testify/assert"
)

func TestEngine_Accept(t *testing.T) {
	t.Parallel()

	stop := model.FilterSpec{Position: model.FilterAnywhere, Match: "SKIP", StopOnMatch: true}

	tests := []struct {
		name      string
		specs     []model.FilterSpec
		skipBlank bool
		lines     []string
		expected  []Decision
	}{
		{
			name:     "stop filter",
			specs:    []model.FilterSpec{stop},
			lines:    []string{"a", "SKIP here", "b"},
			expected: []Decision{Keep, DropAndStop, Keep},
		},
		{
			name:     "anywhere match is case-insensitive",
			specs:    []model.FilterSpec{{Position: model.FilterAnywhere, Match: "total"}},
			lines:    []string{"Grand TOTAL 10", "row 1"},
			expected: []Decision{Drop, Keep},
		},
		{
			name:     "positioned match",
			specs:    []model.FilterSpec{{Position: 2, Match: "xx"}},
			lines:    []string{"abXXc", "xxabc", "ab", "日本xx"},
			expected: []Decision{Drop, Keep, Keep, Drop},
		},
		{
			name: "positive mode rejects unless included",
			specs: []model.FilterSpec{
				{Position: 0, Match: "D", Positive: true},
				{Position: model.FilterAnywhere, Match: "void"},
			},
			lines:    []string{"D;1", "H;header", "D;void"},
			expected: []Decision{Keep, Drop, Drop},
		},
		{
			name:      "blank lines",
			skipBlank: true,
			lines:     []string{"", " ", "x"},
			expected:  []Decision{Drop, Keep, Keep},
		},
		{
			name:     "blank lines kept",
			lines:    []string{""},
			expected: []Decision{Keep},
		},
		{
			name:     "empty match never matches",
			specs:    []model.FilterSpec{{Position: model.FilterAnywhere, Match: ""}},
			lines:    []string{"anything"},
			expected: []Decision{Keep},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := New(tt.specs, tt.skipBlank)
			got := make([]Decision, len(tt.lines))
			for i, line := range tt.lines {
				got[i] = e.Accept(line)
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDecision_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "drop-and-stop", DropAndStop.String())
}
