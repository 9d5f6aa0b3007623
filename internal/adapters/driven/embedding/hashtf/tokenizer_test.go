package hashtf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "lowercases and splits on whitespace",
			input: "Dinner Tonight",
			want:  []string{"dinner", "tonight"},
		},
		{
			name:  "punctuation separates instead of gluing",
			input: "dinner,tonight!at:seven",
			want:  []string{"dinner", "tonight", "seven"},
		},
		{
			name:  "drops short tokens",
			input: "go to dinner",
			want:  []string{"dinner"},
		},
		{
			name:  "drops pure digit runs",
			input: "call me at 5551234 tomorrow",
			want:  []string{"call", "tomorrow"},
		},
		{
			name:  "keeps alphanumeric mixes",
			input: "gate b12 terminal4",
			want:  []string{"gate", "b12", "terminal4"},
		},
		{
			name:  "drops stop words",
			input: "see you at the dinner",
			want:  []string{"dinner"},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "all punctuation",
			input: "?!... --- !!!",
			want:  nil,
		},
		{
			name:  "unicode acts as separator",
			input: "café—dinner",
			want:  []string{"caf", "dinner"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.input))
		})
	}
}

func TestTokenizeIsPure(t *testing.T) {
	input := "Dinner plans: tomorrow at seven, maybe eight?"
	first := Tokenize(input)
	second := Tokenize(input)
	assert.Equal(t, first, second)
}
