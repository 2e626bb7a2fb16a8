package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "hello", TruncateString("hello", 10))
	assert.Equal(t, "hel", TruncateString("hello", 3))
	assert.Equal(t, "hello", TruncateString("hello", 0))
	// Runes, not bytes.
	assert.Equal(t, "héllo", TruncateString("héllo world", 5))
}

func TestTruncateWords(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{
			name: "short string untouched",
			in:   "steel kettle",
			max:  50,
			want: "steel kettle",
		},
		{
			name: "cuts at word boundary",
			in:   "professional stainless steel kitchen kettle",
			max:  30,
			want: "professional stainless steel",
		},
		{
			name: "trims trailing punctuation",
			in:   "one two, three four five six",
			max:  8,
			want: "one two",
		},
		{
			name: "hard cut when no usable space",
			in:   "supercalifragilisticexpialidocious",
			max:  10,
			want: "supercalif",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateWords(tt.in, tt.max))
		})
	}
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", CollapseWhitespace("  a\t b \n c  "))
	assert.Equal(t, "", CollapseWhitespace("   \n\t "))
	assert.Equal(t, "unchanged", CollapseWhitespace("unchanged"))
}
