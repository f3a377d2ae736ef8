package stringutils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefix(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"shorter than limit", "hello", 50, "hello"},
		{"exact cut", "abcdef", 3, "abc"},
		{"multibyte", "héllo wörld", 7, "héllo w"},
		{"zero", "abc", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Prefix(tt.in, tt.n))
		})
	}
}

func TestCleanGeneratedTitle(t *testing.T) {
	assert.Equal(t, "Code Architecture Review", CleanGeneratedTitle("  \"Code  Architecture Review\"\n", 50))
	assert.Equal(t, "", CleanGeneratedTitle("   ", 50))
	long := strings.Repeat("word ", 30)
	assert.LessOrEqual(t, len([]rune(CleanGeneratedTitle(long, 50))), 50)
}
