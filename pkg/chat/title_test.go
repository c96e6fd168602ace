package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{name: "empty", text: "", expected: "New Chat"},
		{name: "whitespace only", text: "   \n\t  ", expected: "New Chat"},
		{name: "trims surrounding whitespace", text: "  hi  ", expected: "hi"},
		{name: "short text unchanged", text: "Hello world", expected: "Hello world"},
		{name: "exactly forty runes unchanged", text: strings.Repeat("a", 40), expected: strings.Repeat("a", 40)},
		{name: "long text truncated with ellipsis", text: strings.Repeat("x", 50), expected: strings.Repeat("x", 40) + "..."},
		{name: "truncation counts runes not bytes", text: strings.Repeat("é", 50), expected: strings.Repeat("é", 40) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeriveTitle(tt.text))
		})
	}
}
