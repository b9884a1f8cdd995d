package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCount(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"1234", 1234},
		{"1,234,567", 1234567},
		{" 42 ", 42},
		{"", 0},
		{"  ", 0},
		{"N/A", 0},
		{"+5", 5},
		{"12.5", 0},
		{"0", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseCount(tc.in), "input %q", tc.in)
	}
}
