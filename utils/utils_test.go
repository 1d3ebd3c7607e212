package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 1.23, RoundTo(1.2345, 2))
	assert.Equal(t, 1.24, RoundTo(1.235, 2))
	assert.Equal(t, 100.0, RoundTo(99.999, 2))
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{5, "5.00"},
		{999.9, "999.90"},
		{1000, "1,000.00"},
		{1234567.891, "1,234,567.89"},
		{-1234.5, "-1,234.50"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatAmount(tc.in))
	}
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, "a\\_b\\*c\\`d\\[e", EscapeMarkdown("a_b*c`d[e"))
	assert.Equal(t, "plain text", EscapeMarkdown("plain text"))
}
