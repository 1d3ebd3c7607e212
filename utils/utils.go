package utils

import (
	"math"
	"strconv"
	"strings"
)

func RoundTo(n float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(n*pow) / pow
}

// FormatAmount renders a monetary value with thousands separators and two
// decimals, e.g. 1234567.5 -> "1,234,567.50".
func FormatAmount(n float64) string {
	s := strconv.FormatFloat(RoundTo(n, 2), 'f', 2, 64)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + fracPart
}

var markdownEscaper = strings.NewReplacer(
	"_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[",
)

// EscapeMarkdown neutralizes user-supplied text for Markdown message bodies.
func EscapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}
