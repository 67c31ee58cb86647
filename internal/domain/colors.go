package domain

import (
	"regexp"
	"strings"
)

var colorSeparators = regexp.MustCompile(`[,|;]`)

// ParseColors разбирает строку цветов вида "Red, Blue|Green" в упорядоченное множество.
func ParseColors(raw string) []string {
	return NormalizeColors(colorSeparators.Split(raw, -1))
}

// NormalizeColors обрезает пробелы, отбрасывает пустые значения и дубликаты, сохраняя порядок.
func NormalizeColors(colors []string) []string {
	out := make([]string, 0, len(colors))
	seen := make(map[string]struct{}, len(colors))
	for _, c := range colors {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}

	return out
}

// FormatColors сериализует цвета обратно в строку, совместимую с ParseColors.
func FormatColors(colors []string) string {
	return strings.Join(colors, ", ")
}
