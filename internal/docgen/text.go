package docgen

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// capitalise title-cases every whitespace-separated word.
func capitalise(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = titleCaser.String(w)
	}
	return strings.Join(words, " ")
}

// displayName turns a view file base name into its human-readable tag name.
func displayName(fileName string) string {
	return capitalise(strings.ReplaceAll(fileName, "_", " "))
}

// docTrim removes the common leading indentation from a comment block. The
// first line is treated specially since it usually starts at column zero,
// and leading and trailing blank lines are dropped.
func docTrim(doc string) string {
	if doc == "" {
		return ""
	}
	lines := strings.Split(strings.ReplaceAll(doc, "\t", strings.Repeat(" ", 8)), "\n")
	indent := -1
	for _, line := range lines[1:] {
		stripped := strings.TrimLeft(line, " ")
		if stripped == "" {
			continue
		}
		if n := len(line) - len(stripped); indent == -1 || n < indent {
			indent = n
		}
	}
	trimmed := []string{strings.TrimSpace(lines[0])}
	for _, line := range lines[1:] {
		if indent > 0 && len(line) >= indent {
			line = line[indent:]
		}
		trimmed = append(trimmed, strings.TrimRight(line, " "))
	}
	for len(trimmed) > 0 && trimmed[len(trimmed)-1] == "" {
		trimmed = trimmed[:len(trimmed)-1]
	}
	for len(trimmed) > 0 && trimmed[0] == "" {
		trimmed = trimmed[1:]
	}
	return strings.Join(trimmed, "\n")
}
