package render

import (
	"regexp"
	"strings"
)

var (
	// a run of 3 or more blank lines
	blankRunRe = regexp.MustCompile(`\n{4,}`)

	// bullet glyphs at line start; "*" and "+" only count when followed by a space
	bulletGlyphRe = regexp.MustCompile(`^(?:[•◦▪–]\s*|[*+]\s+)`)
)

// Preprocess normalizes raw markdown before conversion: every line is
// trimmed, bullet glyphs become "- ", and runs of 3+ blank lines collapse to 2.
func Preprocess(raw string) string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if loc := bulletGlyphRe.FindStringIndex(line); loc != nil {
			line = "- " + line[loc[1]:]
		}
		lines[i] = line
	}

	out := strings.Join(lines, "\n")
	out = blankRunRe.ReplaceAllString(out, "\n\n\n")
	return strings.TrimSpace(out)
}
