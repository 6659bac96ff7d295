// Package parser extracts typed structured records from freeform section text.
//
// Parsing is a pure function of the raw text. Every rule is a label-anchored,
// case-insensitive pattern; the first match wins and a field without a match
// stays unset. Nothing is ever guessed.
package parser

import (
	"strings"

	"go.uber.org/zap"

	"github.com/verustcode/adreport/internal/model"
	"github.com/verustcode/adreport/pkg/logger"
)

// extractor parses raw text into one record kind
type extractor func(lines []string, raw string) model.Record

var extractors = map[model.SectionKind]extractor{
	model.KindPersonalInfo:     parsePersonalInfo,
	model.KindEmployerInfo:     parseEmployerInfo,
	model.KindWorkability:      parseWorkability,
	model.KindMatchingCriteria: parseMatchingCriteria,
	model.KindMedicalInfo:      parseMedicalInfo,
	model.KindWorkHistory:      parseWorkHistory,
	model.KindSummaryContent:   parseSummaryContent,
}

// Parse extracts a record of the given kind from raw.
// Unknown kinds and KindPlainText return a PlainText carrying raw unchanged.
// A known kind always returns its own record type, possibly with every field unset.
func Parse(raw string, kind model.SectionKind) (rec model.Record) {
	ex, ok := extractors[kind]
	if !ok {
		return model.PlainText{Text: raw}
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Parser panicked, falling back to plain text",
				zap.String("kind", string(kind)),
				zap.Any("panic", r),
			)
			rec = model.PlainText{Text: raw}
		}
	}()

	return ex(splitLines(raw), raw)
}

// ParseSection detects the kind from the section id and parses raw
func ParseSection(sectionID, raw string) model.Record {
	return Parse(raw, DetectKind(sectionID))
}

func splitLines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	return strings.Split(raw, "\n")
}

// bulletPrefixes are the list markers recognized at the start of a line
var bulletPrefixes = []string{"- ", "* ", "+ ", "• ", "◦ ", "▪ ", "– ", "-", "•", "◦", "▪", "–"}

// bullet returns the text of a bullet line without its marker.
// Numbered items like "1." and "2)" count as bullets too.
func bullet(line string) (string, bool) {
	t := strings.TrimSpace(line)
	if t == "" {
		return "", false
	}
	for _, p := range bulletPrefixes {
		if strings.HasPrefix(t, p) {
			// "---" is a horizontal rule, not a bullet
			if strings.HasPrefix(t, "--") {
				return "", false
			}
			rest := strings.TrimSpace(strings.TrimPrefix(t, p))
			return rest, rest != ""
		}
	}
	if m := numberedItem.FindStringSubmatch(t); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}

func bullets(lines []string) []string {
	var out []string
	for _, l := range lines {
		if b, ok := bullet(l); ok {
			out = append(out, b)
		}
	}
	return out
}
