package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	monthNames = `januari|februari|maart|april|mei|juni|juli|augustus|september|oktober|november|december`
	datePat    = `\d{1,2}[-/.]\d{1,2}[-/.]\d{4}|\d{1,2}[ \t]+(?:` + monthNames + `)[ \t]+\d{4}`
)

var (
	numberedItem = regexp.MustCompile(`^\d{1,2}[.)]\s+(.+)$`)

	// PersonalInfo
	nameRe       = regexp.MustCompile(`(?i)\b(?:naam|heer|mevrouw)\b[ \t]*:?[ \t]*([^\n,;]+)`)
	birthDateRe  = regexp.MustCompile(`(?i)\b(?:geboortedatum|geboren(?:\s+op)?)\b[ \t]*:?[ \t]*(` + datePat + `)`)
	addressRe    = regexp.MustCompile(`(?i)\b(?:woonadres|adres)\b[ \t]*:?[ \t]*([^,\n]+)`)
	postalCodeRe = regexp.MustCompile(`\b(\d{4}\s?[A-Z]{2})\b`)
	cityRe       = regexp.MustCompile(`\b\d{4}\s?[A-Z]{2}[ \t]+([^\s,;]+)`)
	phoneRe      = regexp.MustCompile(`(?i)\b(?:telefoonnummer|telefoon|tel)\b\.?[ \t]*:?[ \t]*(\+?\d[\d \t\-()./]{5,}\d)`)
	emailRe      = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

	// EmployerInfo
	companyRe    = regexp.MustCompile(`(?i)\b(?:werkgever|bedrijfsnaam|bedrijf|organisatie)\b[ \t]*:[ \t]*([^\n]+)`)
	jobTitleRe   = regexp.MustCompile(`(?i)\b(?:functietitel|functie)\b[ \t]*:[ \t]*([^\n]+)`)
	departmentRe = regexp.MustCompile(`(?i)\bafdeling\b[ \t]*:[ \t]*([^\n]+)`)
	startDateRe  = regexp.MustCompile(`(?i)\b(?:datum in dienst|in dienst sinds|in dienst per|in dienst|startdatum)\b[ \t]*:?[ \t]*(` + datePat + `)`)
	contractRe   = regexp.MustCompile(`(?i)\b(?:soort dienstverband|dienstverband|contractvorm|contract)\b[ \t]*:[ \t]*([^\n]+)`)

	// Workability
	percentRe = regexp.MustCompile(`(\d{1,3})\s?%`)

	// MatchingCriteria
	priorityRe = regexp.MustCompile(`(?i)\s*\(([EW])\)\s*$`)

	// MedicalInfo
	diagnosisRe = regexp.MustCompile(`(?i)\b(?:diagnose|klachten|aandoening)\b[ \t]*:[ \t]*([^\n]+)`)
	onsetRe     = regexp.MustCompile(`(?i)\b(?:eerste ziektedag|datum ziekmelding|ziekgemeld op|ziek sinds|sinds|ontstaan)\b[ \t]*:?[ \t]*(` + datePat + `)`)
)

// firstGroup returns the trimmed first capture group of the first match
func firstGroup(re *regexp.Regexp, s string) *string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	v := cleanValue(m[1])
	if v == "" {
		return nil
	}
	return &v
}

// cleanValue trims whitespace, markdown emphasis, trailing separators and a
// sentence-ending period. The period of an abbreviation or initial stays.
func cleanValue(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "*_")
	s = strings.TrimRight(s, ";:")
	if strings.HasSuffix(s, ".") && !endsWithAbbreviation(s) {
		s = strings.TrimSuffix(s, ".")
	}
	return strings.TrimSpace(s)
}

// endsWithAbbreviation reports whether the final period belongs to a token
// like "B.V." or an initial like "P.".
func endsWithAbbreviation(s string) bool {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return false
	}
	last := strings.TrimSuffix(fields[len(fields)-1], ".")
	return strings.Contains(last, ".") || utf8.RuneCountInString(last) == 1
}
