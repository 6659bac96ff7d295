package parser

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/verustcode/adreport/internal/model"
)

var (
	// Matched as substrings of the folded line. A line with a negation is a
	// restriction even when it also says "kan", and "onmogelijk" is checked
	// before "mogelijk" can claim it.
	restrictionMarkers = []string{"niet", "beperkt", "beperking", "onmogelijk"}
	capabilityMarkers  = []string{"kan", "kunnen", "mogelijk"}

	recommendationMarkers = []string{"aanbeveling", "advies"}
)

// kindByID maps canonical section ids to record kinds
var kindByID = map[string]model.SectionKind{
	"gegevens_werknemer": model.KindPersonalInfo,
	"gegevens_werkgever": model.KindEmployerInfo,
	"belastbaarheid":     model.KindWorkability,
	"zoekprofiel":        model.KindMatchingCriteria,
	"medische_situatie":  model.KindMedicalInfo,
	"arbeidsverleden":    model.KindWorkHistory,
	"samenvatting":       model.KindSummaryContent,
	"conclusie":          model.KindSummaryContent,
}

type keywordKind struct {
	keyword string
	kind    model.SectionKind
}

// kindKeywords is checked in order for ids outside kindByID.
// Conversation and opinion sections mention parties but are narrative.
var kindKeywords = []keywordKind{
	{"gesprek", model.KindPlainText},
	{"visie", model.KindPlainText},
	{"werknemer", model.KindPersonalInfo},
	{"personalia", model.KindPersonalInfo},
	{"werkgever", model.KindEmployerInfo},
	{"belastbaar", model.KindWorkability},
	{"zoekprofiel", model.KindMatchingCriteria},
	{"matching", model.KindMatchingCriteria},
	{"medisch", model.KindMedicalInfo},
	{"arbeidsverleden", model.KindWorkHistory},
	{"werkervaring", model.KindWorkHistory},
	{"loopbaan", model.KindWorkHistory},
	{"samenvatting", model.KindSummaryContent},
	{"conclusie", model.KindSummaryContent},
}

// DetectKind maps a section id to the record kind its content is parsed as
func DetectKind(sectionID string) model.SectionKind {
	id := fold(strings.TrimSpace(sectionID))
	if k, ok := kindByID[id]; ok {
		return k
	}
	for _, kk := range kindKeywords {
		if strings.Contains(id, kk.keyword) {
			return kk.kind
		}
	}
	return model.KindPlainText
}

// fold applies Unicode case folding. A Caser is stateful, so one is made per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
