// Package sections resolves which report sections exist, in what order they
// are shown and under which title.
package sections

import (
	"github.com/verustcode/adreport/internal/model"
)

// HeaderKey is the reserved pseudo section holding report header data
const HeaderKey = "header"

// professionalOrder is the canonical section sequence of the professional AD template
var professionalOrder = []string{
	"samenvatting",
	"vraagstelling",
	"ondernomen_activiteiten",
	"gegevens_werknemer",
	"gegevens_werkgever",
	"functieomschrijving",
	"arbeidsverleden",
	"medische_situatie",
	"belastbaarheid",
	"gesprek_werkgever",
	"gesprek_werknemer",
	"visie_arbeidsdeskundige",
	"geschiktheid_eigen_werk",
	"geschiktheid_ander_werk",
	"zoekprofiel",
	"advies",
	"conclusie",
	"vervolg",
}

// legacyOrder is the sequence used by older report templates.
//
// Deprecated: kept as a fallback for reports created from legacy templates.
// Use Order for new code.
var legacyOrder = []string{
	"samenvatting",
	"vraagstelling",
	"ondernomen_activiteiten",
	"gegevens_werkgever",
	"gegevens_werknemer",
	"belastbaarheid",
	"eigen_functie",
	"gesprek_werkgever",
	"gesprek_werknemer",
	"visie_ad",
	"advies",
	"conclusie",
	"vervolg",
}

// CanonicalOrder returns a copy of the professional section order
func CanonicalOrder() []string {
	return append([]string(nil), professionalOrder...)
}

// LegacyOrder returns a copy of the legacy section order.
//
// Deprecated: see legacyOrder.
func LegacyOrder() []string {
	return append([]string(nil), legacyOrder...)
}

// Order returns the display order for the given content keys.
// Canonical ids come first in canonical order, then the remaining keys in
// encounter order. The header and structured_data pseudo keys are skipped.
// When that leaves nothing but keys were given, the raw key order is used.
// The result never contains duplicates and only depends on keys.
func Order(keys []string) []string {
	return orderBy(professionalOrder, keys)
}

// OrderLegacy is Order against the legacy canonical list.
//
// Deprecated: use Order.
func OrderLegacy(keys []string) []string {
	return orderBy(legacyOrder, keys)
}

func orderBy(canonical []string, keys []string) []string {
	present := make(map[string]bool, len(keys))
	for _, k := range keys {
		present[k] = true
	}

	result := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))

	for _, id := range canonical {
		if present[id] {
			result = append(result, id)
			seen[id] = true
		}
	}

	for _, k := range keys {
		if k == "" || seen[k] || isReserved(k) {
			continue
		}
		result = append(result, k)
		seen[k] = true
	}

	if len(result) == 0 && len(keys) > 0 {
		return dedupe(keys)
	}
	return result
}

func isReserved(key string) bool {
	return key == HeaderKey || key == model.StructuredDataKey
}

func dedupe(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
