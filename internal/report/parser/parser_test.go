package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verustcode/adreport/internal/model"
)

func TestParse_PersonalInfoNameAndPhone(t *testing.T) {
	rec := Parse("Naam: Jan de Vries\nTelefoon: 020-1234567", model.KindPersonalInfo)

	info, ok := rec.(model.PersonalInfo)
	require.True(t, ok)
	require.NotNil(t, info.Name)
	assert.Equal(t, "Jan de Vries", *info.Name)
	require.NotNil(t, info.Phone)
	assert.Equal(t, "020-1234567", *info.Phone)
	assert.Nil(t, info.Email)
	assert.Nil(t, info.BirthDate)
}

func TestParse_PersonalInfoFull(t *testing.T) {
	raw := `**Naam:** Mevr. P. Jansen
Geboortedatum: 3 maart 1975
Adres: Dorpsstraat 12, 1234 AB Utrecht
Tel. 06 12 34 56 78
E-mail: p.jansen@example.nl`

	info := Parse(raw, model.KindPersonalInfo).(model.PersonalInfo)
	assert.Equal(t, "Mevr. P. Jansen", *info.Name)
	assert.Equal(t, "3 maart 1975", *info.BirthDate)
	assert.Equal(t, "Dorpsstraat 12", *info.Address)
	assert.Equal(t, "1234 AB", *info.PostalCode)
	assert.Equal(t, "Utrecht", *info.City)
	assert.Equal(t, "06 12 34 56 78", *info.Phone)
	assert.Equal(t, "p.jansen@example.nl", *info.Email)
}

func TestParse_PersonalInfoNumericDate(t *testing.T) {
	info := Parse("Geboren op 01-02-1980", model.KindPersonalInfo).(model.PersonalInfo)
	require.NotNil(t, info.BirthDate)
	assert.Equal(t, "01-02-1980", *info.BirthDate)
}

func TestParse_EmptyLabelDoesNotCrossLines(t *testing.T) {
	info := Parse("Naam:\nTelefoon: 020-1234567", model.KindPersonalInfo).(model.PersonalInfo)
	assert.Nil(t, info.Name)
	assert.NotNil(t, info.Phone)
}

func TestParse_FirstMatchWins(t *testing.T) {
	info := Parse("Naam: Eerste\nNaam: Tweede", model.KindPersonalInfo).(model.PersonalInfo)
	assert.Equal(t, "Eerste", *info.Name)
}

func TestParse_EmployerInfo(t *testing.T) {
	raw := `Werkgever: Bouwbedrijf De Vries B.V.
Functie: Timmerman
Afdeling: Projecten
In dienst sinds: 01-04-2010
Dienstverband: vast contract, 38 uur`

	info := Parse(raw, model.KindEmployerInfo).(model.EmployerInfo)
	assert.Equal(t, "Bouwbedrijf De Vries B.V.", *info.CompanyName)
	assert.Equal(t, "Timmerman", *info.JobTitle)
	assert.Equal(t, "Projecten", *info.Department)
	assert.Equal(t, "01-04-2010", *info.StartDate)
	assert.Equal(t, "vast contract, 38 uur", *info.ContractType)
}

func TestParse_KeepsAbbreviationPeriods(t *testing.T) {
	info := Parse("Werkgever: Jansen B.V.\nFunctie: Magazijnmedewerker.", model.KindEmployerInfo).(model.EmployerInfo)
	assert.Equal(t, "Jansen B.V.", *info.CompanyName)
	assert.Equal(t, "Magazijnmedewerker", *info.JobTitle)

	person := Parse("Naam: Jan P.", model.KindPersonalInfo).(model.PersonalInfo)
	assert.Equal(t, "Jan P.", *person.Name)
}

func TestParse_EmployerInfoMissingFields(t *testing.T) {
	rec := Parse("Geen gegevens bekend.", model.KindEmployerInfo)
	info, ok := rec.(model.EmployerInfo)
	require.True(t, ok)
	assert.True(t, info.IsEmpty())
}

func TestParse_Workability(t *testing.T) {
	raw := "- Kan 4 uur per dag zitten\n- Niet in staat tot tillen > 10kg\nCapaciteit: 40%"

	w, ok := Parse(raw, model.KindWorkability).(model.Workability)
	require.True(t, ok)
	assert.Equal(t, []int{40}, w.Percentages)
	require.Len(t, w.Capabilities, 1)
	assert.Contains(t, w.Capabilities[0], "Kan")
	require.Len(t, w.Restrictions, 1)
	assert.Contains(t, w.Restrictions[0], "Niet")
}

func TestParse_WorkabilityInflectedKeywords(t *testing.T) {
	raw := "- Beperkte draagkracht voor tillen\n- Onmogelijk om lang te staan\n- Mogelijkheden voor licht werk\n- Kan niet langdurig lopen"

	w := Parse(raw, model.KindWorkability).(model.Workability)
	assert.Equal(t, []string{
		"Beperkte draagkracht voor tillen",
		"Onmogelijk om lang te staan",
		"Kan niet langdurig lopen",
	}, w.Restrictions)
	assert.Equal(t, []string{"Mogelijkheden voor licht werk"}, w.Capabilities)
}

func TestParse_WorkabilityEveryPercentage(t *testing.T) {
	raw := "Belastbaar voor 50% van de functie.\nBTW is 21 %.\n• Beperkt in reiken\n• Kan niet bukken\n• Werken is mogelijk in deeltijd"

	w := Parse(raw, model.KindWorkability).(model.Workability)
	assert.Equal(t, []int{50, 21}, w.Percentages)
	assert.Equal(t, []string{"Beperkt in reiken", "Kan niet bukken"}, w.Restrictions)
	assert.Equal(t, []string{"Werken is mogelijk in deeltijd"}, w.Capabilities)
}

func TestParse_MatchingCriteria(t *testing.T) {
	raw := "Zoekprofiel:\n- Fysiek licht werk (E)\n- Dicht bij huis (w)\n- Werken in teamverband\n1. Vaste werktijden (E)"

	mc := Parse(raw, model.KindMatchingCriteria).(model.MatchingCriteria)
	assert.Equal(t, []model.MatchingCriterion{
		{Text: "Fysiek licht werk", Priority: model.PriorityEssential},
		{Text: "Dicht bij huis", Priority: model.PriorityDesired},
		{Text: "Werken in teamverband", Priority: model.PriorityNormal},
		{Text: "Vaste werktijden", Priority: model.PriorityEssential},
	}, mc.Criteria)
}

func TestParse_MedicalInfo(t *testing.T) {
	raw := "Klachten: chronische rugpijn\nZiek sinds 12 januari 2024\n- Pijn bij lang staan\n- Vermoeidheid"

	mi := Parse(raw, model.KindMedicalInfo).(model.MedicalInfo)
	assert.Equal(t, "chronische rugpijn", *mi.Diagnosis)
	assert.Equal(t, "12 januari 2024", *mi.OnsetDate)
	assert.Equal(t, []string{"Pijn bij lang staan", "Vermoeidheid"}, mi.Symptoms)
}

func TestParse_WorkHistory(t *testing.T) {
	raw := "Loopbaan:\n- 2010-2024: Timmerman bij De Vries\n- 2005-2010: Magazijnmedewerker\n---\nOpleiding: MBO"

	wh := Parse(raw, model.KindWorkHistory).(model.WorkHistory)
	assert.Equal(t, []string{"2010-2024: Timmerman bij De Vries", "2005-2010: Magazijnmedewerker"}, wh.Positions)
}

func TestParse_SummaryContent(t *testing.T) {
	raw := "* Werknemer is beperkt belastbaar\n* Eigen werk is niet passend\n* Aanbeveling: start tweede spoor\n* Advies aan werkgever: aanpassen werkplek"

	s := Parse(raw, model.KindSummaryContent).(model.SummaryContent)
	assert.Equal(t, []string{"Werknemer is beperkt belastbaar", "Eigen werk is niet passend"}, s.KeyPoints)
	assert.Equal(t, []string{"Aanbeveling: start tweede spoor", "Advies aan werkgever: aanpassen werkplek"}, s.Recommendations)
}

func TestParse_PlainTextRoundTrip(t *testing.T) {
	inputs := []string{
		"Dit is een verhalende tekst zonder herkenbare velden.",
		"",
		"  spaties \n\n\n en regels  ",
		"# Kop\n\n- lijst",
	}
	for _, in := range inputs {
		assert.Equal(t, model.PlainText{Text: in}, Parse(in, model.KindPlainText))
		assert.Equal(t, model.PlainText{Text: in}, Parse(in, model.SectionKind("unknown")))
	}
}

func TestParse_IsPure(t *testing.T) {
	raw := "Naam: Jan de Vries"
	a := Parse(raw, model.KindPersonalInfo)
	b := Parse(raw, model.KindPersonalInfo)
	assert.Equal(t, a, b)
	assert.Equal(t, "Naam: Jan de Vries", raw)
}

func TestDetectKind(t *testing.T) {
	tests := map[string]model.SectionKind{
		"gegevens_werknemer":  model.KindPersonalInfo,
		"gegevens_werkgever":  model.KindEmployerInfo,
		"belastbaarheid":      model.KindWorkability,
		"zoekprofiel":         model.KindMatchingCriteria,
		"medische_situatie":   model.KindMedicalInfo,
		"arbeidsverleden":     model.KindWorkHistory,
		"samenvatting":        model.KindSummaryContent,
		"conclusie":           model.KindSummaryContent,
		"GEGEVENS_WERKNEMER":  model.KindPersonalInfo,
		"personalia":          model.KindPersonalInfo,
		"medisch_dossier":     model.KindMedicalInfo,
		"gesprek_werkgever":   model.KindPlainText,
		"visie_ad":            model.KindPlainText,
		"vraagstelling":       model.KindPlainText,
		"totaal_onbekend":     model.KindPlainText,
		"belastbaar_profiel":  model.KindWorkability,
		"werkervaring_eerder": model.KindWorkHistory,
	}

	for id, want := range tests {
		t.Run(id, func(t *testing.T) {
			assert.Equal(t, want, DetectKind(id))
		})
	}
}

func TestParseSection(t *testing.T) {
	rec := ParseSection("belastbaarheid", "Capaciteit: 60%")
	assert.Equal(t, model.KindWorkability, rec.Kind())

	rec = ParseSection("vraagstelling", "Vraag")
	assert.Equal(t, model.PlainText{Text: "Vraag"}, rec)
}
