package parser

import (
	"strconv"
	"strings"

	"github.com/verustcode/adreport/internal/model"
)

func parsePersonalInfo(_ []string, raw string) model.Record {
	info := model.PersonalInfo{
		Name:       firstGroup(nameRe, raw),
		BirthDate:  firstGroup(birthDateRe, raw),
		Address:    firstGroup(addressRe, raw),
		PostalCode: firstGroup(postalCodeRe, raw),
		City:       firstGroup(cityRe, raw),
		Phone:      firstGroup(phoneRe, raw),
	}
	if m := emailRe.FindString(raw); m != "" {
		info.Email = &m
	}
	return info
}

func parseEmployerInfo(_ []string, raw string) model.Record {
	return model.EmployerInfo{
		CompanyName:  firstGroup(companyRe, raw),
		JobTitle:     firstGroup(jobTitleRe, raw),
		Department:   firstGroup(departmentRe, raw),
		StartDate:    firstGroup(startDateRe, raw),
		ContractType: firstGroup(contractRe, raw),
	}
}

// parseWorkability collects every NN% in the text as a capacity percentage,
// including percentages that are not about capacity at all.
func parseWorkability(lines []string, raw string) model.Record {
	var w model.Workability
	for _, m := range percentRe.FindAllStringSubmatch(raw, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil {
			w.Percentages = append(w.Percentages, n)
		}
	}

	for _, b := range bullets(lines) {
		folded := fold(b)
		switch {
		case containsAny(folded, restrictionMarkers):
			w.Restrictions = append(w.Restrictions, b)
		case containsAny(folded, capabilityMarkers):
			w.Capabilities = append(w.Capabilities, b)
		}
	}
	return w
}

func parseMatchingCriteria(lines []string, _ string) model.Record {
	var mc model.MatchingCriteria
	for _, b := range bullets(lines) {
		priority := model.PriorityNormal
		if m := priorityRe.FindStringSubmatch(b); m != nil {
			if strings.EqualFold(m[1], "E") {
				priority = model.PriorityEssential
			} else {
				priority = model.PriorityDesired
			}
			b = strings.TrimSpace(b[:len(b)-len(m[0])])
		}
		if b == "" {
			continue
		}
		mc.Criteria = append(mc.Criteria, model.MatchingCriterion{Text: b, Priority: priority})
	}
	return mc
}

func parseMedicalInfo(lines []string, raw string) model.Record {
	return model.MedicalInfo{
		Diagnosis: firstGroup(diagnosisRe, raw),
		OnsetDate: firstGroup(onsetRe, raw),
		Symptoms:  bullets(lines),
	}
}

func parseWorkHistory(lines []string, _ string) model.Record {
	return model.WorkHistory{Positions: bullets(lines)}
}

func parseSummaryContent(lines []string, _ string) model.Record {
	var s model.SummaryContent
	for _, b := range bullets(lines) {
		if containsAny(fold(b), recommendationMarkers) {
			s.Recommendations = append(s.Recommendations, b)
		} else {
			s.KeyPoints = append(s.KeyPoints, b)
		}
	}
	return s
}
