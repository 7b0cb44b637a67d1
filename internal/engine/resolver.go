package engine

import (
	"sort"
	"strings"

	"govready/internal/model"
)

// Complexity buckets for the summed weights of a context's tags
const (
	ComplexityMediumFrom = 10
	ComplexityHighFrom   = 20
)

// ValidateContext checks the shape of a resolution context without touching the catalog
func ValidateContext(rc model.ResolutionContext, personaIsAdmin bool) error {
	if strings.TrimSpace(rc.PersonaID) == "" {
		if !personaIsAdmin {
			return &ValidationError{Field: "personaId", Reason: "is required"}
		}
		if rc.SubPersonaID != "" {
			return &ValidationError{Field: "subPersonaId", Reason: "requires personaId"}
		}
	}
	if err := checkIDList("therapeuticAreaIds", rc.TherapeuticAreaIDs); err != nil {
		return err
	}
	if err := checkIDList("aiModelTypeIds", rc.AIModelTypeIDs); err != nil {
		return err
	}
	return checkIDList("deploymentScenarioIds", rc.DeploymentScenarioIDs)
}

func checkIDList(field string, ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return &ValidationError{Field: field, Reason: "contains a blank id"}
		}
		if _, dup := seen[id]; dup {
			return &ValidationError{Field: field, Reason: "contains duplicate id " + id}
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Resolve selects the sections and questions of catalog that apply to rc.
//
// With personaIsAdmin the persona and sub-persona dimensions are ignored, and
// tag dimensions only filter when rc supplies values for them. Sections with no
// applicable questions are left out. Sections are ordered by section number and
// questions keep catalog order. Every ID referenced by rc must exist in the
// catalog; a valid context with no matching content yields an empty result.
func Resolve(catalog *model.Catalog, rc model.ResolutionContext, personaIsAdmin bool) (*model.ResolvedAssessment, error) {
	if catalog == nil {
		return nil, &ValidationError{Field: "catalog", Reason: "is missing"}
	}
	if err := ValidateContext(rc, personaIsAdmin); err != nil {
		return nil, err
	}

	complexity, err := checkReferences(catalog, rc)
	if err != nil {
		return nil, err
	}

	sections := make([]model.Section, len(catalog.Sections))
	copy(sections, catalog.Sections)
	sort.SliceStable(sections, func(i, j int) bool {
		if sections[i].SectionNumber != sections[j].SectionNumber {
			return sections[i].SectionNumber < sections[j].SectionNumber
		}
		return sections[i].ID < sections[j].ID
	})

	bySection := questionsBySection(catalog.Questions)

	out := &model.ResolvedAssessment{
		CatalogVersion:  catalog.Version,
		Context:         rc,
		AdminView:       personaIsAdmin,
		Sections:        []model.ResolvedSection{},
		ComplexityScore: complexity,
		ComplexityLevel: ComplexityLevelFor(complexity),
	}

	for _, sec := range sections {
		var included []model.Question
		points := 0
		for _, q := range bySection[sec.ID] {
			if !includeQuestion(q, rc, personaIsAdmin) {
				continue
			}
			included = append(included, q)
			points += q.Points
		}
		if len(included) == 0 {
			continue
		}
		out.Sections = append(out.Sections, model.ResolvedSection{
			SectionID:         sec.ID,
			SectionNumber:     sec.SectionNumber,
			Title:             sec.Title,
			Category:          sec.Category,
			IsCriticalBlocker: sec.IsCriticalBlocker,
			DisplayBasePoints: sec.BasePoints,
			BasePoints:        points,
			TotalQuestions:    len(included),
			Questions:         included,
		})
		out.TotalQuestions += len(included)
		out.TotalPoints += points
	}

	return out, nil
}

// checkReferences verifies every ID in rc exists and sums tag complexity weights
func checkReferences(catalog *model.Catalog, rc model.ResolutionContext) (int, error) {
	if rc.PersonaID != "" {
		persona, ok := catalog.Persona(rc.PersonaID)
		if !ok {
			return 0, &NotFoundError{Entity: "persona", ID: rc.PersonaID}
		}
		if rc.SubPersonaID != "" {
			if _, ok := persona.SubPersona(rc.SubPersonaID); !ok {
				return 0, &NotFoundError{Entity: "sub_persona", ID: rc.SubPersonaID}
			}
		}
	}

	complexity := 0
	for _, id := range rc.TherapeuticAreaIDs {
		ta, ok := catalog.TherapeuticArea(id)
		if !ok {
			return 0, &NotFoundError{Entity: "therapeutic_area", ID: id}
		}
		complexity += ta.ComplexityWeight
	}
	for _, id := range rc.AIModelTypeIDs {
		mt, ok := catalog.AIModelType(id)
		if !ok {
			return 0, &NotFoundError{Entity: "ai_model_type", ID: id}
		}
		complexity += mt.ComplexityWeight
	}
	for _, id := range rc.DeploymentScenarioIDs {
		ds, ok := catalog.DeploymentScenario(id)
		if !ok {
			return 0, &NotFoundError{Entity: "deployment_scenario", ID: id}
		}
		complexity += ds.ComplexityWeight
	}
	return complexity, nil
}

func questionsBySection(questions []model.Question) map[string][]model.Question {
	ordered := make([]model.Question, len(questions))
	copy(ordered, questions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	out := make(map[string][]model.Question)
	for _, q := range ordered {
		out[q.SectionID] = append(out[q.SectionID], q)
	}
	return out
}

// ComplexityLevelFor buckets a summed complexity weight
func ComplexityLevelFor(score int) model.ComplexityLevel {
	switch {
	case score >= ComplexityHighFrom:
		return model.ComplexityHigh
	case score >= ComplexityMediumFrom:
		return model.ComplexityMedium
	default:
		return model.ComplexityLow
	}
}
