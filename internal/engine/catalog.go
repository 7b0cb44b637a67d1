package engine

import (
	"fmt"
	"sort"

	"govready/internal/model"
)

// CatalogIssue is one problem found while validating a catalog
type CatalogIssue struct {
	Entity  string `json:"entity"`
	ID      string `json:"id"`
	Problem string `json:"problem"`
}

func (i CatalogIssue) String() string {
	return fmt.Sprintf("%s %s: %s", i.Entity, i.ID, i.Problem)
}

// ValidateCatalog reports authoring mistakes that would make resolution or
// scoring misbehave. The resolver tolerates all of them; this is for authors.
func ValidateCatalog(c *model.Catalog) []CatalogIssue {
	var issues []CatalogIssue
	add := func(entity, id, format string, args ...any) {
		issues = append(issues, CatalogIssue{Entity: entity, ID: id, Problem: fmt.Sprintf(format, args...)})
	}

	subPersonas := make(map[string]struct{})
	for _, p := range c.Personas {
		for _, sp := range p.SubPersonas {
			if sp.PersonaID != "" && sp.PersonaID != p.ID {
				add("sub_persona", sp.ID, "belongs to persona %s but is listed under %s", sp.PersonaID, p.ID)
			}
			subPersonas[sp.ID] = struct{}{}
		}
	}

	sectionIDs := make(map[string]struct{}, len(c.Sections))
	numbers := make(map[int]string, len(c.Sections))
	for _, s := range c.Sections {
		if _, dup := sectionIDs[s.ID]; dup {
			add("section", s.ID, "duplicate id")
		}
		sectionIDs[s.ID] = struct{}{}
		if other, dup := numbers[s.SectionNumber]; dup {
			add("section", s.ID, "shares section number %d with %s", s.SectionNumber, other)
		} else {
			numbers[s.SectionNumber] = s.ID
		}
	}

	questionIDs := make(map[string]struct{}, len(c.Questions))
	for _, q := range c.Questions {
		if _, dup := questionIDs[q.ID]; dup {
			add("question", q.ID, "duplicate id")
		}
		questionIDs[q.ID] = struct{}{}

		if _, ok := sectionIDs[q.SectionID]; !ok {
			add("question", q.ID, "references unknown section %s", q.SectionID)
		}
		if !q.Type.Valid() {
			add("question", q.ID, "unknown type %q", q.Type)
		}
		if q.Points < 0 {
			add("question", q.ID, "negative points %d", q.Points)
		}
		if q.Type == model.QuestionTypeMultipleChoice && len(q.Options) == 0 {
			add("question", q.ID, "multiple choice question without options")
		}

		for _, cond := range q.Conditions {
			if problem := conditionProblem(c, cond, subPersonas); problem != "" {
				add("question", q.ID, "%s", problem)
			}
		}
	}

	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Entity != issues[j].Entity {
			return issues[i].Entity < issues[j].Entity
		}
		return issues[i].ID < issues[j].ID
	})
	return issues
}

func conditionProblem(c *model.Catalog, cond model.ApplicabilityCondition, subPersonas map[string]struct{}) string {
	missing := func() string {
		return fmt.Sprintf("%s condition targets unknown id %q", cond.Dimension, cond.TargetID)
	}
	switch cond.Dimension {
	case model.DimensionPersona:
		if _, ok := c.Persona(cond.TargetID); !ok {
			return missing()
		}
	case model.DimensionSubPersona:
		if cond.AnySubPersona {
			return ""
		}
		if _, ok := subPersonas[cond.TargetID]; !ok {
			return missing()
		}
	case model.DimensionTherapeuticArea:
		if _, ok := c.TherapeuticArea(cond.TargetID); !ok {
			return missing()
		}
	case model.DimensionAIModelType:
		if _, ok := c.AIModelType(cond.TargetID); !ok {
			return missing()
		}
	case model.DimensionDeploymentScenario:
		if _, ok := c.DeploymentScenario(cond.TargetID); !ok {
			return missing()
		}
	default:
		return fmt.Sprintf("condition has unknown dimension %q", cond.Dimension)
	}
	return ""
}
