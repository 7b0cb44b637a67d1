package engine

import "govready/internal/model"

// Matches reports whether one condition is satisfied by the context.
// A condition with an unknown dimension never matches.
func Matches(c model.ApplicabilityCondition, rc model.ResolutionContext) bool {
	switch c.Dimension {
	case model.DimensionPersona:
		return c.TargetID != "" && c.TargetID == rc.PersonaID
	case model.DimensionSubPersona:
		if c.AnySubPersona {
			return true
		}
		// no sub-persona in context: conservative exclusion
		return rc.SubPersonaID != "" && c.TargetID == rc.SubPersonaID
	case model.DimensionTherapeuticArea:
		return containsID(rc.TherapeuticAreaIDs, c.TargetID)
	case model.DimensionAIModelType:
		return containsID(rc.AIModelTypeIDs, c.TargetID)
	case model.DimensionDeploymentScenario:
		return containsID(rc.DeploymentScenarioIDs, c.TargetID)
	default:
		return false
	}
}

// IncludeQuestion folds all of a question's conditions: OR within a dimension,
// AND across dimensions. A question without conditions is always included.
func IncludeQuestion(q model.Question, rc model.ResolutionContext) bool {
	return includeQuestion(q, rc, false)
}

// includeQuestion with admin set skips the persona and sub-persona dimensions,
// and any tag dimension the context supplies no values for.
func includeQuestion(q model.Question, rc model.ResolutionContext, admin bool) bool {
	if len(q.Conditions) == 0 {
		return true
	}

	satisfied := make(map[model.ConditionDimension]bool, len(model.Dimensions))
	for _, c := range q.Conditions {
		if admin && adminSkips(c.Dimension, rc) {
			continue
		}
		if _, seen := satisfied[c.Dimension]; !seen {
			satisfied[c.Dimension] = false
		}
		if Matches(c, rc) {
			satisfied[c.Dimension] = true
		}
	}

	for _, ok := range satisfied {
		if !ok {
			return false
		}
	}
	return true
}

func adminSkips(dim model.ConditionDimension, rc model.ResolutionContext) bool {
	switch dim {
	case model.DimensionPersona, model.DimensionSubPersona:
		return true
	case model.DimensionTherapeuticArea:
		return len(rc.TherapeuticAreaIDs) == 0
	case model.DimensionAIModelType:
		return len(rc.AIModelTypeIDs) == 0
	case model.DimensionDeploymentScenario:
		return len(rc.DeploymentScenarioIDs) == 0
	default:
		return false
	}
}

func containsID(ids []string, id string) bool {
	if id == "" {
		return false
	}
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
