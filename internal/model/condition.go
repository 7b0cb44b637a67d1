package model

// ConditionDimension tags an ApplicabilityCondition with the context dimension it binds
type ConditionDimension string

const (
	DimensionPersona            ConditionDimension = "persona"
	DimensionSubPersona         ConditionDimension = "sub_persona"
	DimensionTherapeuticArea    ConditionDimension = "therapeutic_area"
	DimensionAIModelType        ConditionDimension = "ai_model_type"
	DimensionDeploymentScenario ConditionDimension = "deployment_scenario"
)

// Dimensions lists every condition dimension in evaluation order
var Dimensions = []ConditionDimension{
	DimensionPersona,
	DimensionSubPersona,
	DimensionTherapeuticArea,
	DimensionAIModelType,
	DimensionDeploymentScenario,
}

// ApplicabilityCondition binds a question to one value of one context dimension.
// Dimension is the variant tag; TargetID is the payload. AnySubPersona is only
// meaningful for DimensionSubPersona and matches every context.
type ApplicabilityCondition struct {
	ID            string             `json:"id" bson:"_id" yaml:"id"`
	QuestionID    string             `json:"questionId" bson:"questionId" yaml:"questionId"`
	Dimension     ConditionDimension `json:"dimension" bson:"dimension" yaml:"dimension"`
	TargetID      string             `json:"targetId,omitempty" bson:"targetId,omitempty" yaml:"targetId,omitempty"`
	AnySubPersona bool               `json:"anySubPersona,omitempty" bson:"anySubPersona,omitempty" yaml:"anySubPersona,omitempty"`
}

func PersonaCondition(personaID string) ApplicabilityCondition {
	return ApplicabilityCondition{Dimension: DimensionPersona, TargetID: personaID}
}

func SubPersonaCondition(subPersonaID string) ApplicabilityCondition {
	return ApplicabilityCondition{Dimension: DimensionSubPersona, TargetID: subPersonaID}
}

// AnySubPersonaCondition admits every sub-persona, including none
func AnySubPersonaCondition() ApplicabilityCondition {
	return ApplicabilityCondition{Dimension: DimensionSubPersona, AnySubPersona: true}
}

func TherapeuticAreaCondition(areaID string) ApplicabilityCondition {
	return ApplicabilityCondition{Dimension: DimensionTherapeuticArea, TargetID: areaID}
}

func AIModelTypeCondition(modelTypeID string) ApplicabilityCondition {
	return ApplicabilityCondition{Dimension: DimensionAIModelType, TargetID: modelTypeID}
}

func DeploymentScenarioCondition(scenarioID string) ApplicabilityCondition {
	return ApplicabilityCondition{Dimension: DimensionDeploymentScenario, TargetID: scenarioID}
}
