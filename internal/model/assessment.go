package model

import "time"

// ResolutionContext is rebuilt from an Assessment every time resolution runs
type ResolutionContext struct {
	PersonaID             string   `json:"personaId" yaml:"personaId"`
	SubPersonaID          string   `json:"subPersonaId,omitempty" yaml:"subPersonaId,omitempty"`
	TherapeuticAreaIDs    []string `json:"therapeuticAreaIds" yaml:"therapeuticAreaIds"`
	AIModelTypeIDs        []string `json:"aiModelTypeIds" yaml:"aiModelTypeIds"`
	DeploymentScenarioIDs []string `json:"deploymentScenarioIds" yaml:"deploymentScenarioIds"`
	CompanyID             string   `json:"companyId,omitempty" yaml:"companyId,omitempty"`
}

// Assessment is the persisted record a ResolutionContext is reconstructed from
type Assessment struct {
	ID                    string    `json:"id" bson:"_id"`
	Name                  string    `json:"name" bson:"name"`
	CompanyID             string    `json:"companyId" bson:"companyId"`
	PersonaID             string    `json:"personaId" bson:"personaId"`
	SubPersonaID          string    `json:"subPersonaId,omitempty" bson:"subPersonaId,omitempty"`
	TherapeuticAreaIDs    []string  `json:"therapeuticAreaIds" bson:"therapeuticAreaIds"`
	AIModelTypeIDs        []string  `json:"aiModelTypeIds" bson:"aiModelTypeIds"`
	DeploymentScenarioIDs []string  `json:"deploymentScenarioIds" bson:"deploymentScenarioIds"`
	CreatedBy             string    `json:"createdBy" bson:"createdBy"`
	CreatedAt             time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Context rebuilds the resolution context for this assessment
func (a *Assessment) Context() ResolutionContext {
	return ResolutionContext{
		PersonaID:             a.PersonaID,
		SubPersonaID:          a.SubPersonaID,
		TherapeuticAreaIDs:    append([]string(nil), a.TherapeuticAreaIDs...),
		AIModelTypeIDs:        append([]string(nil), a.AIModelTypeIDs...),
		DeploymentScenarioIDs: append([]string(nil), a.DeploymentScenarioIDs...),
		CompanyID:             a.CompanyID,
	}
}

// ApplyContext copies a resolution context onto the record
func (a *Assessment) ApplyContext(rc ResolutionContext) {
	a.PersonaID = rc.PersonaID
	a.SubPersonaID = rc.SubPersonaID
	a.TherapeuticAreaIDs = rc.TherapeuticAreaIDs
	a.AIModelTypeIDs = rc.AIModelTypeIDs
	a.DeploymentScenarioIDs = rc.DeploymentScenarioIDs
	if rc.CompanyID != "" {
		a.CompanyID = rc.CompanyID
	}
}

// ComplexityLevel buckets the summed complexity weights of a context
type ComplexityLevel string

const (
	ComplexityLow    ComplexityLevel = "low"
	ComplexityMedium ComplexityLevel = "medium"
	ComplexityHigh   ComplexityLevel = "high"
)

// ResolvedSection is one applicable section with its applicable questions
type ResolvedSection struct {
	SectionID         string     `json:"sectionId"`
	SectionNumber     int        `json:"sectionNumber"`
	Title             string     `json:"title"`
	Category          string     `json:"category"`
	IsCriticalBlocker bool       `json:"isCriticalBlocker"`
	DisplayBasePoints int        `json:"displayBasePoints"`
	BasePoints        int        `json:"basePoints"` // sum of included question points
	TotalQuestions    int        `json:"totalQuestions"`
	Questions         []Question `json:"questions"`
}

// ResolvedAssessment is the output of resolution for one context
type ResolvedAssessment struct {
	CatalogVersion  string            `json:"catalogVersion"`
	Context         ResolutionContext `json:"context"`
	AdminView       bool              `json:"adminView"`
	Sections        []ResolvedSection `json:"sections"`
	TotalQuestions  int               `json:"totalQuestions"`
	TotalPoints     int               `json:"totalPoints"`
	ComplexityScore int               `json:"complexityScore"`
	ComplexityLevel ComplexityLevel   `json:"complexityLevel"`
}

// Question finds a resolved question by ID along with its section
func (r *ResolvedAssessment) Question(id string) (*Question, *ResolvedSection, bool) {
	for i := range r.Sections {
		sec := &r.Sections[i]
		for j := range sec.Questions {
			if sec.Questions[j].ID == id {
				return &sec.Questions[j], sec, true
			}
		}
	}
	return nil, nil, false
}

// Section finds a resolved section by ID
func (r *ResolvedAssessment) Section(id string) (*ResolvedSection, bool) {
	for i := range r.Sections {
		if r.Sections[i].SectionID == id {
			return &r.Sections[i], true
		}
	}
	return nil, false
}

// CreateAssessmentRequest is the request body for creating an assessment
type CreateAssessmentRequest struct {
	Name    string            `json:"name"`
	Context ResolutionContext `json:"context"`
}
